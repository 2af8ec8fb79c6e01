package models

// Outbox entry kinds, one per remote mirror shape.
const (
	OutboxCreateOrder = "create_order"
	OutboxUpdateOrder = "update_order"
	OutboxItemStatus  = "item_status"
	OutboxCloseBill   = "close_bill"
)

// Outbox entry statuses.
const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
)

// OutboxEntry is a durable record of a local write that still has to be
// mirrored to the remote service. Written in the same transaction as the
// local write it mirrors, drained by the outbox worker.
type OutboxEntry struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Kind       string `gorm:"type:varchar(20);not null;index" json:"kind"`
	OrderID    string `gorm:"type:varchar(36);not null;index" json:"orderId"`
	MenuItemID string `gorm:"type:varchar(36)" json:"menuItemId"`
	Payload    string `gorm:"type:text" json:"payload"`
	Status     string `gorm:"type:varchar(10);not null;default:'pending';index" json:"status"`
	Attempts   int    `gorm:"not null;default:0" json:"attempts"`
	LastError  string `gorm:"type:text" json:"lastError"`
	CreatedAt  string `gorm:"type:varchar(40)" json:"createdAt"`
	UpdatedAt  string `gorm:"type:varchar(40)" json:"updatedAt"`
}
