package models

// Order statuses
const (
	OrderStatusOpen      = "OPEN"
	OrderStatusClosed    = "CLOSED"
	OrderStatusCancelled = "CANCELLED"
)

// Discount types
const (
	DiscountTypeFlat    = "FLAT"
	DiscountTypePercent = "PERCENT"
)

type Order struct {
	ID            string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Status        string      `gorm:"type:varchar(20);not null;default:'OPEN'" json:"status"`
	OrderNumber   string      `gorm:"type:varchar(50)" json:"orderNumber"`
	Subtotal      float64     `gorm:"type:decimal(10,2)" json:"subtotal"`
	TaxAmount     float64     `gorm:"type:decimal(10,2)" json:"taxAmount"`
	Total         float64     `gorm:"type:decimal(10,2)" json:"total"`
	DiscountType  string      `gorm:"type:varchar(10);default:'FLAT'" json:"discountType"`
	DiscountValue float64     `gorm:"type:decimal(10,2)" json:"discountValue"`
	ServiceCharge float64     `gorm:"type:decimal(10,2)" json:"serviceCharge"`
	GstPercent    float64     `gorm:"type:decimal(5,2)" json:"gstPercent"`
	OpenedAt      string      `gorm:"type:varchar(40);index" json:"openedAt"`
	ClosedAt      *string     `gorm:"type:varchar(40)" json:"closedAt"`
	CreatedAt     string      `gorm:"type:varchar(40)" json:"createdAt"`
	UpdatedAt     string      `gorm:"type:varchar(40)" json:"updatedAt"`
	RestaurantID  string      `gorm:"type:varchar(36);index" json:"restaurantId"`
	TableID       string      `gorm:"type:varchar(36);index" json:"tableId"`
	UserID        string      `gorm:"type:varchar(36)" json:"userId"`
	IsSynced      bool        `gorm:"not null;default:false" json:"isSynced"`
	SyncError     string      `gorm:"type:text" json:"syncError,omitempty"`
	OrderItems    []OrderItem `gorm:"foreignKey:OrderID;references:ID" json:"items"`
}
