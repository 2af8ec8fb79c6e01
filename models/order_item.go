package models

// OrderItem is composite-keyed on (order, menu item); one row per dish per
// order, quantities tracked as counters rather than separate rows.
type OrderItem struct {
	OrderID           string `gorm:"primaryKey;type:varchar(36)" json:"orderId"`
	MenuItemID        string `gorm:"primaryKey;type:varchar(36)" json:"menuItemId"`
	Quantity          int    `gorm:"not null" json:"quantity"`
	OriginalQuantity  int    `gorm:"not null" json:"originalQuantity"`
	QuantityPrinted   int    `gorm:"not null;default:0" json:"quantityPrinted"`
	QuantityServed    int    `gorm:"not null;default:0" json:"quantityServed"`
	QuantityCancelled int    `gorm:"not null;default:0" json:"quantityCancelled"`
	IsSynced          bool   `gorm:"not null;default:false" json:"isSynced"`
	CreatedAt         string `gorm:"type:varchar(40)" json:"createdAt"`
	UpdatedAt         string `gorm:"type:varchar(40)" json:"updatedAt"`
}

// EffectiveQuantity is what billing counts: cancelled units are excluded.
func (oi *OrderItem) EffectiveQuantity() int {
	return oi.Quantity - oi.QuantityCancelled
}
