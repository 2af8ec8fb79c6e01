package models

type MenuCategory struct {
	ID           string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name         string `gorm:"type:varchar(100);not null" json:"name"`
	IsActive     bool   `json:"isActive"`
	RestaurantID string `gorm:"type:varchar(36);index" json:"restaurantId"`
	CreatedAt    string `gorm:"type:varchar(40)" json:"createdAt"`
	UpdatedAt    string `gorm:"type:varchar(40)" json:"updatedAt"`
}
