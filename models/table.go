package models

type Table struct {
	ID           string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name         string `gorm:"type:varchar(100);not null" json:"name"`
	Seats        int    `json:"seats"`
	Section      string `gorm:"type:varchar(100)" json:"section"`
	IsOccupied   bool   `json:"isOccupied"`
	UserID       string `gorm:"type:varchar(36)" json:"userId"`
	RestaurantID string `gorm:"type:varchar(36);index" json:"restaurantId"`
	CreatedAt    string `gorm:"type:varchar(40)" json:"createdAt"`
	UpdatedAt    string `gorm:"type:varchar(40)" json:"updatedAt"`
}
