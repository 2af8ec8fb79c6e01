package models

type MenuItem struct {
	ID           string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name         string  `gorm:"type:varchar(255);not null" json:"name"`
	Description  string  `gorm:"type:text" json:"description"`
	FoodType     string  `gorm:"type:varchar(20)" json:"foodType"`
	Price        float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageURL     *string `gorm:"type:varchar(255)" json:"imageUrl"`
	IsAvailable  bool    `json:"isAvailable"`
	IsActive     bool    `json:"isActive"`
	SortOrder    int     `json:"sortOrder"`
	RestaurantID string  `gorm:"type:varchar(36);index" json:"restaurantId"`
	CategoryID   *string `gorm:"type:varchar(36);index" json:"categoryId"`
	CreatedAt    string  `gorm:"type:varchar(40)" json:"createdAt"`
	UpdatedAt    string  `gorm:"type:varchar(40)" json:"updatedAt"`
}
