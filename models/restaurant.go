package models

type Restaurant struct {
	ID                     string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name                   string  `gorm:"type:varchar(255);not null" json:"name"`
	Location               string  `gorm:"type:varchar(255)" json:"location"`
	Phone                  string  `gorm:"type:varchar(20)" json:"phone"`
	Address                string  `gorm:"type:text" json:"address"`
	Logo                   string  `gorm:"type:varchar(255)" json:"logo"`
	UserID                 string  `gorm:"type:varchar(36)" json:"user_id"`
	GstPercent             float64 `gorm:"type:decimal(5,2)" json:"gstPercent"`
	ServiceChargePercent   float64 `gorm:"type:decimal(5,2)" json:"serviceChargePercent"`
	DefaultDiscountPercent float64 `gorm:"type:decimal(5,2)" json:"defaultDiscountPercent"`
	IsGstEnabled           bool    `json:"isGstEnabled"`
	IsServiceChargeEnabled bool    `json:"isServiceChargeEnabled"`
	CreatedAt              string  `gorm:"type:varchar(40)" json:"createdAt"`
	UpdatedAt              string  `gorm:"type:varchar(40)" json:"updatedAt"`
}
