package models

type Role struct {
	ID        string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	RoleName  string `gorm:"type:varchar(50);not null" json:"roleName"`
	CreatedAt string `gorm:"type:varchar(40)" json:"createdAt"`
	UpdatedAt string `gorm:"type:varchar(40)" json:"updatedAt"`
}
