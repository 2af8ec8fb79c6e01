package models

// AuthSessionID is the fixed primary key of the single session row.
const AuthSessionID = 1

// AuthSession mirrors the remote login result. Replaced wholesale on login,
// deleted on logout; never expired locally — the remote 401 is what signals
// invalidation.
type AuthSession struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Token        string `gorm:"type:text;not null" json:"token"`
	UserID       string `gorm:"type:varchar(36)" json:"userId"`
	Name         string `gorm:"type:varchar(255)" json:"name"`
	Phone        string `gorm:"type:varchar(20)" json:"phone"`
	Email        string `gorm:"type:varchar(255)" json:"email"`
	RoleName     string `gorm:"type:varchar(50)" json:"roleName"`
	RestaurantID string `gorm:"type:varchar(36)" json:"restaurantId"`
	LoggedInAt   string `gorm:"type:varchar(40)" json:"loggedInAt"`
}

func (AuthSession) TableName() string {
	return "auth_session"
}
