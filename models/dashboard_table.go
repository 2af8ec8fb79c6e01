package models

// Projection sources
const (
	DashboardSourceServer = "SERVER"
	DashboardSourceLocal  = "LOCAL"
)

// Table statuses shown on the dashboard
const (
	TableStatusVacant   = "VACANT"
	TableStatusOccupied = "OCCUPIED"
	TableStatusReserved = "RESERVED"
)

// DashboardTable is the derived per-table live-status row. ID equals the
// table id, so upserts are idempotent and one row per table is structural.
type DashboardTable struct {
	ID              string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	RestaurantID    string  `gorm:"type:varchar(36);index" json:"restaurantId"`
	Name            string  `gorm:"type:varchar(100)" json:"name"`
	Section         string  `gorm:"type:varchar(100)" json:"section"`
	Seats           int     `json:"seats"`
	Status          string  `gorm:"type:varchar(20);not null;default:'VACANT'" json:"status"`
	IsOccupied      bool    `json:"isOccupied"`
	Duration        string  `gorm:"type:varchar(40)" json:"duration"`
	CustomerName    string  `gorm:"type:varchar(255)" json:"customerName"`
	Amount          float64 `gorm:"type:decimal(10,2)" json:"amount"`
	ReservationTime string  `gorm:"type:varchar(40)" json:"reservationTime"`
	Source          string  `gorm:"type:varchar(10);not null;default:'SERVER'" json:"source"`
	LastComputedAt  string  `gorm:"type:varchar(40)" json:"lastComputedAt"`
	UpdatedAt       string  `gorm:"type:varchar(40)" json:"updatedAt"`
}
