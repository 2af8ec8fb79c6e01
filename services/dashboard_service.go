package services

import (
	"errors"

	"github.com/vikascool786/mezbaani-desktop/database"
	"github.com/vikascool786/mezbaani-desktop/events"
	"github.com/vikascool786/mezbaani-desktop/models"
	"github.com/vikascool786/mezbaani-desktop/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DashboardService maintains the derived per-table live-status rows.
// Two update paths: a one-time remote bootstrap and a purely local
// recompute. Both are idempotent on the table id.
type DashboardService struct {
	db    *gorm.DB
	queue *database.WriteQueue
	api   *APIClient
	auth  *AuthService
	locks *familyLocks
}

func NewDashboardService(db *gorm.DB, queue *database.WriteQueue, api *APIClient, auth *AuthService) *DashboardService {
	return &DashboardService{
		db:    db,
		queue: queue,
		api:   api,
		auth:  auth,
		locks: newFamilyLocks(),
	}
}

// Bootstrap populates the projection from the remote snapshot, once per
// restaurant. When any rows already exist it is a no-op with skipped=true.
// Tables must have been synced first for FK integrity.
func (ds *DashboardService) Bootstrap(restaurantID string) (*SyncResult, error) {
	if restaurantID == "" {
		return nil, errors.New("restaurantId missing")
	}
	if !ds.locks.tryAcquire(familyDashboardTables) {
		return &SyncResult{Success: false, Message: "Sync already running"}, ErrSyncInProgress
	}
	defer ds.locks.release(familyDashboardTables)

	var existing int64
	if err := ds.db.Model(&models.DashboardTable{}).
		Where("restaurant_id = ?", restaurantID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return &SyncResult{Success: true, Skipped: true}, nil
	}

	token, err := ds.auth.Token()
	if err != nil {
		return nil, err
	}
	payloads, err := ds.api.FetchDashboardTables(token, restaurantID)
	if err != nil {
		return nil, err
	}

	now := utils.NowISO()
	err = ds.queue.DoTx(func(tx *gorm.DB) error {
		for _, t := range payloads {
			row := models.DashboardTable{
				ID:              t.ID,
				RestaurantID:    restaurantID,
				Name:            t.Name,
				Section:         t.Section,
				Seats:           t.Seats,
				Status:          t.Status,
				IsOccupied:      t.IsOccupied,
				Duration:        t.Duration,
				CustomerName:    t.CustomerName,
				Amount:          float64(t.Amount),
				ReservationTime: t.ReservationTime,
				Source:          models.DashboardSourceServer,
				LastComputedAt:  now,
				UpdatedAt:       now,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.BroadcastDashboardUpdate(restaurantID)
	return &SyncResult{Success: true, Synced: len(payloads)}, nil
}

// Recompute derives the projection from local state only: every table of
// the restaurant plus its most recent OPEN order. No network. Called after
// every local order create/update/close so offline activity shows up
// without a remote round-trip.
func (ds *DashboardService) Recompute(restaurantID string) error {
	if restaurantID == "" {
		return errors.New("restaurantId missing")
	}

	var tables []models.Table
	if err := ds.db.Where("restaurant_id = ?", restaurantID).
		Find(&tables).Error; err != nil {
		return err
	}

	now := utils.NowISO()
	err := ds.queue.DoTx(func(tx *gorm.DB) error {
		for _, table := range tables {
			var order models.Order
			hasOpen := true
			err := tx.Where("table_id = ? AND (status = ? OR status IS NULL)",
				table.ID, models.OrderStatusOpen).
				Order("opened_at DESC").
				First(&order).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				hasOpen = false
			} else if err != nil {
				return err
			}

			row := models.DashboardTable{
				ID:             table.ID,
				RestaurantID:   restaurantID,
				Name:           table.Name,
				Section:        table.Section,
				Seats:          table.Seats,
				Status:         models.TableStatusVacant,
				IsOccupied:     false,
				Amount:         0,
				Source:         models.DashboardSourceLocal,
				LastComputedAt: now,
				UpdatedAt:      now,
			}
			if hasOpen {
				row.Status = models.TableStatusOccupied
				row.IsOccupied = true
				row.Amount = order.Total
				row.Duration = order.OpenedAt
			}

			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	events.BroadcastDashboardUpdate(restaurantID)
	return nil
}

// List serves the projection from the local store, ordered for display.
// Never touches the network.
func (ds *DashboardService) List(restaurantID string) ([]models.DashboardTable, error) {
	var rows []models.DashboardTable
	err := ds.db.Where("restaurant_id = ?", restaurantID).
		Order("section, name").
		Find(&rows).Error
	return rows, err
}
