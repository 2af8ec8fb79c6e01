package services

import (
	"errors"
	"fmt"

	"github.com/vikascool786/mezbaani-desktop/database"
	"github.com/vikascool786/mezbaani-desktop/events"
	"github.com/vikascool786/mezbaani-desktop/models"
	"github.com/vikascool786/mezbaani-desktop/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSyncInProgress is returned when a sync for the same entity family is
// already running. The caller gets a structured result, not a hang.
var ErrSyncInProgress = errors.New("sync already running")

// Entity families, one in-progress flag each.
const (
	familyRoles           = "roles"
	familyRestaurants     = "restaurants"
	familyTables          = "tables"
	familyMenuCategories  = "menuCategories"
	familyMenuItems       = "menuItems"
	familyOrders          = "orders"
	familyDashboardTables = "dashboardTables"
)

// SyncResult is what every sync trigger returns to the renderer.
type SyncResult struct {
	Success bool   `json:"success"`
	Synced  int    `json:"synced"`
	Skipped bool   `json:"skipped,omitempty"`
	Message string `json:"message,omitempty"`
}

// SyncService pulls authoritative collections from the remote API and
// upserts them into the local store. All writes run on the write queue;
// each entity family holds its own in-progress flag so a second trigger of
// a running family fails fast instead of stacking.
//
// Cross-family ordering is the caller's contract: menu categories before
// menu items, tables before the dashboard bootstrap.
type SyncService struct {
	db    *gorm.DB
	queue *database.WriteQueue
	api   *APIClient
	auth  *AuthService
	locks *familyLocks
}

func NewSyncService(db *gorm.DB, queue *database.WriteQueue, api *APIClient, auth *AuthService) *SyncService {
	return &SyncService{
		db:    db,
		queue: queue,
		api:   api,
		auth:  auth,
		locks: newFamilyLocks(),
	}
}

/* ----------------------------------
   BULK REPLACE-SYNC
----------------------------------- */

func (ss *SyncService) SyncRoles() (*SyncResult, error) {
	return ss.bulk(familyRoles, func(token string) (int, error) {
		roles, err := ss.api.FetchRoles(token)
		if err != nil {
			return 0, err
		}
		err = ss.queue.DoTx(func(tx *gorm.DB) error {
			if len(roles) == 0 {
				return nil
			}
			return tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(&roles).Error
		})
		return len(roles), err
	})
}

func (ss *SyncService) SyncRestaurants() (*SyncResult, error) {
	return ss.bulk(familyRestaurants, func(token string) (int, error) {
		restaurants, err := ss.api.FetchRestaurants(token)
		if err != nil {
			return 0, err
		}
		err = ss.queue.DoTx(func(tx *gorm.DB) error {
			if len(restaurants) == 0 {
				return nil
			}
			return tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(&restaurants).Error
		})
		return len(restaurants), err
	})
}

func (ss *SyncService) SyncTables(restaurantID string) (*SyncResult, error) {
	if restaurantID == "" {
		return nil, errors.New("restaurantId missing")
	}
	return ss.bulk(familyTables, func(token string) (int, error) {
		tables, err := ss.api.FetchTables(token, restaurantID)
		if err != nil {
			return 0, err
		}
		err = ss.withForeignKeysOff(func(tx *gorm.DB) error {
			if len(tables) == 0 {
				return nil
			}
			return tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(&tables).Error
		})
		return len(tables), err
	})
}

func (ss *SyncService) SyncMenuCategories() (*SyncResult, error) {
	return ss.bulk(familyMenuCategories, func(token string) (int, error) {
		categories, err := ss.api.FetchMenuCategories(token)
		if err != nil {
			return 0, err
		}
		err = ss.queue.DoTx(func(tx *gorm.DB) error {
			if len(categories) == 0 {
				return nil
			}
			return tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(&categories).Error
		})
		return len(categories), err
	})
}

// SyncMenuItems skips items whose category is not yet known locally. They
// are picked up by the next resync once SyncMenuCategories has run.
func (ss *SyncService) SyncMenuItems() (*SyncResult, error) {
	return ss.bulk(familyMenuItems, func(token string) (int, error) {
		items, err := ss.api.FetchMenuItems(token)
		if err != nil {
			return 0, err
		}
		synced := 0
		err = ss.queue.DoTx(func(tx *gorm.DB) error {
			for i := range items {
				item := items[i]
				if item.CategoryID != nil && *item.CategoryID != "" {
					var count int64
					if err := tx.Model(&models.MenuCategory{}).
						Where("id = ?", *item.CategoryID).
						Count(&count).Error; err != nil {
						return err
					}
					if count == 0 {
						utils.InfoLogger.Printf(
							"Skipping menu item %s: category %s not synced yet",
							item.ID, *item.CategoryID)
						continue
					}
				}
				if err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "id"}},
					UpdateAll: true,
				}).Create(&item).Error; err != nil {
					return err
				}
				synced++
			}
			return nil
		})
		return synced, err
	})
}

// orderRemoteColumns are the columns a bulk order sync may overwrite.
// is_synced and sync_error are local-only and survive the upsert.
var orderRemoteColumns = []string{
	"status", "order_number", "subtotal", "tax_amount", "total",
	"discount_type", "discount_value", "service_charge", "gst_percent",
	"opened_at", "closed_at", "updated_at", "restaurant_id", "table_id",
	"user_id",
}

func (ss *SyncService) SyncOrders() (*SyncResult, error) {
	return ss.bulk(familyOrders, func(token string) (int, error) {
		payloads, err := ss.api.FetchOrders(token)
		if err != nil {
			return 0, err
		}
		err = ss.withForeignKeysOff(func(tx *gorm.DB) error {
			for i := range payloads {
				order := orderFromPayload(&payloads[i])
				if err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "id"}},
					DoUpdates: clause.AssignmentColumns(orderRemoteColumns),
				}).Create(order).Error; err != nil {
					return err
				}
			}
			return nil
		})
		return len(payloads), err
	})
}

/* ----------------------------------
   TARGETED RECONCILIATION
----------------------------------- */

// SyncOrderByTable reconciles the open order of one table against the
// remote. A remote 404 means the table is vacant: (nil, nil), not an error.
//
// Reconciliation is remote-authoritative: line items are deleted and
// reinserted from the payload, so served/cancelled progress that was never
// mirrored is overwritten.
func (ss *SyncService) SyncOrderByTable(tableID string) (*models.Order, error) {
	token, err := ss.auth.Token()
	if err != nil {
		return nil, err
	}
	payload, err := ss.api.FetchOrderByTable(token, tableID)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, nil
	}
	return ss.applyOrderPayload(payload)
}

func (ss *SyncService) SyncOrderByID(orderID string) (*models.Order, error) {
	token, err := ss.auth.Token()
	if err != nil {
		return nil, err
	}
	payload, err := ss.api.FetchOrderByID(token, orderID)
	if err != nil {
		return nil, err
	}
	return ss.applyOrderPayload(payload)
}

// applyOrderPayload upserts one order header and fully replaces its line
// items inside one queued transaction.
func (ss *SyncService) applyOrderPayload(payload *OrderPayload) (*models.Order, error) {
	order := orderFromPayload(payload)
	order.IsSynced = true
	order.SyncError = ""

	err := ss.withForeignKeysOff(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(order).Error; err != nil {
			return err
		}

		if err := tx.Where("order_id = ?", order.ID).
			Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}

		for _, item := range payload.Items {
			var count int64
			if err := tx.Model(&models.MenuItem{}).
				Where("id = ?", item.MenuItemID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				utils.InfoLogger.Printf(
					"Skipping order item %s/%s: menu item not synced yet",
					order.ID, item.MenuItemID)
				continue
			}
			row := models.OrderItem{
				OrderID:           order.ID,
				MenuItemID:        item.MenuItemID,
				Quantity:          item.Quantity,
				OriginalQuantity:  item.OriginalQuantity,
				QuantityPrinted:   item.QuantityPrinted,
				QuantityServed:    item.QuantityServed,
				QuantityCancelled: item.QuantityCancelled,
				IsSynced:          true,
				CreatedAt:         item.CreatedAt,
				UpdatedAt:         item.UpdatedAt,
			}
			if row.OriginalQuantity == 0 {
				row.OriginalQuantity = row.Quantity
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.BroadcastOrderUpdate(order.ID)

	var hydrated models.Order
	if err := ss.db.Preload("OrderItems").First(&hydrated, "id = ?", order.ID).Error; err != nil {
		return nil, err
	}
	return &hydrated, nil
}

/* ----------------------------------
   HELPERS
----------------------------------- */

// bulk wraps the shared discipline of every replace-sync: family lock,
// token required before any network traffic, fetch+upsert, event broadcast.
func (ss *SyncService) bulk(family string, run func(token string) (int, error)) (*SyncResult, error) {
	if !ss.locks.tryAcquire(family) {
		return &SyncResult{Success: false, Message: "Sync already running"}, ErrSyncInProgress
	}
	defer ss.locks.release(family)

	token, err := ss.auth.Token()
	if err != nil {
		return nil, err
	}

	synced, err := run(token)
	if err != nil {
		return nil, fmt.Errorf("sync %s: %w", family, err)
	}

	events.BroadcastSyncCompleted(family, synced)
	return &SyncResult{Success: true, Synced: synced}, nil
}

// withForeignKeysOff relaxes FK checks for one bulk load. Mirrors the
// original loader: referenced rows may arrive in a later family sync.
func (ss *SyncService) withForeignKeysOff(fn func(tx *gorm.DB) error) error {
	return ss.queue.Do(func(db *gorm.DB) error {
		if err := db.Exec("PRAGMA foreign_keys = OFF").Error; err != nil {
			return err
		}
		defer db.Exec("PRAGMA foreign_keys = ON")
		return db.Transaction(fn)
	})
}

func orderFromPayload(p *OrderPayload) *models.Order {
	discountType, discountValue := p.NormalizedDiscount()
	return &models.Order{
		ID:            p.ID,
		Status:        p.Status,
		OrderNumber:   p.OrderNumber,
		Subtotal:      float64(p.Subtotal),
		TaxAmount:     float64(p.TaxAmount),
		Total:         float64(p.Total),
		DiscountType:  discountType,
		DiscountValue: discountValue,
		ServiceCharge: float64(p.ServiceCharge),
		GstPercent:    float64(p.GstPercent),
		OpenedAt:      p.OpenedAt,
		ClosedAt:      p.ClosedAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		RestaurantID:  p.RestaurantID,
		TableID:       p.TableID,
		UserID:        p.UserID,
		IsSynced:      true,
	}
}
