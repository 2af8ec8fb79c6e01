package services

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/vikascool786/mezbaani-desktop/database"
	"github.com/vikascool786/mezbaani-desktop/models"
	"github.com/vikascool786/mezbaani-desktop/utils"
	"gorm.io/gorm"
)

const (
	outboxInterval    = 30 * time.Second
	outboxMaxAttempts = 10
	outboxBatchSize   = 50
)

// OutboxWorker drains pending outbox entries to the remote service. Local
// writes enqueue entries transactionally and then Kick(); the ticker covers
// entries that failed earlier or were written while offline.
type OutboxWorker struct {
	db      *gorm.DB
	queue   *database.WriteQueue
	api     *APIClient
	auth    *AuthService
	network *NetworkService

	kick     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewOutboxWorker(db *gorm.DB, queue *database.WriteQueue, api *APIClient, auth *AuthService, network *NetworkService) *OutboxWorker {
	return &OutboxWorker{
		db:      db,
		queue:   queue,
		api:     api,
		auth:    auth,
		network: network,
		kick:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the drain loop. Call once.
func (w *OutboxWorker) Start() {
	utils.InfoLogger.Println("Starting outbox worker...")
	go w.run()
}

// Stop shuts the loop down and waits for the in-flight pass to finish.
func (w *OutboxWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	<-w.done
}

// Kick requests an immediate drain pass. Non-blocking; a pass already
// requested absorbs the kick.
func (w *OutboxWorker) Kick() {
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

func (w *OutboxWorker) run() {
	defer close(w.done)
	ticker := time.NewTicker(outboxInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.Drain()
		case <-w.kick:
			w.Drain()
		}
	}
}

// Drain replays pending entries oldest first. Offline or logged-out means
// a silent no-op; entries keep waiting.
func (w *OutboxWorker) Drain() {
	if !w.network.IsOnline() {
		return
	}
	token, err := w.auth.Token()
	if err != nil {
		if !errors.Is(err, ErrNotAuthenticated) {
			utils.ErrorLogger.Printf("Outbox: reading session: %v", err)
		}
		return
	}

	var entries []models.OutboxEntry
	if err := w.db.Where("status = ?", models.OutboxStatusPending).
		Order("id ASC").
		Limit(outboxBatchSize).
		Find(&entries).Error; err != nil {
		utils.ErrorLogger.Printf("Outbox: listing pending entries: %v", err)
		return
	}

	for _, entry := range entries {
		err := w.flush(&entry, token)
		if err == nil {
			w.markSent(&entry)
			continue
		}
		utils.ErrorLogger.Printf("Outbox: entry %d (%s, order %s): %v",
			entry.ID, entry.Kind, entry.OrderID, err)
		w.markFailure(&entry, err)
		if errors.Is(err, ErrUnauthorized) {
			// Token is dead; every remaining entry would fail the same way.
			return
		}
	}
}

func (w *OutboxWorker) flush(entry *models.OutboxEntry, token string) error {
	switch entry.Kind {
	case models.OutboxCreateOrder:
		body, err := w.orderMirror(entry.OrderID)
		if err != nil {
			return err
		}
		return w.api.CreateOrder(token, body)

	case models.OutboxUpdateOrder:
		body, err := w.orderMirror(entry.OrderID)
		if err != nil {
			return err
		}
		return w.api.UpdateOrder(token, entry.OrderID, body)

	case models.OutboxItemStatus:
		var item models.OrderItem
		if err := w.db.Where("order_id = ? AND menu_item_id = ?",
			entry.OrderID, entry.MenuItemID).First(&item).Error; err != nil {
			return err
		}
		body := map[string]interface{}{
			"quantityServed":    item.QuantityServed,
			"quantityCancelled": item.QuantityCancelled,
		}
		return w.api.UpdateOrderItemStatus(token, entry.OrderID, entry.MenuItemID, body)

	case models.OutboxCloseBill:
		var payload closeBillPayload
		if entry.Payload != "" {
			if err := json.Unmarshal([]byte(entry.Payload), &payload); err != nil {
				return err
			}
		}
		if err := w.api.GenerateBill(token, entry.OrderID); err != nil {
			return err
		}
		if payload.PaymentAmount != nil {
			if err := w.api.RecordPayment(token, entry.OrderID,
				*payload.PaymentAmount, payload.PaymentMethod); err != nil {
				return err
			}
		}
		if _, err := w.api.FetchBill(token, entry.OrderID); err != nil {
			// The bill exists remotely at this point; fetching it back is
			// best effort.
			utils.ErrorLogger.Printf("Outbox: fetching bill for order %s: %v", entry.OrderID, err)
		}
		return nil

	default:
		return errors.New("unknown outbox kind " + entry.Kind)
	}
}

// orderMirror loads the order and its items in the remote wire shape.
func (w *OutboxWorker) orderMirror(orderID string) (*OrderPayload, error) {
	var order models.Order
	if err := w.db.Preload("OrderItems").First(&order, "id = ?", orderID).Error; err != nil {
		return nil, err
	}
	discountType := order.DiscountType
	discountValue := Money(order.DiscountValue)
	payload := &OrderPayload{
		ID:            order.ID,
		Status:        order.Status,
		OrderNumber:   order.OrderNumber,
		Subtotal:      Money(order.Subtotal),
		TaxAmount:     Money(order.TaxAmount),
		Total:         Money(order.Total),
		DiscountType:  &discountType,
		DiscountValue: &discountValue,
		ServiceCharge: Money(order.ServiceCharge),
		GstPercent:    Money(order.GstPercent),
		OpenedAt:      order.OpenedAt,
		ClosedAt:      order.ClosedAt,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
		RestaurantID:  order.RestaurantID,
		TableID:       order.TableID,
		UserID:        order.UserID,
		Items:         make([]OrderItemPayload, 0, len(order.OrderItems)),
	}
	for _, item := range order.OrderItems {
		payload.Items = append(payload.Items, OrderItemPayload{
			OrderID:           item.OrderID,
			MenuItemID:        item.MenuItemID,
			Quantity:          item.Quantity,
			OriginalQuantity:  item.OriginalQuantity,
			QuantityPrinted:   item.QuantityPrinted,
			QuantityServed:    item.QuantityServed,
			QuantityCancelled: item.QuantityCancelled,
			CreatedAt:         item.CreatedAt,
			UpdatedAt:         item.UpdatedAt,
		})
	}
	return payload, nil
}

func (w *OutboxWorker) markSent(entry *models.OutboxEntry) {
	err := w.queue.DoTx(func(tx *gorm.DB) error {
		now := utils.NowISO()
		if err := tx.Model(&models.OutboxEntry{}).
			Where("id = ?", entry.ID).
			Updates(map[string]interface{}{
				"status":     models.OutboxStatusSent,
				"updated_at": now,
			}).Error; err != nil {
			return err
		}

		switch entry.Kind {
		case models.OutboxItemStatus:
			if err := tx.Model(&models.OrderItem{}).
				Where("order_id = ? AND menu_item_id = ?", entry.OrderID, entry.MenuItemID).
				Update("is_synced", true).Error; err != nil {
				return err
			}
		default:
			if err := tx.Model(&models.OrderItem{}).
				Where("order_id = ?", entry.OrderID).
				Update("is_synced", true).Error; err != nil {
				return err
			}
		}

		// The order header counts as mirrored once nothing else is pending
		// for it.
		var remaining int64
		if err := tx.Model(&models.OutboxEntry{}).
			Where("order_id = ? AND status = ? AND id <> ?",
				entry.OrderID, models.OutboxStatusPending, entry.ID).
			Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			return tx.Model(&models.Order{}).
				Where("id = ?", entry.OrderID).
				Updates(map[string]interface{}{
					"is_synced":  true,
					"sync_error": "",
				}).Error
		}
		return nil
	})
	if err != nil {
		utils.ErrorLogger.Printf("Outbox: marking entry %d sent: %v", entry.ID, err)
	}
}

func (w *OutboxWorker) markFailure(entry *models.OutboxEntry, cause error) {
	attempts := entry.Attempts + 1
	status := models.OutboxStatusPending
	if attempts >= outboxMaxAttempts {
		status = models.OutboxStatusFailed
		utils.ErrorLogger.Printf("Outbox: entry %d (%s, order %s) gave up after %d attempts",
			entry.ID, entry.Kind, entry.OrderID, attempts)
	}
	err := w.queue.DoTx(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OutboxEntry{}).
			Where("id = ?", entry.ID).
			Updates(map[string]interface{}{
				"status":     status,
				"attempts":   attempts,
				"last_error": cause.Error(),
				"updated_at": utils.NowISO(),
			}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Order{}).
			Where("id = ?", entry.OrderID).
			Update("sync_error", cause.Error()).Error
	})
	if err != nil {
		utils.ErrorLogger.Printf("Outbox: recording failure for entry %d: %v", entry.ID, err)
	}
}
