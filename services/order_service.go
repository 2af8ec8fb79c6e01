package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vikascool786/mezbaani-desktop/database"
	"github.com/vikascool786/mezbaani-desktop/events"
	"github.com/vikascool786/mezbaani-desktop/models"
	"github.com/vikascool786/mezbaani-desktop/utils"
	"gorm.io/gorm"
)

// ErrOpenOrderExists rejects a second OPEN order on the same table. Backed
// by the partial unique index on orders(table_id) WHERE status='OPEN'.
var ErrOpenOrderExists = errors.New("table already has an open order")

// ErrOrderNotFound is a local-store miss on a direct order lookup.
var ErrOrderNotFound = errors.New("order not found")

// OrderService is what the renderer calls for the order lifecycle. Every
// operation commits locally first (through the write queue, with a durable
// outbox entry in the same transaction) and only then pokes the outbox
// worker; a dead network never fails or blocks the local write.
type OrderService struct {
	db        *gorm.DB
	queue     *database.WriteQueue
	dashboard *DashboardService
	outbox    *OutboxWorker
}

func NewOrderService(db *gorm.DB, queue *database.WriteQueue, dashboard *DashboardService, outbox *OutboxWorker) *OrderService {
	return &OrderService{db: db, queue: queue, dashboard: dashboard, outbox: outbox}
}

/* ----------------------------------
   REQUEST / RESPONSE SHAPES
----------------------------------- */

type OrderItemRequest struct {
	MenuItemID string `json:"menuItemId" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required"`
}

type CreateOrderRequest struct {
	ID            string             `json:"id"`
	TableID       string             `json:"tableId" binding:"required"`
	RestaurantID  string             `json:"restaurantId" binding:"required"`
	UserID        string             `json:"userId"`
	OrderNumber   string             `json:"orderNumber"`
	Items         []OrderItemRequest `json:"items" binding:"required"`
	Subtotal      *float64           `json:"subtotal"`
	TaxAmount     *float64           `json:"taxAmount"`
	Total         *float64           `json:"total"`
	DiscountType  *string            `json:"discountType"`
	DiscountValue *float64           `json:"discountValue"`
	ServiceCharge *float64           `json:"serviceCharge"`
	GstPercent    *float64           `json:"gstPercent"`
}

type UpdateOrderRequest struct {
	Items         []OrderItemRequest `json:"items"`
	Subtotal      *float64           `json:"subtotal"`
	TaxAmount     *float64           `json:"taxAmount"`
	Total         *float64           `json:"total"`
	DiscountType  *string            `json:"discountType"`
	DiscountValue *float64           `json:"discountValue"`
	ServiceCharge *float64           `json:"serviceCharge"`
	GstPercent    *float64           `json:"gstPercent"`
}

// Item status actions
const (
	ItemActionServed    = "served"
	ItemActionCancelled = "cancelled"
)

type ItemStatusRequest struct {
	Action string `json:"action" binding:"required"`
	Delta  int    `json:"delta"`
}

type CloseBillRequest struct {
	ClosedAt      *string  `json:"closedAt"`
	PaymentAmount *float64 `json:"paymentAmount"`
	PaymentMethod string   `json:"paymentMethod"`
}

// OrderDetail is the hydrated order the renderer renders: header plus line
// items joined with menu item name and price.
type OrderDetail struct {
	models.Order
	Items []OrderItemDetail `json:"items"`
}

type OrderItemDetail struct {
	models.OrderItem
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

/* ----------------------------------
   WRITE OPERATIONS
----------------------------------- */

// Create opens a new order. Local write first; the remote mirror is an
// outbox entry drained in the background.
func (os *OrderService) Create(req *CreateOrderRequest) (*OrderDetail, error) {
	if len(req.Items) == 0 {
		return nil, errors.New("order needs at least one item")
	}

	orderID := req.ID
	if orderID == "" {
		orderID = uuid.NewString()
	}
	orderNumber := req.OrderNumber
	if orderNumber == "" {
		orderNumber = "L-" + strings.ToUpper(orderID[:8])
	}

	now := utils.NowISO()
	err := os.queue.DoTx(func(tx *gorm.DB) error {
		var open int64
		if err := tx.Model(&models.Order{}).
			Where("table_id = ? AND status = ?", req.TableID, models.OrderStatusOpen).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return ErrOpenOrderExists
		}

		order := models.Order{
			ID:           orderID,
			Status:       models.OrderStatusOpen,
			OrderNumber:  orderNumber,
			OpenedAt:     now,
			CreatedAt:    now,
			UpdatedAt:    now,
			RestaurantID: req.RestaurantID,
			TableID:      req.TableID,
			UserID:       req.UserID,
			IsSynced:     false,
		}
		if err := applyMoney(tx, &order, req); err != nil {
			return err
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, item := range req.Items {
			row := models.OrderItem{
				OrderID:          orderID,
				MenuItemID:       item.MenuItemID,
				Quantity:         item.Quantity,
				OriginalQuantity: item.Quantity,
				IsSynced:         false,
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		return enqueueOutbox(tx, models.OutboxCreateOrder, orderID, "", nil)
	})
	if err != nil {
		return nil, err
	}

	os.afterWrite(orderID, req.RestaurantID)
	return os.GetByID(orderID)
}

// Update is the send-to-KOT path: upsert the submitted line items and
// overwrite only the monetary header fields the caller supplied. Existing
// served/cancelled/printed counters on an item survive a quantity change.
func (os *OrderService) Update(orderID string, req *UpdateOrderRequest) (*OrderDetail, error) {
	var restaurantID string
	now := utils.NowISO()

	err := os.queue.DoTx(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		restaurantID = order.RestaurantID

		for _, item := range req.Items {
			var existing models.OrderItem
			err := tx.Where("order_id = ? AND menu_item_id = ?", orderID, item.MenuItemID).
				First(&existing).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				row := models.OrderItem{
					OrderID:          orderID,
					MenuItemID:       item.MenuItemID,
					Quantity:         item.Quantity,
					OriginalQuantity: item.Quantity,
					IsSynced:         false,
					CreatedAt:        now,
					UpdatedAt:        now,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				updates := map[string]interface{}{
					"quantity":   item.Quantity,
					"is_synced":  false,
					"updated_at": now,
				}
				if err := tx.Model(&models.OrderItem{}).
					Where("order_id = ? AND menu_item_id = ?", orderID, item.MenuItemID).
					Updates(updates).Error; err != nil {
					return err
				}
			}
		}

		headerUpdates := map[string]interface{}{
			"is_synced":  false,
			"updated_at": now,
		}
		if req.Subtotal != nil {
			headerUpdates["subtotal"] = utils.Round2(*req.Subtotal)
		}
		if req.TaxAmount != nil {
			headerUpdates["tax_amount"] = utils.Round2(*req.TaxAmount)
		}
		if req.Total != nil {
			headerUpdates["total"] = utils.Round2(*req.Total)
		}
		if req.DiscountType != nil {
			headerUpdates["discount_type"] = *req.DiscountType
		}
		if req.DiscountValue != nil {
			headerUpdates["discount_value"] = *req.DiscountValue
		}
		if req.ServiceCharge != nil {
			headerUpdates["service_charge"] = utils.Round2(*req.ServiceCharge)
		}
		if req.GstPercent != nil {
			headerUpdates["gst_percent"] = *req.GstPercent
		}
		if err := tx.Model(&models.Order{}).
			Where("id = ?", orderID).
			Updates(headerUpdates).Error; err != nil {
			return err
		}

		return enqueueOutbox(tx, models.OutboxUpdateOrder, orderID, "", nil)
	})
	if err != nil {
		return nil, err
	}

	os.afterWrite(orderID, restaurantID)
	return os.GetByID(orderID)
}

// UpdateItemStatus bumps the served or cancelled counter of one line item.
// Each counter is individually capped at quantity; their sum is not — that
// matches the deployed behavior.
func (os *OrderService) UpdateItemStatus(orderID, menuItemID string, req *ItemStatusRequest) (*OrderDetail, error) {
	delta := req.Delta
	if delta <= 0 {
		delta = 1
	}
	if req.Action != ItemActionServed && req.Action != ItemActionCancelled {
		return nil, fmt.Errorf("unknown item action %q", req.Action)
	}

	var restaurantID string
	now := utils.NowISO()

	err := os.queue.DoTx(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		restaurantID = order.RestaurantID

		var item models.OrderItem
		if err := tx.Where("order_id = ? AND menu_item_id = ?", orderID, menuItemID).
			First(&item).Error; err != nil {
			return err
		}

		switch req.Action {
		case ItemActionServed:
			item.QuantityServed = minInt(item.Quantity, item.QuantityServed+delta)
		case ItemActionCancelled:
			item.QuantityCancelled = minInt(item.Quantity, item.QuantityCancelled+delta)
		}
		item.IsSynced = false
		item.UpdatedAt = now
		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Order{}).
			Where("id = ?", orderID).
			Updates(map[string]interface{}{"is_synced": false, "updated_at": now}).Error; err != nil {
			return err
		}

		return enqueueOutbox(tx, models.OutboxItemStatus, orderID, menuItemID, nil)
	})
	if err != nil {
		return nil, err
	}

	os.afterWrite(orderID, restaurantID)
	return os.GetByID(orderID)
}

// closeBillPayload rides along in the outbox entry; the worker replays
// generate-bill → pay → fetch-bill from it.
type closeBillPayload struct {
	PaymentAmount *float64 `json:"paymentAmount,omitempty"`
	PaymentMethod string   `json:"paymentMethod,omitempty"`
}

// Close sets the order CLOSED. The remote bill sequence runs from the
// outbox later; nothing rolls the local CLOSED row back.
func (os *OrderService) Close(orderID string, req *CloseBillRequest) (*OrderDetail, error) {
	var restaurantID string
	now := utils.NowISO()
	closedAt := now
	if req.ClosedAt != nil && *req.ClosedAt != "" {
		closedAt = *req.ClosedAt
	}

	err := os.queue.DoTx(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		restaurantID = order.RestaurantID

		updates := map[string]interface{}{
			"status":     models.OrderStatusClosed,
			"closed_at":  closedAt,
			"is_synced":  false,
			"updated_at": now,
		}
		if err := tx.Model(&models.Order{}).
			Where("id = ?", orderID).
			Updates(updates).Error; err != nil {
			return err
		}

		payload := closeBillPayload{
			PaymentAmount: req.PaymentAmount,
			PaymentMethod: req.PaymentMethod,
		}
		return enqueueOutbox(tx, models.OutboxCloseBill, orderID, "", &payload)
	})
	if err != nil {
		return nil, err
	}

	os.afterWrite(orderID, restaurantID)
	return os.GetByID(orderID)
}

/* ----------------------------------
   READ OPERATIONS
----------------------------------- */

// GetByID hydrates one order from the local store.
func (os *OrderService) GetByID(orderID string) (*OrderDetail, error) {
	var order models.Order
	if err := os.db.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return os.hydrate(&order)
}

// GetByTable returns "the" active order of a table: most recent OPEN (or
// legacy NULL-status) row by openedAt. nil means the table is vacant.
func (os *OrderService) GetByTable(tableID string) (*OrderDetail, error) {
	var order models.Order
	err := os.db.Where("table_id = ? AND (status = ? OR status IS NULL)",
		tableID, models.OrderStatusOpen).
		Order("opened_at DESC").
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return os.hydrate(&order)
}

// List returns every locally known order, newest first.
func (os *OrderService) List() ([]models.Order, error) {
	var orders []models.Order
	err := os.db.Preload("OrderItems").
		Order("opened_at DESC").
		Find(&orders).Error
	return orders, err
}

func (os *OrderService) hydrate(order *models.Order) (*OrderDetail, error) {
	var items []models.OrderItem
	if err := os.db.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		return nil, err
	}

	detail := &OrderDetail{Order: *order, Items: make([]OrderItemDetail, 0, len(items))}
	for _, item := range items {
		row := OrderItemDetail{OrderItem: item}
		var menuItem models.MenuItem
		if err := os.db.First(&menuItem, "id = ?", item.MenuItemID).Error; err == nil {
			row.Name = menuItem.Name
			row.Price = menuItem.Price
		}
		detail.Items = append(detail.Items, row)
	}
	return detail, nil
}

/* ----------------------------------
   HELPERS
----------------------------------- */

// afterWrite runs the non-fatal followups of a committed local write:
// dashboard recompute, renderer event, outbox kick.
func (os *OrderService) afterWrite(orderID, restaurantID string) {
	if restaurantID != "" {
		if err := os.dashboard.Recompute(restaurantID); err != nil {
			utils.ErrorLogger.Printf("Dashboard recompute after order %s: %v", orderID, err)
		}
	}
	events.BroadcastOrderUpdate(orderID)
	os.outbox.Kick()
}

// applyMoney fills the order's monetary fields from the request, deriving
// anything missing from menu prices and the restaurant's tax config.
func applyMoney(tx *gorm.DB, order *models.Order, req *CreateOrderRequest) error {
	subtotal := 0.0
	if req.Subtotal != nil {
		subtotal = *req.Subtotal
	} else {
		for _, item := range req.Items {
			var menuItem models.MenuItem
			if err := tx.First(&menuItem, "id = ?", item.MenuItemID).Error; err != nil {
				return fmt.Errorf("menu item %s: %w", item.MenuItemID, err)
			}
			subtotal += menuItem.Price * float64(item.Quantity)
		}
	}
	order.Subtotal = utils.Round2(subtotal)

	var restaurant models.Restaurant
	if err := tx.First(&restaurant, "id = ?", req.RestaurantID).Error; err != nil &&
		!errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if req.GstPercent != nil {
		order.GstPercent = *req.GstPercent
	} else if restaurant.IsGstEnabled {
		order.GstPercent = restaurant.GstPercent
	}
	if req.TaxAmount != nil {
		order.TaxAmount = utils.Round2(*req.TaxAmount)
	} else {
		order.TaxAmount = utils.Round2(order.Subtotal * order.GstPercent / 100)
	}
	if req.ServiceCharge != nil {
		order.ServiceCharge = utils.Round2(*req.ServiceCharge)
	} else if restaurant.IsServiceChargeEnabled {
		order.ServiceCharge = utils.Round2(order.Subtotal * restaurant.ServiceChargePercent / 100)
	}

	order.DiscountType = models.DiscountTypeFlat
	if req.DiscountType != nil {
		order.DiscountType = *req.DiscountType
	}
	if req.DiscountValue != nil {
		order.DiscountValue = *req.DiscountValue
	}
	discount := order.DiscountValue
	if order.DiscountType == models.DiscountTypePercent {
		discount = order.Subtotal * order.DiscountValue / 100
	}

	if req.Total != nil {
		order.Total = utils.Round2(*req.Total)
	} else {
		order.Total = utils.Round2(order.Subtotal + order.TaxAmount + order.ServiceCharge - discount)
	}
	return nil
}

func enqueueOutbox(tx *gorm.DB, kind, orderID, menuItemID string, payload interface{}) error {
	entry := models.OutboxEntry{
		Kind:       kind,
		OrderID:    orderID,
		MenuItemID: menuItemID,
		Status:     models.OutboxStatusPending,
		CreatedAt:  utils.NowISO(),
		UpdatedAt:  utils.NowISO(),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		entry.Payload = string(raw)
	}
	return tx.Create(&entry).Error
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
