package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vikascool786/mezbaani-desktop/database"
	"github.com/vikascool786/mezbaani-desktop/models"
	"gorm.io/gorm"
)

// newOrderService wires the full local stack with a remote that must never
// be reached: the order lifecycle commits locally no matter what.
func newOrderService(t *testing.T, db *gorm.DB, queue *database.WriteQueue) *OrderService {
	t.Helper()
	api := NewAPIClient("http://127.0.0.1:0")
	auth := NewAuthService(db, queue, api)
	network := NewNetworkService()
	dashboard := NewDashboardService(db, queue, api, auth)
	outbox := NewOutboxWorker(db, queue, api, auth, network)
	return NewOrderService(db, queue, dashboard, outbox)
}

func TestCreateOrderComputesTotalsFromCatalog(t *testing.T) {
	db, queue := newTestStore(t)
	seedCatalog(t, db)
	orders := newOrderService(t, db, queue)

	detail, err := orders.Create(&CreateOrderRequest{
		TableID:      "table-1",
		RestaurantID: "rest-1",
		UserID:       "user-1",
		Items: []OrderItemRequest{
			{MenuItemID: "item-1", Quantity: 2}, // 2 x 250
			{MenuItemID: "item-2", Quantity: 1}, // 1 x 350
		},
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, detail.ID)
	assert.Equal(t, models.OrderStatusOpen, detail.Status)
	assert.Equal(t, 850.0, detail.Subtotal)
	// 5% GST from the restaurant config, no service charge.
	assert.Equal(t, 42.5, detail.TaxAmount)
	assert.Equal(t, 892.5, detail.Total)
	assert.False(t, detail.IsSynced)

	// Line items hydrated with catalog name and price.
	assert.Len(t, detail.Items, 2)
	for _, item := range detail.Items {
		assert.Equal(t, item.Quantity, item.OriginalQuantity)
		assert.Equal(t, 0, item.QuantityServed)
		assert.NotEmpty(t, item.Name)
		assert.Greater(t, item.Price, 0.0)
	}

	// A durable create_order entry waits for the outbox worker.
	var entries []models.OutboxEntry
	assert.NoError(t, db.Find(&entries).Error)
	assert.Len(t, entries, 1)
	assert.Equal(t, models.OutboxCreateOrder, entries[0].Kind)
	assert.Equal(t, models.OutboxStatusPending, entries[0].Status)
	assert.Equal(t, detail.ID, entries[0].OrderID)
}

func TestCreateOrderRejectsSecondOpenOrderOnTable(t *testing.T) {
	db, queue := newTestStore(t)
	seedCatalog(t, db)
	orders := newOrderService(t, db, queue)

	req := &CreateOrderRequest{
		TableID:      "table-1",
		RestaurantID: "rest-1",
		Items:        []OrderItemRequest{{MenuItemID: "item-1", Quantity: 1}},
	}
	_, err := orders.Create(req)
	assert.NoError(t, err)

	_, err = orders.Create(req)
	assert.ErrorIs(t, err, ErrOpenOrderExists)

	// A different table is fine.
	req.TableID = "table-2"
	_, err = orders.Create(req)
	assert.NoError(t, err)
}

func TestCreateOrderRecomputesDashboard(t *testing.T) {
	db, queue := newTestStore(t)
	seedCatalog(t, db)
	orders := newOrderService(t, db, queue)

	detail, err := orders.Create(&CreateOrderRequest{
		TableID:      "table-1",
		RestaurantID: "rest-1",
		Items:        []OrderItemRequest{{MenuItemID: "item-1", Quantity: 1}},
	})
	assert.NoError(t, err)

	var row models.DashboardTable
	assert.NoError(t, db.First(&row, "id = ?", "table-1").Error)
	assert.Equal(t, models.TableStatusOccupied, row.Status)
	assert.True(t, row.IsOccupied)
	assert.Equal(t, detail.Total, row.Amount)
	assert.Equal(t, models.DashboardSourceLocal, row.Source)

	var vacant models.DashboardTable
	assert.NoError(t, db.First(&vacant, "id = ?", "table-2").Error)
	assert.Equal(t, models.TableStatusVacant, vacant.Status)
	assert.Equal(t, 0.0, vacant.Amount)
}

func TestUpdateOrderPreservesItemProgress(t *testing.T) {
	db, queue := newTestStore(t)
	seedCatalog(t, db)
	orders := newOrderService(t, db, queue)

	detail, err := orders.Create(&CreateOrderRequest{
		TableID:      "table-1",
		RestaurantID: "rest-1",
		Items:        []OrderItemRequest{{MenuItemID: "item-1", Quantity: 2}},
	})
	assert.NoError(t, err)

	_, err = orders.UpdateItemStatus(detail.ID, "item-1", &ItemStatusRequest{Action: ItemActionServed})
	assert.NoError(t, err)

	subtotal := 3*250.0 + 350.0
	updated, err := orders.Update(detail.ID, &UpdateOrderRequest{
		Items: []OrderItemRequest{
			{MenuItemID: "item-1", Quantity: 3},
			{MenuItemID: "item-2", Quantity: 1},
		},
		Subtotal: &subtotal,
	})
	assert.NoError(t, err)
	assert.Len(t, updated.Items, 2)
	assert.Equal(t, subtotal, updated.Subtotal)

	for _, item := range updated.Items {
		if item.MenuItemID == "item-1" {
			assert.Equal(t, 3, item.Quantity)
			// Served progress survives the quantity change.
			assert.Equal(t, 1, item.QuantityServed)
			// OriginalQuantity stays what the order opened with.
			assert.Equal(t, 2, item.OriginalQuantity)
		}
	}
}

func TestUpdateItemStatusCapsEachCounterIndividually(t *testing.T) {
	db, queue := newTestStore(t)
	seedCatalog(t, db)
	orders := newOrderService(t, db, queue)

	detail, err := orders.Create(&CreateOrderRequest{
		TableID:      "table-1",
		RestaurantID: "rest-1",
		Items:        []OrderItemRequest{{MenuItemID: "item-1", Quantity: 2}},
	})
	assert.NoError(t, err)

	// Over-serving clamps to quantity.
	updated, err := orders.UpdateItemStatus(detail.ID, "item-1",
		&ItemStatusRequest{Action: ItemActionServed, Delta: 5})
	assert.NoError(t, err)
	assert.Equal(t, 2, updated.Items[0].QuantityServed)

	// Each counter has its own cap; served+cancelled may exceed quantity.
	updated, err = orders.UpdateItemStatus(detail.ID, "item-1",
		&ItemStatusRequest{Action: ItemActionCancelled, Delta: 1})
	assert.NoError(t, err)
	assert.Equal(t, 2, updated.Items[0].QuantityServed)
	assert.Equal(t, 1, updated.Items[0].QuantityCancelled)
	assert.Greater(t,
		updated.Items[0].QuantityServed+updated.Items[0].QuantityCancelled,
		updated.Items[0].Quantity)
}

func TestUpdateItemStatusDefaultsDeltaToOne(t *testing.T) {
	db, queue := newTestStore(t)
	seedCatalog(t, db)
	orders := newOrderService(t, db, queue)

	detail, err := orders.Create(&CreateOrderRequest{
		TableID:      "table-1",
		RestaurantID: "rest-1",
		Items:        []OrderItemRequest{{MenuItemID: "item-1", Quantity: 2}},
	})
	assert.NoError(t, err)

	updated, err := orders.UpdateItemStatus(detail.ID, "item-1",
		&ItemStatusRequest{Action: ItemActionServed})
	assert.NoError(t, err)
	assert.Equal(t, 1, updated.Items[0].QuantityServed)

	_, err = orders.UpdateItemStatus(detail.ID, "item-1",
		&ItemStatusRequest{Action: "garnished"})
	assert.Error(t, err)
}

func TestCloseOrderFreesTableAndEnqueuesBill(t *testing.T) {
	db, queue := newTestStore(t)
	seedCatalog(t, db)
	orders := newOrderService(t, db, queue)

	detail, err := orders.Create(&CreateOrderRequest{
		TableID:      "table-1",
		RestaurantID: "rest-1",
		Items:        []OrderItemRequest{{MenuItemID: "item-1", Quantity: 1}},
	})
	assert.NoError(t, err)

	amount := detail.Total
	closed, err := orders.Close(detail.ID, &CloseBillRequest{
		PaymentAmount: &amount,
		PaymentMethod: "cash",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusClosed, closed.Status)
	assert.NotNil(t, closed.ClosedAt)
	assert.False(t, closed.IsSynced)

	// Closing lifts the one-open-order restriction on the table.
	_, err = orders.Create(&CreateOrderRequest{
		TableID:      "table-1",
		RestaurantID: "rest-1",
		Items:        []OrderItemRequest{{MenuItemID: "item-2", Quantity: 1}},
	})
	assert.NoError(t, err)

	// And the dashboard sees the table occupied by the new order only.
	var row models.DashboardTable
	assert.NoError(t, db.First(&row, "id = ?", "table-1").Error)
	assert.Equal(t, models.TableStatusOccupied, row.Status)
	assert.Equal(t, 367.5, row.Amount) // 350 + 5% GST

	var entry models.OutboxEntry
	assert.NoError(t, db.Where("kind = ?", models.OutboxCloseBill).First(&entry).Error)
	assert.Equal(t, detail.ID, entry.OrderID)
	assert.Contains(t, entry.Payload, "cash")
}

func TestGetByTableReturnsMostRecentOpenOrder(t *testing.T) {
	db, queue := newTestStore(t)
	seedCatalog(t, db)
	orders := newOrderService(t, db, queue)

	none, err := orders.GetByTable("table-1")
	assert.NoError(t, err)
	assert.Nil(t, none)

	detail, err := orders.Create(&CreateOrderRequest{
		TableID:      "table-1",
		RestaurantID: "rest-1",
		Items:        []OrderItemRequest{{MenuItemID: "item-1", Quantity: 1}},
	})
	assert.NoError(t, err)

	found, err := orders.GetByTable("table-1")
	assert.NoError(t, err)
	assert.NotNil(t, found)
	assert.Equal(t, detail.ID, found.ID)

	_, err = orders.Close(detail.ID, &CloseBillRequest{})
	assert.NoError(t, err)

	none, err = orders.GetByTable("table-1")
	assert.NoError(t, err)
	assert.Nil(t, none)
}
