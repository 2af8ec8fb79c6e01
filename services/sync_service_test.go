package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vikascool786/mezbaani-desktop/models"
)

func TestSyncRolesUpsertsAndIsIdempotent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/roles", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"roles": []map[string]string{
				{"id": "role-1", "roleName": "waiter"},
				{"id": "role-2", "roleName": "manager"},
			},
		})
	})
	remote := httptest.NewServer(mux)
	defer remote.Close()

	db, queue := newTestStore(t)
	seedSession(t, db)
	api := NewAPIClient(remote.URL)
	auth := NewAuthService(db, queue, api)
	sync := NewSyncService(db, queue, api, auth)

	result, err := sync.SyncRoles()
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Synced)

	// A second run upserts the same rows, never duplicates them.
	result, err = sync.SyncRoles()
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Synced)

	var count int64
	assert.NoError(t, db.Model(&models.Role{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestSyncRolesRequiresSession(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("remote must not be called without a session")
	}))
	defer remote.Close()

	db, queue := newTestStore(t)
	api := NewAPIClient(remote.URL)
	auth := NewAuthService(db, queue, api)
	sync := NewSyncService(db, queue, api, auth)

	_, err := sync.SyncRoles()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSyncRolesRejectsMalformedEnvelope(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/roles", func(w http.ResponseWriter, r *http.Request) {
		// Right shape, wrong key: no partial apply, explicit error.
		json.NewEncoder(w).Encode(map[string]interface{}{"data": []string{}})
	})
	remote := httptest.NewServer(mux)
	defer remote.Close()

	db, queue := newTestStore(t)
	seedSession(t, db)
	api := NewAPIClient(remote.URL)
	auth := NewAuthService(db, queue, api)
	sync := NewSyncService(db, queue, api, auth)

	_, err := sync.SyncRoles()
	assert.ErrorIs(t, err, ErrInvalidPayload)

	var count int64
	assert.NoError(t, db.Model(&models.Role{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestSyncMenuItemsSkipsUnknownCategoryThenPicksUpOnResync(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/menu-items", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []map[string]interface{}{
				{"id": "item-a", "name": "Dal", "price": 120, "categoryId": "cat-known"},
				{"id": "item-b", "name": "Naan", "price": 40, "categoryId": "cat-missing"},
			},
		})
	})
	mux.HandleFunc("/menu-categories", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"categories": []map[string]interface{}{
				{"id": "cat-known", "name": "Mains"},
				{"id": "cat-missing", "name": "Breads"},
			},
		})
	})
	remote := httptest.NewServer(mux)
	defer remote.Close()

	db, queue := newTestStore(t)
	seedSession(t, db)
	assert.NoError(t, db.Create(&models.MenuCategory{ID: "cat-known", Name: "Mains"}).Error)

	api := NewAPIClient(remote.URL)
	auth := NewAuthService(db, queue, api)
	sync := NewSyncService(db, queue, api, auth)

	// First pass: only the item with a known category lands.
	result, err := sync.SyncMenuItems()
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Synced)

	var count int64
	assert.NoError(t, db.Model(&models.MenuItem{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// Categories arrive, resync picks the skipped item up.
	_, err = sync.SyncMenuCategories()
	assert.NoError(t, err)
	result, err = sync.SyncMenuItems()
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Synced)

	assert.NoError(t, db.Model(&models.MenuItem{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestSyncOrdersPreservesLocalOutboxColumns(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{
				"id":          "order-1",
				"status":      "OPEN",
				"orderNumber": "A-100",
				"subtotal":    "250.00",
				"total":       "262.50",
				"tableId":     "table-1",
				"openedAt":    "2026-08-29T10:00:00Z",
			},
		})
	})
	remote := httptest.NewServer(mux)
	defer remote.Close()

	db, queue := newTestStore(t)
	seedSession(t, db)
	seedCatalog(t, db)

	// Locally known copy of the same order, unmirrored.
	local := models.Order{
		ID:        "order-1",
		Status:    models.OrderStatusOpen,
		TableID:   "table-1",
		OpenedAt:  "2026-08-29T10:00:00Z",
		IsSynced:  false,
		SyncError: "network down",
	}
	assert.NoError(t, db.Create(&local).Error)

	api := NewAPIClient(remote.URL)
	auth := NewAuthService(db, queue, api)
	sync := NewSyncService(db, queue, api, auth)

	result, err := sync.SyncOrders()
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Synced)

	var order models.Order
	assert.NoError(t, db.First(&order, "id = ?", "order-1").Error)
	// Remote fields applied, string-typed money included.
	assert.Equal(t, "A-100", order.OrderNumber)
	assert.Equal(t, 262.5, order.Total)
	// Local outbox bookkeeping untouched by the bulk sync.
	assert.False(t, order.IsSynced)
	assert.Equal(t, "network down", order.SyncError)
}

func TestSyncOrderByTableVacantIsNotAnError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orders/table/table-9", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	remote := httptest.NewServer(mux)
	defer remote.Close()

	db, queue := newTestStore(t)
	seedSession(t, db)
	api := NewAPIClient(remote.URL)
	auth := NewAuthService(db, queue, api)
	sync := NewSyncService(db, queue, api, auth)

	order, err := sync.SyncOrderByTable("table-9")
	assert.NoError(t, err)
	assert.Nil(t, order)
}

func TestSyncOrderByTableReplacesLocalItems(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orders/table/table-1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "order-1",
			"status":   "OPEN",
			"tableId":  "table-1",
			"subtotal": 250,
			"total":    262.5,
			"openedAt": "2026-08-29T10:00:00Z",
			"items": []map[string]interface{}{
				{"orderId": "order-1", "menuItemId": "item-1", "quantity": 2, "originalQuantity": 2},
			},
		})
	})
	remote := httptest.NewServer(mux)
	defer remote.Close()

	db, queue := newTestStore(t)
	seedSession(t, db)
	seedCatalog(t, db)

	// Local copy with served progress that was never mirrored.
	assert.NoError(t, db.Create(&models.Order{
		ID: "order-1", Status: models.OrderStatusOpen, TableID: "table-1",
		OpenedAt: "2026-08-29T10:00:00Z",
	}).Error)
	assert.NoError(t, db.Create(&models.OrderItem{
		OrderID: "order-1", MenuItemID: "item-1",
		Quantity: 2, OriginalQuantity: 2, QuantityServed: 1,
	}).Error)

	api := NewAPIClient(remote.URL)
	auth := NewAuthService(db, queue, api)
	sync := NewSyncService(db, queue, api, auth)

	order, err := sync.SyncOrderByTable("table-1")
	assert.NoError(t, err)
	assert.NotNil(t, order)
	assert.True(t, order.IsSynced)
	assert.Len(t, order.OrderItems, 1)
	// Remote-authoritative replace: the unmirrored served counter is gone.
	assert.Equal(t, 0, order.OrderItems[0].QuantityServed)
}

func TestBulkSyncFailsFastWhenFamilyAlreadyRunning(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/roles", func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		json.NewEncoder(w).Encode(map[string]interface{}{"roles": []map[string]string{}})
	})
	remote := httptest.NewServer(mux)
	defer remote.Close()

	db, queue := newTestStore(t)
	seedSession(t, db)
	api := NewAPIClient(remote.URL)
	auth := NewAuthService(db, queue, api)
	sync := NewSyncService(db, queue, api, auth)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = sync.SyncRoles()
	}()

	<-started
	result, err := sync.SyncRoles()
	assert.ErrorIs(t, err, ErrSyncInProgress)
	assert.False(t, result.Success)
	assert.Equal(t, "Sync already running", result.Message)

	close(release)
	<-done
}
