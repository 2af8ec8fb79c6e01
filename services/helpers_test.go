package services

import (
	"testing"

	"github.com/vikascool786/mezbaani-desktop/database"
	"github.com/vikascool786/mezbaani-desktop/models"
	"github.com/vikascool786/mezbaani-desktop/utils"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) (*gorm.DB, *database.WriteQueue) {
	t.Helper()
	utils.InitLogger()

	db, err := database.OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	queue := database.NewWriteQueue(db)
	t.Cleanup(queue.Close)
	return db, queue
}

// seedSession plants a logged-in session so services that read the token
// before touching the network can proceed.
func seedSession(t *testing.T, db *gorm.DB) {
	t.Helper()
	session := models.AuthSession{
		ID:           models.AuthSessionID,
		Token:        "test-token",
		UserID:       "user-1",
		Name:         "Test Waiter",
		Phone:        "8888888881",
		RoleName:     "waiter",
		RestaurantID: "rest-1",
		LoggedInAt:   utils.NowISO(),
	}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
}

// seedCatalog plants the master rows order tests lean on: one restaurant
// with GST enabled, two tables, one category, two priced menu items.
func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	restaurant := models.Restaurant{
		ID:                     "rest-1",
		Name:                   "Mezbaani",
		GstPercent:             5,
		ServiceChargePercent:   10,
		IsGstEnabled:           true,
		IsServiceChargeEnabled: false,
	}
	if err := db.Create(&restaurant).Error; err != nil {
		t.Fatalf("failed to seed restaurant: %v", err)
	}

	tables := []models.Table{
		{ID: "table-1", Name: "T1", Seats: 4, Section: "Main Hall", RestaurantID: "rest-1"},
		{ID: "table-2", Name: "T2", Seats: 2, Section: "Terrace", RestaurantID: "rest-1"},
	}
	if err := db.Create(&tables).Error; err != nil {
		t.Fatalf("failed to seed tables: %v", err)
	}

	categoryID := "cat-1"
	category := models.MenuCategory{ID: categoryID, Name: "Biryani", IsActive: true, RestaurantID: "rest-1"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	items := []models.MenuItem{
		{ID: "item-1", Name: "Chicken Biryani", Price: 250, IsAvailable: true, IsActive: true, RestaurantID: "rest-1", CategoryID: &categoryID},
		{ID: "item-2", Name: "Mutton Biryani", Price: 350, IsAvailable: true, IsActive: true, RestaurantID: "rest-1", CategoryID: &categoryID},
	}
	if err := db.Create(&items).Error; err != nil {
		t.Fatalf("failed to seed menu items: %v", err)
	}
}
