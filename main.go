package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/vikascool786/mezbaani-desktop/database"
	"github.com/vikascool786/mezbaani-desktop/router"
	"github.com/vikascool786/mezbaani-desktop/services"
	"github.com/vikascool786/mezbaani-desktop/utils"
)

func init() {
	// Packaged builds carry their config in the environment; a missing
	// .env is normal there.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}
	utils.InitLogger()
}

func main() {
	dbPath := os.Getenv("POS_DB_PATH")
	if dbPath == "" {
		dbPath = "mezbaani.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate database: %v", err)
	}

	queue := database.NewWriteQueue(db)
	defer queue.Close()

	api := services.GetAPIClient()
	network := services.NewNetworkService()
	auth := services.NewAuthService(db, queue, api)
	sync := services.NewSyncService(db, queue, api, auth)
	dashboard := services.NewDashboardService(db, queue, api, auth)
	outbox := services.NewOutboxWorker(db, queue, api, auth, network)
	orders := services.NewOrderService(db, queue, dashboard, outbox)

	outbox.Start()
	defer outbox.Stop()

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.SetupRouter(router.Deps{
		DB:        db,
		Auth:      auth,
		Sync:      sync,
		Dashboard: dashboard,
		Orders:    orders,
		Network:   network,
	})
	r.SetTrustedProxies([]string{"127.0.0.1"})

	// The renderer is the only client; bind to loopback.
	port := os.Getenv("PORT")
	if port == "" {
		port = "4350"
	}
	utils.InfoLogger.Printf("Listening on 127.0.0.1:%s", port)
	if err := r.Run("127.0.0.1:" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}
