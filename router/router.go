package router

import (
	"github.com/gin-gonic/gin"
	"github.com/vikascool786/mezbaani-desktop/controllers"
	"github.com/vikascool786/mezbaani-desktop/middlewares"
	"github.com/vikascool786/mezbaani-desktop/services"
	"gorm.io/gorm"
)

// Deps bundles everything the route handlers need. main builds it once;
// the integration tests build it against an in-memory store.
type Deps struct {
	DB        *gorm.DB
	Auth      *services.AuthService
	Sync      *services.SyncService
	Dashboard *services.DashboardService
	Orders    *services.OrderService
	Network   *services.NetworkService
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	authCtrl := controllers.NewAuthController(deps.Auth)
	syncCtrl := controllers.NewSyncController(deps.Sync, deps.Dashboard)
	orderCtrl := controllers.NewOrderController(deps.Orders)
	dashboardCtrl := controllers.NewDashboardController(deps.Dashboard)
	masterCtrl := controllers.NewMasterController(deps.DB)
	networkCtrl := controllers.NewNetworkController(deps.Network)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// ----------------------------------------------------------------
	//                      AUTH SESSION
	// ----------------------------------------------------------------
	auth := r.Group("/auth")
	{
		auth.POST("/login", authCtrl.Login)
		auth.GET("/session", authCtrl.GetSession)
		auth.POST("/logout", authCtrl.Logout)
	}

	// ----------------------------------------------------------------
	//                      SYNC (pull from remote)
	// ----------------------------------------------------------------
	sync := r.Group("/sync")
	{
		sync.POST("/roles", syncCtrl.SyncRoles)
		sync.POST("/restaurants", syncCtrl.SyncRestaurants)
		sync.POST("/tables/:restaurant_id", syncCtrl.SyncTables)
		sync.POST("/menu-categories", syncCtrl.SyncMenuCategories)
		sync.POST("/menu-items", syncCtrl.SyncMenuItems)
		sync.POST("/orders", syncCtrl.SyncOrders)
		sync.POST("/orders/table/:table_id", syncCtrl.SyncOrderByTable)
		sync.POST("/orders/:order_id", syncCtrl.SyncOrderByID)
		sync.POST("/dashboard-tables/:restaurant_id", syncCtrl.SyncDashboardTables)
	}

	// ----------------------------------------------------------------
	//                      DASHBOARD PROJECTION
	// ----------------------------------------------------------------
	dashboard := r.Group("/dashboard")
	{
		dashboard.GET("/tables/:restaurant_id", dashboardCtrl.GetDashboardTables)
		dashboard.POST("/recompute/:restaurant_id", dashboardCtrl.RecomputeDashboard)
	}

	// ----------------------------------------------------------------
	//                      LOCAL MASTER READS
	// ----------------------------------------------------------------
	r.GET("/roles", masterCtrl.GetAllRoles)
	r.GET("/restaurants", masterCtrl.GetAllRestaurants)
	r.GET("/tables/:restaurant_id", masterCtrl.GetTablesByRestaurant)
	r.GET("/menu-categories", masterCtrl.GetAllMenuCategories)
	r.GET("/menu-items", masterCtrl.GetAllMenuItems)

	// ----------------------------------------------------------------
	//                      ORDER LIFECYCLE
	// ----------------------------------------------------------------
	orders := r.Group("/orders")
	{
		orders.GET("", orderCtrl.GetAllOrders)
		orders.POST("", orderCtrl.CreateOrder)
		orders.GET("/table/:table_id", orderCtrl.GetOrderByTable)
		orders.GET("/:order_id", orderCtrl.GetOrderByID)
		orders.PUT("/:order_id", orderCtrl.UpdateOrder)
		orders.POST("/:order_id/close", orderCtrl.CloseOrder)
	}
	r.PUT("/order-items/status/:order_id/:menu_item_id", orderCtrl.UpdateItemStatus)

	// ----------------------------------------------------------------
	//                      MISC
	// ----------------------------------------------------------------
	r.GET("/network/status", networkCtrl.GetStatus)
	r.GET("/events/ws", controllers.EventsHandler)

	return r
}
