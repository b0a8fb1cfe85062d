// Package server assembles the HTTP API: services, handlers and routes.
package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"centsible/internal/config"
	"centsible/internal/events"
	"centsible/internal/handlers"
	"centsible/internal/middleware"
	"centsible/internal/realtime"
	"centsible/internal/receipt"
	"centsible/internal/services"
	"centsible/internal/statement"
)

// Server is the assembled API.
type Server struct {
	Router *gin.Engine
	Hub    *realtime.Hub
}

// New wires services and handlers against db and registers every route.
// A nil publisher drops bill reminder events.
func New(cfg *config.Config, db *gorm.DB, publisher events.Publisher) *Server {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	// Services
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	incomeService := services.NewIncomeService(db)
	categoryService := services.NewCategoryService(db)
	transactionService := services.NewTransactionService(db)
	goalService := services.NewGoalService(db)
	billService := services.NewBillService(db)
	reminderService := services.NewReminderService(db, publisher)
	householdService := services.NewHouseholdService(db)
	summaryService := services.NewSummaryService(db, householdService, userService)
	snapshotService := services.NewHealthSnapshotService(db)
	billingService := services.NewBillingService(db, services.BillingConfig{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		PriceID:       cfg.StripePriceID,
		FrontendURL:   cfg.FrontendURL,
	})

	hub := realtime.NewHub(householdService)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	incomeHandler := handlers.NewIncomeHandler(incomeService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService,
		receipt.NewParser(statement.NewCategorizer()))
	goalHandler := handlers.NewGoalHandler(goalService, auditService)
	billHandler := handlers.NewBillHandler(billService, auditService)
	summaryHandler := handlers.NewSummaryHandler(summaryService, snapshotService)
	householdHandler := handlers.NewHouseholdHandler(householdService, auditService, hub)
	billingHandler := handlers.NewBillingHandler(billingService, auditService)
	pipelineHandler := handlers.NewPipelineHandler(snapshotService, reminderService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Stripe signs its own requests
	v1.POST("/webhooks/stripe", billingHandler.Webhook)

	// Pipeline routes are called by the worker, not by users
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(cfg.PipelineAPIKey))
	pipeline.POST("/snapshots", pipelineHandler.ComputeSnapshots)
	pipeline.POST("/reminders", pipelineHandler.SendReminders)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.POST("/auth/2fa/setup", authHandler.SetupTOTP)
	protected.POST("/auth/2fa/enable", authHandler.EnableTOTP)

	income := protected.Group("/income")
	income.Use(middleware.ChangeFeed(hub, "income"))
	income.POST("", incomeHandler.CreateIncome)
	income.GET("", incomeHandler.GetIncome)
	income.GET("/:id", incomeHandler.GetIncomeByID)
	income.PUT("/:id", incomeHandler.UpdateIncome)
	income.PATCH("/:id/toggle", incomeHandler.ToggleIncome)
	income.DELETE("/:id", incomeHandler.DeleteIncome)

	categories := protected.Group("/categories")
	categories.Use(middleware.ChangeFeed(hub, "category"))
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := protected.Group("/transactions")
	transactions.Use(middleware.ChangeFeed(hub, "transaction"))
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.POST("/import", transactionHandler.ImportStatement)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	protected.POST("/receipts/parse", transactionHandler.ParseReceipt)

	goals := protected.Group("/goals")
	goals.Use(middleware.ChangeFeed(hub, "goal"))
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetGoals)
	goals.GET("/:id", goalHandler.GetGoal)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)
	goals.POST("/:id/funds", goalHandler.AddFunds)
	goals.POST("/:id/move", goalHandler.MoveGoal)

	bills := protected.Group("/bills")
	bills.POST("", billHandler.CreateBill)
	bills.GET("", billHandler.GetBills)
	bills.GET("/upcoming", billHandler.GetUpcomingBills)
	bills.GET("/:id", billHandler.GetBill)
	bills.PUT("/:id", billHandler.UpdateBill)
	bills.DELETE("/:id", billHandler.DeleteBill)

	protected.GET("/summary", summaryHandler.GetSummary)
	protected.GET("/health/snapshots", summaryHandler.GetSnapshots)

	households := protected.Group("/households")
	households.POST("", householdHandler.CreateHousehold)
	households.GET("", householdHandler.GetHouseholds)
	households.GET("/:id", householdHandler.GetHousehold)
	households.GET("/:id/summary", summaryHandler.GetHouseholdSummary)
	households.POST("/:id/invitations", householdHandler.CreateInvitation)
	households.DELETE("/:id/members/:userId", householdHandler.RemoveMember)
	households.GET("/:id/ws", householdHandler.Live)

	protected.POST("/invitations/:token/accept", householdHandler.AcceptInvitation)

	billing := protected.Group("/billing")
	billing.POST("/checkout", billingHandler.CreateCheckout)
	billing.GET("/subscription", billingHandler.GetSubscription)

	return &Server{Router: router, Hub: hub}
}
