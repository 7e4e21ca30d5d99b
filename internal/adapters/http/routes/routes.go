package routes

import (
	"vipclub-backend/internal/adapters/http/handlers"
	"vipclub-backend/internal/adapters/http/middleware"
	"vipclub-backend/internal/adapters/persistence/repositories"
	"vipclub-backend/internal/config"
	"vipclub-backend/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	otpRepo := repositories.NewOTPRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	vipPackageRepo := repositories.NewVipPackageRepository(db)

	// Initialize services
	otpService := services.NewOTPService(otpRepo)
	authService := services.NewAuthService(userRepo, otpService, cfg)
	userService := services.NewUserService(userRepo, vipPackageRepo)
	transactionService := services.NewTransactionService(transactionRepo, userRepo)
	vipService := services.NewVipService(userRepo, vipPackageRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, userService)
	otpHandler := handlers.NewOTPHandler(otpService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	vipHandler := handlers.NewVipHandler(vipService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	transactionRoutes := api.Group("/transactions")
	transactionRoutes.Use(middleware.AuthMiddleware(cfg))
	setupTransactionRoutes(transactionRoutes, transactionHandler)

	vipRoutes := api.Group("/vip")
	vipRoutes.Use(middleware.AuthMiddleware(cfg))
	setupVipRoutes(vipRoutes, vipHandler)

	// OTP management (Admin only)
	otpRoutes := api.Group("/otp")
	otpRoutes.Use(middleware.AuthMiddleware(cfg))
	otpRoutes.Use(middleware.AdminOnly())
	setupOTPRoutes(otpRoutes, otpHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes, rate limited per IP
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/forgot-password", middleware.AuthRateLimiter(), handler.ForgotPassword)
	router.Post("/reset-password", middleware.AuthRateLimiter(), handler.ResetPassword)

	// Protected routes
	router.Post("/logout", middleware.AuthMiddleware(cfg), handler.Logout)
	router.Get("/profile", middleware.AuthMiddleware(cfg), handler.GetProfile)

	// Admin routes
	router.Get("/users", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), handler.GetAllUsers)
	router.Get("/users/search", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), handler.SearchUsers)
}

// setupTransactionRoutes configures wallet transaction routes
func setupTransactionRoutes(router fiber.Router, handler *handlers.TransactionHandler) {
	router.Post("/deposit", handler.Deposit)
	router.Post("/withdraw", handler.Withdraw)
	router.Get("/my-transactions", handler.MyTransactions)

	// Admin routes
	router.Get("/", middleware.AdminOnly(), handler.ListAll)
	router.Put("/:id", middleware.AdminOnly(), handler.UpdateStatus)
}

// setupVipRoutes configures VIP subscription routes
func setupVipRoutes(router fiber.Router, handler *handlers.VipHandler) {
	router.Get("/packages", handler.ListPackages)
	router.Post("/purchase", handler.Purchase)
	router.Get("/status", handler.GetStatus)

	// Admin routes
	admin := router.Group("/admin", middleware.AdminOnly())
	admin.Get("/users", handler.ListVipUsers)
	admin.Get("/users/:userId/status", handler.GetUserStatus)
	admin.Delete("/users/:userId", handler.Cancel)
	admin.Post("/grant", handler.Grant)
}

// setupOTPRoutes configures admin OTP management routes
func setupOTPRoutes(router fiber.Router, handler *handlers.OTPHandler) {
	router.Get("/", handler.GetCurrent)
	router.Post("/", handler.Create)
	router.Delete("/:type", handler.Deactivate)
}
