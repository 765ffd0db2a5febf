package router

import (
	"database/sql"
	"time"

	"barpos_backend/internal/handlers"
	"barpos_backend/internal/middleware"
	"barpos_backend/internal/repositories"
	"barpos_backend/internal/services"
	"barpos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Setup wires repositories, services, and handlers onto the gin engine.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Initialize Repositories
	userRepo := repositories.NewUserRepository(db)
	catalogRepo := repositories.NewCatalogRepository(db)
	tabRepo := repositories.NewTabRepository(db)
	reportRepo := repositories.NewReportRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)
	clockRepo := repositories.NewTimeClockRepository(db)

	// Initialize Services
	var notifier services.AnalyticsNotifier = services.NewNopAnalyticsNotifier()
	if endpoint := utils.Getenv("ANALYTICS_ENDPOINT", ""); endpoint != "" {
		notifier = services.NewHTTPAnalyticsNotifier(endpoint, 10*time.Second)
	}

	authService := services.NewAuthService(userRepo, db)
	settingsService := services.NewSettingsService(settingsRepo, db)
	catalogService := services.NewCatalogService(catalogRepo, db)
	tabService := services.NewTabService(tabRepo, catalogRepo, settingsService, db)
	zReportService := services.NewZReportService(reportRepo, notifier, db)
	clockService := services.NewTimeClockService(clockRepo, db)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	tabHandler := handlers.NewTabHandler(tabService)
	reportHandler := handlers.NewReportHandler(zReportService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	clockHandler := handlers.NewTimeClockHandler(clockService)

	apiV1 := engine.Group("/api/v1")

	// Public routes: login and token refresh only.
	authRoutes := apiV1.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh-token", authHandler.Refresh)
	}

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupCatalogRoutes(authenticated, catalogHandler)
		SetupTabRoutes(authenticated, tabHandler)
		SetupReportRoutes(authenticated, reportHandler)
		SetupSettingsRoutes(authenticated, settingsHandler)
		SetupStaffRoutes(authenticated, authHandler)
		SetupTimeClockRoutes(authenticated, clockHandler)
	}
}
