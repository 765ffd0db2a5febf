package router

import (
	"barpos_backend/internal/handlers"
	"barpos_backend/internal/middleware"
	"barpos_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// managerRoles are the roles allowed to edit the menu, change settings,
// manage staff, and run the shift close.
var managerRoles = []string{models.RoleManager, models.RoleAssistantManager, models.RoleAdmin}

// SetupCatalogRoutes sets up the menu and catalog routes. Reading the menu is
// open to all staff; edits are manager only.
func SetupCatalogRoutes(authenticatedGroup *gin.RouterGroup, catalogHandler *handlers.CatalogHandler) {
	menuRoutes := authenticatedGroup.Group("/menu")
	{
		menuRoutes.GET("", catalogHandler.GetMenu)
		menuRoutes.GET("/items", catalogHandler.GetItems)
		menuRoutes.GET("/items/:id", catalogHandler.GetItemByID)
	}

	adminRoutes := authenticatedGroup.Group("/menu")
	adminRoutes.Use(middleware.RoleAuthMiddleware(managerRoles...))
	{
		adminRoutes.POST("/groups", catalogHandler.CreateMenuGroup)
		adminRoutes.POST("/categories", catalogHandler.CreateCategory)
		adminRoutes.POST("/items", catalogHandler.CreateItem)
		adminRoutes.PUT("/items/:id", catalogHandler.UpdateItem)
		adminRoutes.DELETE("/items/:id", catalogHandler.DeactivateItem)
		adminRoutes.PATCH("/items/:id/stock", catalogHandler.RestockItem)
	}
}

// SetupTabRoutes sets up the tab lifecycle routes. All staff can run tabs.
func SetupTabRoutes(authenticatedGroup *gin.RouterGroup, tabHandler *handlers.TabHandler) {
	tabRoutes := authenticatedGroup.Group("/tabs")
	{
		tabRoutes.POST("", tabHandler.CreateTab)
		tabRoutes.GET("", tabHandler.GetTabs)
		tabRoutes.GET("/:id", tabHandler.GetTabDetail)
		tabRoutes.PATCH("/:id/name", tabHandler.RenameTab)
		tabRoutes.POST("/:id/items", tabHandler.AddItem)
		tabRoutes.DELETE("/:id/items/:lineId", tabHandler.RemoveLineItem)
		tabRoutes.PATCH("/:id/items/:lineId/note", tabHandler.UpdateLineItemNote)
		tabRoutes.POST("/:id/settle", tabHandler.SettleTab)
	}
}

// SetupReportRoutes sets up the z-report routes. Manager only.
func SetupReportRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	reportRoutes := authenticatedGroup.Group("/reports")
	reportRoutes.Use(middleware.RoleAuthMiddleware(managerRoles...))
	{
		reportRoutes.POST("/z-report", reportHandler.RunZReport)
		reportRoutes.GET("/drawer", reportHandler.PreviewDrawer)
		reportRoutes.GET("", reportHandler.GetReports)
		reportRoutes.GET("/:id", reportHandler.GetReportByID)
	}
}

// SetupSettingsRoutes sets up bar configuration routes. Reads are open to all
// staff so clients can render prices; writes are manager only.
func SetupSettingsRoutes(authenticatedGroup *gin.RouterGroup, settingsHandler *handlers.SettingsHandler) {
	settingsRoutes := authenticatedGroup.Group("/settings")
	{
		settingsRoutes.GET("", settingsHandler.GetSettings)
	}

	adminRoutes := authenticatedGroup.Group("/settings")
	adminRoutes.Use(middleware.RoleAuthMiddleware(managerRoles...))
	{
		adminRoutes.PUT("", settingsHandler.UpdateSettings)
	}
}

// SetupStaffRoutes sets up staff management routes. Manager only.
func SetupStaffRoutes(authenticatedGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	staffRoutes := authenticatedGroup.Group("/staff")
	staffRoutes.Use(middleware.RoleAuthMiddleware(managerRoles...))
	{
		staffRoutes.POST("", authHandler.RegisterStaff)
		staffRoutes.GET("", authHandler.GetStaff)
		staffRoutes.DELETE("/:id", authHandler.DeactivateStaff)
	}
}

// SetupTimeClockRoutes sets up time clock and tip routes.
func SetupTimeClockRoutes(authenticatedGroup *gin.RouterGroup, clockHandler *handlers.TimeClockHandler) {
	clockRoutes := authenticatedGroup.Group("/timeclock")
	{
		clockRoutes.POST("/punch", clockHandler.Punch)
		clockRoutes.GET("/:userId/punches", clockHandler.GetPunches)
		clockRoutes.POST("/tips", clockHandler.LogTip)
		clockRoutes.GET("/:userId/tips", clockHandler.GetTips)
		clockRoutes.GET("/:userId/tips/summary", clockHandler.GetTipSummary)
	}
}
