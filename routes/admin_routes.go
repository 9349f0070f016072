package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yourspellcaster/spellcaster_backend/controllers"
	"github.com/yourspellcaster/spellcaster_backend/middleware"
	"github.com/yourspellcaster/spellcaster_backend/services"
	"github.com/yourspellcaster/spellcaster_backend/websocket"
)

// RegisterAdminRoutes sets up all admin-only routes
func RegisterAdminRoutes(e *echo.Echo, db *mongo.Database, stripeService *services.StripeService, hub *websocket.Hub) {
	userController := controllers.NewUserController(db)
	requestController := controllers.NewServiceRequestController(db, hub)
	quoteController := controllers.NewQuoteController(db, hub)
	refundController := controllers.NewRefundController(db, stripeService, hub)
	templateController := controllers.NewTemplateController(db, hub)
	insightController := controllers.NewInsightController(db)
	inviteController := controllers.NewInviteController(db)
	dashboardController := controllers.NewDashboardController(db)

	admin := e.Group("/api/admin")
	admin.Use(middleware.JWTMiddleware())
	admin.Use(middleware.RequireAdmin())

	// User management
	admin.GET("/users", userController.GetAllUsers)
	admin.GET("/users/:id", userController.GetUser)
	admin.PUT("/users/:id/role", userController.UpdateUserRole)
	admin.DELETE("/users/:id", userController.DeactivateUser)

	// Service request queue
	admin.GET("/requests", requestController.GetAdminRequests)
	admin.GET("/requests/:id", requestController.GetRequest)
	admin.PUT("/requests/:id", requestController.UpdateRequest)
	admin.GET("/requests/:id/audit", requestController.GetRequestAudit)
	admin.POST("/requests/:id/ritual-photos", requestController.UploadRitualPhoto)

	// Price quotes
	admin.POST("/quotes", quoteController.CreateQuote)

	// Refund workflow
	admin.PUT("/refund-requests/:id", refundController.ReviewRefundRequest)
	admin.POST("/refund-requests/:id/process", refundController.ProcessRefund)

	// Request templates
	admin.POST("/templates", templateController.CreateTemplate)
	admin.PUT("/templates/:id", templateController.UpdateTemplate)
	admin.DELETE("/templates/:id", templateController.DeleteTemplate)

	// Insights CMS
	admin.POST("/insights", insightController.CreateInsight)
	admin.GET("/insights", insightController.GetInsights)
	admin.PUT("/insights/:id", insightController.UpdateInsight)
	admin.DELETE("/insights/:id", insightController.DeleteInsight)
	admin.POST("/insights/:id/activate", insightController.SetActiveInsight)

	// Admin invites
	admin.POST("/invites", inviteController.CreateInvite)
	admin.GET("/invites", inviteController.GetInvites)
	admin.DELETE("/invites/:token", inviteController.RevokeInvite)

	// Dashboard
	admin.GET("/dashboard", dashboardController.GetStats)
}
