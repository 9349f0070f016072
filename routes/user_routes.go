package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yourspellcaster/spellcaster_backend/controllers"
	"github.com/yourspellcaster/spellcaster_backend/middleware"
	"github.com/yourspellcaster/spellcaster_backend/services"
	"github.com/yourspellcaster/spellcaster_backend/utils"
	"github.com/yourspellcaster/spellcaster_backend/websocket"
)

// RegisterUserRoutes sets up the public and user-facing routes
func RegisterUserRoutes(e *echo.Echo, client *mongo.Client, db *mongo.Database, stripeService *services.StripeService, hub *websocket.Hub) {
	authController := controllers.NewAuthController(db)
	userController := controllers.NewUserController(db)
	requestController := controllers.NewServiceRequestController(db, hub)
	quoteController := controllers.NewQuoteController(db, hub)
	refundController := controllers.NewRefundController(db, stripeService, hub)
	paymentController := controllers.NewPaymentController(db, stripeService)
	templateController := controllers.NewTemplateController(db, hub)
	insightController := controllers.NewInsightController(db)
	inviteController := controllers.NewInviteController(db)

	// Public routes
	e.POST("/api/auth/login", authController.Login)
	e.POST("/api/admin/invites/:token/accept", inviteController.AcceptInvite)
	e.GET("/api/insights/active", insightController.GetActiveInsight)

	// Stripe calls this; signature verification replaces auth
	e.POST("/api/payments/webhook", paymentController.HandleWebhook)

	// Authenticated routes
	api := e.Group("/api")
	api.Use(middleware.JWTMiddleware())
	api.Use(middleware.ActivityTracker(client))

	api.POST("/auth/logout", authController.Logout)
	api.GET("/users/profile", userController.GetProfile)

	api.POST("/requests", requestController.CreateRequest)
	api.GET("/requests", requestController.GetMyRequests)
	api.GET("/requests/:id", requestController.GetRequest)

	api.GET("/payments/quotes", quoteController.GetQuotes)
	api.PUT("/payments/quotes/:quoteId", quoteController.ActOnQuote)

	api.POST("/payments/create-intent", paymentController.CreatePaymentIntent)
	api.POST("/payments/refund-request", refundController.CreateRefundRequest)
	api.GET("/payments/refund-requests", refundController.GetRefundRequests)

	api.GET("/templates", templateController.GetTemplates)
	api.GET("/templates/:id", templateController.GetTemplate)
	api.POST("/templates/:id/apply", templateController.ApplyTemplate)

	// WebSocket endpoint; the JWT group already authenticated the caller
	api.GET("/ws", func(c echo.Context) error {
		user, err := utils.GetUserFromToken(c, client)
		if err != nil {
			return echo.NewHTTPError(echo.ErrUnauthorized.Code, "Please provide valid credentials")
		}
		return websocket.HandleWebSocket(c, hub, user)
	})
}
