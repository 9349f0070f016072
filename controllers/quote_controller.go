package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yourspellcaster/spellcaster_backend/middleware"
	"github.com/yourspellcaster/spellcaster_backend/models"
	"github.com/yourspellcaster/spellcaster_backend/repositories"
	"github.com/yourspellcaster/spellcaster_backend/services"
	"github.com/yourspellcaster/spellcaster_backend/websocket"
)

// QuoteController handles price quote negotiation. Admins issue and edit
// quotes; users accept or reject them.
type QuoteController struct {
	quotes *repositories.PriceQuoteRepository
	users  *repositories.UserRepository
	audit  *repositories.AuditRepository
	email  *services.EmailService
	hub    *websocket.Hub
}

// NewQuoteController creates a new quote controller
func NewQuoteController(db *mongo.Database, hub *websocket.Hub) *QuoteController {
	return &QuoteController{
		quotes: repositories.NewPriceQuoteRepository(db),
		users:  repositories.NewUserRepository(db),
		audit:  repositories.NewAuditRepository(db),
		email:  services.NewEmailService(),
		hub:    hub,
	}
}

// CreateQuote issues a new quote to a user (admin)
func (c *QuoteController) CreateQuote(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)

	var req models.CreatePriceQuoteRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}
	if err := ctx.Validate(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "User, service and a positive price are required",
		})
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}
	serviceID, err := primitive.ObjectIDFromHex(req.ServiceID)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid service ID",
		})
	}

	recipient, err := c.users.FindByID(userID)
	if err != nil {
		return ctx.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	quote, err := c.quotes.Create(userID, serviceID, req.ServiceName, req.QuotedPrice, req.Notes, req.ValidDays)
	if err != nil {
		ctx.Logger().Errorf("Failed to create quote: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create quote",
		})
	}

	if adminID, idErr := primitive.ObjectIDFromHex(claims.UserID); idErr == nil {
		c.audit.Log(adminID, claims.Email, models.AuditActionQuoteCreate, "price_quote", quote.ID.Hex(), req.ServiceName)
	}

	// Notify over email and WebSocket; neither failure blocks the quote
	if err := c.email.SendQuoteEmail(recipient.Email, quote); err != nil {
		ctx.Logger().Warnf("Failed to send quote email to %s: %v", recipient.Email, err)
	}
	c.hub.SendToUser(userID, websocket.Notification{
		Type:    websocket.NotificationTypeQuoteCreated,
		Message: "You received a price quote for " + quote.ServiceName,
		Data:    quote,
	})

	return ctx.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Quote created successfully",
		Data:    quote,
	})
}

// GetQuotes lists quotes. Admins see all (optionally filtered by status);
// users see their own.
func (c *QuoteController) GetQuotes(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)

	var (
		quotes []models.PriceQuote
		err    error
	)
	if claims.UserType == models.RoleAdmin {
		quotes, err = c.quotes.GetAdminQuotes(ctx.QueryParam("status"))
	} else {
		var userID primitive.ObjectID
		userID, err = primitive.ObjectIDFromHex(claims.UserID)
		if err == nil {
			quotes, err = c.quotes.GetUserQuotes(userID)
		}
	}
	if err != nil {
		ctx.Logger().Errorf("Failed to list quotes: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve quotes",
		})
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Quotes retrieved successfully",
		Data:    quotes,
	})
}

// ActOnQuote dispatches accept, reject or update on a quote
func (c *QuoteController) ActOnQuote(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)

	quoteID, err := primitive.ObjectIDFromHex(ctx.Param("quoteId"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid quote ID",
		})
	}

	var req models.QuoteActionRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}

	switch req.Action {
	case models.QuoteActionAccept, models.QuoteActionReject:
		return c.respondToQuote(ctx, claims, quoteID, &req)
	case models.QuoteActionUpdate:
		if claims.UserType != models.RoleAdmin {
			return ctx.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Only admins can update quotes",
			})
		}
		return c.updateQuote(ctx, claims, quoteID, &req)
	default:
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Unknown action: " + req.Action,
		})
	}
}

func (c *QuoteController) respondToQuote(ctx echo.Context, claims *middleware.JwtCustomClaims, quoteID primitive.ObjectID, req *models.QuoteActionRequest) error {
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return ctx.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var quote *models.PriceQuote
	if req.Action == models.QuoteActionAccept {
		quote, err = c.quotes.Accept(quoteID, userID)
	} else {
		quote, err = c.quotes.Reject(quoteID, userID, req.RejectionReason)
	}
	if err != nil {
		return c.quoteMutationError(ctx, err)
	}

	c.hub.BroadcastToAdmins(websocket.Notification{
		Type:    websocket.NotificationTypeQuoteResponse,
		Message: "Quote for " + quote.ServiceName + " was " + quote.Status,
		Data:    quote,
	})

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Quote " + quote.Status,
		Data:    quote,
	})
}

func (c *QuoteController) updateQuote(ctx echo.Context, claims *middleware.JwtCustomClaims, quoteID primitive.ObjectID, req *models.QuoteActionRequest) error {
	if req.QuotedPrice != nil && *req.QuotedPrice <= 0 {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Quoted price must be positive",
		})
	}

	quote, err := c.quotes.Update(quoteID, req.QuotedPrice, req.Notes, req.ExtendValidityDays)
	if err != nil {
		return c.quoteMutationError(ctx, err)
	}

	if adminID, idErr := primitive.ObjectIDFromHex(claims.UserID); idErr == nil {
		c.audit.Log(adminID, claims.Email, models.AuditActionQuoteUpdate, "price_quote", quoteID.Hex(), "")
	}

	c.hub.SendToUser(quote.UserID, websocket.Notification{
		Type:    websocket.NotificationTypeQuoteCreated,
		Message: "Your quote for " + quote.ServiceName + " was updated",
		Data:    quote,
	})

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Quote updated successfully",
		Data:    quote,
	})
}

func (c *QuoteController) quoteMutationError(ctx echo.Context, err error) error {
	switch err {
	case mongo.ErrNoDocuments:
		return ctx.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Quote not found",
		})
	case repositories.ErrQuoteExpired:
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Quote has expired",
		})
	case repositories.ErrQuoteNotPending:
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Quote is no longer pending",
		})
	default:
		ctx.Logger().Errorf("Failed to update quote: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update quote",
		})
	}
}
