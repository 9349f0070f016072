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

// RefundController handles the refund workflow: users open requests, admins
// review them, approved requests are processed through Stripe.
type RefundController struct {
	refunds *repositories.RefundRepository
	audit   *repositories.AuditRepository
	stripe  *services.StripeService
	hub     *websocket.Hub
}

// NewRefundController creates a new refund controller
func NewRefundController(db *mongo.Database, stripe *services.StripeService, hub *websocket.Hub) *RefundController {
	return &RefundController{
		refunds: repositories.NewRefundRepository(db),
		audit:   repositories.NewAuditRepository(db),
		stripe:  stripe,
		hub:     hub,
	}
}

// CreateRefundRequest opens a refund request for the authenticated user
func (c *RefundController) CreateRefundRequest(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return ctx.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var req models.CreateRefundRequestRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}
	if err := ctx.Validate(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Payment, service details, amount and reason are required",
		})
	}
	if !models.IsValidRefundReason(req.Reason) {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid refund reason: " + req.Reason,
		})
	}
	if len(req.UserMessage) > models.MaxRefundMessageLength {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Message is too long",
		})
	}

	refund, err := c.refunds.Create(userID, &req)
	if err != nil {
		ctx.Logger().Errorf("Failed to create refund request: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create refund request",
		})
	}

	c.hub.BroadcastToAdmins(websocket.Notification{
		Type:    websocket.NotificationTypeRefundRequested,
		Message: "New refund request for " + refund.ServiceName,
		Data:    refund,
	})

	return ctx.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Refund request submitted successfully",
		Data:    refund,
	})
}

// GetRefundRequests lists refund requests. Admins see all (optionally
// filtered by status); users see their own.
func (c *RefundController) GetRefundRequests(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)

	var (
		refunds []models.RefundRequest
		err     error
	)
	if claims.UserType == models.RoleAdmin {
		refunds, err = c.refunds.GetAdminRefunds(ctx.QueryParam("status"))
	} else {
		var userID primitive.ObjectID
		userID, err = primitive.ObjectIDFromHex(claims.UserID)
		if err == nil {
			refunds, err = c.refunds.GetUserRefunds(userID)
		}
	}
	if err != nil {
		ctx.Logger().Errorf("Failed to list refund requests: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve refund requests",
		})
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Refund requests retrieved successfully",
		Data:    refunds,
	})
}

// ReviewRefundRequest approves or denies a pending request (admin)
func (c *RefundController) ReviewRefundRequest(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)
	adminID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return ctx.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	id, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid refund request ID",
		})
	}

	var req models.ReviewRefundRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}

	existing, err := c.refunds.GetByID(id)
	if err != nil {
		return ctx.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Refund request not found",
		})
	}
	if msg := validateReviewRefund(&req, existing.Amount); msg != "" {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: msg,
		})
	}

	refund, err := c.refunds.Review(id, adminID, &req)
	if err != nil {
		return c.refundMutationError(ctx, err)
	}

	c.audit.Log(adminID, claims.Email, models.AuditActionRefundReview, "refund_request", id.Hex(), req.Status)

	c.hub.SendToUser(refund.UserID, websocket.Notification{
		Type:    websocket.NotificationTypeRefundUpdated,
		Message: "Your refund request was " + refund.Status,
		Data:    refund,
	})

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Refund request " + refund.Status,
		Data:    refund,
	})
}

// validateReviewRefund checks the review body against the original payment.
// Returns a non-empty rejection message when the body is invalid; the amount
// bound is enforced here so an oversized review never reaches the provider.
func validateReviewRefund(req *models.ReviewRefundRequest, originalAmount float64) string {
	if req.Status != models.RefundStatusApproved && req.Status != models.RefundStatusDenied {
		return "Status must be approved or denied"
	}
	if req.RefundAmount != nil {
		if *req.RefundAmount <= 0 {
			return "Refund amount must be positive"
		}
		if *req.RefundAmount > originalAmount {
			return "Refund amount cannot exceed the original payment"
		}
	}
	return ""
}

// refundChargeAmount returns the amount sent to the provider: the reviewed
// amount when one was recorded, never more than the original payment.
func refundChargeAmount(original, reviewed float64) float64 {
	if reviewed > 0 && reviewed < original {
		return reviewed
	}
	return original
}

// ProcessRefund issues the Stripe refund for an approved request (admin).
// The request is claimed with a conditional update before the provider call
// so two concurrent process calls cannot both reach Stripe.
func (c *RefundController) ProcessRefund(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)
	adminID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return ctx.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	id, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid refund request ID",
		})
	}

	refund, err := c.refunds.ClaimForProcessing(id)
	if err != nil {
		switch err {
		case mongo.ErrNoDocuments:
			return ctx.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Refund request not found",
			})
		case repositories.ErrInvalidTransition:
			return ctx.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Refund request is not approved or is already being processed",
			})
		default:
			ctx.Logger().Errorf("Failed to claim refund request: %v", err)
			return ctx.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to process refund",
			})
		}
	}

	amountCents := services.ConvertToStripeAmount(refundChargeAmount(refund.Amount, refund.RefundedAmount))

	result, stripeErr := c.stripe.RefundPayment(refund.PaymentIntentID, &amountCents, "requested_by_customer")
	if stripeErr != nil {
		ctx.Logger().Errorf("Stripe refund failed for %s: %v", refund.PaymentIntentID, stripeErr)
		if _, failErr := c.refunds.MarkFailed(id, stripeErr.Error()); failErr != nil {
			ctx.Logger().Errorf("Failed to mark refund %s failed: %v", id.Hex(), failErr)
		}
		return ctx.JSON(http.StatusBadGateway, models.Response{
			Status:  http.StatusBadGateway,
			Message: "Payment provider refund failed",
		})
	}

	updated, err := c.refunds.MarkProcessed(id, result.RefundID, result.Amount)
	if err != nil {
		// The provider refund went through; surface the inconsistency loudly
		ctx.Logger().Errorf("Refund %s issued at provider (%s) but status update failed: %v", id.Hex(), result.RefundID, err)
		return c.refundMutationError(ctx, err)
	}

	c.audit.Log(adminID, claims.Email, models.AuditActionRefundProcess, "refund_request", id.Hex(), result.RefundID)

	c.hub.SendToUser(updated.UserID, websocket.Notification{
		Type:    websocket.NotificationTypeRefundUpdated,
		Message: "Your refund is being processed",
		Data:    updated,
	})

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Refund processed successfully",
		Data:    updated,
	})
}

func (c *RefundController) refundMutationError(ctx echo.Context, err error) error {
	switch err {
	case mongo.ErrNoDocuments:
		return ctx.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Refund request not found",
		})
	case repositories.ErrInvalidTransition:
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid refund status transition",
		})
	default:
		ctx.Logger().Errorf("Failed to update refund request: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update refund request",
		})
	}
}
