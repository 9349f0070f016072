package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v76"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yourspellcaster/spellcaster_backend/config"
	"github.com/yourspellcaster/spellcaster_backend/middleware"
	"github.com/yourspellcaster/spellcaster_backend/models"
	"github.com/yourspellcaster/spellcaster_backend/repositories"
	"github.com/yourspellcaster/spellcaster_backend/services"
)

// Stripe retries webhooks; remember delivered event IDs for a day
const webhookDedupeTTL = 24 * time.Hour

// PaymentController handles payment intents and the Stripe webhook
type PaymentController struct {
	requests *repositories.ServiceRequestRepository
	refunds  *repositories.RefundRepository
	stripe   *services.StripeService
}

// NewPaymentController creates a new payment controller
func NewPaymentController(db *mongo.Database, stripe *services.StripeService) *PaymentController {
	return &PaymentController{
		requests: repositories.NewServiceRequestRepository(db),
		refunds:  repositories.NewRefundRepository(db),
		stripe:   stripe,
	}
}

// CreatePaymentIntent creates a Stripe payment intent for a service purchase
func (c *PaymentController) CreatePaymentIntent(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)

	var req models.CreateIntentRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}
	if err := ctx.Validate(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Service and a positive amount are required",
		})
	}

	metadata := map[string]string{
		"userId":      claims.UserID,
		"serviceId":   req.ServiceID,
		"serviceName": req.ServiceName,
	}
	for key, value := range req.Metadata {
		metadata[key] = value
	}

	result, err := c.stripe.CreatePaymentIntent(
		services.ConvertToStripeAmount(req.Amount),
		"usd",
		req.Description,
		metadata,
	)
	if err != nil {
		ctx.Logger().Errorf("Failed to create payment intent: %v", err)
		return ctx.JSON(http.StatusBadGateway, models.Response{
			Status:  http.StatusBadGateway,
			Message: "Failed to create payment intent",
		})
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payment intent created successfully",
		Data:    result,
	})
}

// HandleWebhook receives Stripe events. The signature is verified against the
// raw body; unverified payloads are rejected with 401. Events are acknowledged
// with 200 even when unhandled so Stripe stops retrying.
func (c *PaymentController) HandleWebhook(ctx echo.Context) error {
	payload, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Failed to read request body",
		})
	}

	event, err := c.stripe.VerifyWebhookSignature(payload, ctx.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		ctx.Logger().Warnf("Webhook signature verification failed: %v", err)
		return ctx.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid webhook signature",
		})
	}

	if c.alreadyDelivered(event.ID) {
		return ctx.JSON(http.StatusOK, map[string]bool{"received": true})
	}

	switch event.Type {
	case "payment_intent.succeeded":
		err = c.handlePaymentSucceeded(event)
	case "payment_intent.payment_failed":
		err = c.handlePaymentFailed(event)
	case "charge.refunded":
		err = c.handleChargeRefunded(event)
	default:
		ctx.Logger().Infof("Ignoring webhook event type %s", event.Type)
	}
	if err != nil {
		// Non-2xx makes Stripe redeliver the event later
		ctx.Logger().Errorf("Failed to handle webhook event %s (%s): %v", event.ID, event.Type, err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process event",
		})
	}

	return ctx.JSON(http.StatusOK, map[string]bool{"received": true})
}

// alreadyDelivered marks the event ID in Redis and reports whether it was
// seen before. Without Redis every delivery is treated as first.
func (c *PaymentController) alreadyDelivered(eventID string) bool {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return false
	}

	redisCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	fresh, err := rdb.SetNX(redisCtx, "webhook:event:"+eventID, 1, webhookDedupeTTL).Result()
	if err != nil {
		return false
	}
	return !fresh
}

func (c *PaymentController) handlePaymentSucceeded(event *stripe.Event) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return fmt.Errorf("failed to parse payment intent: %w", err)
	}

	amount := services.FormatPaymentAmount(intent.Amount)

	// Link by metadata when the intent was created before the request,
	// otherwise stamp the request that already carries the intent ID
	if requestID := intent.Metadata["serviceRequestId"]; requestID != "" {
		id, err := primitive.ObjectIDFromHex(requestID)
		if err == nil {
			return c.requests.AttachPaymentByID(id, intent.ID, amount)
		}
	}
	return c.requests.AttachPayment(intent.ID, amount)
}

func (c *PaymentController) handlePaymentFailed(event *stripe.Event) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return fmt.Errorf("failed to parse payment intent: %w", err)
	}

	reason := "Payment failed"
	if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
		reason = "Payment failed: " + intent.LastPaymentError.Msg
	}
	return c.requests.AppendPaymentFailureNote(intent.ID, reason)
}

func (c *PaymentController) handleChargeRefunded(event *stripe.Event) error {
	var charge stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
		return fmt.Errorf("failed to parse charge: %w", err)
	}
	if charge.PaymentIntent == nil {
		return nil
	}
	return c.refunds.MarkCompletedByIntent(charge.PaymentIntent.ID)
}
