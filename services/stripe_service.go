package services

import (
	"fmt"
	"log"
	"math"
	"os"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/yourspellcaster/spellcaster_backend/models"
)

// StripeService handles interactions with the Stripe API
type StripeService struct {
	api           *client.API
	webhookSecret string
	appURL        string
}

// NewStripeService creates a new Stripe service instance
func NewStripeService() *StripeService {
	secretKey := os.Getenv("STRIPE_SECRET_KEY")
	webhookSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	appURL := os.Getenv("APP_URL")

	if secretKey == "" {
		log.Printf("WARNING: STRIPE_SECRET_KEY is missing; payment operations will fail")
	}
	if webhookSecret == "" {
		log.Printf("WARNING: STRIPE_WEBHOOK_SECRET is missing; webhook verification will fail")
	}

	api := &client.API{}
	api.Init(secretKey, nil)

	return &StripeService{
		api:           api,
		webhookSecret: webhookSecret,
		appURL:        appURL,
	}
}

// CreatePaymentIntent creates a payment intent and returns the client secret
// the frontend needs to complete checkout. Amounts are integer minor units.
func (s *StripeService) CreatePaymentIntent(amountCents int64, currency, description string, metadata map[string]string) (*models.PaymentIntentResult, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", amountCents)
	}
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if description != "" {
		params.Description = stripe.String(description)
	}
	for key, value := range metadata {
		params.AddMetadata(key, value)
	}
	params.SetIdempotencyKey(uuid.New().String())

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent error: %w", err)
	}

	return &models.PaymentIntentResult{
		ClientSecret:    pi.ClientSecret,
		PaymentIntentID: pi.ID,
	}, nil
}

// RefundPayment issues a refund against a payment intent. A nil amount
// refunds the full remaining balance.
func (s *StripeService) RefundPayment(paymentIntentID string, amountCents *int64, reason string) (*models.RefundResult, error) {
	if paymentIntentID == "" {
		return nil, fmt.Errorf("payment intent ID is required")
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	if amountCents != nil {
		if *amountCents <= 0 {
			return nil, fmt.Errorf("refund amount must be positive, got %d", *amountCents)
		}
		params.Amount = stripe.Int64(*amountCents)
	}
	if reason != "" {
		params.Reason = stripe.String(reason)
	}
	params.SetIdempotencyKey(uuid.New().String())

	r, err := s.api.Refunds.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe refund error: %w", err)
	}

	return &models.RefundResult{
		RefundID: r.ID,
		Amount:   FormatPaymentAmount(r.Amount),
		Currency: string(r.Currency),
		Status:   string(r.Status),
	}, nil
}

// VerifyWebhookSignature verifies the Stripe-Signature header and parses the
// event. An error means the payload must be rejected with 401, not treated as
// an absent event.
func (s *StripeService) VerifyWebhookSignature(payload []byte, sigHeader string) (*stripe.Event, error) {
	if s.webhookSecret == "" {
		return nil, fmt.Errorf("webhook secret is not configured")
	}

	event, err := webhook.ConstructEvent(payload, sigHeader, s.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	return &event, nil
}

// ConvertToStripeAmount converts a decimal amount to integer minor units.
// Round-trips exactly with FormatPaymentAmount for 2-decimal values.
func ConvertToStripeAmount(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FormatPaymentAmount converts integer minor units back to a decimal amount.
func FormatPaymentAmount(cents int64) float64 {
	return float64(cents) / 100
}
