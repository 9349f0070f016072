package services

import (
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v76/webhook"
)

func TestConvertToStripeAmount(t *testing.T) {
	tests := []struct {
		amount float64
		want   int64
	}{
		{0, 0},
		{1, 100},
		{19.99, 1999},
		{0.01, 1},
		{0.1, 10},
		{149.95, 14995},
		{2.675, 268},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.amount), func(t *testing.T) {
			if got := ConvertToStripeAmount(tt.amount); got != tt.want {
				t.Errorf("ConvertToStripeAmount(%v) = %d, want %d", tt.amount, got, tt.want)
			}
		})
	}
}

func TestAmountRoundTrip(t *testing.T) {
	// Any 2-decimal amount must survive the cents conversion
	for _, amount := range []float64{0.01, 0.99, 1.10, 19.99, 100, 12345.67} {
		cents := ConvertToStripeAmount(amount)
		if got := FormatPaymentAmount(cents); got != amount {
			t.Errorf("round trip of %v through %d cents gave %v", amount, cents, got)
		}
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	const secret = "whsec_test_secret"
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_key")
	t.Setenv("STRIPE_WEBHOOK_SECRET", secret)

	svc := NewStripeService()
	payload := []byte(`{"id":"evt_test_1","object":"event","type":"charge.refunded","data":{"object":{}}}`)

	signedHeader := func(ts time.Time, body []byte, key string) string {
		sig := webhook.ComputeSignature(ts, body, key)
		return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(sig))
	}

	t.Run("valid signature", func(t *testing.T) {
		event, err := svc.VerifyWebhookSignature(payload, signedHeader(time.Now(), payload, secret))
		if err != nil {
			t.Fatalf("VerifyWebhookSignature returned error: %v", err)
		}
		if event.ID != "evt_test_1" {
			t.Errorf("event ID = %q, want evt_test_1", event.ID)
		}
		if string(event.Type) != "charge.refunded" {
			t.Errorf("event type = %q, want charge.refunded", event.Type)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		if _, err := svc.VerifyWebhookSignature(payload, signedHeader(time.Now(), payload, "whsec_other")); err == nil {
			t.Error("expected error for signature from a different secret")
		}
	})

	t.Run("tampered payload", func(t *testing.T) {
		header := signedHeader(time.Now(), payload, secret)
		tampered := []byte(`{"id":"evt_test_2","object":"event","type":"charge.refunded","data":{"object":{}}}`)
		if _, err := svc.VerifyWebhookSignature(tampered, header); err == nil {
			t.Error("expected error for tampered payload")
		}
	})

	t.Run("stale timestamp", func(t *testing.T) {
		old := time.Now().Add(-time.Hour)
		if _, err := svc.VerifyWebhookSignature(payload, signedHeader(old, payload, secret)); err == nil {
			t.Error("expected error for signature outside the tolerance window")
		}
	})

	t.Run("missing header", func(t *testing.T) {
		if _, err := svc.VerifyWebhookSignature(payload, ""); err == nil {
			t.Error("expected error for missing signature header")
		}
	})
}

func TestVerifyWebhookSignatureWithoutSecret(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_key")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "")

	svc := NewStripeService()
	if _, err := svc.VerifyWebhookSignature([]byte("{}"), "t=1,v1=abc"); err == nil {
		t.Error("expected error when webhook secret is not configured")
	}
}
