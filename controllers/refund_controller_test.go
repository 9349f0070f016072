package controllers

import (
	"testing"

	"github.com/yourspellcaster/spellcaster_backend/models"
)

func TestValidateReviewRefund(t *testing.T) {
	amount := func(v float64) *float64 { return &v }

	tests := []struct {
		name     string
		req      models.ReviewRefundRequest
		original float64
		wantOK   bool
	}{
		{"approve without amount", models.ReviewRefundRequest{Status: models.RefundStatusApproved}, 50, true},
		{"deny", models.ReviewRefundRequest{Status: models.RefundStatusDenied}, 50, true},
		{"partial amount", models.ReviewRefundRequest{Status: models.RefundStatusApproved, RefundAmount: amount(25)}, 50, true},
		{"full amount", models.ReviewRefundRequest{Status: models.RefundStatusApproved, RefundAmount: amount(50)}, 50, true},
		{"amount above original", models.ReviewRefundRequest{Status: models.RefundStatusApproved, RefundAmount: amount(50.01)}, 50, false},
		{"zero amount", models.ReviewRefundRequest{Status: models.RefundStatusApproved, RefundAmount: amount(0)}, 50, false},
		{"negative amount", models.ReviewRefundRequest{Status: models.RefundStatusApproved, RefundAmount: amount(-5)}, 50, false},
		{"status outside review set", models.ReviewRefundRequest{Status: models.RefundStatusProcessed}, 50, false},
		{"empty status", models.ReviewRefundRequest{}, 50, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := validateReviewRefund(&tt.req, tt.original)
			if (msg == "") != tt.wantOK {
				t.Errorf("validateReviewRefund() = %q, want ok=%v", msg, tt.wantOK)
			}
		})
	}
}

func TestRefundChargeAmount(t *testing.T) {
	tests := []struct {
		name     string
		original float64
		reviewed float64
		want     float64
	}{
		{"no reviewed amount", 50, 0, 50},
		{"partial reviewed amount", 50, 20, 20},
		{"reviewed equals original", 50, 50, 50},
		{"reviewed above original never passes through", 50, 75, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := refundChargeAmount(tt.original, tt.reviewed); got != tt.want {
				t.Errorf("refundChargeAmount(%v, %v) = %v, want %v", tt.original, tt.reviewed, got, tt.want)
			}
		})
	}
}
