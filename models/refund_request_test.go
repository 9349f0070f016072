package models

import "testing"

func TestCanTransitionRefund(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"pending approved", RefundStatusPending, RefundStatusApproved, true},
		{"pending denied", RefundStatusPending, RefundStatusDenied, true},
		{"pending cannot skip to processed", RefundStatusPending, RefundStatusProcessed, false},
		{"approved processed", RefundStatusApproved, RefundStatusProcessed, true},
		{"approved failed", RefundStatusApproved, RefundStatusFailed, true},
		{"approved cannot go back", RefundStatusApproved, RefundStatusPending, false},
		{"processed completed", RefundStatusProcessed, RefundStatusCompleted, true},
		{"processed cannot fail", RefundStatusProcessed, RefundStatusFailed, false},
		{"denied is terminal", RefundStatusDenied, RefundStatusApproved, false},
		{"failed is terminal", RefundStatusFailed, RefundStatusProcessed, false},
		{"completed is terminal", RefundStatusCompleted, RefundStatusProcessed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransitionRefund(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransitionRefund(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIsValidRefundReason(t *testing.T) {
	valid := []string{
		RefundReasonNotDelivered,
		RefundReasonUnsatisfactory,
		RefundReasonDuplicate,
		RefundReasonChangedMind,
		RefundReasonOther,
	}
	for _, r := range valid {
		if !IsValidRefundReason(r) {
			t.Errorf("IsValidRefundReason(%q) = false, want true", r)
		}
	}

	invalid := []string{"", "fraud", "Other", "service not delivered"}
	for _, r := range invalid {
		if IsValidRefundReason(r) {
			t.Errorf("IsValidRefundReason(%q) = true, want false", r)
		}
	}
}
