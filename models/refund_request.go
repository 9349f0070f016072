package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Refund request statuses
const (
	RefundStatusPending   = "pending"
	RefundStatusApproved  = "approved"
	RefundStatusDenied    = "denied"
	RefundStatusProcessed = "processed"
	RefundStatusFailed    = "failed"
	RefundStatusCompleted = "completed"
)

// refundTransitions is the legal transition table. A Stripe refund is only
// issued from "approved"; "completed" is stamped by the charge.refunded webhook.
var refundTransitions = map[string][]string{
	RefundStatusPending:   {RefundStatusApproved, RefundStatusDenied},
	RefundStatusApproved:  {RefundStatusProcessed, RefundStatusFailed},
	RefundStatusProcessed: {RefundStatusCompleted},
	RefundStatusDenied:    {},
	RefundStatusFailed:    {},
	RefundStatusCompleted: {},
}

// CanTransitionRefund reports whether a refund request may move from one status to another.
func CanTransitionRefund(from, to string) bool {
	for _, next := range refundTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Refund reasons a user may select
const (
	RefundReasonNotDelivered   = "service_not_delivered"
	RefundReasonUnsatisfactory = "service_unsatisfactory"
	RefundReasonDuplicate      = "duplicate_payment"
	RefundReasonChangedMind    = "changed_mind"
	RefundReasonOther          = "other"
)

// MaxRefundMessageLength caps the user's free-text message.
const MaxRefundMessageLength = 500

// IsValidRefundReason reports whether r is one of the five accepted reasons.
func IsValidRefundReason(r string) bool {
	switch r {
	case RefundReasonNotDelivered, RefundReasonUnsatisfactory,
		RefundReasonDuplicate, RefundReasonChangedMind, RefundReasonOther:
		return true
	}
	return false
}

// RefundRequest model
type RefundRequest struct {
	ID              primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	UserID          primitive.ObjectID  `json:"userId" bson:"userId"`
	PaymentIntentID string              `json:"paymentIntentId" bson:"paymentIntentId"`
	Amount          float64             `json:"amount" bson:"amount"`
	ServiceName     string              `json:"serviceName" bson:"serviceName"`
	ServiceType     string              `json:"serviceType" bson:"serviceType"`
	Reason          string              `json:"reason" bson:"reason"`
	UserMessage     string              `json:"userMessage,omitempty" bson:"userMessage,omitempty"`
	Status          string              `json:"status" bson:"status"`
	AdminNotes      string              `json:"adminNotes,omitempty" bson:"adminNotes,omitempty"`
	AdminID         *primitive.ObjectID `json:"adminId,omitempty" bson:"adminId,omitempty"`
	RefundIntentID  string              `json:"refundIntentId,omitempty" bson:"refundIntentId,omitempty"`
	RefundedAmount  float64             `json:"refundedAmount,omitempty" bson:"refundedAmount,omitempty"`
	RefundMethod    string              `json:"refundMethod,omitempty" bson:"refundMethod,omitempty"`
	RequestedAt     time.Time           `json:"requestedAt" bson:"requestedAt"`
	// Stamped when a process call claims the request for the provider
	ProcessingStartedAt *time.Time `json:"processingStartedAt,omitempty" bson:"processingStartedAt,omitempty"`
	ReviewedAt      *time.Time          `json:"reviewedAt,omitempty" bson:"reviewedAt,omitempty"`
	ProcessedAt     *time.Time          `json:"processedAt,omitempty" bson:"processedAt,omitempty"`
	CompletedAt     *time.Time          `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// CreateRefundRequestRequest is the user body for opening a refund request
type CreateRefundRequestRequest struct {
	PaymentIntentID string  `json:"paymentIntentId" validate:"required"`
	Amount          float64 `json:"amount" validate:"required,gt=0"`
	ServiceName     string  `json:"serviceName" validate:"required"`
	ServiceType     string  `json:"serviceType" validate:"required"`
	Reason          string  `json:"reason" validate:"required"`
	UserMessage     string  `json:"userMessage,omitempty"`
}

// ReviewRefundRequest is the admin body for approving or denying a refund
type ReviewRefundRequest struct {
	Status       string   `json:"status" validate:"required"`
	AdminNotes   string   `json:"adminNotes,omitempty"`
	RefundAmount *float64 `json:"refundAmount,omitempty"`
	RefundMethod string   `json:"refundMethod,omitempty"`
}
