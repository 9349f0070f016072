package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Price quote statuses. Accepted and rejected are terminal.
const (
	QuoteStatusPending  = "pending"
	QuoteStatusAccepted = "accepted"
	QuoteStatusRejected = "rejected"
)

// DefaultQuoteValidDays is the validity window applied when none is given.
const DefaultQuoteValidDays = 7

// PriceQuote model
type PriceQuote struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"userId" bson:"userId"`
	ServiceID       primitive.ObjectID `json:"serviceId" bson:"serviceId"`
	ServiceName     string             `json:"serviceName" bson:"serviceName"`
	QuotedPrice     float64            `json:"quotedPrice" bson:"quotedPrice"`
	Notes           string             `json:"notes,omitempty" bson:"notes,omitempty"`
	ValidUntil      time.Time          `json:"validUntil" bson:"validUntil"`
	Status          string             `json:"status" bson:"status"`
	RejectionReason string             `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Expired reports whether the quote's validity window has passed.
func (q *PriceQuote) Expired() bool {
	return time.Now().After(q.ValidUntil)
}

// CreatePriceQuoteRequest is the admin body for creating a quote
type CreatePriceQuoteRequest struct {
	UserID      string  `json:"userId" validate:"required"`
	ServiceID   string  `json:"serviceId" validate:"required"`
	ServiceName string  `json:"serviceName" validate:"required"`
	QuotedPrice float64 `json:"quotedPrice" validate:"required,gt=0"`
	Notes       string  `json:"notes,omitempty"`
	ValidDays   int     `json:"validDays,omitempty"`
}

// Quote actions accepted by PUT /api/payments/quotes/:quoteId
const (
	QuoteActionAccept = "accept"
	QuoteActionReject = "reject"
	QuoteActionUpdate = "update"
)

// QuoteActionRequest is the body for acting on a quote. Accept and reject are
// user actions; update is admin-only.
type QuoteActionRequest struct {
	Action             string   `json:"action" validate:"required"`
	RejectionReason    string   `json:"rejectionReason,omitempty"`
	QuotedPrice        *float64 `json:"quotedPrice,omitempty"`
	Notes              *string  `json:"notes,omitempty"`
	ExtendValidityDays int      `json:"extendValidityDays,omitempty"`
}
