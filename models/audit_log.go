package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audit actions recorded for admin mutations
const (
	AuditActionRequestStatus   = "service_request.status"
	AuditActionRequestAssign   = "service_request.assign"
	AuditActionRequestPriority = "service_request.priority"
	AuditActionRequestNotes    = "service_request.notes"
	AuditActionRequestSteps    = "service_request.ritual_steps"
	AuditActionQuoteCreate     = "price_quote.create"
	AuditActionQuoteUpdate     = "price_quote.update"
	AuditActionRefundReview    = "refund_request.review"
	AuditActionRefundProcess   = "refund_request.process"
	AuditActionInviteCreate    = "admin_invite.create"
	AuditActionInviteRevoke    = "admin_invite.revoke"
	AuditActionTemplateCreate  = "request_template.create"
	AuditActionTemplateUpdate  = "request_template.update"
	AuditActionTemplateDelete  = "request_template.delete"
	AuditActionInsightActive   = "insight.set_active"
	AuditActionUserRole        = "user.role"
	AuditActionUserDeactivate  = "user.deactivate"
)

// AuditLogEntry is a durable record of an admin mutation.
type AuditLogEntry struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ActorID    primitive.ObjectID `json:"actorId" bson:"actorId"`
	ActorEmail string             `json:"actorEmail,omitempty" bson:"actorEmail,omitempty"`
	Action     string             `json:"action" bson:"action"`
	TargetType string             `json:"targetType" bson:"targetType"`
	TargetID   string             `json:"targetId" bson:"targetId"`
	Detail     string             `json:"detail,omitempty" bson:"detail,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}
