package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin invite statuses. Accepted, revoked and expired are terminal.
const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusRevoked  = "revoked"
	InviteStatusExpired  = "expired"
)

// DefaultInviteExpiryDays is the invite lifetime applied when none is given.
const DefaultInviteExpiryDays = 7

// User roles grantable through an invite
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// IsValidInviteRole reports whether r is a grantable role.
func IsValidInviteRole(r string) bool {
	return r == RoleUser || r == RoleAdmin
}

// AdminInvite is a single-use, token-based invitation. The token is an opaque
// string with a unique index; acceptance consumes it exactly once.
type AdminInvite struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email      string             `json:"email" bson:"email"`
	Role       string             `json:"role" bson:"role"`
	Token      string             `json:"token" bson:"token"`
	Status     string             `json:"status" bson:"status"`
	InvitedBy  primitive.ObjectID `json:"invitedBy" bson:"invitedBy"`
	ExpiresAt  time.Time          `json:"expiresAt" bson:"expiresAt"`
	AcceptedAt *time.Time         `json:"acceptedAt,omitempty" bson:"acceptedAt,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}

// Expired reports whether the invite's acceptance window has passed.
func (i *AdminInvite) Expired() bool {
	return time.Now().After(i.ExpiresAt)
}

// EmailMatches compares the invite email with the supplied one case-insensitively.
func (i *AdminInvite) EmailMatches(email string) bool {
	return strings.EqualFold(strings.TrimSpace(i.Email), strings.TrimSpace(email))
}

// CreateInviteRequest is the admin body for creating an invite
type CreateInviteRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Role          string `json:"role" validate:"required"`
	ExpiresInDays int    `json:"expiresInDays,omitempty"`
}

// AcceptInviteRequest is the public body for accepting an invite
type AcceptInviteRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}
