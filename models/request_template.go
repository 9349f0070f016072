package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestTemplate is an admin-authored reusable request pattern. Deleting a
// template only clears the active flag; usage history is kept.
type RequestTemplate struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name           string             `json:"name" bson:"name"`
	ServiceType    string             `json:"serviceType" bson:"serviceType"`
	ServiceName    string             `json:"serviceName" bson:"serviceName"`
	Description    string             `json:"description" bson:"description"`
	RitualSteps    []RitualStep       `json:"ritualSteps,omitempty" bson:"ritualSteps,omitempty"`
	EstimatedPrice float64            `json:"estimatedPrice,omitempty" bson:"estimatedPrice,omitempty"`
	EstimatedDays  int                `json:"estimatedDays,omitempty" bson:"estimatedDays,omitempty"`
	Priority       string             `json:"priority" bson:"priority"`
	Category       string             `json:"category,omitempty" bson:"category,omitempty"`
	UsageCount     int                `json:"usageCount" bson:"usageCount"`
	Active         bool               `json:"active" bson:"active"`
	CreatedBy      primitive.ObjectID `json:"createdBy" bson:"createdBy"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CreateTemplateRequest is the admin body for creating a template
type CreateTemplateRequest struct {
	Name           string       `json:"name" validate:"required"`
	ServiceType    string       `json:"serviceType" validate:"required"`
	ServiceName    string       `json:"serviceName" validate:"required"`
	Description    string       `json:"description" validate:"required"`
	RitualSteps    []RitualStep `json:"ritualSteps,omitempty"`
	EstimatedPrice float64      `json:"estimatedPrice,omitempty"`
	EstimatedDays  int          `json:"estimatedDays,omitempty"`
	Priority       string       `json:"priority,omitempty"`
	Category       string       `json:"category,omitempty"`
}

// UpdateTemplateRequest is the admin body for editing a template.
// Pointer fields distinguish "not provided" from zero values.
type UpdateTemplateRequest struct {
	Name           *string      `json:"name,omitempty"`
	ServiceType    *string      `json:"serviceType,omitempty"`
	ServiceName    *string      `json:"serviceName,omitempty"`
	Description    *string      `json:"description,omitempty"`
	RitualSteps    []RitualStep `json:"ritualSteps,omitempty"`
	EstimatedPrice *float64     `json:"estimatedPrice,omitempty"`
	EstimatedDays  *int         `json:"estimatedDays,omitempty"`
	Priority       *string      `json:"priority,omitempty"`
	Category       *string      `json:"category,omitempty"`
}

// ApplyTemplateRequest is the user body for creating a request from a template
type ApplyTemplateRequest struct {
	ClientNotes string `json:"clientNotes,omitempty"`
}
