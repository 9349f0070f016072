package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service request statuses
const (
	RequestStatusPending    = "pending"
	RequestStatusInProgress = "in_progress"
	RequestStatusCompleted  = "completed"
	RequestStatusCancelled  = "cancelled"
	RequestStatusOnHold     = "on_hold"
)

// Service request priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// requestTransitions maps each status to the set of statuses it may move to.
// Completed and cancelled are terminal.
var requestTransitions = map[string][]string{
	RequestStatusPending:    {RequestStatusInProgress, RequestStatusCompleted, RequestStatusCancelled, RequestStatusOnHold},
	RequestStatusInProgress: {RequestStatusCompleted, RequestStatusCancelled, RequestStatusOnHold},
	RequestStatusOnHold:     {RequestStatusInProgress, RequestStatusCancelled},
	RequestStatusCompleted:  {},
	RequestStatusCancelled:  {},
}

// CanTransitionRequest reports whether a service request may move from one status to another.
func CanTransitionRequest(from, to string) bool {
	for _, next := range requestTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// RequestStatusSources returns the statuses from which a request may reach the given status.
// Used to build conditional update filters.
func RequestStatusSources(to string) []string {
	var sources []string
	for from, nexts := range requestTransitions {
		for _, next := range nexts {
			if next == to {
				sources = append(sources, from)
			}
		}
	}
	return sources
}

// IsValidRequestStatus reports whether s is a known service request status.
func IsValidRequestStatus(s string) bool {
	_, ok := requestTransitions[s]
	return ok
}

// IsValidPriority reports whether p is a known priority level.
func IsValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// RitualStep is one step of the ritual performed for a service request.
// Photos are appended as the caster documents progress.
type RitualStep struct {
	StepNumber int      `json:"stepNumber" bson:"stepNumber"`
	StepName   string   `json:"stepName" bson:"stepName"`
	PhotoURLs  []string `json:"photoUrls,omitempty" bson:"photoUrls,omitempty"`
}

// ServiceRequest model
type ServiceRequest struct {
	ID              primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	UserID          primitive.ObjectID  `json:"userId" bson:"userId"`
	ServiceName     string              `json:"serviceName" bson:"serviceName"`
	ServiceType     string              `json:"serviceType" bson:"serviceType"`
	Description     string              `json:"description" bson:"description"`
	ClientNotes     string              `json:"clientNotes,omitempty" bson:"clientNotes,omitempty"`
	Status          string              `json:"status" bson:"status"`
	Priority        string              `json:"priority" bson:"priority"`
	AssignedTo      *primitive.ObjectID `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	AdminNotes      string              `json:"adminNotes,omitempty" bson:"adminNotes,omitempty"`
	RitualSteps     []RitualStep        `json:"ritualSteps,omitempty" bson:"ritualSteps,omitempty"`
	AmountPaid      float64             `json:"amountPaid,omitempty" bson:"amountPaid,omitempty"`
	PaymentIntentID string              `json:"paymentIntentId,omitempty" bson:"paymentIntentId,omitempty"`
	RequestedAt     time.Time           `json:"requestedAt" bson:"requestedAt"`
	CompletedAt     *time.Time          `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	UpdatedAt       time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// CreateServiceRequestRequest is the body for creating a service request
type CreateServiceRequestRequest struct {
	ServiceName     string `json:"serviceName" validate:"required"`
	ServiceType     string `json:"serviceType" validate:"required"`
	Description     string `json:"description" validate:"required"`
	ClientNotes     string `json:"clientNotes,omitempty"`
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
}

// UpdateServiceRequestRequest is the admin body for mutating a service request.
// Only the provided fields are applied.
type UpdateServiceRequestRequest struct {
	Status      string       `json:"status,omitempty"`
	StatusNote  string       `json:"statusNote,omitempty"`
	Priority    string       `json:"priority,omitempty"`
	AssignedTo  string       `json:"assignedTo,omitempty"`
	AdminNotes  string       `json:"adminNotes,omitempty"`
	RitualSteps []RitualStep `json:"ritualSteps,omitempty"`
}

// RitualPhotoUploadRequest carries a Base64 encoded photo for a ritual step
type RitualPhotoUploadRequest struct {
	StepNumber int    `json:"stepNumber" validate:"required"`
	PhotoFile  string `json:"photoFile" validate:"required"`
	FileName   string `json:"fileName,omitempty"`
}

// ServiceRequestFilter holds the admin queue query parameters
type ServiceRequestFilter struct {
	Status      string
	ServiceType string
	Priority    string
	Search      string
	Limit       int64
	Skip        int64
}
