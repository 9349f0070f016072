package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Insight frequencies
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// IsValidFrequency reports whether f is a known insight frequency.
func IsValidFrequency(f string) bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// Insight is a CMS content item. At most one insight per frequency is active
// at a time; SetActive deactivates siblings before activating the target.
type Insight struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title     string             `json:"title" bson:"title"`
	Content   string             `json:"content" bson:"content"`
	Frequency string             `json:"frequency" bson:"frequency"`
	Tags      []string           `json:"tags,omitempty" bson:"tags,omitempty"`
	Active    bool               `json:"active" bson:"active"`
	CreatedBy primitive.ObjectID `json:"createdBy" bson:"createdBy"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CreateInsightRequest is the admin body for creating an insight
type CreateInsightRequest struct {
	Title     string   `json:"title" validate:"required"`
	Content   string   `json:"content" validate:"required"`
	Frequency string   `json:"frequency" validate:"required"`
	Tags      []string `json:"tags,omitempty"`
}

// UpdateInsightRequest is the admin body for editing an insight
type UpdateInsightRequest struct {
	Title     *string  `json:"title,omitempty"`
	Content   *string  `json:"content,omitempty"`
	Frequency *string  `json:"frequency,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}
