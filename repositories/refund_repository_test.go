package repositories

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yourspellcaster/spellcaster_backend/models"
)

func TestProcessingClaimFilter(t *testing.T) {
	id := primitive.NewObjectID()
	filter := processingClaimFilter(id)

	if got := filter["_id"]; got != id {
		t.Errorf("filter _id = %v, want %v", got, id)
	}

	// Only approved requests may be claimed for the provider call
	if got := filter["status"]; got != models.RefundStatusApproved {
		t.Errorf("filter status = %v, want %q", got, models.RefundStatusApproved)
	}

	// The claim must be single-winner: a second concurrent process call sees
	// the stamp and matches nothing
	stamp, ok := filter["processingStartedAt"].(bson.M)
	if !ok {
		t.Fatalf("filter processingStartedAt = %v, want an $exists condition", filter["processingStartedAt"])
	}
	if exists, ok := stamp["$exists"].(bool); !ok || exists {
		t.Errorf("processingStartedAt condition = %v, want $exists: false", stamp)
	}
}
