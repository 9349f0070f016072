package controllers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yourspellcaster/spellcaster_backend/models"
)

func TestValidateRequestUpdate(t *testing.T) {
	adminID := primitive.NewObjectID()

	tests := []struct {
		name   string
		req    models.UpdateServiceRequestRequest
		wantOK bool
	}{
		{"status only", models.UpdateServiceRequestRequest{Status: models.RequestStatusInProgress}, true},
		{"priority only", models.UpdateServiceRequestRequest{Priority: models.PriorityUrgent}, true},
		{"assignment", models.UpdateServiceRequestRequest{AssignedTo: adminID.Hex()}, true},
		{"notes and steps", models.UpdateServiceRequestRequest{AdminNotes: "consult first", RitualSteps: []models.RitualStep{{StepNumber: 1, StepName: "cleanse"}}}, true},
		{"empty body", models.UpdateServiceRequestRequest{}, false},
		{"status note without status", models.UpdateServiceRequestRequest{StatusNote: "note"}, false},
		{"unknown status", models.UpdateServiceRequestRequest{Status: "archived"}, false},
		{"unknown priority", models.UpdateServiceRequestRequest{Priority: "critical"}, false},
		{"malformed assignee", models.UpdateServiceRequestRequest{AssignedTo: "not-an-id"}, false},
		// A single bad field must reject the whole body, even when another
		// field is valid, so nothing is applied partially
		{"valid status with bad priority", models.UpdateServiceRequestRequest{Status: models.RequestStatusCompleted, Priority: "critical"}, false},
		{"valid priority with bad assignee", models.UpdateServiceRequestRequest{Priority: models.PriorityHigh, AssignedTo: "xyz"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assignee, msg := validateRequestUpdate(&tt.req)
			if (msg == "") != tt.wantOK {
				t.Errorf("validateRequestUpdate() = %q, want ok=%v", msg, tt.wantOK)
			}
			if tt.wantOK && tt.req.AssignedTo != "" {
				if assignee == nil || assignee.Hex() != tt.req.AssignedTo {
					t.Errorf("assignee = %v, want %s", assignee, tt.req.AssignedTo)
				}
			}
			if msg != "" && assignee != nil {
				t.Error("rejected body still returned an assignee")
			}
		})
	}
}
