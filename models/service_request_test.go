package models

import (
	"sort"
	"testing"
)

func TestCanTransitionRequest(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"pending to in_progress", RequestStatusPending, RequestStatusInProgress, true},
		{"pending to cancelled", RequestStatusPending, RequestStatusCancelled, true},
		{"pending to on_hold", RequestStatusPending, RequestStatusOnHold, true},
		{"pending closed directly", RequestStatusPending, RequestStatusCompleted, true},
		{"in_progress to completed", RequestStatusInProgress, RequestStatusCompleted, true},
		{"in_progress to pending", RequestStatusInProgress, RequestStatusPending, false},
		{"on_hold resumes", RequestStatusOnHold, RequestStatusInProgress, true},
		{"on_hold to completed", RequestStatusOnHold, RequestStatusCompleted, false},
		{"completed is terminal", RequestStatusCompleted, RequestStatusInProgress, false},
		{"cancelled is terminal", RequestStatusCancelled, RequestStatusPending, false},
		{"unknown status", "unknown", RequestStatusPending, false},
		{"self transition", RequestStatusPending, RequestStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransitionRequest(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransitionRequest(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestRequestStatusSources(t *testing.T) {
	tests := []struct {
		to   string
		want []string
	}{
		{RequestStatusInProgress, []string{RequestStatusOnHold, RequestStatusPending}},
		{RequestStatusCompleted, []string{RequestStatusInProgress, RequestStatusPending}},
		{RequestStatusCancelled, []string{RequestStatusInProgress, RequestStatusOnHold, RequestStatusPending}},
		{RequestStatusOnHold, []string{RequestStatusInProgress, RequestStatusPending}},
		{RequestStatusPending, nil},
		{"unknown", nil},
	}

	for _, tt := range tests {
		t.Run(tt.to, func(t *testing.T) {
			got := RequestStatusSources(tt.to)
			sort.Strings(got)
			if len(got) != len(tt.want) {
				t.Fatalf("RequestStatusSources(%q) = %v, want %v", tt.to, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("RequestStatusSources(%q) = %v, want %v", tt.to, got, tt.want)
					break
				}
			}
		})
	}
}

func TestPendingRequestCompletableInOneStep(t *testing.T) {
	// An admin may close a pending request without first moving it to
	// in_progress; the conditional update filter must admit that path too.
	if !CanTransitionRequest(RequestStatusPending, RequestStatusCompleted) {
		t.Fatal("a pending request must be completable in a single update")
	}

	found := false
	for _, src := range RequestStatusSources(RequestStatusCompleted) {
		if src == RequestStatusPending {
			found = true
			break
		}
	}
	if !found {
		t.Error("pending missing from completed's source statuses")
	}
}

func TestRequestStatusSourcesMatchesTransitionTable(t *testing.T) {
	for from := range requestTransitions {
		for to := range requestTransitions {
			inSources := false
			for _, src := range RequestStatusSources(to) {
				if src == from {
					inSources = true
					break
				}
			}
			if inSources != CanTransitionRequest(from, to) {
				t.Errorf("sources and transition table disagree for %s -> %s", from, to)
			}
		}
	}
}

func TestIsValidPriority(t *testing.T) {
	for _, p := range []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent} {
		if !IsValidPriority(p) {
			t.Errorf("IsValidPriority(%q) = false, want true", p)
		}
	}
	for _, p := range []string{"", "critical", "MEDIUM"} {
		if IsValidPriority(p) {
			t.Errorf("IsValidPriority(%q) = true, want false", p)
		}
	}
}
