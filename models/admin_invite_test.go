package models

import (
	"testing"
	"time"
)

func TestInviteEmailMatches(t *testing.T) {
	tests := []struct {
		name   string
		invite string
		given  string
		want   bool
	}{
		{"exact match", "caster@example.com", "caster@example.com", true},
		{"case insensitive", "Caster@Example.com", "caster@example.com", true},
		{"surrounding whitespace", " caster@example.com ", "caster@example.com", true},
		{"different address", "caster@example.com", "other@example.com", false},
		{"empty given", "caster@example.com", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invite := &AdminInvite{Email: tt.invite}
			if got := invite.EmailMatches(tt.given); got != tt.want {
				t.Errorf("EmailMatches(%q) = %v, want %v", tt.given, got, tt.want)
			}
		})
	}
}

func TestInviteExpired(t *testing.T) {
	fresh := &AdminInvite{ExpiresAt: time.Now().Add(time.Hour)}
	if fresh.Expired() {
		t.Error("invite expiring in an hour reported expired")
	}

	stale := &AdminInvite{ExpiresAt: time.Now().Add(-time.Minute)}
	if !stale.Expired() {
		t.Error("invite past its window not reported expired")
	}
}

func TestIsValidInviteRole(t *testing.T) {
	if !IsValidInviteRole(RoleUser) || !IsValidInviteRole(RoleAdmin) {
		t.Error("known roles rejected")
	}
	for _, r := range []string{"", "super_admin", "Admin"} {
		if IsValidInviteRole(r) {
			t.Errorf("IsValidInviteRole(%q) = true, want false", r)
		}
	}
}
