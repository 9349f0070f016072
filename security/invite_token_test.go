package security

import "testing"

func TestGenerateInviteToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateInviteToken()
		if err != nil {
			t.Fatalf("GenerateInviteToken returned error: %v", err)
		}
		if len(token) < 40 {
			t.Fatalf("token %q shorter than expected", token)
		}
		if seen[token] {
			t.Fatalf("duplicate token generated: %q", token)
		}
		seen[token] = true
	}
}
