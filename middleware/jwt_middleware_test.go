package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
)

func TestGenerateJWTRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, refreshToken, err := GenerateJWT("507f1f77bcf86cd799439011", "caster@example.com", "admin")
	if err != nil {
		t.Fatalf("GenerateJWT returned error: %v", err)
	}
	if token == "" || refreshToken == "" {
		t.Fatal("GenerateJWT returned empty token")
	}
	if token == refreshToken {
		t.Error("access and refresh tokens are identical")
	}

	parse := func(raw string) *JwtCustomClaims {
		t.Helper()
		claims := &JwtCustomClaims{}
		parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		if err != nil {
			t.Fatalf("failed to parse token: %v", err)
		}
		if !parsed.Valid {
			t.Fatal("parsed token is not valid")
		}
		return claims
	}

	claims := parse(token)
	if claims.UserID != "507f1f77bcf86cd799439011" {
		t.Errorf("UserID = %q, want 507f1f77bcf86cd799439011", claims.UserID)
	}
	if claims.Email != "caster@example.com" {
		t.Errorf("Email = %q, want caster@example.com", claims.Email)
	}
	if claims.UserType != "admin" {
		t.Errorf("UserType = %q, want admin", claims.UserType)
	}

	refreshClaims := parse(refreshToken)
	if refreshClaims.ExpiresAt <= claims.ExpiresAt {
		t.Error("refresh token does not outlive the access token")
	}
}

func TestGenerateJWTWithoutSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, _, err := GenerateJWT("id", "a@b.c", "user"); err == nil {
		t.Error("expected error when JWT_SECRET is unset")
	}
}

func TestRequireUserType(t *testing.T) {
	tests := []struct {
		name       string
		userType   string
		allowed    []string
		wantStatus int
	}{
		{"admin allowed", "admin", []string{"admin"}, http.StatusOK},
		{"user denied on admin route", "user", []string{"admin"}, http.StatusForbidden},
		{"one of several", "user", []string{"admin", "user"}, http.StatusOK},
		{"missing user type", "", []string{"admin"}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tt.userType != "" {
				c.Set("userType", tt.userType)
			}

			handler := RequireUserType(tt.allowed...)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})
			if err := handler(c); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
