package controllers

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourspellcaster/spellcaster_backend/middleware"
	"github.com/yourspellcaster/spellcaster_backend/models"
	"github.com/yourspellcaster/spellcaster_backend/repositories"
)

// AuthController handles login and logout. Everything beyond credential
// verification (social login, password reset) is delegated to the auth
// provider and out of scope here.
type AuthController struct {
	users *repositories.UserRepository
}

// NewAuthController creates a new auth controller
func NewAuthController(db *mongo.Database) *AuthController {
	return &AuthController{users: repositories.NewUserRepository(db)}
}

// Login verifies credentials and issues a JWT pair
func (c *AuthController) Login(ctx echo.Context) error {
	var req models.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}
	if err := ctx.Validate(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Email and password are required",
		})
	}

	user, err := c.users.FindByEmail(req.Email)
	if err != nil {
		// Same message for unknown email and bad password
		return ctx.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return ctx.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	if !user.IsActive {
		return ctx.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Account is deactivated",
		})
	}

	token, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.UserType)
	if err != nil {
		ctx.Logger().Errorf("Failed to generate token: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	user.Password = ""
	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: models.LoginResponse{
			Token:        token,
			RefreshToken: refreshToken,
			User:         *user,
		},
	})
}

// Logout blacklists the presented token until its expiry
func (c *AuthController) Logout(ctx echo.Context) error {
	user, ok := ctx.Get("user").(*jwt.Token)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	expiry := time.Now().Add(7 * 24 * time.Hour)
	if claims, ok := user.Claims.(*middleware.JwtCustomClaims); ok && claims.ExpiresAt > 0 {
		expiry = time.Unix(claims.ExpiresAt, 0)
	}
	middleware.BlacklistToken(user.Raw, expiry)

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logged out",
	})
}
