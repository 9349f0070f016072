package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourspellcaster/spellcaster_backend/middleware"
	"github.com/yourspellcaster/spellcaster_backend/models"
	"github.com/yourspellcaster/spellcaster_backend/repositories"
	"github.com/yourspellcaster/spellcaster_backend/security"
	"github.com/yourspellcaster/spellcaster_backend/services"
)

// InviteController handles the admin invite flow: admins issue token-based
// invites; the acceptance endpoint is public and consumes the token.
type InviteController struct {
	invites *repositories.InviteRepository
	users   *repositories.UserRepository
	audit   *repositories.AuditRepository
	email   *services.EmailService
}

// NewInviteController creates a new invite controller
func NewInviteController(db *mongo.Database) *InviteController {
	return &InviteController{
		invites: repositories.NewInviteRepository(db),
		users:   repositories.NewUserRepository(db),
		audit:   repositories.NewAuditRepository(db),
		email:   services.NewEmailService(),
	}
}

// CreateInvite issues a new invite and mails the acceptance link (admin)
func (c *InviteController) CreateInvite(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)
	adminID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return ctx.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var req models.CreateInviteRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}
	if err := ctx.Validate(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "A valid email and role are required",
		})
	}
	if !models.IsValidInviteRole(req.Role) {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid role: " + req.Role,
		})
	}

	token, err := security.GenerateInviteToken()
	if err != nil {
		ctx.Logger().Errorf("Failed to generate invite token: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create invite",
		})
	}

	invite, err := c.invites.Create(req.Email, req.Role, token, adminID, req.ExpiresInDays)
	if err != nil {
		ctx.Logger().Errorf("Failed to create invite: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create invite",
		})
	}

	c.audit.Log(adminID, claims.Email, models.AuditActionInviteCreate, "admin_invite", invite.ID.Hex(), req.Email)

	if err := c.email.SendInviteEmail(invite); err != nil {
		ctx.Logger().Warnf("Failed to send invite email to %s: %v", invite.Email, err)
	}

	return ctx.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Invite created successfully",
		Data:    invite,
	})
}

// GetInvites lists all invites (admin)
func (c *InviteController) GetInvites(ctx echo.Context) error {
	invites, err := c.invites.List()
	if err != nil {
		ctx.Logger().Errorf("Failed to list invites: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve invites",
		})
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Invites retrieved successfully",
		Data:    invites,
	})
}

// RevokeInvite cancels a pending invite (admin)
func (c *InviteController) RevokeInvite(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)
	token := ctx.Param("token")

	invite, err := c.invites.Revoke(token)
	if err != nil {
		switch err {
		case mongo.ErrNoDocuments:
			return ctx.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Invite not found",
			})
		case repositories.ErrInviteNotPending:
			return ctx.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invite is no longer pending",
			})
		default:
			ctx.Logger().Errorf("Failed to revoke invite: %v", err)
			return ctx.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to revoke invite",
			})
		}
	}

	if adminID, idErr := primitive.ObjectIDFromHex(claims.UserID); idErr == nil {
		c.audit.Log(adminID, claims.Email, models.AuditActionInviteRevoke, "admin_invite", invite.ID.Hex(), invite.Email)
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Invite revoked successfully",
		Data:    invite,
	})
}

// AcceptInvite consumes an invite token. An existing account with the invite
// email is promoted to the invited role; otherwise a new account is created.
func (c *InviteController) AcceptInvite(ctx echo.Context) error {
	token := ctx.Param("token")

	var req models.AcceptInviteRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}
	if err := ctx.Validate(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Email, full name and a password of at least 8 characters are required",
		})
	}

	invite, err := c.invites.Accept(token, req.Email)
	if err != nil {
		switch err {
		case mongo.ErrNoDocuments:
			return ctx.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Invite not found",
			})
		case repositories.ErrInviteExpired:
			return ctx.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invite has expired",
			})
		case repositories.ErrInviteNotPending:
			return ctx.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invite is no longer pending",
			})
		case repositories.ErrEmailMismatch:
			return ctx.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Email does not match the invite",
			})
		default:
			ctx.Logger().Errorf("Failed to accept invite: %v", err)
			return ctx.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to accept invite",
			})
		}
	}

	user, err := c.users.FindByEmail(req.Email)
	if err == nil {
		// Existing account; grant the invited role
		user, err = c.users.UpdateRole(user.ID, invite.Role)
		if err != nil {
			ctx.Logger().Errorf("Failed to promote user %s: %v", req.Email, err)
			return ctx.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to update account",
			})
		}
	} else {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			ctx.Logger().Errorf("Failed to hash password: %v", hashErr)
			return ctx.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to create account",
			})
		}
		user, err = c.users.Create(req.Email, string(hash), req.FullName, invite.Role)
		if err != nil {
			ctx.Logger().Errorf("Failed to create user %s: %v", req.Email, err)
			return ctx.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to create account",
			})
		}
	}

	jwtToken, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.UserType)
	if err != nil {
		ctx.Logger().Errorf("Failed to generate token: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Invite accepted but login failed; please sign in",
		})
	}

	user.Password = ""
	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Invite accepted successfully",
		Data: models.LoginResponse{
			Token:        jwtToken,
			RefreshToken: refreshToken,
			User:         *user,
		},
	})
}
