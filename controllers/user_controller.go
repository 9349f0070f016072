package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yourspellcaster/spellcaster_backend/middleware"
	"github.com/yourspellcaster/spellcaster_backend/models"
	"github.com/yourspellcaster/spellcaster_backend/repositories"
)

// UserController handles profile and admin user management endpoints
type UserController struct {
	users *repositories.UserRepository
	audit *repositories.AuditRepository
}

// NewUserController creates a new user controller
func NewUserController(db *mongo.Database) *UserController {
	return &UserController{
		users: repositories.NewUserRepository(db),
		audit: repositories.NewAuditRepository(db),
	}
}

// GetProfile returns the authenticated user's profile
func (c *UserController) GetProfile(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)
	if claims == nil {
		return ctx.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}

	user, err := c.users.FindByID(userID)
	if err != nil {
		return ctx.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	user.Password = ""
	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile retrieved successfully",
		Data:    user,
	})
}

// GetAllUsers returns all users (admin)
func (c *UserController) GetAllUsers(ctx echo.Context) error {
	users, err := c.users.List()
	if err != nil {
		ctx.Logger().Errorf("Failed to list users: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve users",
		})
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Users retrieved successfully",
		Data:    users,
	})
}

// GetUser returns one user by ID (admin)
func (c *UserController) GetUser(ctx echo.Context) error {
	id, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}

	user, err := c.users.FindByID(id)
	if err != nil {
		return ctx.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	user.Password = ""
	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "User retrieved successfully",
		Data:    user,
	})
}

// UpdateUserRole changes a user's role (admin)
func (c *UserController) UpdateUserRole(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)

	id, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}

	var req models.UpdateRoleRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}
	if !models.IsValidInviteRole(req.UserType) {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user type",
		})
	}

	user, err := c.users.UpdateRole(id, req.UserType)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ctx.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "User not found",
			})
		}
		ctx.Logger().Errorf("Failed to update role: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update role",
		})
	}

	if adminID, idErr := primitive.ObjectIDFromHex(claims.UserID); idErr == nil {
		c.audit.Log(adminID, claims.Email, models.AuditActionUserRole, "user", id.Hex(), req.UserType)
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Role updated successfully",
		Data:    user,
	})
}

// DeactivateUser disables a user account (admin)
func (c *UserController) DeactivateUser(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)

	id, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}

	user, err := c.users.SetActive(id, false)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ctx.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "User not found",
			})
		}
		ctx.Logger().Errorf("Failed to deactivate user: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to deactivate user",
		})
	}

	if adminID, idErr := primitive.ObjectIDFromHex(claims.UserID); idErr == nil {
		c.audit.Log(adminID, claims.Email, models.AuditActionUserDeactivate, "user", id.Hex(), "")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "User deactivated",
		Data:    user,
	})
}
