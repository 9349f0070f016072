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

// InsightController handles the insights CMS. Admins manage content; the
// active insight per frequency is public.
type InsightController struct {
	insights *repositories.InsightRepository
	audit    *repositories.AuditRepository
}

// NewInsightController creates a new insight controller
func NewInsightController(db *mongo.Database) *InsightController {
	return &InsightController{
		insights: repositories.NewInsightRepository(db),
		audit:    repositories.NewAuditRepository(db),
	}
}

// CreateInsight creates an inactive insight (admin)
func (c *InsightController) CreateInsight(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)
	adminID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return ctx.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var req models.CreateInsightRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}
	if err := ctx.Validate(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Title, content and frequency are required",
		})
	}
	if !models.IsValidFrequency(req.Frequency) {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid frequency: " + req.Frequency,
		})
	}

	insight, err := c.insights.Create(adminID, &req)
	if err != nil {
		ctx.Logger().Errorf("Failed to create insight: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create insight",
		})
	}

	return ctx.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Insight created successfully",
		Data:    insight,
	})
}

// GetInsights lists all insights (admin)
func (c *InsightController) GetInsights(ctx echo.Context) error {
	insights, err := c.insights.GetAll()
	if err != nil {
		ctx.Logger().Errorf("Failed to list insights: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve insights",
		})
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Insights retrieved successfully",
		Data:    insights,
	})
}

// GetActiveInsight returns the active insight for a frequency (public)
func (c *InsightController) GetActiveInsight(ctx echo.Context) error {
	frequency := ctx.QueryParam("frequency")
	if frequency == "" {
		frequency = models.FrequencyDaily
	}
	if !models.IsValidFrequency(frequency) {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid frequency: " + frequency,
		})
	}

	insight, err := c.insights.GetActive(frequency)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ctx.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "No active insight for " + frequency,
			})
		}
		ctx.Logger().Errorf("Failed to get active insight: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve insight",
		})
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Insight retrieved successfully",
		Data:    insight,
	})
}

// UpdateInsight edits an insight (admin)
func (c *InsightController) UpdateInsight(ctx echo.Context) error {
	id, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid insight ID",
		})
	}

	var req models.UpdateInsightRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}
	if req.Frequency != nil && !models.IsValidFrequency(*req.Frequency) {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid frequency: " + *req.Frequency,
		})
	}

	insight, err := c.insights.Update(id, &req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ctx.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Insight not found",
			})
		}
		ctx.Logger().Errorf("Failed to update insight: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update insight",
		})
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Insight updated successfully",
		Data:    insight,
	})
}

// DeleteInsight removes an insight (admin)
func (c *InsightController) DeleteInsight(ctx echo.Context) error {
	id, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid insight ID",
		})
	}

	if err := c.insights.Delete(id); err != nil {
		if err == mongo.ErrNoDocuments {
			return ctx.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Insight not found",
			})
		}
		ctx.Logger().Errorf("Failed to delete insight: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete insight",
		})
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Insight deleted successfully",
	})
}

// SetActiveInsight activates an insight for its frequency (admin). Any other
// active insight with the same frequency is deactivated.
func (c *InsightController) SetActiveInsight(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)

	id, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid insight ID",
		})
	}

	insight, err := c.insights.SetActive(id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ctx.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Insight not found",
			})
		}
		ctx.Logger().Errorf("Failed to activate insight: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to activate insight",
		})
	}

	if adminID, idErr := primitive.ObjectIDFromHex(claims.UserID); idErr == nil {
		c.audit.Log(adminID, claims.Email, models.AuditActionInsightActive, "insight", id.Hex(), insight.Frequency)
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Insight activated successfully",
		Data:    insight,
	})
}
