package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yourspellcaster/spellcaster_backend/middleware"
	"github.com/yourspellcaster/spellcaster_backend/models"
	"github.com/yourspellcaster/spellcaster_backend/repositories"
	"github.com/yourspellcaster/spellcaster_backend/websocket"
)

// TemplateController handles request templates: admin CRUD plus the user
// "apply" operation that spawns a service request from a template.
type TemplateController struct {
	templates *repositories.TemplateRepository
	requests  *repositories.ServiceRequestRepository
	audit     *repositories.AuditRepository
	hub       *websocket.Hub
}

// NewTemplateController creates a new template controller
func NewTemplateController(db *mongo.Database, hub *websocket.Hub) *TemplateController {
	return &TemplateController{
		templates: repositories.NewTemplateRepository(db),
		requests:  repositories.NewServiceRequestRepository(db),
		audit:     repositories.NewAuditRepository(db),
		hub:       hub,
	}
}

// CreateTemplate creates a new template (admin)
func (c *TemplateController) CreateTemplate(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)
	adminID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return ctx.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var req models.CreateTemplateRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}
	if err := ctx.Validate(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Name, service type, service name and description are required",
		})
	}
	if req.Priority != "" && !models.IsValidPriority(req.Priority) {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid priority: " + req.Priority,
		})
	}

	template, err := c.templates.Create(adminID, &req)
	if err != nil {
		ctx.Logger().Errorf("Failed to create template: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create template",
		})
	}

	c.audit.Log(adminID, claims.Email, models.AuditActionTemplateCreate, "request_template", template.ID.Hex(), template.Name)

	return ctx.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Template created successfully",
		Data:    template,
	})
}

// GetTemplates lists templates. Admins see all; users only see active ones.
func (c *TemplateController) GetTemplates(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)
	activeOnly := claims.UserType != models.RoleAdmin

	templates, err := c.templates.GetAll(activeOnly)
	if err != nil {
		ctx.Logger().Errorf("Failed to list templates: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve templates",
		})
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Templates retrieved successfully",
		Data:    templates,
	})
}

// GetTemplate returns one template
func (c *TemplateController) GetTemplate(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)

	id, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid template ID",
		})
	}

	template, err := c.templates.GetByID(id)
	if err != nil {
		return ctx.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Template not found",
		})
	}
	if !template.Active && claims.UserType != models.RoleAdmin {
		return ctx.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Template not found",
		})
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Template retrieved successfully",
		Data:    template,
	})
}

// UpdateTemplate edits a template (admin)
func (c *TemplateController) UpdateTemplate(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)

	id, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid template ID",
		})
	}

	var req models.UpdateTemplateRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}
	if req.Priority != nil && !models.IsValidPriority(*req.Priority) {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid priority: " + *req.Priority,
		})
	}

	template, err := c.templates.Update(id, &req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ctx.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Template not found",
			})
		}
		ctx.Logger().Errorf("Failed to update template: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update template",
		})
	}

	if adminID, idErr := primitive.ObjectIDFromHex(claims.UserID); idErr == nil {
		c.audit.Log(adminID, claims.Email, models.AuditActionTemplateUpdate, "request_template", id.Hex(), "")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Template updated successfully",
		Data:    template,
	})
}

// DeleteTemplate deactivates a template (admin). Usage history is kept.
func (c *TemplateController) DeleteTemplate(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)

	id, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid template ID",
		})
	}

	if err := c.templates.SoftDelete(id); err != nil {
		if err == mongo.ErrNoDocuments {
			return ctx.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Template not found",
			})
		}
		ctx.Logger().Errorf("Failed to delete template: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete template",
		})
	}

	if adminID, idErr := primitive.ObjectIDFromHex(claims.UserID); idErr == nil {
		c.audit.Log(adminID, claims.Email, models.AuditActionTemplateDelete, "request_template", id.Hex(), "")
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Template deleted successfully",
	})
}

// ApplyTemplate creates a service request from an active template for the
// authenticated user and bumps the template's usage counter.
func (c *TemplateController) ApplyTemplate(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return ctx.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	id, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid template ID",
		})
	}

	var req models.ApplyTemplateRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}

	template, err := c.templates.GetByID(id)
	if err != nil {
		return ctx.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Template not found",
		})
	}
	if !template.Active {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Template is no longer active",
		})
	}

	request, err := c.requests.Create(userID, &models.CreateServiceRequestRequest{
		ServiceName: template.ServiceName,
		ServiceType: template.ServiceType,
		Description: template.Description,
		ClientNotes: req.ClientNotes,
	})
	if err != nil {
		ctx.Logger().Errorf("Failed to create request from template %s: %v", id.Hex(), err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create service request",
		})
	}

	// Carry the template's ritual plan and priority onto the new request
	if len(template.RitualSteps) > 0 {
		if updated, stepErr := c.requests.UpdateRitualSteps(request.ID, template.RitualSteps); stepErr == nil {
			request = updated
		}
	}
	if template.Priority != "" && template.Priority != request.Priority {
		if updated, prioErr := c.requests.UpdatePriority(request.ID, template.Priority); prioErr == nil {
			request = updated
		}
	}

	if err := c.templates.IncrementUsage(id); err != nil {
		ctx.Logger().Warnf("Failed to bump usage for template %s: %v", id.Hex(), err)
	}

	c.hub.BroadcastToAdmins(websocket.Notification{
		Type:    websocket.NotificationTypeRequestCreated,
		Message: "New service request from template: " + template.Name,
		Data:    request,
	})

	return ctx.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Service request created from template",
		Data:    request,
	})
}
