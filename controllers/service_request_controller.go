package controllers

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yourspellcaster/spellcaster_backend/middleware"
	"github.com/yourspellcaster/spellcaster_backend/models"
	"github.com/yourspellcaster/spellcaster_backend/repositories"
	"github.com/yourspellcaster/spellcaster_backend/utils"
	"github.com/yourspellcaster/spellcaster_backend/websocket"
)

// ServiceRequestController handles the service request lifecycle for both
// clients and admins.
type ServiceRequestController struct {
	requests *repositories.ServiceRequestRepository
	audit    *repositories.AuditRepository
	hub      *websocket.Hub
}

// NewServiceRequestController creates a new service request controller
func NewServiceRequestController(db *mongo.Database, hub *websocket.Hub) *ServiceRequestController {
	return &ServiceRequestController{
		requests: repositories.NewServiceRequestRepository(db),
		audit:    repositories.NewAuditRepository(db),
		hub:      hub,
	}
}

// CreateRequest submits a new service request for the authenticated user
func (c *ServiceRequestController) CreateRequest(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return ctx.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var req models.CreateServiceRequestRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}
	if err := ctx.Validate(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Service name, type and description are required",
		})
	}

	request, err := c.requests.Create(userID, &req)
	if err != nil {
		ctx.Logger().Errorf("Failed to create service request: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create service request",
		})
	}

	// New work in the queue; let every connected admin know
	c.hub.BroadcastToAdmins(websocket.Notification{
		Type:    websocket.NotificationTypeRequestCreated,
		Message: "New service request: " + request.ServiceName,
		Data:    request,
	})

	return ctx.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Service request created successfully",
		Data:    request,
	})
}

// GetMyRequests returns the authenticated user's requests
func (c *ServiceRequestController) GetMyRequests(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return ctx.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	limit, skip := paginationParams(ctx)
	requests, err := c.requests.GetUserRequests(userID, limit, skip)
	if err != nil {
		ctx.Logger().Errorf("Failed to list service requests: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve service requests",
		})
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Service requests retrieved successfully",
		Data:    requests,
	})
}

// GetRequest returns one request. Non-admin callers only see their own.
func (c *ServiceRequestController) GetRequest(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)

	id, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request ID",
		})
	}

	request, err := c.requests.GetByID(id)
	if err != nil {
		return ctx.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Service request not found",
		})
	}

	if claims.UserType != models.RoleAdmin && request.UserID.Hex() != claims.UserID {
		// Hide the existence of other users' requests
		return ctx.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Service request not found",
		})
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Service request retrieved successfully",
		Data:    request,
	})
}

// GetAdminRequests returns the filtered admin queue with a total count
func (c *ServiceRequestController) GetAdminRequests(ctx echo.Context) error {
	limit, skip := paginationParams(ctx)
	filter := models.ServiceRequestFilter{
		Status:      ctx.QueryParam("status"),
		ServiceType: ctx.QueryParam("serviceType"),
		Priority:    ctx.QueryParam("priority"),
		Search:      ctx.QueryParam("search"),
		Limit:       limit,
		Skip:        skip,
	}

	if filter.Status != "" && !models.IsValidRequestStatus(filter.Status) {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid status filter",
		})
	}

	requests, err := c.requests.GetAdminRequests(filter)
	if err != nil {
		ctx.Logger().Errorf("Failed to list admin requests: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve service requests",
		})
	}

	total, err := c.requests.Count(filter)
	if err != nil {
		total = int64(len(requests))
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Service requests retrieved successfully",
		Data: map[string]interface{}{
			"requests": requests,
			"total":    total,
		},
	})
}

// UpdateRequest applies admin mutations: status transitions, priority,
// assignment, notes and ritual steps. Each provided field is applied in turn.
func (c *ServiceRequestController) UpdateRequest(ctx echo.Context) error {
	claims := middleware.GetUserFromToken(ctx)

	id, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request ID",
		})
	}

	var req models.UpdateServiceRequestRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}

	// Reject the whole body before touching the document so a bad field
	// cannot leave a partial update behind
	assignee, msg := validateRequestUpdate(&req)
	if msg != "" {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: msg,
		})
	}

	var updated *models.ServiceRequest

	if req.Status != "" {
		updated, err = c.requests.UpdateStatus(id, req.Status, req.StatusNote)
		if err != nil {
			return c.requestMutationError(ctx, err)
		}
		c.logAudit(ctx, claims, models.AuditActionRequestStatus, id, req.Status)
	}

	if req.Priority != "" {
		updated, err = c.requests.UpdatePriority(id, req.Priority)
		if err != nil {
			return c.requestMutationError(ctx, err)
		}
		c.logAudit(ctx, claims, models.AuditActionRequestPriority, id, req.Priority)
	}

	if assignee != nil {
		updated, err = c.requests.Assign(id, *assignee)
		if err != nil {
			return c.requestMutationError(ctx, err)
		}
		c.logAudit(ctx, claims, models.AuditActionRequestAssign, id, req.AssignedTo)
	}

	if req.AdminNotes != "" {
		updated, err = c.requests.AddAdminNotes(id, req.AdminNotes)
		if err != nil {
			return c.requestMutationError(ctx, err)
		}
		c.logAudit(ctx, claims, models.AuditActionRequestNotes, id, "")
	}

	if req.RitualSteps != nil {
		updated, err = c.requests.UpdateRitualSteps(id, req.RitualSteps)
		if err != nil {
			return c.requestMutationError(ctx, err)
		}
		c.logAudit(ctx, claims, models.AuditActionRequestSteps, id, "")
	}

	c.hub.SendToUser(updated.UserID, websocket.Notification{
		Type:    websocket.NotificationTypeRequestUpdated,
		Message: "Your service request was updated",
		Data:    updated,
	})

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Service request updated successfully",
		Data:    updated,
	})
}

// validateRequestUpdate checks every field of an admin update body up front.
// Returns the parsed assignee and a non-empty rejection message when any
// field is invalid or nothing actionable was provided.
func validateRequestUpdate(req *models.UpdateServiceRequestRequest) (*primitive.ObjectID, string) {
	if req.Status == "" && req.Priority == "" && req.AssignedTo == "" &&
		req.AdminNotes == "" && req.RitualSteps == nil {
		return nil, "No updates provided"
	}
	if req.Status != "" && !models.IsValidRequestStatus(req.Status) {
		return nil, "Invalid status: " + req.Status
	}
	if req.Priority != "" && !models.IsValidPriority(req.Priority) {
		return nil, "Invalid priority: " + req.Priority
	}

	var assignee *primitive.ObjectID
	if req.AssignedTo != "" {
		id, err := primitive.ObjectIDFromHex(req.AssignedTo)
		if err != nil {
			return nil, "Invalid assignee ID"
		}
		assignee = &id
	}
	return assignee, ""
}

// GetRequestAudit returns the audit trail of a service request (admin)
func (c *ServiceRequestController) GetRequestAudit(ctx echo.Context) error {
	id, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request ID",
		})
	}

	entries, err := c.audit.ListForTarget("service_request", id.Hex())
	if err != nil {
		ctx.Logger().Errorf("Failed to list audit entries: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve audit trail",
		})
	}

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Audit trail retrieved successfully",
		Data:    entries,
	})
}

// UploadRitualPhoto attaches a Base64 encoded photo to a ritual step
func (c *ServiceRequestController) UploadRitualPhoto(ctx echo.Context) error {
	id, err := primitive.ObjectIDFromHex(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request ID",
		})
	}

	var req models.RitualPhotoUploadRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}
	if err := ctx.Validate(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Step number and photo file are required",
		})
	}

	// Accept data URIs as well as bare Base64
	payload := req.PhotoFile
	if idx := strings.Index(payload, ","); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid photo encoding",
		})
	}

	photoURL, thumbURL, err := utils.SaveRitualPhoto(data, id.Hex(), req.FileName)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	updated, err := c.requests.AppendStepPhoto(id, req.StepNumber, photoURL)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ctx.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Service request or ritual step not found",
			})
		}
		ctx.Logger().Errorf("Failed to attach ritual photo: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to attach ritual photo",
		})
	}

	c.hub.SendToUser(updated.UserID, websocket.Notification{
		Type:    websocket.NotificationTypeRequestUpdated,
		Message: "A ritual photo was added to your request",
		Data:    updated,
	})

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Ritual photo uploaded successfully",
		Data: map[string]interface{}{
			"photoUrl":     photoURL,
			"thumbnailUrl": thumbURL,
			"request":      updated,
		},
	})
}

func (c *ServiceRequestController) requestMutationError(ctx echo.Context, err error) error {
	switch err {
	case mongo.ErrNoDocuments:
		return ctx.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Service request not found",
		})
	case repositories.ErrInvalidTransition:
		return ctx.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid status transition",
		})
	default:
		ctx.Logger().Errorf("Failed to update service request: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update service request",
		})
	}
}

func (c *ServiceRequestController) logAudit(ctx echo.Context, claims *middleware.JwtCustomClaims, action string, target primitive.ObjectID, detail string) {
	adminID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return
	}
	c.audit.Log(adminID, claims.Email, action, "service_request", target.Hex(), detail)
}

// paginationParams reads limit/skip query params with sane defaults
func paginationParams(ctx echo.Context) (int64, int64) {
	limit := int64(50)
	skip := int64(0)
	if v, err := strconv.ParseInt(ctx.QueryParam("limit"), 10, 64); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.ParseInt(ctx.QueryParam("skip"), 10, 64); err == nil && v > 0 {
		skip = v
	}
	return limit, skip
}
