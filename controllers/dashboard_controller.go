package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yourspellcaster/spellcaster_backend/config"
	"github.com/yourspellcaster/spellcaster_backend/models"
	"github.com/yourspellcaster/spellcaster_backend/repositories"
)

const (
	dashboardCacheKey = "dashboard:stats"
	dashboardCacheTTL = 60 * time.Second
)

// DashboardStats is the admin dashboard payload
type DashboardStats struct {
	RequestsByStatus map[string]int64        `json:"requestsByStatus"`
	TotalRevenue     float64                 `json:"totalRevenue"`
	PendingRefunds   int64                   `json:"pendingRefunds"`
	RecentRequests   []models.ServiceRequest `json:"recentRequests"`
	GeneratedAt      time.Time               `json:"generatedAt"`
}

// DashboardController aggregates queue and revenue metrics for admins
type DashboardController struct {
	requests *repositories.ServiceRequestRepository
	refunds  *repositories.RefundRepository
}

// NewDashboardController creates a new dashboard controller
func NewDashboardController(db *mongo.Database) *DashboardController {
	return &DashboardController{
		requests: repositories.NewServiceRequestRepository(db),
		refunds:  repositories.NewRefundRepository(db),
	}
}

// GetStats returns dashboard metrics, cached for a minute when Redis is up
func (c *DashboardController) GetStats(ctx echo.Context) error {
	if cached := readCachedStats(); cached != nil {
		return ctx.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "Dashboard stats retrieved successfully",
			Data:    cached,
		})
	}

	counts, err := c.requests.CountByStatus()
	if err != nil {
		ctx.Logger().Errorf("Failed to count requests: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve dashboard stats",
		})
	}

	revenue, err := c.requests.TotalRevenue()
	if err != nil {
		ctx.Logger().Errorf("Failed to compute revenue: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve dashboard stats",
		})
	}

	pendingRefunds, err := c.refunds.CountPending()
	if err != nil {
		ctx.Logger().Errorf("Failed to count pending refunds: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve dashboard stats",
		})
	}

	recent, err := c.requests.GetAdminRequests(models.ServiceRequestFilter{Limit: 10})
	if err != nil {
		ctx.Logger().Errorf("Failed to list recent requests: %v", err)
		return ctx.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve dashboard stats",
		})
	}

	stats := &DashboardStats{
		RequestsByStatus: counts,
		TotalRevenue:     revenue,
		PendingRefunds:   pendingRefunds,
		RecentRequests:   recent,
		GeneratedAt:      time.Now(),
	}
	writeCachedStats(stats)

	return ctx.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Dashboard stats retrieved successfully",
		Data:    stats,
	})
}

func readCachedStats() *DashboardStats {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}

	redisCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, err := rdb.Get(redisCtx, dashboardCacheKey).Bytes()
	if err != nil {
		return nil
	}

	var stats DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil
	}
	return &stats
}

func writeCachedStats(stats *DashboardStats) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}

	redisCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	rdb.Set(redisCtx, dashboardCacheKey, raw, dashboardCacheTTL)
}
