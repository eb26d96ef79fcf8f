package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/vestfolio/backend/internal/infrastructure/persistence"
	"github.com/vestfolio/backend/internal/interfaces/http/dto"
)

// HealthHandler handles health and system API endpoints
type HealthHandler struct {
	BaseHandler
	db        *persistence.Database
	redis     *redis.Client
	appName   string
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler. The Redis client is
// optional; a nil client is reported as "disabled".
func NewHealthHandler(db *persistence.Database, redisClient *redis.Client, appName string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		redis:     redisClient,
		appName:   appName,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
// @name HandlerHealthResponse
type HealthResponse struct {
	Status   string `json:"status" example:"healthy"`
	Time     string `json:"time" example:"2026-08-31T12:00:00Z"`
	Database string `json:"database" example:"ok"`
	Redis    string `json:"redis" example:"ok"`
}

// SystemInfoResponse represents the system information response
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name      string `json:"name" example:"vestfolio-backend"`
	GoVersion string `json:"go_version" example:"go1.24.0"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// Health godoc
// @ID           getHealth
// @Summary      Health check
// @Description  Reports liveness of the API and its backing stores
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "healthy",
		Time:     time.Now().Format(time.RFC3339),
		Database: "ok",
		Redis:    "ok",
	}
	status := http.StatusOK

	if err := h.db.Ping(); err != nil {
		resp.Status = "unhealthy"
		resp.Database = "error"
		status = http.StatusServiceUnavailable
	}

	if h.redis == nil {
		resp.Redis = "disabled"
	} else if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
		// Redis only carries notifications and rate limit counters; a
		// Redis outage degrades the service without taking it down
		resp.Redis = "error"
		if resp.Status == "healthy" {
			resp.Status = "degraded"
		}
	}

	c.JSON(status, resp)
}

// Ready godoc
// @ID           getReady
// @Summary      Readiness check
// @Description  Reports whether the API can serve traffic
// @Tags         system
// @Produce      json
// @Success      200 {object} SuccessResponse
// @Failure      503 {object} dto.Response
// @Router       /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(
			dto.ErrCodeInternal,
			"Database is not reachable",
		))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Info godoc
// @ID           getSystemInfo
// @Summary      Get system information
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Security     BearerAuth
// @Router       /system/info [get]
func (h *HealthHandler) Info(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.appName,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}
