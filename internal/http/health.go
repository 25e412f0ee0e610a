package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pawsitivecheck/syncconsole/internal/coordinator"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`

	// Consoles is the number of live sync coordinators.
	Consoles *int `json:"consoles,omitempty"`
}

type HealthController struct {
	db      HealthChecker
	status  StatusSource
	version string

	coordinators *coordinator.Registry
}

// NewHealthController creates a health controller. db and status may be nil.
func NewHealthController(db HealthChecker, status StatusSource, version string) *HealthController {
	return &HealthController{
		db:      db,
		status:  status,
		version: version,
	}
}

// Status reports local health. Upstream trouble degrades the report but never
// makes the console unhealthy.
func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	if h.status != nil {
		snap := h.status.Snapshot()
		switch {
		case snap.Stale():
			checks["admin_api"] = "degraded"
		case snap.FetchedAt.IsZero():
			checks["admin_api"] = "pending"
		default:
			checks["admin_api"] = "ok"
		}
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}
	if h.coordinators != nil {
		n := h.coordinators.Len()
		health.Consoles = &n
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
