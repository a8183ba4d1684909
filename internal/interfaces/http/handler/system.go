package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping() error
}

// SystemHandler serves health, info and metrics
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	db        Pinger
	gatherer  prometheus.Gatherer
	startTime time.Time
}

// NewSystemHandler creates a SystemHandler. db may be nil when the server
// runs without a database; gatherer defaults to the global registry.
func NewSystemHandler(name, version string, db Pinger, gatherer prometheus.Gatherer) *SystemHandler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &SystemHandler{
		name:      name,
		version:   version,
		db:        db,
		gatherer:  gatherer,
		startTime: time.Now(),
	}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health reports 200 when the database answers, 503 when it does not
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Database: "disabled"}
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			_ = c.Error(err)
			resp.Status = "degraded"
			resp.Database = "unreachable"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
		resp.Database = "ok"
	}
	c.JSON(http.StatusOK, resp)
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// GetSystemInfo returns the build and uptime of the process
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Metrics exposes the Prometheus registry
func (h *SystemHandler) Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
}

// RegisterRoutes mounts /health and /metrics at the engine root
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
	rg.GET("/metrics", h.Metrics())
}
