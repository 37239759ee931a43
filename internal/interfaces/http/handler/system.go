package handler

import (
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	apiName    = "QuoteWire API"
	apiVersion = "1.0.0"
)

// SystemHandler serves the unauthenticated service metadata endpoints.
type SystemHandler struct {
	BaseHandler
	startedAt time.Time
}

func NewSystemHandler() *SystemHandler {
	return &SystemHandler{startedAt: time.Now()}
}

type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// GetSystemInfo reports the running build and how long it has been up.
// GET /api/v1/system/info
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      apiName,
		Version:   apiVersion,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
	})
}

type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Ping answers pong. Load balancers hit this before routing traffic.
// GET /api/v1/system/ping
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
