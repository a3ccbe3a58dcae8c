package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/provnet/isp-admin/internal/core/domain"
	"github.com/provnet/isp-admin/internal/core/ports"
)

// HealthHandler handles GET /health, the liveness probe.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// ReadinessHandler handles GET /health/ready, the readiness probe. The local
// store is required; the remote store is reported but never fails readiness,
// because the service is designed to run offline.
type ReadinessHandler struct {
	local  ports.LocalStore
	remote ports.RemoteStore
}

func NewReadinessHandler(local ports.LocalStore, remote ports.RemoteStore) *ReadinessHandler {
	return &ReadinessHandler{local: local, remote: remote}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus)
	status := "ok"
	httpStatus := http.StatusOK

	// Local store write round trip: a broken cache file makes the process
	// useless, so this one fails readiness.
	probe := domain.NewEnvelope(json.RawMessage(`"ok"`))
	if err := h.local.Save("healthcheck", probe); err != nil {
		deps["local_cache"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
		status = "unready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		deps["local_cache"] = dependencyStatus{Status: "ok"}
	}

	// Remote store is best-effort: degraded, not unready.
	if err := h.remote.Ping(ctx); err != nil {
		deps[h.remote.Name()] = dependencyStatus{Status: "unreachable", Error: err.Error()}
		status = "degraded"
	} else {
		deps[h.remote.Name()] = dependencyStatus{Status: "ok"}
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
