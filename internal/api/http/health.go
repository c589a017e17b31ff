package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is any backend the health endpoint can probe. The document
// store and the cache both satisfy it.
type Pinger interface {
	Ping(ctx context.Context) error
}

const probeTimeout = 1 * time.Second

// HealthResponse carries the overall verdict plus one entry per
// backend: "up", "down", or "disabled" when the backend is not
// configured.
type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

type HealthHandler struct {
	serviceName string
	version     string
	store       Pinger
	cache       Pinger
}

// NewHealthHandler wires the probed backends. Pass nil for a backend
// that is not configured; it is reported as "disabled" instead of
// probed.
func NewHealthHandler(serviceName, version string, store, cache Pinger) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		store:       store,
		cache:       cache,
	}
}

// HealthCheck always answers 200; a backend failure downgrades Status
// to "degraded" so monitors can alert without the endpoint flapping.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	checks := map[string]string{
		"store": probe(c.Request.Context(), h.store),
		"cache": probe(c.Request.Context(), h.cache),
	}

	status := "healthy"
	for _, state := range checks {
		if state == "down" {
			status = "degraded"
			break
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    status,
		Service:   h.serviceName,
		Version:   h.version,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	})
}

func probe(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := p.Ping(pctx); err != nil {
		return "down"
	}
	return "up"
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
