package handler

import (
	"net/http"
	"time"

	"evoting-portal/pkg/logger"
	"evoting-portal/pkg/redis"
)

// HealthHandler reports service liveness and Redis reachability
type HealthHandler struct {
	redis     *redis.Client
	responder *Responder
	log       *logger.Logger
	started   time.Time
}

// NewHealthHandler creates a health handler
func NewHealthHandler(redisClient *redis.Client, responder *Responder, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		redis:     redisClient,
		responder: responder,
		log:       log,
		started:   time.Now(),
	}
}

// Health returns the service status. Redis being down degrades the report
// but does not fail it; the portal can still proxy the backend.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	redisStatus := "ok"
	if err := h.redis.Health(r.Context()); err != nil {
		h.log.WithError(err).Warn("Redis health check failed")
		status = "degraded"
		redisStatus = "unavailable"
	}

	h.responder.JSON(w, http.StatusOK, map[string]interface{}{
		"status": status,
		"redis":  redisStatus,
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}
