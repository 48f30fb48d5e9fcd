package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/student-management/internal/response"
)

// Pinger is anything that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness of the API and its store.
type HealthHandler struct {
	store     Pinger
	startTime time.Time
	log       zerolog.Logger
}

// NewHealthHandler creates a HealthHandler. store may be nil.
func NewHealthHandler(store Pinger, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		store:     store,
		startTime: time.Now(),
		log:       log.With().Str("component", "health_handler").Logger(),
	}
}

// Health godoc
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	uptime := time.Since(h.startTime).Round(time.Second).String()

	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			h.log.Warn().Err(err).Msg("Store ping failed")
			response.Success(c, http.StatusServiceUnavailable, gin.H{"status": "unavailable", "uptime": uptime})
			return
		}
	}

	response.Success(c, http.StatusOK, gin.H{"status": "ok", "uptime": uptime})
}
