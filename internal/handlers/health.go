package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health reports each dependency as "ok" or "error" and always answers 200.
func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	resp := gin.H{"environment": h.cfg.Environment}
	for _, check := range h.checks {
		state := "ok"
		if err := check.Ping(ctx); err != nil {
			state = "error"
			status = "degraded"
			h.log.Error().Err(err).Str("dependency", check.Name).Msg("health check failed")
		}
		resp[check.Name] = state
	}
	resp["status"] = status

	c.JSON(http.StatusOK, resp)
}
