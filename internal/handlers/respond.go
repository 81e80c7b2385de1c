package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"flipyard/internal/apperr"
	"flipyard/internal/middleware"
	"flipyard/internal/models"
)

// fail renders err as {"error": message}. Internal errors are logged and
// reach the client only as "internal_server_error".
func (h HandlerSet) fail(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError && apperr.KindOf(err) == apperr.KindInternal {
		h.log.Error().Err(err).
			Str("path", c.FullPath()).
			Str("request_id", middleware.RequestIDFrom(c)).
			Msg("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": apperr.PublicMessage(err)})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// mustUser returns the caller behind RequireUser.
func mustUser(c *gin.Context) models.User {
	user, _ := middleware.CurrentUser(c)
	return user
}

func mustUserOpt(c *gin.Context) (models.User, bool) {
	return middleware.CurrentUser(c)
}

func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func queryFloat(c *gin.Context, key string) (float64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
