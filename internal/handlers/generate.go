package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flipyard/internal/apperr"
)

type generateRequest struct {
	URL         string  `json:"url"`
	AskingPrice float64 `json:"askingPrice"`
}

// GenerateListing fetches the seller's site and returns a draft listing.
func (h HandlerSet) GenerateListing(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	draft, err := h.generator.Infer(c.Request.Context(), req.URL, req.AskingPrice)
	if err != nil {
		if apperr.Is(err, apperr.KindFetch) {
			h.log.Info().Err(err).Str("url", req.URL).Msg("listing inference fetch failed")
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
				"error": apperr.PublicMessage(err) + ". Fill in the form manually.",
			})
			return
		}
		h.fail(c, err)
		return
	}

	draft.TechStack = orEmpty(draft.TechStack)
	draft.Monetization = orEmpty(draft.Monetization)
	draft.IncludedAssets = orEmpty(draft.IncludedAssets)
	c.JSON(http.StatusOK, draft)
}
