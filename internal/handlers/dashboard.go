package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h HandlerSet) DashboardListings(c *gin.Context) {
	listings, err := h.listings.ListForSeller(c.Request.Context(), mustUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": toListings(listings)})
}

func (h HandlerSet) DashboardInquiries(c *gin.Context) {
	page, okPage := queryInt(c, "page", 1)
	perPage, okPer := queryInt(c, "perPage", 0)
	if !okPage || !okPer {
		badRequest(c, "invalid query parameters")
		return
	}

	inquiries, err := h.inquiries.ListForSeller(c.Request.Context(), mustUser(c).ID, page, perPage)
	if err != nil {
		h.fail(c, err)
		return
	}

	items := make([]inquiryResponse, 0, len(inquiries))
	for _, q := range inquiries {
		items = append(items, toInquiry(q))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "page": page})
}
