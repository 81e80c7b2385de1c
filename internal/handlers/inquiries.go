package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flipyard/internal/service"
)

type inquiryRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// SubmitInquiry is open to anonymous buyers; a signed-in buyer is linked
// to the inquiry.
func (h HandlerSet) SubmitInquiry(c *gin.Context) {
	var req inquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	input := service.InquiryInput{
		ListingID: c.Param("id"),
		Name:      req.Name,
		Email:     req.Email,
		Message:   req.Message,
		ClientIP:  c.ClientIP(),
	}
	if user, found := mustUserOpt(c); found {
		input.Buyer = &user
	}

	inquiry, err := h.inquiries.Submit(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toInquiry(inquiry))
}
