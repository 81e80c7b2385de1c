package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"flipyard/internal/apperr"
)

func (h HandlerSet) AdminListUsers(c *gin.Context) {
	page, perPage := 1, 0
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 1 {
		page = v
	}
	if v, err := strconv.Atoi(c.Query("perPage")); err == nil && v > 0 {
		perPage = v
	}

	users, err := h.admin.ListUsers(c.Request.Context(), page, perPage)
	if err != nil {
		h.fail(c, err)
		return
	}

	items := make([]adminUserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, adminUserResponse{userResponse: toUser(u), IsBanned: u.IsBanned})
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "page": page})
}

func (h HandlerSet) AdminBan(c *gin.Context) {
	h.setBanned(c, true)
}

func (h HandlerSet) AdminUnban(c *gin.Context) {
	h.setBanned(c, false)
}

func (h HandlerSet) setBanned(c *gin.Context, banned bool) {
	target := c.Param("id")
	if banned && target == mustUser(c).ID {
		h.fail(c, apperr.Forbidden("admins cannot ban themselves"))
		return
	}
	if err := h.admin.SetBanned(c.Request.Context(), target, banned); err != nil {
		h.fail(c, err)
		return
	}
	ok(c)
}
