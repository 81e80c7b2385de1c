package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"flipyard/internal/service"
)

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type recoverRequest struct {
	Email string `json:"email"`
}

type resetRequest struct {
	Token string `json:"token"`
	NewPw string `json:"newPw"`
}

type changePasswordRequest struct {
	CurrentPw string `json:"currentPw"`
	NewPw     string `json:"newPw"`
}

func (h HandlerSet) RegisterAccount(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	grant, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.setSessionCookie(c, grant.Token, grant.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": toUser(grant.User)})
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	grant, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.setSessionCookie(c, grant.Token, grant.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": toUser(grant.User)})
}

// Logout always clears the cookie; a failed revoke is only logged.
func (h HandlerSet) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.cfg.Security.CookieName); err == nil && token != "" {
		if err := h.auth.Logout(c.Request.Context(), token); err != nil {
			h.log.Warn().Err(err).Msg("revoke session")
		}
	}
	h.clearSessionCookie(c)
	ok(c)
}

func (h HandlerSet) Me(c *gin.Context) {
	user, found := mustUserOpt(c)
	if !found {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUser(user)})
}

// RecoverPassword answers the same way whether or not the address exists.
func (h HandlerSet) RecoverPassword(c *gin.Context) {
	var req recoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	h.auth.RequestPasswordReset(c.Request.Context(), req.Email)
	ok(c)
}

func (h HandlerSet) ResetPassword(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := h.auth.ResetPassword(c.Request.Context(), req.Token, req.NewPw); err != nil {
		h.fail(c, err)
		return
	}
	ok(c)
}

func (h HandlerSet) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	user := mustUser(c)
	if err := h.auth.ChangePassword(c.Request.Context(), user.ID, req.CurrentPw, req.NewPw); err != nil {
		h.fail(c, err)
		return
	}
	ok(c)
}

func (h HandlerSet) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = int(h.cfg.Security.SessionTTL.Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Security.CookieName, token, maxAge, "/", "", h.cfg.IsProduction(), true)
}

func (h HandlerSet) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Security.CookieName, "", -1, "/", "", h.cfg.IsProduction(), true)
}
