package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/crm-accounts/internal/application"
	"github.com/oksasatya/crm-accounts/internal/interface/metrics"
	"github.com/oksasatya/crm-accounts/internal/interface/middleware"
	"github.com/oksasatya/crm-accounts/pkg/helpers"
	"github.com/oksasatya/crm-accounts/pkg/response"
)

type AuthHandler struct {
	Auth     *application.AuthService
	Accounts *application.AccountService
	Cookies  *helpers.CookieManager
	Logger   *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, accounts *application.AccountService, cookies *helpers.CookieManager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Accounts: accounts, Cookies: cookies, Logger: logger}
}

// Field rules live in the application validators so every failure is reported at once.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func sessionMeta(s *application.Session) gin.H {
	return gin.H{"access_expires_at": s.AccessTokenExpiry, "refresh_expires_at": s.RefreshTokenExpiry}
}

func (h *AuthHandler) setSession(c *gin.Context, s *application.Session) {
	h.Cookies.SetPair(c, s.AccessToken, s.AccessTokenExpiry, s.RefreshToken, s.RefreshTokenExpiry)
}

// Login POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	a, sess, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_, code, _, _ := resolveError(err)
		metrics.LoginAttemptsTotal.WithLabelValues(code).Inc()
		writeError(c, h.Logger, "", err)
		return
	}
	metrics.LoginAttemptsTotal.WithLabelValues("ok").Inc()
	h.setSession(c, sess)
	ok(c, http.StatusOK, toAccountDTO(a), "login successful", sessionMeta(sess))
}

// Refresh POST /api/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie(helpers.RefreshCookie)
	if err != nil || refresh == "" {
		response.Abort(c, http.StatusUnauthorized, "unauthenticated", "missing refresh token", nil)
		return
	}
	sess, err := h.Auth.Refresh(c.Request.Context(), refresh)
	if err != nil {
		h.Cookies.Clear(c)
		writeError(c, h.Logger, "", err)
		return
	}
	h.setSession(c, sess)
	ok(c, http.StatusOK, gin.H{"refreshed": true}, "token refreshed", sessionMeta(sess))
}

// Logout POST /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	if err := h.Auth.Logout(c.Request.Context(), actor.ID); err != nil {
		writeError(c, h.Logger, "", err)
		return
	}
	h.Cookies.Clear(c)
	ok(c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

// Me GET /api/me
func (h *AuthHandler) Me(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	a, err := h.Accounts.GetAccount(c.Request.Context(), actor, actor.ID)
	if err != nil {
		writeError(c, h.Logger, "", err)
		return
	}
	ok(c, http.StatusOK, toAccountDTO(a), "profile", nil)
}

// ChangePassword POST /api/change
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, _ := middleware.ActorFrom(c)
	sess, err := h.Accounts.ChangePassword(c.Request.Context(), actor, application.ChangePasswordInput{
		OldPassword:     req.OldPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeError(c, h.Logger, "change_password", err)
		return
	}
	succeeded("change_password")
	var meta any
	if sess != nil {
		h.setSession(c, sess)
		meta = sessionMeta(sess)
	}
	ok(c, http.StatusOK, gin.H{"password_changed": true}, "password changed", meta)
}
