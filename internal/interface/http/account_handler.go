package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/crm-accounts/internal/application"
	"github.com/oksasatya/crm-accounts/internal/interface/middleware"
	"github.com/oksasatya/crm-accounts/pkg/response"
)

const maxAvatarBytes = 5 << 20

type AccountHandler struct {
	Svc    *application.AccountService
	Logger *logrus.Logger
}

func NewAccountHandler(svc *application.AccountService, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{Svc: svc, Logger: logger}
}

type createAccountRequest struct {
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	Email     string       `json:"email"`
	Phone     string       `json:"phone" binding:"max=20"`
	Role      string       `json:"role"`
	Password  string       `json:"password"`
	IsActive  flexibleFlag `json:"is_active"`
}

type listAccountsQuery struct {
	Search   string `form:"search"`
	Role     string `form:"role"`
	IsActive string `form:"is_active"`
	Page     int    `form:"page" binding:"omitempty,gte=1"`
	PageSize int    `form:"page_size" binding:"omitempty,gte=1,lte=100"`
}

type searchQuery struct {
	Q    string `form:"q" binding:"required"`
	Size int    `form:"size" binding:"omitempty,gte=1,lte=50"`
}

func (h *AccountHandler) targetID(c *gin.Context) (int64, bool) {
	id, valid := parseID(c.Param("id"))
	if !valid {
		response.Abort(c, http.StatusBadRequest, "validation_error", "invalid account id", gin.H{"id": "must be a positive integer"})
	}
	return id, valid
}

// List GET /api/users
func (h *AccountHandler) List(c *gin.Context) {
	var q listAccountsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	actor, _ := middleware.ActorFrom(c)
	out, err := h.Svc.ListAccounts(c.Request.Context(), actor, application.ListAccountsInput{
		Search:   q.Search,
		Role:     q.Role,
		IsActive: q.IsActive,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		writeError(c, h.Logger, "list", err)
		return
	}
	succeeded("list")
	ok(c, http.StatusOK, toRowDTOs(out.Rows), "accounts", response.PageMeta{
		Page:      out.Page,
		PageSize:  out.PageSize,
		Total:     out.Total,
		CanManage: out.CanManage,
	})
}

// Create POST /api/users
func (h *AccountHandler) Create(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, _ := middleware.ActorFrom(c)
	a, err := h.Svc.CreateAccount(c.Request.Context(), actor, application.CreateAccountInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Role:      req.Role,
		Password:  req.Password,
		IsActive:  string(req.IsActive),
	})
	if err != nil {
		writeError(c, h.Logger, "create", err)
		return
	}
	succeeded("create")
	ok(c, http.StatusCreated, toAccountDTO(a), "account created", nil)
}

// Get GET /api/users/:id
func (h *AccountHandler) Get(c *gin.Context) {
	id, valid := h.targetID(c)
	if !valid {
		return
	}
	actor, _ := middleware.ActorFrom(c)
	a, err := h.Svc.GetAccount(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, h.Logger, "", err)
		return
	}
	ok(c, http.StatusOK, toAccountDTO(a), "account", nil)
}

// ToggleActive PATCH /api/users/:id/toggle-active
func (h *AccountHandler) ToggleActive(c *gin.Context) {
	id, valid := h.targetID(c)
	if !valid {
		return
	}
	actor, _ := middleware.ActorFrom(c)
	a, err := h.Svc.ToggleActive(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, h.Logger, "toggle_active", err)
		return
	}
	succeeded("toggle_active")
	ok(c, http.StatusOK, gin.H{"id": a.ID, "is_active": a.IsActive}, "account status updated", nil)
}

// Delete DELETE /api/users/:id
func (h *AccountHandler) Delete(c *gin.Context) {
	id, valid := h.targetID(c)
	if !valid {
		return
	}
	actor, _ := middleware.ActorFrom(c)
	if err := h.Svc.DeleteAccount(c.Request.Context(), actor, id); err != nil {
		writeError(c, h.Logger, "delete", err)
		return
	}
	succeeded("delete")
	ok(c, http.StatusOK, gin.H{"id": id, "deleted": true}, "account deleted", nil)
}

// Search GET /api/users/search?q=
func (h *AccountHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	actor, _ := middleware.ActorFrom(c)
	hits, err := h.Svc.SearchAccounts(c.Request.Context(), actor, strings.TrimSpace(q.Q), q.Size)
	if err != nil {
		writeError(c, h.Logger, "search", err)
		return
	}
	succeeded("search")
	ok(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
}

// UploadAvatar POST /api/me/avatar (multipart field "avatar")
func (h *AccountHandler) UploadAvatar(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAvatarBytes)
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.Abort(c, http.StatusBadRequest, "validation_error", "invalid payload", gin.H{"avatar": "is required (max 5MB)"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.Logger, "avatar", err)
		return
	}
	defer func() { _ = f.Close() }()

	actor, _ := middleware.ActorFrom(c)
	a, err := h.Svc.UploadAvatar(c.Request.Context(), actor, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		writeError(c, h.Logger, "avatar", err)
		return
	}
	succeeded("avatar")
	ok(c, http.StatusOK, toAccountDTO(a), "avatar updated", nil)
}
