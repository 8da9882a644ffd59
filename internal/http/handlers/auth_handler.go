// README: Auth handlers for register, login and /me.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ada/internal/modules/tenant"
	"ada/internal/types"
)

type accountService interface {
	Register(ctx context.Context, cmd tenant.RegisterCommand) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context, caller types.Caller) (tenant.Account, error)
}

type AuthHandler struct {
	accounts accountService
}

func NewAuthHandler(accounts accountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

type registerReq struct {
	TenantName string `json:"tenant_name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "tenant_name, a valid email and password are required")
		return
	}
	token, err := h.accounts.Register(c.Request.Context(), tenant.RegisterCommand{
		TenantName: req.TenantName,
		Email:      req.Email,
		Password:   req.Password,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Login accepts a JSON body or an OAuth2-style form with username/password.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if strings.HasPrefix(c.ContentType(), "application/json") {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
	} else {
		req.Email = c.PostForm("username")
		req.Password = c.PostForm("password")
	}
	if req.Email == "" || req.Password == "" {
		writeError(c, http.StatusBadRequest, "email and password are required")
		return
	}
	token, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	acc, err := h.accounts.Me(c.Request.Context(), who)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, acc)
}
