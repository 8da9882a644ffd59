// README: Tenant user management handlers.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ada/internal/modules/tenant"
	"ada/internal/types"
)

type userService interface {
	ListUsers(ctx context.Context, caller types.Caller) ([]tenant.User, error)
	CreateUser(ctx context.Context, caller types.Caller, cmd tenant.CreateUserCommand) (*tenant.User, error)
	ChangeRole(ctx context.Context, caller types.Caller, email string, role types.Role) error
	DeleteUser(ctx context.Context, caller types.Caller, email string) error
}

type UserHandler struct {
	users userService
}

func NewUserHandler(users userService) *UserHandler {
	return &UserHandler{users: users}
}

type userView struct {
	Email     string     `json:"email"`
	Role      types.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

type createUserReq struct {
	Email    string     `json:"email" binding:"required,email"`
	Password string     `json:"password" binding:"required"`
	Role     types.Role `json:"role" binding:"required"`
}

type changeRoleReq struct {
	Role types.Role `json:"role" binding:"required"`
}

func (h *UserHandler) List(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	users, err := h.users.ListUsers(c.Request.Context(), who)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, userView{Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt})
	}
	writeJSON(c, http.StatusOK, out)
}

func (h *UserHandler) Create(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "a valid email, password and role are required")
		return
	}
	u, err := h.users.CreateUser(c.Request.Context(), who, tenant.CreateUserCommand{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, map[string]any{"ok": true, "email": u.Email, "role": u.Role})
}

func (h *UserHandler) ChangeRole(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var req changeRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "role is required")
		return
	}
	email := c.Param("email")
	if err := h.users.ChangeRole(c.Request.Context(), who, email, req.Role); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"ok": true, "email": email, "role": req.Role})
}

func (h *UserHandler) Delete(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	email := c.Param("email")
	if err := h.users.DeleteUser(c.Request.Context(), who, email); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"ok": true, "deleted": email})
}
