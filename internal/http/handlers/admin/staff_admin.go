package admin

import (
	"github.com/megano/internal/authz"
	"github.com/megano/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GrantStaffRequest 授予员工角色
type GrantStaffRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Role   string `json:"role"`
}

// AdminGrantStaff 授予用户员工角色
func (h *Handler) AdminGrantStaff(c *gin.Context) {
	var req GrantStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	role := req.Role
	if role == "" {
		role = authz.RoleStaff
	}
	if _, err := h.UserAuthService.GetUserByID(req.UserID); err != nil {
		respondServiceError(c, err)
		return
	}
	if err := h.AuthzService.GrantRole(req.UserID, role); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	roles, err := h.AuthzService.GetUserRoles(req.UserID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	operatorID, _ := getStaffID(c)
	requestLog(c).Infow("admin_staff_granted", "user_id", req.UserID, "role", role, "operator_id", operatorID)
	response.Success(c, gin.H{"user_id": req.UserID, "roles": roles})
}
