package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/dujiao-next/promo/internal/authz"
	"github.com/dujiao-next/promo/internal/constants"
	"github.com/dujiao-next/promo/internal/http/response"
	"github.com/dujiao-next/promo/internal/logger"
	"github.com/dujiao-next/promo/internal/models"
	"github.com/dujiao-next/promo/internal/service"

	"github.com/gin-gonic/gin"
)

type authzSetAdminRolesPayload struct {
	Roles []string `json:"roles"`
}

type authzRolePolicyPayload struct {
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// ListAuthzRoles 列出角色及其策略
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoleSummaries()
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_failed", err)
		return
	}
	response.Success(c, roles)
}

// GetAuthzMe 获取当前管理员的角色与生效策略
func (h *Handler) GetAuthzMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_failed", err)
		return
	}
	policies, err := h.AuthzService.GetAdminPolicies(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_failed", err)
		return
	}
	response.Success(c, gin.H{
		"admin_id": adminID,
		"username": currentUsername(c),
		"is_super": isSuperAdmin(c),
		"roles":    roles,
		"policies": policies,
	})
}

// GetAuthzAdminRoles 获取指定管理员的角色
func (h *Handler) GetAuthzAdminRoles(c *gin.Context) {
	targetID, ok := parseTargetAdminID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(targetID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_failed", err)
		return
	}
	response.Success(c, gin.H{
		"admin_id": targetID,
		"roles":    roles,
	})
}

// SetAuthzAdminRoles 覆盖设置指定管理员的角色
func (h *Handler) SetAuthzAdminRoles(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	targetID, ok := parseTargetAdminID(c)
	if !ok {
		return
	}
	var req authzSetAdminRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	before, err := h.AuthzService.GetAdminRoles(targetID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_failed", err)
		return
	}
	roles, err := h.AuthzService.SetAdminRoles(targetID, req.Roles)
	if err != nil {
		respondAuthzRoleError(c, err)
		return
	}

	h.AuditService.RecordQuietly(service.AuditRecordInput{
		OperatorAdminID:  actor.AdminID,
		OperatorUsername: actor.Username,
		Action:           constants.AuditActionAdminRolesSet,
		TargetType:       constants.AuditTargetAdmin,
		TargetID:         targetID,
		Object:           actor.Object,
		Method:           actor.Method,
		RequestID:        actor.RequestID,
		Detail: models.JSON{
			"before": before,
			"after":  roles,
		},
	})
	logger.Infow("admin_authz_roles_set",
		"operator_admin_id", actor.AdminID,
		"target_admin_id", targetID,
		"roles", roles,
	)
	response.Success(c, gin.H{
		"admin_id": targetID,
		"roles":    roles,
	})
}

// GrantAuthzRolePolicy 为角色授予策略
func (h *Handler) GrantAuthzRolePolicy(c *gin.Context) {
	h.changeRolePolicy(c, constants.AuditActionPolicyGrant)
}

// RevokeAuthzRolePolicy 撤销角色策略
func (h *Handler) RevokeAuthzRolePolicy(c *gin.Context) {
	h.changeRolePolicy(c, constants.AuditActionPolicyRevoke)
}

func (h *Handler) changeRolePolicy(c *gin.Context, action string) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	role, err := authz.NormalizeRole(c.Param("role"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.role_invalid", nil)
		return
	}
	var req authzRolePolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if isBuiltinRole(role) {
		respondError(c, response.CodeForbidden, "error.permission_denied", nil)
		return
	}

	if action == constants.AuditActionPolicyGrant {
		err = h.AuthzService.GrantRolePolicy(role, req.Object, req.Action)
	} else {
		err = h.AuthzService.RevokeRolePolicy(role, req.Object, req.Action)
	}
	if err != nil {
		respondAuthzRoleError(c, err)
		return
	}

	h.AuditService.RecordQuietly(service.AuditRecordInput{
		OperatorAdminID:  actor.AdminID,
		OperatorUsername: actor.Username,
		Action:           action,
		TargetType:       constants.AuditTargetRole,
		Object:           actor.Object,
		Method:           actor.Method,
		RequestID:        actor.RequestID,
		Detail: models.JSON{
			"role":   role,
			"object": authz.NormalizeObject(req.Object),
			"action": authz.NormalizeAction(req.Action),
		},
	})
	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_failed", err)
		return
	}
	response.Success(c, gin.H{
		"role":     role,
		"policies": policies,
	})
}

func respondAuthzRoleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrRoleNotFound):
		respondError(c, response.CodeBadRequest, "error.role_not_found", nil)
	case errors.Is(err, authz.ErrRoleInvalid), errors.Is(err, authz.ErrActionInvalid):
		respondError(c, response.CodeBadRequest, "error.role_invalid", nil)
	case errors.Is(err, authz.ErrAdminRequired):
		respondError(c, response.CodeBadRequest, "error.admin_id_invalid", nil)
	default:
		respondError(c, response.CodeInternal, "error.role_update_failed", err)
	}
}

func parseTargetAdminID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.admin_id_invalid", nil)
		return 0, false
	}
	return uint(id), true
}

func isSuperAdmin(c *gin.Context) bool {
	value, ok := c.Get("admin_is_super")
	if !ok {
		return false
	}
	isSuper, _ := value.(bool)
	return isSuper
}

func isBuiltinRole(role string) bool {
	for _, seed := range authz.BuiltinRoleSeeds() {
		normalized, err := authz.NormalizeRole(seed.Role)
		if err == nil && normalized == role && seed.Immutable {
			return true
		}
	}
	return false
}
