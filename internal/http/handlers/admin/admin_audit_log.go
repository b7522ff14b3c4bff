package admin

import (
	"strings"

	handlershared "github.com/dujiao-next/promo/internal/http/handlers/shared"
	"github.com/dujiao-next/promo/internal/http/response"
	"github.com/dujiao-next/promo/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListAuditLogs 获取后台审计日志列表
func (h *Handler) ListAuditLogs(c *gin.Context) {
	page, pageSize := handlershared.PaginationFromQuery(c)

	operatorAdminID, err := handlershared.ParseUintQuery(c, "operator_admin_id")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	targetID, err := handlershared.ParseUintQuery(c, "target_id")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdFrom, err := handlershared.ParseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := handlershared.ParseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	items, total, err := h.AuditService.ListForAdmin(repository.AuditLogListFilter{
		Page:            page,
		PageSize:        pageSize,
		OperatorAdminID: operatorAdminID,
		Action:          strings.TrimSpace(c.Query("action")),
		TargetType:      strings.TrimSpace(c.Query("target_type")),
		TargetID:        targetID,
		CreatedFrom:     createdFrom,
		CreatedTo:       createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.audit_log_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, items, handlershared.BuildPagination(page, pageSize, total))
}
