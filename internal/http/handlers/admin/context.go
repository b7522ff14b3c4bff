package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/dujiao-next/promo/internal/http/handlers/shared"
	"github.com/dujiao-next/promo/internal/http/response"
	"github.com/dujiao-next/promo/internal/service"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.AdminIDFromContext(c)
}

func currentUsername(c *gin.Context) string {
	if value, ok := c.Get("username"); ok {
		if username, ok := value.(string); ok {
			return strings.TrimSpace(username)
		}
	}
	return ""
}

// currentActor 组装审计使用的操作人信息
func currentActor(c *gin.Context) (service.AdminActor, bool) {
	adminID, ok := getAdminID(c)
	if !ok {
		return service.AdminActor{}, false
	}
	object := c.FullPath()
	if object == "" {
		object = c.Request.URL.Path
	}
	return service.AdminActor{
		AdminID:   adminID,
		Username:  currentUsername(c),
		RequestID: response.RequestID(c),
		Object:    object,
		Method:    c.Request.Method,
	}, true
}

func parseCouponIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.coupon_id_invalid", nil)
		return 0, false
	}
	return uint(id), true
}
