package shared

import (
	"math"

	"github.com/dujiao-next/promo/internal/http/response"

	"github.com/gin-gonic/gin"
)

// AdminIDKey JWT 中间件写入的管理员 ID 键
const AdminIDKey = "admin_id"

// AdminIDFromContext 读取当前管理员 ID，缺失或非法时写入错误响应并返回 false。
// 管理员 ID 由 JWT 中间件以 uint 写入，测试或旧中间件可能写入其他整数类型。
func AdminIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get(AdminIDKey)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}

	var id uint64
	switch v := value.(type) {
	case uint:
		id = uint64(v)
	case uint64:
		id = v
	case int:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, "error.admin_id_invalid", nil)
			return 0, false
		}
		id = uint64(v)
	case int64:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, "error.admin_id_invalid", nil)
			return 0, false
		}
		id = uint64(v)
	case float64:
		if v < 0 || v != math.Trunc(v) || v > math.MaxUint32 {
			RespondError(c, response.CodeBadRequest, "error.admin_id_invalid", nil)
			return 0, false
		}
		id = uint64(v)
	default:
		RespondError(c, response.CodeInternal, "error.admin_id_type_invalid", nil)
		return 0, false
	}
	if id == 0 {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	return uint(id), true
}
