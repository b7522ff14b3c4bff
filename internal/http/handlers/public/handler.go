package public

import "github.com/dujiao-next/promo/internal/provider"

// Handler 结算侧接口处理器入口
// 说明：该处理器供结算系统调用，不面向管理端。
type Handler struct {
	*provider.Container
}

// New 创建结算侧处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
