package public

import "github.com/megano/internal/provider"

// Handler 前台接口处理器入口
// 说明：购物车与结账接口允许匿名访问，由订单门禁决定能否继续。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
