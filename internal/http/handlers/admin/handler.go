package admin

import "github.com/megano/internal/provider"

// Handler 员工后台接口处理器入口
// 说明：该处理器仅用于员工 API，路由层已完成 casbin 鉴权。
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
