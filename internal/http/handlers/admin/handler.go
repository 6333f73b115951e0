package admin

import "github.com/streamvault/internal/provider"

// Handler 后台管理接口处理器入口
// 说明：该处理器仅用于管理端 API，业务能力全部来自容器中的服务。
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
