package shared

import (
	"strconv"

	"github.com/megano/internal/constants"
	"github.com/megano/internal/http/response"

	"github.com/gin-gonic/gin"
)

// UserID 读取鉴权中间件写入的用户ID；失败时已写出错误响应
func UserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	id, ok := value.(uint)
	if !ok || id == 0 {
		RespondError(c, response.CodeBadRequest, "error.user_id_invalid", nil)
		return 0, false
	}
	return id, true
}

// OptionalUserID 匿名请求返回 0, true
func OptionalUserID(c *gin.Context) (uint, bool) {
	if _, exists := c.Get(constants.ContextKeyUserID); !exists {
		return 0, true
	}
	return UserID(c)
}

// PathID 解析正整数路由参数
func PathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return uint(id), true
}
