package public

import (
	"strconv"

	handlershared "github.com/megano/internal/http/handlers/shared"
	"github.com/megano/internal/http/response"
	"github.com/megano/internal/session"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.UserID(c)
}

// currentBuyerID 匿名访问时返回 0
func currentBuyerID(c *gin.Context) (uint, bool) {
	return handlershared.OptionalUserID(c)
}

func sessionState(c *gin.Context) *session.State {
	return session.FromContext(c)
}

// persistSession 写响应前回写会话，保证客户端下一次请求可见
func persistSession(c *gin.Context) {
	if err := session.Persist(c); err != nil {
		handlershared.RequestLog(c).Warnw("session_persist_failed", "error", err)
	}
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	return handlershared.PathID(c, name)
}

func parseUintQuery(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return uint(id), true
}
