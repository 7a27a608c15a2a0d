package shared

import (
	"github.com/megano/internal/constants"
	"github.com/megano/internal/http/response"
	"github.com/megano/internal/i18n"
	"github.com/megano/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 带 request_id 的日志实例
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c != nil {
		if id := c.GetString(constants.ContextKeyRequestID); id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 按 i18n key 返回错误；err 非空时记录
func RespondError(c *gin.Context, code int, key string, err error) {
	RespondErrorWithMsg(c, code, i18n.T(i18n.ResolveLocale(c), key), err)
}

// RespondErrorWithMsg 返回已本地化的错误消息
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	logHandlerError(c, code, msg, err)
	response.Error(c, code, msg)
}

// RespondErrorWithData 错误响应附带业务数据，如缺货明细
func RespondErrorWithData(c *gin.Context, code int, key string, data interface{}, err error) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	logHandlerError(c, code, msg, err)
	response.ErrorWithData(c, code, msg, data)
}

// 5xx 记 error，业务拒绝记 warn
func logHandlerError(c *gin.Context, code int, msg string, err error) {
	if err == nil {
		return
	}
	log := RequestLog(c)
	if code >= response.CodeInternal {
		log.Errorw("handler_error", "code", code, "message", msg, "error", err)
		return
	}
	log.Warnw("handler_error", "code", code, "message", msg, "error", err)
}
