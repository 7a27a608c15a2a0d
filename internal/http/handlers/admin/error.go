package admin

import (
	"errors"

	handlershared "github.com/megano/internal/http/handlers/shared"
	"github.com/megano/internal/http/response"
	"github.com/megano/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

// adminErrorRules 员工接口的业务错误映射
var adminErrorRules = []struct {
	target error
	code   int
	key    string
}{
	{service.ErrForbidden, response.CodeForbidden, "error.forbidden"},
	{service.ErrOrderNotFound, response.CodeNotFound, "error.order_not_found"},
	{service.ErrCatalogItemNotFound, response.CodeNotFound, "error.item_not_found"},
	{service.ErrCategoryNotFound, response.CodeNotFound, "error.category_not_found"},
	{service.ErrDiscountNotFound, response.CodeNotFound, "error.discount_not_found"},
	{service.ErrUserNotFound, response.CodeNotFound, "error.user_not_found"},
	{service.ErrOrderCanceled, response.CodeConflict, "error.order_canceled"},
	{service.ErrStockChanged, response.CodeConflict, "error.stock_changed"},
	{service.ErrInvalidInput, response.CodeBadRequest, "error.bad_request"},
}

func respondServiceError(c *gin.Context, err error) {
	for _, rule := range adminErrorRules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, response.CodeInternal, "error.internal", err)
}
