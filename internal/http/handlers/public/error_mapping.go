package public

import (
	"errors"

	"github.com/megano/internal/constants"
	handlershared "github.com/megano/internal/http/handlers/shared"
	"github.com/megano/internal/http/response"
	"github.com/megano/internal/i18n"
	"github.com/megano/internal/service"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var orderCommonErrorRules = []mappedHandlerError{
	{target: service.ErrForbidden, code: response.CodeForbidden, key: "error.forbidden"},
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, key: "error.order_not_found"},
	{target: service.ErrOrderCanceled, code: response.CodeConflict, key: "error.order_canceled"},
}

var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrDeliveryCategoryNotFound, code: response.CodeNotFound, key: "error.delivery_not_found"},
	{target: service.ErrPaymentCategoryNotFound, code: response.CodeNotFound, key: "error.payment_category_missing"},
	{target: service.ErrCatalogItemNotFound, code: response.CodeNotFound, key: "error.item_not_found"},
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, key: "error.invalid_email"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, key: "error.bad_request"},
}

var catalogErrorRules = []mappedHandlerError{
	{target: service.ErrCategoryNotFound, code: response.CodeNotFound, key: "error.category_not_found"},
	{target: service.ErrCatalogItemNotFound, code: response.CodeNotFound, key: "error.item_not_found"},
}

var authErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, key: "error.invalid_email"},
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, key: "error.invalid_credentials"},
	{target: service.ErrUserDisabled, code: response.CodeForbidden, key: "error.user_disabled"},
	{target: service.ErrEmailTaken, code: response.CodeConflict, key: "error.email_taken"},
	{target: service.ErrUserNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, key: "error.bad_request"},
}

// respondOutOfStock 缺货统一返回 409，并在 data.not_enough_goods 中给出逐行说明
func respondOutOfStock(c *gin.Context, err error) {
	messages := service.ShortageMessages(err)
	if messages == nil {
		messages = []string{}
	}
	handlershared.RespondErrorWithData(c, response.CodeConflict, "error.not_enough_goods", gin.H{"not_enough_goods": messages}, err)
}

func respondCheckoutError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrOutOfStock) {
		respondOutOfStock(c, err)
		return
	}
	respondWithMappedError(c, err, concatMappedHandlerErrors(orderCommonErrorRules, checkoutErrorRules), response.CodeInternal, "error.internal")
}

func respondPaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidPaymentInstrument):
		handlershared.RespondErrorWithData(c, response.CodeBadRequest, "error.invalid_account", gin.H{"next": constants.NextStepHome}, nil)
	case errors.Is(err, service.ErrOutOfStock):
		respondOutOfStock(c, err)
	default:
		respondWithMappedError(c, err, orderCommonErrorRules, response.CodeInternal, "error.internal")
	}
}

func respondOrderError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderCommonErrorRules, response.CodeInternal, "error.internal")
}

func respondCatalogError(c *gin.Context, err error) {
	respondWithMappedError(c, err, catalogErrorRules, response.CodeInternal, "error.internal")
}

// localizedError 携带翻译键与参数的业务错误
type localizedError interface {
	Key() string
	Args() []interface{}
}

func respondAuthError(c *gin.Context, err error) {
	var localized localizedError
	if errors.As(err, &localized) {
		msg := i18n.Sprintf(i18n.ResolveLocale(c), localized.Key(), localized.Args()...)
		handlershared.RespondErrorWithMsg(c, response.CodeBadRequest, msg, nil)
		return
	}
	respondWithMappedError(c, err, authErrorRules, response.CodeInternal, "error.internal")
}
