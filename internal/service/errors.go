package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrForbidden 状态门禁不满足（未登录、无购物车、无订单令牌、非本人订单）
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound 资源不存在
	ErrNotFound = errors.New("not found")
	// ErrOutOfStock 库存不足
	ErrOutOfStock = errors.New("not enough goods")
	// ErrInvalidPaymentInstrument 付款账号格式错误
	ErrInvalidPaymentInstrument = errors.New("invalid payment instrument")
	// ErrInvalidInput 请求参数错误
	ErrInvalidInput = errors.New("invalid input")

	ErrOrderNotFound            = fmt.Errorf("order %w", ErrNotFound)
	ErrDeliveryCategoryNotFound = fmt.Errorf("delivery category %w", ErrNotFound)
	ErrPaymentCategoryNotFound  = fmt.Errorf("payment category %w", ErrNotFound)
	ErrCatalogItemNotFound      = fmt.Errorf("catalog item %w", ErrNotFound)
	ErrCategoryNotFound         = fmt.Errorf("category %w", ErrNotFound)
	ErrDiscountNotFound         = fmt.Errorf("discount %w", ErrNotFound)
	ErrUserNotFound             = fmt.Errorf("user %w", ErrNotFound)

	// ErrSettlementOutOfStock 结算时库存不足，整单结算回滚
	ErrSettlementOutOfStock = fmt.Errorf("%w: settlement aborted", ErrOutOfStock)
	ErrOrderCanceled        = errors.New("order canceled")
	// ErrStockChanged 员工修改可售数期间库存被并发变更
	ErrStockChanged = errors.New("stock changed concurrently")

	ErrInvalidEmail       = fmt.Errorf("%w: email", ErrInvalidInput)
	ErrWeakPassword       = fmt.Errorf("%w: password too weak", ErrInvalidInput)
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserDisabled       = errors.New("user disabled")
)

// OutOfStockError 携带逐行缺货说明
type OutOfStockError struct {
	Messages []string
}

func (e *OutOfStockError) Error() string {
	if e == nil || len(e.Messages) == 0 {
		return ErrOutOfStock.Error()
	}
	return ErrOutOfStock.Error() + ": " + strings.Join(e.Messages, "; ")
}

func (e *OutOfStockError) Unwrap() error {
	return ErrOutOfStock
}

// ShortageMessages 提取缺货说明，非缺货错误返回 nil
func ShortageMessages(err error) []string {
	var stockErr *OutOfStockError
	if errors.As(err, &stockErr) {
		return stockErr.Messages
	}
	return nil
}
