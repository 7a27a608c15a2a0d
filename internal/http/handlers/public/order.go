package public

import (
	handlershared "github.com/megano/internal/http/handlers/shared"
	"github.com/megano/internal/http/response"
	"github.com/megano/internal/service"

	"github.com/gin-gonic/gin"
)

// GetOrder 订单详情：本人已提交付款账号或员工可见
func (h *Handler) GetOrder(c *gin.Context) {
	buyerID, ok := currentBuyerID(c)
	if !ok {
		return
	}
	orderID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	isStaff := false
	if buyerID != 0 {
		staff, err := h.AuthzService.IsStaff(buyerID)
		if err != nil {
			respondError(c, response.CodeInternal, "error.internal", err)
			return
		}
		isStaff = staff
	}
	order, err := h.OrderQueryService.Detail(service.DetailInput{
		OrderID: orderID,
		BuyerID: buyerID,
		IsStaff: isStaff,
		State:   sessionState(c),
	})
	if err != nil {
		respondOrderError(c, err)
		return
	}
	persistSession(c)
	response.Success(c, order)
}

// ListOrders 买家历史订单
func (h *Handler) ListOrders(c *gin.Context) {
	buyerID, ok := currentBuyerID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.PageQuery(c)

	orders, total, err := h.OrderQueryService.ListByBuyer(buyerID, page, pageSize)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}
