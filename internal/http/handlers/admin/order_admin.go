package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/megano/internal/http/handlers/shared"
	"github.com/megano/internal/http/response"
	"github.com/megano/internal/repository"

	"github.com/gin-gonic/gin"
)

// AdminListOrders 员工订单列表
func (h *Handler) AdminListOrders(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)

	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	isPaid, err := parseBoolNullable(strings.TrimSpace(c.Query("is_paid")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	isCanceled, err := parseBoolNullable(strings.TrimSpace(c.Query("is_canceled")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	var buyerID uint
	if raw := strings.TrimSpace(c.Query("buyer_id")); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			buyerID = uint(parsed)
		}
	}

	orders, total, err := h.OrderQueryService.ListAdmin(repository.OrderListFilter{
		Page:        page,
		PageSize:    pageSize,
		BuyerID:     buyerID,
		IsPaid:      isPaid,
		IsCanceled:  isCanceled,
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// AdminGetOrder 员工查看订单
func (h *Handler) AdminGetOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}
	order, err := h.OrderQueryService.GetForStaff(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// AdminConfirmOrder 员工确认订单
func (h *Handler) AdminConfirmOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}
	order, err := h.OrderQueryService.Confirm(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	staffID, _ := getStaffID(c)
	requestLog(c).Infow("admin_order_confirmed", "order_id", orderID, "staff_id", staffID)
	response.Success(c, order)
}

// AdminCancelOrder 员工取消未支付订单
func (h *Handler) AdminCancelOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}
	order, err := h.OrderQueryService.Cancel(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	staffID, _ := getStaffID(c)
	requestLog(c).Infow("admin_order_canceled", "order_id", orderID, "staff_id", staffID)
	response.Success(c, order)
}

// AdminDeleteOrder 员工删除订单
func (h *Handler) AdminDeleteOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.OrderQueryService.Delete(orderID); err != nil {
		respondServiceError(c, err)
		return
	}
	staffID, _ := getStaffID(c)
	requestLog(c).Infow("admin_order_deleted", "order_id", orderID, "staff_id", staffID)
	response.Success(c, nil)
}
