package public

import (
	"github.com/megano/internal/http/response"
	"github.com/megano/internal/service"

	"github.com/gin-gonic/gin"
)

// PlaceOrderRequest 下单请求
type PlaceOrderRequest struct {
	DeliveryCategoryID uint   `json:"delivery_category_id" binding:"required"`
	PaymentCategoryID  uint   `json:"payment_category_id" binding:"required"`
	Name               string `json:"name"`
	Phone              string `json:"phone"`
	Email              string `json:"email"`
	City               string `json:"city"`
	Address            string `json:"address"`
	Comment            string `json:"comment"`
}

// PreviewCheckout 订单摘要，不落库
func (h *Handler) PreviewCheckout(c *gin.Context) {
	buyerID, ok := currentBuyerID(c)
	if !ok {
		return
	}
	deliveryID, ok := parseUintQuery(c, "delivery_category_id")
	if !ok {
		return
	}
	summary, err := h.CheckoutService.PreviewCheckout(buyerID, sessionState(c), deliveryID)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, summary)
}

// PlaceOrder 提交订单
func (h *Handler) PlaceOrder(c *gin.Context) {
	buyerID, ok := currentBuyerID(c)
	if !ok {
		return
	}
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.CheckoutService.PlaceOrder(c.Request.Context(), service.PlaceOrderInput{
		BuyerID:            buyerID,
		State:              sessionState(c),
		DeliveryCategoryID: req.DeliveryCategoryID,
		PaymentCategoryID:  req.PaymentCategoryID,
		Name:               req.Name,
		Phone:              req.Phone,
		Email:              req.Email,
		City:               req.City,
		Address:            req.Address,
		Comment:            req.Comment,
	})
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	persistSession(c)
	response.Success(c, result)
}

// GetCheckoutOptions 可选配送与支付方式
func (h *Handler) GetCheckoutOptions(c *gin.Context) {
	options, err := h.CheckoutService.Options()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, options)
}

// GetCheckoutState 当前会话所处的订单阶段
func (h *Handler) GetCheckoutState(c *gin.Context) {
	stage, err := h.OrderGate.Stage(sessionState(c))
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{"stage": stage})
}

// GetDeliveryInfo 配送方式元数据
func (h *Handler) GetDeliveryInfo(c *gin.Context) {
	deliveryID, ok := parseUintQuery(c, "delivery_category_id")
	if !ok {
		return
	}
	info, err := h.CheckoutService.DeliveryInfo(deliveryID)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, info)
}
