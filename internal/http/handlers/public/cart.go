package public

import (
	"errors"

	"github.com/megano/internal/http/response"
	"github.com/megano/internal/models"
	"github.com/megano/internal/service"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 购物车项请求
type CartItemRequest struct {
	ItemID   uint `json:"item_id" binding:"required"`
	Quantity *int `json:"quantity"`
	Replace  bool `json:"replace"`
}

// CartResponse 购物车响应
type CartResponse struct {
	Items      []service.CartLineDetail `json:"items"`
	TotalCount int                      `json:"total_count"`
	TotalPrice models.Money             `json:"total_price"`
}

func (h *Handler) renderCart(c *gin.Context, cart *service.Cart) {
	items, err := cart.Details()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	persistSession(c)
	response.Success(c, CartResponse{
		Items:      items,
		TotalCount: cart.TotalCount(),
		TotalPrice: cart.TotalPrice(),
	})
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	h.renderCart(c, h.CartService.For(sessionState(c)))
}

// AddCartItem 加入或改写购物车行
func (h *Handler) AddCartItem(c *gin.Context) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	cart, err := h.CartService.AddItem(sessionState(c), req.ItemID, quantity, req.Replace)
	if err != nil {
		if errors.Is(err, service.ErrCatalogItemNotFound) {
			respondError(c, response.CodeNotFound, "error.item_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	h.renderCart(c, cart)
}

// DecrementCartItem 数量减一
func (h *Handler) DecrementCartItem(c *gin.Context) {
	itemID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	cart := h.CartService.For(sessionState(c))
	cart.Decrement(itemID)
	h.renderCart(c, cart)
}

// RemoveCartItem 删除购物车行
func (h *Handler) RemoveCartItem(c *gin.Context) {
	itemID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	cart := h.CartService.For(sessionState(c))
	cart.Remove(itemID)
	h.renderCart(c, cart)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	cart := h.CartService.For(sessionState(c))
	cart.Clear()
	h.renderCart(c, cart)
}
