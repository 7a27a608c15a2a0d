package admin

import (
	"time"

	"github.com/megano/internal/http/response"
	"github.com/megano/internal/models"
	"github.com/megano/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateStockRecordRequest 更新在售商品
type UpdateStockRecordRequest struct {
	Price          *models.Money `json:"price"`
	AvailableCount *int          `json:"available_count"`
	IsActive       *bool         `json:"is_active"`
	DiscountID     *uint         `json:"discount_id"`
}

// UpdateCategoryRequest 更新分类
type UpdateCategoryRequest struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	IsActive *bool  `json:"is_active" binding:"required"`
}

// UpdateDiscountRequest 更新折扣
type UpdateDiscountRequest struct {
	Percent  *int       `json:"percent"`
	DateEnd  *time.Time `json:"date_end"`
	IsActive *bool      `json:"is_active"`
}

// AdminUpdateStockRecord 更新价格、库存或上下架
func (h *Handler) AdminUpdateStockRecord(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req UpdateStockRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	item, err := h.CatalogService.UpdateShopProduct(c.Request.Context(), id, service.UpdateShopProductInput{
		Price:          req.Price,
		AvailableCount: req.AvailableCount,
		IsActive:       req.IsActive,
		DiscountID:     req.DiscountID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, item)
}

// AdminUpdateCategory 更新分类
func (h *Handler) AdminUpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	category, err := h.CatalogService.SaveCategory(c.Request.Context(), id, req.Name, req.Slug, *req.IsActive)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, category)
}

// AdminUpdateDiscount 更新折扣
func (h *Handler) AdminUpdateDiscount(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req UpdateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	discount, err := h.CatalogService.SaveDiscount(c.Request.Context(), id, req.Percent, req.DateEnd, req.IsActive)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, discount)
}
