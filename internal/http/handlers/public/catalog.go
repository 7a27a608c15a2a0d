package public

import (
	"strings"

	"github.com/megano/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetCategories 分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CatalogService.ListCategories(c.Request.Context())
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, categories)
}

// GetCategoryItems 分类下在售商品
func (h *Handler) GetCategoryItems(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	items, err := h.CatalogService.ListItemsByCategory(c.Request.Context(), slug)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, items)
}

// GetCatalogItem 在售商品详情
func (h *Handler) GetCatalogItem(c *gin.Context) {
	itemID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	item, err := h.CatalogService.GetActiveItem(itemID)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, item)
}
