package cache

import (
	"strings"

	"github.com/megano/internal/constants"
)

// CategoriesKey 分类列表
func CategoriesKey() string {
	return constants.CacheKeyCategories
}

// ProductsKey 分类下在售商品列表
func ProductsKey(categorySlug string) string {
	return constants.CacheKeyProductsPrefix + strings.TrimSpace(categorySlug)
}
