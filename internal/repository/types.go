package repository

import "time"

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	BuyerID     uint
	IsPaid      *bool
	IsCanceled  *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// ShopProductListFilter 查询在售商品的过滤条件
type ShopProductListFilter struct {
	Page       int
	PageSize   int
	CategoryID uint
	ShopID     uint
	OnlyActive bool
}
