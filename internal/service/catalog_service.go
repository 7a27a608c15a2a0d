package service

import (
	"context"
	"time"

	"github.com/megano/internal/cache"
	"github.com/megano/internal/logger"
	"github.com/megano/internal/models"
	"github.com/megano/internal/repository"

	"gorm.io/gorm"
)

// CatalogItem 店铺在售商品的只读视图
type CatalogItem struct {
	ID             uint         `json:"id"`
	ProductID      uint         `json:"product_id"`
	Name           string       `json:"name"`
	Image          string       `json:"image"`
	Price          models.Money `json:"price"`
	AvailableCount int          `json:"available_count"`
	SoldCount      int          `json:"sold_count"`
	ShopID         uint         `json:"shop_id"`
	ShopName       string       `json:"shop_name"`
	IsActive       bool         `json:"is_active"`
}

// CatalogLookup 结账核心依赖的商品目录查询
type CatalogLookup interface {
	LookupActiveItems(ids []uint) (map[uint]CatalogItem, error)
}

// UpdateShopProductInput 员工更新在售商品
type UpdateShopProductInput struct {
	Price          *models.Money
	AvailableCount *int
	IsActive       *bool
	DiscountID     *uint
}

// CatalogService 商品目录服务：读走缓存，写后同步清理相关缓存键
type CatalogService struct {
	categoryRepo    repository.CategoryRepository
	shopProductRepo repository.ShopProductRepository
	discountRepo    repository.DiscountRepository
	cacheTTL        time.Duration
	invalidate      func(ctx context.Context, keys ...string) error
}

// NewCatalogService 创建商品目录服务
func NewCatalogService(categoryRepo repository.CategoryRepository, shopProductRepo repository.ShopProductRepository, discountRepo repository.DiscountRepository, cacheTTL time.Duration) *CatalogService {
	return &CatalogService{
		categoryRepo:    categoryRepo,
		shopProductRepo: shopProductRepo,
		discountRepo:    discountRepo,
		cacheTTL:        cacheTTL,
		invalidate:      cache.Del,
	}
}

func toCatalogItem(item models.ShopProduct) CatalogItem {
	view := CatalogItem{
		ID:             item.ID,
		ProductID:      item.ProductID,
		Price:          item.Price,
		AvailableCount: item.AvailableCount,
		SoldCount:      item.SoldCount,
		ShopID:         item.ShopID,
		IsActive:       item.IsActive,
	}
	if item.Product != nil {
		view.Name = item.Product.Name
		view.Image = item.Product.PrimaryImage()
	}
	if item.Shop != nil {
		view.ShopName = item.Shop.Name
	}
	return view
}

// LookupActiveItems 按 ID 批量读取实时库存，不经过缓存
func (s *CatalogService) LookupActiveItems(ids []uint) (map[uint]CatalogItem, error) {
	items, err := s.shopProductRepo.ListActiveByIDs(ids)
	if err != nil {
		return nil, err
	}
	result := make(map[uint]CatalogItem, len(items))
	for _, item := range items {
		result[item.ID] = toCatalogItem(item)
	}
	return result, nil
}

// GetActiveItem 获取单个上架商品
func (s *CatalogService) GetActiveItem(id uint) (*CatalogItem, error) {
	items, err := s.LookupActiveItems([]uint{id})
	if err != nil {
		return nil, err
	}
	item, ok := items[id]
	if !ok {
		return nil, ErrCatalogItemNotFound
	}
	return &item, nil
}

// ListCategories 分类列表（读穿缓存）
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return cache.Remember(ctx, cache.CategoriesKey(), s.cacheTTL, s.categoryRepo.ListActive)
}

// ListItemsByCategory 分类下在售商品（读穿缓存）
func (s *CatalogService) ListItemsByCategory(ctx context.Context, slug string) ([]CatalogItem, error) {
	return cache.Remember(ctx, cache.ProductsKey(slug), s.cacheTTL, func() ([]CatalogItem, error) {
		category, err := s.categoryRepo.GetBySlug(slug)
		if err != nil {
			return nil, err
		}
		if category == nil || !category.IsActive {
			return nil, ErrCategoryNotFound
		}
		rows, _, err := s.shopProductRepo.List(repository.ShopProductListFilter{CategoryID: category.ID, OnlyActive: true})
		if err != nil {
			return nil, err
		}
		items := make([]CatalogItem, 0, len(rows))
		for _, row := range rows {
			items = append(items, toCatalogItem(row))
		}
		return items, nil
	})
}

// SaveCategory 更新分类并清理分类与商品列表缓存（含旧 slug）
func (s *CatalogService) SaveCategory(ctx context.Context, id uint, name, slug string, isActive bool) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	oldSlug := category.Slug
	if name != "" {
		category.Name = name
	}
	if slug != "" {
		category.Slug = slug
	}
	category.IsActive = isActive
	if err := s.categoryRepo.Update(category); err != nil {
		return nil, err
	}
	s.evict(ctx, cache.CategoriesKey(), cache.ProductsKey(oldSlug), cache.ProductsKey(category.Slug))
	return category, nil
}

// UpdateShopProduct 更新在售商品并清理所属分类的商品列表缓存。
// 只写入请求中给出的字段；修改可售数时若读到的值已被并发占用或结算改变，返回 ErrStockChanged。
func (s *CatalogService) UpdateShopProduct(ctx context.Context, id uint, input UpdateShopProductInput) (*models.ShopProduct, error) {
	item, err := s.shopProductRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrCatalogItemNotFound
	}
	if input.Price != nil && input.Price.IsNegative() {
		return nil, ErrInvalidInput
	}
	if input.AvailableCount != nil && *input.AvailableCount < 0 {
		return nil, ErrInvalidInput
	}

	affected, err := s.shopProductRepo.ApplyPatch(id, repository.ShopProductPatch{
		Price:             input.Price,
		IsActive:          input.IsActive,
		DiscountID:        input.DiscountID,
		AvailableCount:    input.AvailableCount,
		ExpectedAvailable: item.AvailableCount,
	})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		if input.AvailableCount != nil {
			return nil, ErrStockChanged
		}
		return nil, ErrCatalogItemNotFound
	}
	s.evictForShopProduct(ctx, item)
	return s.shopProductRepo.GetByID(id)
}

// SaveDiscount 更新折扣并清理全部商品列表缓存
func (s *CatalogService) SaveDiscount(ctx context.Context, id uint, percent *int, dateEnd *time.Time, isActive *bool) (*models.Discount, error) {
	discount, err := s.discountRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if discount == nil {
		return nil, ErrDiscountNotFound
	}
	if percent != nil {
		if *percent < 0 || *percent > 100 {
			return nil, ErrInvalidInput
		}
		discount.Percent = *percent
	}
	if dateEnd != nil {
		discount.DateEnd = *dateEnd
	}
	if isActive != nil {
		discount.IsActive = *isActive
	}
	if err := s.discountRepo.Update(discount); err != nil {
		return nil, err
	}
	s.evictAllProductLists(ctx)
	return discount, nil
}

// DeactivateExpiredDiscounts 停用到期折扣并解除商品关联，返回停用数量
func (s *CatalogService) DeactivateExpiredDiscounts(ctx context.Context, now time.Time) (int, error) {
	var deactivated int64
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		discountRepo := s.discountRepo.WithTx(tx)
		expired, err := discountRepo.ListExpiredActive(now)
		if err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}
		ids := make([]uint, 0, len(expired))
		for _, discount := range expired {
			ids = append(ids, discount.ID)
		}
		if deactivated, err = discountRepo.Deactivate(ids); err != nil {
			return err
		}
		return s.shopProductRepo.WithTx(tx).ClearDiscounts(ids)
	})
	if err != nil {
		return 0, err
	}
	if deactivated > 0 {
		s.evictAllProductLists(ctx)
		logger.Infow("catalog_discounts_deactivated", "count", deactivated)
	}
	return int(deactivated), nil
}

func (s *CatalogService) evictForShopProduct(ctx context.Context, item *models.ShopProduct) {
	if item == nil || item.Product == nil {
		s.evictAllProductLists(ctx)
		return
	}
	category, err := s.categoryRepo.GetByID(item.Product.CategoryID)
	if err != nil || category == nil {
		s.evictAllProductLists(ctx)
		return
	}
	s.evict(ctx, cache.ProductsKey(category.Slug))
}

func (s *CatalogService) evictAllProductLists(ctx context.Context) {
	categories, err := s.categoryRepo.ListActive()
	if err != nil {
		logger.Warnw("catalog_cache_evict_list_failed", "error", err)
		return
	}
	keys := []string{cache.CategoriesKey()}
	for _, category := range categories {
		keys = append(keys, cache.ProductsKey(category.Slug))
	}
	s.evict(ctx, keys...)
}

// StockChanged 库存台账事务提交后清理相关分类的商品列表缓存
func (s *CatalogService) StockChanged(ctx context.Context, shopProductIDs []uint) {
	if len(shopProductIDs) == 0 {
		return
	}
	slugs, err := s.shopProductRepo.CategorySlugs(shopProductIDs)
	if err != nil {
		logger.Warnw("catalog_stock_evict_lookup_failed", "items", shopProductIDs, "error", err)
		s.evictAllProductLists(ctx)
		return
	}
	keys := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		keys = append(keys, cache.ProductsKey(slug))
	}
	s.evict(ctx, keys...)
}

func (s *CatalogService) evict(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := s.invalidate(ctx, keys...); err != nil {
		logger.Warnw("catalog_cache_evict_failed", "keys", keys, "error", err)
	}
}
