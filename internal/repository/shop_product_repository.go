package repository

import (
	"errors"

	"github.com/megano/internal/models"

	"gorm.io/gorm"
)

// ShopProductRepository 店铺商品与库存台账数据访问接口
// 所有库存变更均为带条件的单行 UPDATE，返回受影响行数，0 表示条件不满足
type ShopProductRepository interface {
	GetByID(id uint) (*models.ShopProduct, error)
	ListActiveByIDs(ids []uint) ([]models.ShopProduct, error)
	List(filter ShopProductListFilter) ([]models.ShopProduct, int64, error)
	Create(item *models.ShopProduct) error
	ApplyPatch(id uint, patch ShopProductPatch) (int64, error)
	CategorySlugs(ids []uint) ([]string, error)
	ReserveStock(id uint, quantity int) (int64, error)
	ReleaseStock(id uint, quantity int) (int64, error)
	ConsumeReservedStock(id uint, quantity int) (int64, error)
	ConsumeAvailableStock(id uint, quantity int) (int64, error)
	ClearDiscounts(discountIDs []uint) error
	WithTx(tx *gorm.DB) ShopProductRepository
}

// GormShopProductRepository GORM 实现
type GormShopProductRepository struct {
	db *gorm.DB
}

// NewShopProductRepository 创建店铺商品仓库
func NewShopProductRepository(db *gorm.DB) *GormShopProductRepository {
	return &GormShopProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormShopProductRepository) WithTx(tx *gorm.DB) ShopProductRepository {
	if tx == nil {
		return r
	}
	return &GormShopProductRepository{db: tx}
}

// GetByID 根据 ID 获取（含未上架）
func (r *GormShopProductRepository) GetByID(id uint) (*models.ShopProduct, error) {
	return first[models.ShopProduct](r.db.Preload("Product").Preload("Shop"), id)
}

// ListActiveByIDs 批量获取上架中的记录，缺失或下架的 ID 不出现在结果中
func (r *GormShopProductRepository) ListActiveByIDs(ids []uint) ([]models.ShopProduct, error) {
	var items []models.ShopProduct
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.db.Preload("Product").Preload("Shop").
		Where("id IN ? AND is_active = ?", ids, true).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// List 在售商品列表
func (r *GormShopProductRepository) List(filter ShopProductListFilter) ([]models.ShopProduct, int64, error) {
	var items []models.ShopProduct
	query := r.db.Model(&models.ShopProduct{})
	if filter.OnlyActive {
		query = query.Where("shop_products.is_active = ?", true)
	}
	if filter.ShopID != 0 {
		query = query.Where("shop_products.shop_id = ?", filter.ShopID)
	}
	if filter.CategoryID != 0 {
		query = query.Joins("JOIN products ON products.id = shop_products.product_id").
			Where("products.category_id = ?", filter.CategoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = query.Scopes(paginate(filter.Page, filter.PageSize))
	if err := query.Preload("Product").Preload("Shop").
		Order("shop_products.id asc").
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Create 创建
func (r *GormShopProductRepository) Create(item *models.ShopProduct) error {
	return r.db.Create(item).Error
}

// ShopProductPatch 员工编辑，nil 字段保持不变。
// AvailableCount 非空时按 ExpectedAvailable 做比较并交换，防止覆盖并发的占用或结算。
type ShopProductPatch struct {
	Price             *models.Money
	IsActive          *bool
	DiscountID        *uint
	AvailableCount    *int
	ExpectedAvailable int
}

func (p ShopProductPatch) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	if p.IsActive != nil {
		cols["is_active"] = *p.IsActive
	}
	if p.DiscountID != nil {
		cols["discount_id"] = *p.DiscountID
	}
	if p.AvailableCount != nil {
		cols["available_count"] = *p.AvailableCount
	}
	return cols
}

// ApplyPatch 单条 UPDATE 写入员工编辑；返回 0 表示记录不存在或可售数已被并发修改
func (r *GormShopProductRepository) ApplyPatch(id uint, patch ShopProductPatch) (int64, error) {
	cols := patch.columns()
	if len(cols) == 0 {
		var n int64
		err := r.db.Model(&models.ShopProduct{}).Where("id = ?", id).Count(&n).Error
		return n, err
	}
	query := r.db.Model(&models.ShopProduct{}).Where("id = ?", id)
	if patch.AvailableCount != nil {
		query = query.Where("available_count = ?", patch.ExpectedAvailable)
	}
	result := query.Updates(cols)
	return result.RowsAffected, result.Error
}

// CategorySlugs 商品所属分类的 slug，去重
func (r *GormShopProductRepository) CategorySlugs(ids []uint) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var slugs []string
	err := r.db.Table("shop_products").
		Joins("JOIN products ON products.id = shop_products.product_id").
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("shop_products.id IN ?", ids).
		Distinct().
		Pluck("categories.slug", &slugs).Error
	return slugs, err
}

// ReserveStock 下单时占用库存：可售转占用
func (r *GormShopProductRepository) ReserveStock(id uint, quantity int) (int64, error) {
	if id == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock reserve params")
	}
	result := r.db.Model(&models.ShopProduct{}).
		Where("id = ? AND is_active = ? AND available_count >= ?", id, true, quantity).
		Updates(map[string]interface{}{
			"available_count": gorm.Expr("available_count - ?", quantity),
			"reserved_count":  gorm.Expr("reserved_count + ?", quantity),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ReleaseStock 释放占用：占用转回可售
func (r *GormShopProductRepository) ReleaseStock(id uint, quantity int) (int64, error) {
	if id == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock release params")
	}
	result := r.db.Model(&models.ShopProduct{}).
		Where("id = ? AND reserved_count >= ?", id, quantity).
		Updates(map[string]interface{}{
			"available_count": gorm.Expr("available_count + ?", quantity),
			"reserved_count":  gorm.Expr("reserved_count - ?", quantity),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ConsumeReservedStock 支付成功：占用转已售
func (r *GormShopProductRepository) ConsumeReservedStock(id uint, quantity int) (int64, error) {
	if id == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock consume params")
	}
	result := r.db.Model(&models.ShopProduct{}).
		Where("id = ? AND reserved_count >= ?", id, quantity).
		Updates(map[string]interface{}{
			"reserved_count": gorm.Expr("reserved_count - ?", quantity),
			"sold_count":     gorm.Expr("sold_count + ?", quantity),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ConsumeAvailableStock 占用已释放的订单支付成功：可售直接转已售
func (r *GormShopProductRepository) ConsumeAvailableStock(id uint, quantity int) (int64, error) {
	if id == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock consume params")
	}
	result := r.db.Model(&models.ShopProduct{}).
		Where("id = ? AND available_count >= ?", id, quantity).
		Updates(map[string]interface{}{
			"available_count": gorm.Expr("available_count - ?", quantity),
			"sold_count":      gorm.Expr("sold_count + ?", quantity),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ClearDiscounts 解除失效折扣与商品的关联
func (r *GormShopProductRepository) ClearDiscounts(discountIDs []uint) error {
	if len(discountIDs) == 0 {
		return nil
	}
	return r.db.Model(&models.ShopProduct{}).
		Where("discount_id IN ?", discountIDs).
		Update("discount_id", nil).Error
}
