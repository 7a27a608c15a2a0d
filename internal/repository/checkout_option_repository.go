package repository

import (
	"github.com/megano/internal/models"

	"gorm.io/gorm"
)

// CheckoutOptionRepository 配送方式与支付方式数据访问接口
type CheckoutOptionRepository interface {
	GetDeliveryCategory(id uint) (*models.DeliveryCategory, error)
	ListActiveDeliveryCategories() ([]models.DeliveryCategory, error)
	GetActivePaymentCategory(id uint) (*models.PaymentCategory, error)
	ListActivePaymentCategories() ([]models.PaymentCategory, error)
}

// GormCheckoutOptionRepository GORM 实现
type GormCheckoutOptionRepository struct {
	db *gorm.DB
}

// NewCheckoutOptionRepository 创建仓库
func NewCheckoutOptionRepository(db *gorm.DB) *GormCheckoutOptionRepository {
	return &GormCheckoutOptionRepository{db: db}
}

// GetDeliveryCategory 根据 ID 获取配送方式（含停用）
func (r *GormCheckoutOptionRepository) GetDeliveryCategory(id uint) (*models.DeliveryCategory, error) {
	return first[models.DeliveryCategory](r.db, id)
}

// ListActiveDeliveryCategories 启用的配送方式
func (r *GormCheckoutOptionRepository) ListActiveDeliveryCategories() ([]models.DeliveryCategory, error) {
	var items []models.DeliveryCategory
	if err := r.db.Where("is_active = ?", true).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetActivePaymentCategory 获取启用的支付方式
func (r *GormCheckoutOptionRepository) GetActivePaymentCategory(id uint) (*models.PaymentCategory, error) {
	return first[models.PaymentCategory](r.db.Where("id = ? AND is_active = ?", id, true))
}

// ListActivePaymentCategories 启用的支付方式
func (r *GormCheckoutOptionRepository) ListActivePaymentCategories() ([]models.PaymentCategory, error) {
	var items []models.PaymentCategory
	if err := r.db.Where("is_active = ?", true).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
