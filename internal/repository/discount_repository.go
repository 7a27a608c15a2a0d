package repository

import (
	"time"

	"github.com/megano/internal/models"

	"gorm.io/gorm"
)

// DiscountRepository 折扣数据访问接口
type DiscountRepository interface {
	GetByID(id uint) (*models.Discount, error)
	Update(discount *models.Discount) error
	ListExpiredActive(now time.Time) ([]models.Discount, error)
	Deactivate(ids []uint) (int64, error)
	WithTx(tx *gorm.DB) DiscountRepository
}

// GormDiscountRepository GORM 实现
type GormDiscountRepository struct {
	db *gorm.DB
}

// NewDiscountRepository 创建折扣仓库
func NewDiscountRepository(db *gorm.DB) *GormDiscountRepository {
	return &GormDiscountRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDiscountRepository) WithTx(tx *gorm.DB) DiscountRepository {
	if tx == nil {
		return r
	}
	return &GormDiscountRepository{db: tx}
}

// GetByID 根据 ID 获取折扣
func (r *GormDiscountRepository) GetByID(id uint) (*models.Discount, error) {
	return first[models.Discount](r.db, id)
}

// Update 更新折扣
func (r *GormDiscountRepository) Update(discount *models.Discount) error {
	return r.db.Save(discount).Error
}

// ListExpiredActive 已到期但仍启用的折扣
func (r *GormDiscountRepository) ListExpiredActive(now time.Time) ([]models.Discount, error) {
	var discounts []models.Discount
	if err := r.db.Where("is_active = ? AND date_end <= ?", true, now.UTC()).Order("id asc").Find(&discounts).Error; err != nil {
		return nil, err
	}
	return discounts, nil
}

// Deactivate 批量停用
func (r *GormDiscountRepository) Deactivate(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Discount{}).Where("id IN ? AND is_active = ?", ids, true).Update("is_active", false)
	return result.RowsAffected, result.Error
}
