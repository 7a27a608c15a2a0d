package repository

import (
	"time"

	"github.com/megano/internal/models"

	"gorm.io/gorm"
)

// PaymentRepository 订单支付记录数据访问接口
type PaymentRepository interface {
	Create(payment *models.PaymentItem) error
	GetByOrderID(orderID uint) (*models.PaymentItem, error)
	MarkPassed(orderID uint, account string, passedAt time.Time) (int64, error)
	RecordAccount(orderID uint, account string) (int64, error)
	WithTx(tx *gorm.DB) PaymentRepository
}

// GormPaymentRepository GORM 实现
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付记录仓库
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentRepository) WithTx(tx *gorm.DB) PaymentRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentRepository{db: tx}
}

// Create 创建待支付记录
func (r *GormPaymentRepository) Create(payment *models.PaymentItem) error {
	return r.db.Create(payment).Error
}

// GetByOrderID 根据订单获取支付记录
func (r *GormPaymentRepository) GetByOrderID(orderID uint) (*models.PaymentItem, error) {
	return first[models.PaymentItem](r.db.Preload("PaymentCategory").Where("order_id = ?", orderID))
}

// MarkPassed 结算：仅当尚未结算时置为已通过，返回 0 表示已被结算过
func (r *GormPaymentRepository) MarkPassed(orderID uint, account string, passedAt time.Time) (int64, error) {
	result := r.db.Model(&models.PaymentItem{}).
		Where("order_id = ? AND is_passed = ?", orderID, false).
		Updates(map[string]interface{}{
			"is_passed":    true,
			"from_account": account,
			"passed_at":    passedAt,
		})
	return result.RowsAffected, result.Error
}

// RecordAccount 记录失败尝试的付款账号，已结算的记录不变
func (r *GormPaymentRepository) RecordAccount(orderID uint, account string) (int64, error) {
	result := r.db.Model(&models.PaymentItem{}).
		Where("order_id = ? AND is_passed = ?", orderID, false).
		Update("from_account", account)
	return result.RowsAffected, result.Error
}
