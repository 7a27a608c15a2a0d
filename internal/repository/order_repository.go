package repository

import (
	"time"

	"github.com/megano/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	ListByBuyer(filter OrderListFilter) ([]models.Order, int64, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	ListHoldExpired(now time.Time, limit int) ([]models.Order, error)
	MarkPaid(id uint) (int64, error)
	MarkHoldReleased(id uint) (int64, error)
	MarkConfirmed(id uint) (int64, error)
	MarkCanceled(id uint) (int64, error)
	Delete(id uint) error
	WithTx(tx *gorm.DB) OrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

func (r *GormOrderRepository) withDetails(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Payment").
		Preload("Payment.PaymentCategory").
		Preload("DeliveryCategory")
}

// Create 创建订单与订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Omit("Items", "Payment").Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	order.Items = items
	return nil
}

// GetByID 根据 ID 获取订单（含订单项、支付记录）
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	return first[models.Order](r.withDetails(r.db), id)
}

// ListByBuyer 买家订单列表
func (r *GormOrderRepository) ListByBuyer(filter OrderListFilter) ([]models.Order, int64, error) {
	if filter.BuyerID == 0 {
		return []models.Order{}, 0, nil
	}
	return r.list(filter)
}

// ListAdmin 管理端订单列表
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	return r.list(filter)
}

func (r *GormOrderRepository) list(filter OrderListFilter) ([]models.Order, int64, error) {
	var orders []models.Order
	query := r.db.Model(&models.Order{})
	if filter.BuyerID != 0 {
		query = query.Where("buyer_id = ?", filter.BuyerID)
	}
	if filter.IsPaid != nil {
		query = query.Where("is_paid = ?", *filter.IsPaid)
	}
	if filter.IsCanceled != nil {
		query = query.Where("is_canceled = ?", *filter.IsCanceled)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = query.Scopes(paginate(filter.Page, filter.PageSize))
	if err := r.withDetails(query).Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListHoldExpired 占用已过期但尚未释放的待支付订单
func (r *GormOrderRepository) ListHoldExpired(now time.Time, limit int) ([]models.Order, error) {
	var orders []models.Order
	query := r.db.Where("stock_reserved = ? AND is_paid = ? AND hold_expires_at <= ?", true, false, now.UTC()).
		Order("id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// MarkPaid 标记已支付，仅对未支付且未取消的订单生效
func (r *GormOrderRepository) MarkPaid(id uint) (int64, error) {
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND is_paid = ? AND is_canceled = ?", id, false, false).
		Updates(map[string]interface{}{
			"is_paid":         true,
			"stock_reserved":  false,
			"hold_expires_at": nil,
		})
	return result.RowsAffected, result.Error
}

// MarkHoldReleased 标记库存占用已释放，仅对仍持有占用的未支付订单生效
func (r *GormOrderRepository) MarkHoldReleased(id uint) (int64, error) {
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND stock_reserved = ? AND is_paid = ?", id, true, false).
		Updates(map[string]interface{}{
			"stock_reserved":  false,
			"hold_expires_at": nil,
		})
	return result.RowsAffected, result.Error
}

// MarkConfirmed 员工确认订单
func (r *GormOrderRepository) MarkConfirmed(id uint) (int64, error) {
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND is_canceled = ?", id, false).
		Update("is_confirmed", true)
	return result.RowsAffected, result.Error
}

// MarkCanceled 取消未支付订单
func (r *GormOrderRepository) MarkCanceled(id uint) (int64, error) {
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND is_paid = ? AND is_canceled = ?", id, false, false).
		Updates(map[string]interface{}{
			"is_canceled":     true,
			"stock_reserved":  false,
			"hold_expires_at": nil,
		})
	return result.RowsAffected, result.Error
}

// Delete 删除订单及其订单项、支付记录
func (r *GormOrderRepository) Delete(id uint) error {
	if err := r.db.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	if err := r.db.Where("order_id = ?", id).Delete(&models.PaymentItem{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.Order{}, id).Error
}
