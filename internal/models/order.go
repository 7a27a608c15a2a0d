package models

import (
	"time"
)

// Order 订单表
// 买家删除账号后订单保留（buyer_id 置空）
type Order struct {
	ID                 uint       `gorm:"primarykey" json:"id"`                                        // 主键
	BuyerID            *uint      `gorm:"index" json:"buyer_id"`                                       // 买家ID
	DeliveryCategoryID uint       `gorm:"index;not null" json:"delivery_category_id"`                  // 配送方式
	Name               string     `gorm:"type:varchar(255);not null" json:"name"`                      // 收货人
	Phone              string     `gorm:"type:varchar(32);not null" json:"phone"`                      // 联系电话
	Email              string     `gorm:"type:varchar(255);not null" json:"email"`                     // 联系邮箱
	City               string     `gorm:"type:varchar(255);not null" json:"city"`                      // 城市
	Address            string     `gorm:"type:varchar(512);not null" json:"address"`                   // 地址
	Comment            string     `gorm:"type:text" json:"comment"`                                    // 备注
	IsFreeDelivery     bool       `gorm:"not null;default:false" json:"is_free_delivery"`              // 是否免运费
	DeliveryPrice      Money      `gorm:"type:decimal(20,2);not null;default:0" json:"delivery_price"` // 实收运费
	IsPaid             bool       `gorm:"not null;default:false;index" json:"is_paid"`                 // 是否已支付
	IsConfirmed        bool       `gorm:"not null;default:false" json:"is_confirmed"`                  // 是否已确认
	IsCanceled         bool       `gorm:"not null;default:false;index" json:"is_canceled"`             // 是否已取消
	StockReserved      bool       `gorm:"not null;default:false" json:"stock_reserved"`                // 库存是否仍被占用
	HoldExpiresAt      *time.Time `gorm:"index" json:"hold_expires_at"`                                // 占用到期时间
	CreatedAt          time.Time  `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt          time.Time  `gorm:"index" json:"updated_at"`                                     // 更新时间

	Buyer            *User             `gorm:"foreignKey:BuyerID;constraint:OnDelete:SET NULL" json:"-"`         // 买家
	DeliveryCategory *DeliveryCategory `gorm:"foreignKey:DeliveryCategoryID" json:"delivery_category,omitempty"` // 配送方式
	Items            []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Payment          *PaymentItem      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"payment,omitempty"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// HoldExpired 待支付占用是否已过期
func (o *Order) HoldExpired(now time.Time) bool {
	if o == nil || !o.StockReserved || o.IsPaid || o.HoldExpiresAt == nil {
		return false
	}
	return !now.Before(*o.HoldExpiresAt)
}

// OrderItem 订单项表（下单后不可变）
type OrderItem struct {
	ID               uint      `gorm:"primarykey" json:"id"`                                             // 主键
	OrderID          uint      `gorm:"index;not null" json:"order_id"`                                   // 订单ID
	ShopProductID    uint      `gorm:"index;not null" json:"shop_product_id"`                            // 店铺商品ID
	Name             string    `gorm:"type:varchar(255);not null" json:"name"`                           // 商品名称快照
	PriceOnAddMoment Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price_on_add_moment"` // 加入购物车时的单价
	Quantity         int       `gorm:"not null" json:"quantity"`                                         // 数量
	CreatedAt        time.Time `json:"created_at"`                                                       // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

// LineTotal 小计
func (i OrderItem) LineTotal() Money {
	return i.PriceOnAddMoment.Times(i.Quantity)
}

// PaymentItem 订单支付记录（与订单一对一）
type PaymentItem struct {
	ID                uint             `gorm:"primarykey" json:"id"`                                     // 主键
	OrderID           uint             `gorm:"uniqueIndex;not null" json:"order_id"`                     // 订单ID
	PaymentCategoryID uint             `gorm:"index;not null" json:"payment_category_id"`                // 支付方式
	TotalPrice        Money            `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 应付总额（含运费）
	FromAccount       *string          `gorm:"type:varchar(64)" json:"from_account"`                     // 付款账号
	IsPassed          bool             `gorm:"not null;default:false;index" json:"is_passed"`            // 是否已结算
	PassedAt          *time.Time       `json:"passed_at"`                                                // 结算时间
	CreatedAt         time.Time        `json:"created_at"`                                               // 创建时间
	UpdatedAt         time.Time        `json:"updated_at"`                                               // 更新时间
	PaymentCategory   *PaymentCategory `gorm:"foreignKey:PaymentCategoryID" json:"payment_category,omitempty"`
}

// TableName 指定表名
func (PaymentItem) TableName() string {
	return "payment_items"
}

// HasAccount 是否已提交付款账号
func (p *PaymentItem) HasAccount() bool {
	return p != nil && p.FromAccount != nil && *p.FromAccount != ""
}
