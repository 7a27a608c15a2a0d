package models

import (
	"time"

	"gorm.io/gorm"
)

// ShopProduct 店铺在售商品（库存台账）
// available + reserved + sold 在占用、释放、结算过程中保持不变
type ShopProduct struct {
	ID             uint           `gorm:"primarykey" json:"id"`                               // 主键
	ProductID      uint           `gorm:"index;not null" json:"product_id"`                   // 商品ID
	ShopID         uint           `gorm:"index;not null" json:"shop_id"`                      // 店铺ID
	Price          Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 售价
	AvailableCount int            `gorm:"not null;default:0" json:"available_count"`          // 可售数量
	ReservedCount  int            `gorm:"not null;default:0" json:"reserved_count"`           // 待支付占用数量
	SoldCount      int            `gorm:"not null;default:0" json:"sold_count"`               // 已售数量
	IsActive       bool           `gorm:"default:true;index" json:"is_active"`                // 是否上架
	DiscountID     *uint          `gorm:"index" json:"discount_id,omitempty"`                 // 生效中的折扣
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                            // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                     // 软删除时间
	Product        *Product       `gorm:"foreignKey:ProductID" json:"product,omitempty"`      // 关联商品
	Shop           *Shop          `gorm:"foreignKey:ShopID" json:"shop,omitempty"`            // 关联店铺
}

// TableName 指定表名
func (ShopProduct) TableName() string {
	return "shop_products"
}

// StockTotal 台账总量
func (s *ShopProduct) StockTotal() int {
	if s == nil {
		return 0
	}
	return s.AvailableCount + s.ReservedCount + s.SoldCount
}
