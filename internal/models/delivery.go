package models

import (
	"time"
)

// DeliveryCategory 配送方式
type DeliveryCategory struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                  // 主键
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`                // 名称
	Codename  string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"codename"` // 代号（如 regular-delivery）
	Price     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"`    // 配送费
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`                   // 是否启用
	CreatedAt time.Time `json:"created_at"`                                            // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                            // 更新时间
}

// TableName 指定表名
func (DeliveryCategory) TableName() string {
	return "delivery_categories"
}

// PaymentCategory 支付方式
type PaymentCategory struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                  // 主键
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`                // 名称
	Codename  string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"codename"` // 代号（如 bank-card）
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`                   // 是否启用
	CreatedAt time.Time `json:"created_at"`                                            // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                            // 更新时间
}

// TableName 指定表名
func (PaymentCategory) TableName() string {
	return "payment_categories"
}
