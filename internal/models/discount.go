package models

import (
	"time"

	"gorm.io/gorm"
)

// Discount 折扣活动表
type Discount struct {
	ID        uint           `gorm:"primarykey" json:"id"`                   // 主键
	Name      string         `gorm:"type:varchar(255);not null" json:"name"` // 活动名称
	Percent   int            `gorm:"not null;default:0" json:"percent"`      // 折扣百分比
	DateStart time.Time      `gorm:"index" json:"date_start"`                // 开始时间
	DateEnd   time.Time      `gorm:"index" json:"date_end"`                  // 结束时间
	IsActive  bool           `gorm:"default:true;index" json:"is_active"`    // 是否生效
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                         // 软删除时间
}

// TableName 指定表名
func (Discount) TableName() string {
	return "discounts"
}
