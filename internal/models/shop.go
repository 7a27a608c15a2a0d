package models

import (
	"time"

	"gorm.io/gorm"
)

// Shop 店铺表
type Shop struct {
	ID          uint           `gorm:"primarykey" json:"id"`                   // 主键
	Name        string         `gorm:"type:varchar(255);not null" json:"name"` // 店铺名称
	Description string         `gorm:"type:text" json:"description"`           // 店铺简介
	Phone       string         `gorm:"type:varchar(32)" json:"phone"`          // 联系电话
	Email       string         `gorm:"type:varchar(255)" json:"email"`         // 联系邮箱
	Address     string         `gorm:"type:varchar(512)" json:"address"`       // 地址
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`    // 是否营业
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                         // 软删除时间
}

// TableName 指定表名
func (Shop) TableName() string {
	return "shops"
}
