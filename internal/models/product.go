package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// StringArray 字符串数组类型，用于存储 images 等
type StringArray []string

// Value 实现 driver.Valuer 接口
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan 实现 sql.Scanner 接口
func (s *StringArray) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = StringArray{}
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return nil
	}
}

// Category 商品分类表
type Category struct {
	ID        uint           `gorm:"primarykey" json:"id"`                               // 主键
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`             // 分类名称
	Slug      string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"` // 唯一标识
	ParentID  *uint          `gorm:"index" json:"parent_id,omitempty"`                   // 父级分类
	Icon      string         `gorm:"type:varchar(512)" json:"icon"`                      // 图标
	IsActive  bool           `gorm:"default:true;index" json:"is_active"`                // 是否启用
	SortOrder int            `gorm:"default:0;index" json:"sort_order"`                  // 排序权重
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                            // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                     // 软删除时间
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}

// Product 商品表（与店铺无关的商品描述）
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`                            // 主键
	CategoryID  uint           `gorm:"index;not null" json:"category_id"`               // 分类ID
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`          // 商品名称
	Description string         `gorm:"type:text" json:"description"`                    // 商品描述
	Images      StringArray    `gorm:"type:json" json:"images"`                         // 图片列表
	IsLimited   bool           `gorm:"default:false" json:"is_limited"`                 // 是否限量
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                         // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                         // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                  // 软删除时间
	Category    *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // 关联分类
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// PrimaryImage 返回首图
func (p *Product) PrimaryImage() string {
	if p == nil || len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
