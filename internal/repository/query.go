package repository

import (
	"errors"

	"gorm.io/gorm"
)

// first 查询单行，不存在时返回 nil, nil
func first[T any](query *gorm.DB, conds ...interface{}) (*T, error) {
	var row T
	if err := query.First(&row, conds...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}
