package models

import (
	"strings"

	"github.com/megano/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultStaff 初始化默认员工账号，已存在时直接返回
func InitDefaultStaff(email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		email = "staff@megano.local"
	}
	var existing User
	if err := DB.Where("email = ?", email).Limit(1).Find(&existing).Error; err != nil {
		return nil, err
	}
	if existing.ID != 0 {
		return &existing, nil
	}

	defaulted := password == ""
	if defaulted {
		password = "staff123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  "staff",
		Status:       "active",
	}
	if err := DB.Create(&user).Error; err != nil {
		return nil, err
	}

	if defaulted {
		logger.Warnw("default_staff_created_with_default_password", "email", email)
	} else {
		logger.Warnw("default_staff_created", "email", email, "password_hidden", true)
	}
	return &user, nil
}
