// Package model 定义数据模型
package model

import (
	"gorm.io/gorm"
)

// AutoMigrate migrates the table registered under key
// AutoMigrate 根据 key 迁移对应的数据表
func AutoMigrate(db *gorm.DB, key string) error {
	switch key {
	case "Note":
		return db.AutoMigrate(Note{})
	}
	return nil
}
