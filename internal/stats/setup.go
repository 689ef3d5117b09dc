package stats

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// MigrateDB 负责自动迁移 site_stats 表结构
func MigrateDB(db *gorm.DB) error {
	if err := db.AutoMigrate(&SiteStats{}); err != nil {
		return fmt.Errorf("无法迁移site_stats表: %w", err)
	}
	log.Println("SiteStats数据库表迁移成功。")
	return nil
}
