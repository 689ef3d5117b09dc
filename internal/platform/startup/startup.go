package startup

import (
	"context"
	"fmt"
	"log"

	"github.com/SlpAus/portfolio-backend/internal/stats"
	"gorm.io/gorm"
)

// InitializeApplication 是应用启动时执行的总入口：迁移表结构，并确保计数行存在
func InitializeApplication(ctx context.Context, db *gorm.DB, store *stats.Store) error {
	log.Println("开始应用初始化...")

	if err := stats.MigrateDB(db); err != nil {
		return fmt.Errorf("迁移计数表失败: %w", err)
	}

	// 计数行也会在首次访问时惰性创建，这里提前建好只是为了启动日志里能看到当前值
	row, err := store.Get(ctx)
	if err != nil {
		return fmt.Errorf("读取计数行失败: %w", err)
	}

	log.Printf("应用初始化完成！当前计数: views=%d loves=%d", row.SiteViews, row.LoveCount)
	return nil
}
