package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/SlpAus/portfolio-backend/internal/platform/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialect 标识当前连接的数据库类型
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// DialectFor 根据连接串判断数据库类型
func DialectFor(url string) Dialect {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

func logLevel(name string) logger.LogLevel {
	switch strings.ToLower(name) {
	case "info":
		return logger.Info
	case "warn":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Silent
	}
}

// Open 初始化数据库连接
// postgres:// 连接串走PostgreSQL（生产环境，例如Neon），其余视为SQLite文件（本地开发与测试）
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	// GORM日志配置
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	gormCfg := &gorm.Config{
		Logger: newLogger,
		// 让唯一键冲突统一表现为 gorm.ErrDuplicatedKey
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch DialectFor(cfg.URL) {
	case DialectPostgres:
		dialector = postgres.Open(cfg.URL)
	default:
		// busy_timeout 让并发写入在SQLite上排队而不是立即报 SQLITE_BUSY
		sep := "?"
		if strings.Contains(cfg.URL, "?") {
			sep = "&"
		}
		dialector = sqlite.Open(cfg.URL + sep + "_busy_timeout=5000&_journal_mode=WAL")
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	if DialectFor(cfg.URL) == DialectSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("获取底层连接失败: %w", err)
		}
		// SQLite同一时间只允许一个写者
		sqlDB.SetMaxOpenConns(1)
	}

	log.Printf("数据库连接成功 (%s)", DialectFor(cfg.URL))
	return db, nil
}

// Close 关闭底层连接池
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
