package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/portfolio-backend/internal/platform/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStorageUnavailable 表示底层存储不可用。存储层不会重试，重试策略由调用方决定。
var ErrStorageUnavailable = errors.New("stats: storage unavailable")

const defaultQueryTimeout = 5 * time.Second

// 自增通过单条 upsert 完成：行不存在时插入初始值，存在时由数据库原子地 +1。
// PostgreSQL 与 SQLite(>=3.35) 都支持这种写法。
const (
	incrementViewsSQL = `INSERT INTO site_stats (id, site_views, love_count) VALUES (?, 1, 0)
ON CONFLICT (id) DO UPDATE SET site_views = site_stats.site_views + 1
RETURNING site_views`

	incrementLovesSQL = `INSERT INTO site_stats (id, site_views, love_count) VALUES (?, 0, 1)
ON CONFLICT (id) DO UPDATE SET love_count = site_stats.love_count + 1
RETURNING love_count`
)

// Store 是计数行的唯一访问入口
type Store struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewStore 创建一个计数器存储。timeout 为每次数据库调用的上限，<=0 时使用默认值。
func NewStore(db *gorm.DB, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &Store{db: db, timeout: timeout}
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}

func (s *Store) first(ctx context.Context) (SiteStats, error) {
	var row SiteStats
	err := s.db.WithContext(ctx).Where("id = ?", SingletonID).First(&row).Error
	return row, err
}

// Get 读取计数行；行不存在时插入全零行并返回。
// 并发的首次访问可能同时插入，唯一键冲突说明别的请求已经建好了这一行，此时重新读取即可。
func (s *Store) Get(ctx context.Context) (SiteStats, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row, err := s.first(ctx)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return SiteStats{}, unavailable("读取计数失败", err)
	}

	row = SiteStats{ID: SingletonID}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if !database.IsDuplicateKeyError(err) {
			return SiteStats{}, unavailable("初始化计数行失败", err)
		}
		row, err = s.first(ctx)
		if err != nil {
			return SiteStats{}, unavailable("重新读取计数失败", err)
		}
	}
	return row, nil
}

func (s *Store) increment(ctx context.Context, query, op string) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var value int64
	if err := s.db.WithContext(ctx).Raw(query, SingletonID).Scan(&value).Error; err != nil {
		return 0, unavailable(op, err)
	}
	return value, nil
}

// IncrementViews 原子地将浏览数 +1 并返回新值
func (s *Store) IncrementViews(ctx context.Context) (int64, error) {
	return s.increment(ctx, incrementViewsSQL, "增加浏览数失败")
}

// IncrementLoves 原子地将喜欢数 +1 并返回新值
func (s *Store) IncrementLoves(ctx context.Context) (int64, error) {
	return s.increment(ctx, incrementLovesSQL, "增加喜欢数失败")
}

// Initialize 将计数行设置为给定值（管理用途：重置或迁移旧数据）
func (s *Store) Initialize(ctx context.Context, views, loves int64) (SiteStats, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row := SiteStats{ID: SingletonID, SiteViews: views, LoveCount: loves}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"site_views": views, "love_count": loves}),
	}).Create(&row).Error
	if err != nil {
		return SiteStats{}, unavailable("初始化计数失败", err)
	}
	return row, nil
}

// Ping 检查数据库是否可达，供健康检查使用
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	sqlDB, err := s.db.DB()
	if err != nil {
		return unavailable("获取连接失败", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return unavailable("数据库不可达", err)
	}
	return nil
}
