package contact

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/SlpAus/portfolio-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
)

const (
	// ipKeyPrefix 是Redis中每个IP的有序集合键名前缀
	ipKeyPrefix = "contact_ip:"
	// limiterTimeout 限制单次Redis事务的耗时，超时即放行
	limiterTimeout = 500 * time.Millisecond
)

// ErrRateLimited 表示该IP在窗口内的提交次数已达上限
var ErrRateLimited = errors.New("提交过于频繁")

// Limiter 使用Redis有序集合实现按IP的滑动窗口限流。
// 客户端为 nil 或 Redis 不健康时一律放行。
type Limiter struct {
	rdb    *redis.Client
	status *database.Status
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewLimiter 创建限流器。limit <= 0 表示不限流。
func NewLimiter(rdb *redis.Client, status *database.Status, limit int, window time.Duration) *Limiter {
	return &Limiter{
		rdb:    rdb,
		status: status,
		limit:  int64(limit),
		window: window,
		now:    time.Now,
	}
}

func (l *Limiter) enabled() bool {
	return l != nil && l.rdb != nil && l.limit > 0 && l.window > 0
}

// generateMemberID 生成16字节的抗冲突成员ID: [8字节纳秒时间戳 | 8字节随机数]
func generateMemberID(t time.Time) (string, error) {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b[0:8], uint64(t.UnixNano()))
	if _, err := rand.Read(b[8:16]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Allow 为一个IP原子地记录一次提交，超出限额时撤销本次记录并返回 ErrRateLimited。
// Redis 出错时只记录日志并放行。
func (l *Limiter) Allow(ctx context.Context, ip string) error {
	if !l.enabled() {
		return nil
	}
	if net.ParseIP(ip) == nil {
		return nil
	}
	if !l.status.IsRedisHealthy() {
		return nil
	}

	now := l.now()
	key := ipKeyPrefix + ip
	minScore := float64(now.Add(-l.window).UnixMicro())
	member, err := generateMemberID(now)
	if err != nil {
		log.Printf("限流: 生成 memberID 失败，放行: %v", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, limiterTimeout)
	defer cancel()

	pipe := l.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", fmt.Sprintf("(%f", minScore))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMicro()), Member: member})
	pipe.Expire(ctx, key, l.window+time.Minute)
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("限流: 执行IP计数事务失败，放行: %v", err)
		return nil
	}

	count, err := countCmd.Result()
	if err != nil {
		log.Printf("限流: 获取IP计数结果失败，放行: %v", err)
		return nil
	}
	if count > l.limit {
		// 被拒绝的提交不占用额度
		if err := l.rdb.ZRem(ctx, key, member).Err(); err != nil {
			log.Printf("限流: 撤销计数失败 IP: %s, 错误: %v", ip, err)
		}
		return ErrRateLimited
	}
	return nil
}
