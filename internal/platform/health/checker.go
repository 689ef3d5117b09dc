package health

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/SlpAus/portfolio-backend/internal/platform/database"
	"github.com/SlpAus/portfolio-backend/pkg/lifecycle"
	"github.com/redis/go-redis/v9"
)

const (
	defaultCheckInterval = 5 * time.Second
	pingTimeout          = 2 * time.Second
)

var runIDPattern = regexp.MustCompile(`run_id:([a-f0-9]+)`)

// Checker 定期检查Redis，并把结果写入 database.Status 供限流器读取
type Checker struct {
	rdb      *redis.Client
	status   *database.Status
	interval time.Duration

	lastRunID string
}

// NewChecker 创建检查器。interval <= 0 时使用默认值。
func NewChecker(rdb *redis.Client, status *database.Status, interval time.Duration) *Checker {
	if interval <= 0 {
		interval = defaultCheckInterval
	}
	return &Checker{rdb: rdb, status: status, interval: interval}
}

// getRunID 从Redis服务器信息中提取run_id
func (c *Checker) getRunID(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	info, err := c.rdb.Info(ctx, "server").Result()
	if err != nil {
		return "", err
	}
	matches := runIDPattern.FindStringSubmatch(info)
	if len(matches) < 2 {
		return "", fmt.Errorf("无法在Redis INFO中找到run_id")
	}
	return matches[1], nil
}

// PerformCheck 执行一次检查。
// run_id 变化说明Redis重启过，限流窗口随之清空，这里只记录日志。
func (c *Checker) PerformCheck(ctx context.Context) {
	runID, err := c.getRunID(ctx)
	if err != nil {
		// INFO 不可用时退回到 PING，部分托管Redis禁用了 INFO
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		c.status.UpdateStatus(c.rdb.Ping(pingCtx).Err() == nil)
		return
	}

	if c.lastRunID != "" && c.lastRunID != runID {
		log.Printf("健康检查: 检测到Redis重启 (run_id: %s -> %s)，联系表单限流计数已重置。", c.lastRunID, runID)
	}
	c.lastRunID = runID
	c.status.UpdateStatus(true)
}

// Run 阻塞式地循环执行检查，直到收到停机信号
func (c *Checker) Run(h *lifecycle.Handle) {
	log.Println("Redis健康检查器已启动。")
	for {
		if err := h.Sleep(c.interval); err != nil {
			log.Println("Redis健康检查器已停止。")
			return
		}
		c.PerformCheck(h.Ctx())
	}
}
