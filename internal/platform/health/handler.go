package health

import (
	"context"
	"net/http"
	"time"

	"github.com/SlpAus/portfolio-backend/internal/platform/database"
	"github.com/gin-gonic/gin"
)

const probeTimeout = 2 * time.Second

// Pinger 是可以被探活的存储，*stats.Store 实现了它
type Pinger interface {
	Ping(ctx context.Context) error
}

// Report 是 GET /api/health 的响应体
type Report struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// Handler 报告数据库和Redis的状态。数据库不可用时返回503，Redis只影响限流，不影响状态码。
func Handler(db Pinger, redisEnabled bool, status *database.Status) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
		defer cancel()

		r := Report{Status: "ok", Database: "ok", Redis: "disabled"}
		code := http.StatusOK
		if err := db.Ping(ctx); err != nil {
			r.Status = "unavailable"
			r.Database = "unavailable"
			code = http.StatusServiceUnavailable
		}
		if redisEnabled {
			r.Redis = "ok"
			if !status.IsRedisHealthy() {
				r.Redis = "unavailable"
				if code == http.StatusOK {
					r.Status = "degraded"
				}
			}
		}
		c.JSON(code, r)
	}
}
