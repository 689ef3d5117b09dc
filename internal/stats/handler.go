package stats

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/SlpAus/portfolio-backend/internal/platform/validation"
	"github.com/gin-gonic/gin"
)

// Counter 是处理器依赖的存储接口，*Store 实现了它
type Counter interface {
	Get(ctx context.Context) (SiteStats, error)
	IncrementViews(ctx context.Context) (int64, error)
	IncrementLoves(ctx context.Context) (int64, error)
	Initialize(ctx context.Context, views, loves int64) (SiteStats, error)
}

// InitRequest 是 POST /api/stats/init 的请求体，两个字段都可省略（默认0）
type InitRequest struct {
	SiteViews *int64 `json:"site_views" binding:"omitempty,min=0"`
	LoveCount *int64 `json:"love_count" binding:"omitempty,min=0"`
}

type viewsResponse struct {
	NewViewCount int64 `json:"newViewCount"`
}

type lovesResponse struct {
	NewLoveCount int64 `json:"newLoveCount"`
}

// Handler 把计数器存储暴露为HTTP接口
type Handler struct {
	counter Counter
}

func NewHandler(counter Counter) *Handler {
	return &Handler{counter: counter}
}

// GetStats 返回当前计数，必要时创建计数行
func (h *Handler) GetStats(c *gin.Context) {
	row, err := h.counter.Get(c.Request.Context())
	if err != nil {
		log.Printf("获取计数失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}
	c.JSON(http.StatusOK, row)
}

// IncrementViews 浏览数 +1
func (h *Handler) IncrementViews(c *gin.Context) {
	n, err := h.counter.IncrementViews(c.Request.Context())
	if err != nil {
		log.Printf("增加浏览数失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to increment views"})
		return
	}
	c.JSON(http.StatusOK, viewsResponse{NewViewCount: n})
}

// IncrementLoves 喜欢数 +1
func (h *Handler) IncrementLoves(c *gin.Context) {
	n, err := h.counter.IncrementLoves(c.Request.Context())
	if err != nil {
		log.Printf("增加喜欢数失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to increment loves"})
		return
	}
	c.JSON(http.StatusOK, lovesResponse{NewLoveCount: n})
}

// InitStats 把计数设置为请求体中的值
func (h *Handler) InitStats(c *gin.Context) {
	var body InitRequest
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Describe(err)})
		return
	}

	var views, loves int64
	if body.SiteViews != nil {
		views = *body.SiteViews
	}
	if body.LoveCount != nil {
		loves = *body.LoveCount
	}

	row, err := h.counter.Initialize(c.Request.Context(), views, loves)
	if err != nil {
		log.Printf("初始化计数失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to initialize stats"})
		return
	}
	log.Printf("计数已初始化: views=%d loves=%d", row.SiteViews, row.LoveCount)
	c.JSON(http.StatusOK, row)
}
