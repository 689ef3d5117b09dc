package contact

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/SlpAus/portfolio-backend/internal/platform/requestid"
	"github.com/SlpAus/portfolio-backend/internal/platform/validation"
	"github.com/gin-gonic/gin"
)

const (
	msgRequired    = "All fields are required."
	msgSuccess     = "Message sent successfully!"
	msgFailed      = "Failed to send email."
	msgRateLimited = "Too many messages. Please try again later."
)

// Relayer 是处理器依赖的转发接口，*Relay 实现了它
type Relayer interface {
	Relay(ctx context.Context, m Message) error
}

// RateLimiter 记录一次提交，超出限额时返回 ErrRateLimited。*Limiter 实现了它。
type RateLimiter interface {
	Allow(ctx context.Context, ip string) error
}

// Handler 处理联系表单提交
type Handler struct {
	relay   Relayer
	limiter RateLimiter
}

// NewHandler 创建处理器。limiter 为 nil 时不限流。
func NewHandler(relay Relayer, limiter RateLimiter) *Handler {
	return &Handler{relay: relay, limiter: limiter}
}

// Send 校验表单、按IP限流并同步转发邮件。
// 非法请求既不会触发外部调用，也不占用限流额度。
func (h *Handler) Send(c *gin.Context) {
	rid := requestid.Get(c)

	var m Message
	if err := c.ShouldBindJSON(&m); err != nil {
		msg := validation.Describe(err)
		if validation.HasTag(err, "required") {
			msg = msgRequired
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	if h.limiter != nil {
		if err := h.limiter.Allow(c.Request.Context(), c.ClientIP()); errors.Is(err, ErrRateLimited) {
			log.Printf("[%s] 联系表单限流: IP %s", rid, c.ClientIP())
			c.JSON(http.StatusTooManyRequests, gin.H{"error": msgRateLimited})
			return
		}
	}

	if err := h.relay.Relay(c.Request.Context(), m); err != nil {
		log.Printf("[%s] 联系表单转发失败: %v", rid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgFailed})
		return
	}

	log.Printf("[%s] 联系表单已转发: from=%s", rid, m.Email)
	c.JSON(http.StatusOK, gin.H{"success": msgSuccess})
}
