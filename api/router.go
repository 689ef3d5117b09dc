package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SlpAus/portfolio-backend/internal/contact"
	"github.com/SlpAus/portfolio-backend/internal/platform/database"
	"github.com/SlpAus/portfolio-backend/internal/platform/health"
	"github.com/SlpAus/portfolio-backend/internal/platform/requestid"
	"github.com/SlpAus/portfolio-backend/internal/platform/validation"
	"github.com/SlpAus/portfolio-backend/internal/stats"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps 汇总了路由需要的所有依赖，由 main 组装
type Deps struct {
	Stats          *stats.Handler
	Contact        *contact.Handler
	AdminToken     string
	AllowedOrigins []string
	// TrustedProxies 为空时不信任任何代理，ClientIP 只取连接的远端地址
	TrustedProxies []string

	DB           health.Pinger
	RedisEnabled bool
	RedisStatus  *database.Status
}

// NewRouter 创建带有全局中间件的gin引擎并注册所有路由
func NewRouter(deps Deps) (*gin.Engine, error) {
	validation.Setup()

	r := gin.New()
	if err := r.SetTrustedProxies(deps.TrustedProxies); err != nil {
		return nil, fmt.Errorf("无效的可信代理配置: %w", err)
	}
	r.Use(gin.Logger(), gin.Recovery(), requestid.Middleware())

	// 已注册路径的其他方法返回405而不是404
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method Not Allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
	})

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", requestid.Header},
		ExposeHeaders:    []string{"Content-Length", requestid.Header},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(deps.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = deps.AllowedOrigins
	}
	r.Use(cors.New(corsConfig))

	SetupRoutes(r, deps)
	return r, nil
}

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine, deps Deps) {
	api := router.Group("/api")
	{
		// 计数相关的路由组 /api/stats
		statsRoutes := api.Group("/stats")
		{
			statsRoutes.GET("", deps.Stats.GetStats)
			statsRoutes.POST("/views", deps.Stats.IncrementViews)
			statsRoutes.POST("/loves", deps.Stats.IncrementLoves)
			statsRoutes.POST("/init", stats.RequireAdminToken(deps.AdminToken), deps.Stats.InitStats)
		}

		// 联系表单 /api/send
		api.POST("/send", deps.Contact.Send)

		api.GET("/health", health.Handler(deps.DB, deps.RedisEnabled, deps.RedisStatus))
	}
}
