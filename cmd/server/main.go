package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/SlpAus/portfolio-backend/api"
	"github.com/SlpAus/portfolio-backend/internal/contact"
	"github.com/SlpAus/portfolio-backend/internal/platform/config"
	"github.com/SlpAus/portfolio-backend/internal/platform/database"
	"github.com/SlpAus/portfolio-backend/internal/platform/health"
	"github.com/SlpAus/portfolio-backend/internal/platform/shutdown"
	"github.com/SlpAus/portfolio-backend/internal/platform/startup"
	"github.com/SlpAus/portfolio-backend/internal/stats"
	"github.com/SlpAus/portfolio-backend/pkg/lifecycle"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	gin.SetMode(cfg.Server.Mode)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("连接数据库失败: %v", err)
	}

	// Redis 只用于联系表单限流，连不上时降级为不限流
	rdb, err := database.OpenRedis(context.Background(), cfg.Database.Redis)
	if err != nil {
		log.Printf("警告: %v，联系表单限流已禁用。", err)
		rdb = nil
	}
	redisStatus := database.NewStatus()

	store := stats.NewStore(db, cfg.Database.QueryTimeout)
	if err := startup.InitializeApplication(context.Background(), db, store); err != nil {
		log.Fatalf("应用初始化失败，无法启动: %v", err)
	}

	sender, err := contact.NewSender(cfg.Mail)
	if err != nil {
		log.Fatalf("初始化邮件渠道失败: %v", err)
	}
	log.Printf("邮件渠道: %s", cfg.Mail.Provider)

	manager := lifecycle.NewManager()
	if rdb != nil {
		checker := health.NewChecker(rdb, redisStatus, 0)
		checker.PerformCheck(context.Background())
		if err := manager.Go("redis-health", checker.Run); err != nil {
			log.Fatalf("启动健康检查器失败: %v", err)
		}
	}

	limiter := contact.NewLimiter(rdb, redisStatus, cfg.Contact.RateLimit, cfg.Contact.RateWindow)
	router, err := api.NewRouter(api.Deps{
		Stats:          stats.NewHandler(store),
		Contact:        contact.NewHandler(contact.NewRelay(sender, cfg.Mail), limiter),
		AdminToken:     cfg.Admin.Token,
		AllowedOrigins: cfg.Server.Cors.AllowedOrigins,
		TrustedProxies: cfg.Server.TrustedProxies,
		DB:             store,
		RedisEnabled:   rdb != nil,
		RedisStatus:    redisStatus,
	})
	if err != nil {
		log.Fatalf("创建路由失败: %v", err)
	}

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	coordinator := shutdown.NewCoordinator(manager)
	coordinator.OnClose("数据库", func() error { return database.Close(db) })
	if rdb != nil {
		coordinator.OnClose("Redis", rdb.Close)
	}

	go func() {
		log.Printf("服务器已准备就绪，开始监听 %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	coordinator.ListenForSignalsAndShutdown(server)
}
