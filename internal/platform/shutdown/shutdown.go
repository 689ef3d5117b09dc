package shutdown

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SlpAus/portfolio-backend/pkg/lifecycle"
)

const (
	defaultHTTPTimeout       = 15 * time.Second
	defaultBackgroundTimeout = 5 * time.Second
)

// Coordinator 负责编排应用程序的优雅停机流程：
// 先停止接收HTTP请求并等待进行中的请求完成，再停止后台服务，最后释放资源。
type Coordinator struct {
	Manager           *lifecycle.Manager
	HTTPTimeout       time.Duration
	BackgroundTimeout time.Duration

	closers []namedCloser
}

type namedCloser struct {
	name  string
	close func() error
}

// NewCoordinator 创建一个新的停机协调器
func NewCoordinator(manager *lifecycle.Manager) *Coordinator {
	return &Coordinator{
		Manager:           manager,
		HTTPTimeout:       defaultHTTPTimeout,
		BackgroundTimeout: defaultBackgroundTimeout,
	}
}

// OnClose 注册在最后阶段按注册顺序释放的资源
func (c *Coordinator) OnClose(name string, fn func() error) {
	c.closers = append(c.closers, namedCloser{name: name, close: fn})
}

// ListenForSignalsAndShutdown 阻塞直到收到 SIGINT/SIGTERM，然后执行停机流程
func (c *Coordinator) ListenForSignalsAndShutdown(server *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	<-sigChan
	log.Println("收到关闭信号，开始优雅停机...")
	c.Shutdown(server)
}

// Shutdown 执行停机流程
func (c *Coordinator) Shutdown(server *http.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.HTTPTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Gin服务器关闭错误: %v", err)
	} else {
		log.Println("Gin服务器已关闭。")
	}

	if c.Manager != nil {
		c.Manager.Shutdown()
		if remaining := c.Manager.WaitWithTimeout(c.BackgroundTimeout); len(remaining) > 0 {
			log.Printf("以下后台服务未能在 %v 内退出: %v", c.BackgroundTimeout, remaining)
		} else {
			log.Println("所有后台服务已关闭。")
		}
	}

	for _, cl := range c.closers {
		if err := cl.close(); err != nil {
			log.Printf("关闭 %s 失败: %v", cl.name, err)
		} else {
			log.Printf("%s 已关闭。", cl.name)
		}
	}

	log.Println("优雅停机完成。")
}
