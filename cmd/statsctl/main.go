package main

import (
	"fmt"
	"os"
	"time"

	"github.com/SlpAus/portfolio-backend/internal/widget"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type options struct {
	apiURL    string
	timeout   time.Duration
	flagsPath string
	token     string
}

func (o *options) client() *widget.Client {
	return widget.NewClient(o.apiURL, o.timeout).WithAdminToken(o.token)
}

func (o *options) widget() (*widget.Widget, error) {
	path := o.flagsPath
	if path == "" {
		p, err := widget.DefaultFlagPath()
		if err != nil {
			return nil, fmt.Errorf("无法确定标记文件位置: %w", err)
		}
		path = p
	}
	return widget.New(o.client(), widget.NewFileFlagStore(path), nil), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "statsctl",
		Short: "查看并操作作品集网站的浏览/喜欢计数",
		Long: `statsctl 是计数展示组件的命令行版本：
  statsctl show                      显示当前计数
  statsctl visit                     模拟一次页面加载（浏览数 +1）
  statsctl love                      点一次喜欢（每个用户只生效一次）
  statsctl init --views 10 --loves 3 初始化计数（需要管理令牌时用 --token）`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.apiURL, "api", envOr("STATSCTL_API", "http://localhost:8080"), "后端地址")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "单次请求超时")
	root.PersistentFlags().StringVar(&opts.flagsPath, "flags", "", "喜欢标记文件 (默认 $XDG_CONFIG_HOME/statsctl/flags.json)")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("ADMIN_TOKEN"), "管理令牌")

	root.AddCommand(
		newShowCmd(opts),
		newVisitCmd(opts),
		newLoveCmd(opts),
		newInitCmd(opts),
	)
	return root
}

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
