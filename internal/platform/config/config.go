package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MailProvider 定义了联系表单使用的邮件发送渠道
type MailProvider string

const (
	MailProviderResend MailProvider = "resend"
	MailProviderSMTP   MailProvider = "smtp"
)

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应，所有字段都可以被环境变量覆盖
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Mail     MailConfig     `mapstructure:"mail"`
	Contact  ContactConfig  `mapstructure:"contact"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Mode    string     `mapstructure:"mode"`
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`

	// TrustedProxies 是允许设置 X-Forwarded-For 的代理IP或CIDR，默认不信任任何代理
	TrustedProxies []string `mapstructure:"trustedProxies"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig 定义了数据库和缓存相关的配置
type DatabaseConfig struct {
	// URL 为 postgres:// 开头时使用PostgreSQL，否则视为SQLite文件路径
	URL          string        `mapstructure:"url"`
	QueryTimeout time.Duration `mapstructure:"queryTimeout"`
	LogLevel     string        `mapstructure:"logLevel"`
	Redis        RedisConfig   `mapstructure:"redis"`
}

// RedisConfig 定义了Redis的配置。Address 为空时不启用Redis。
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MailConfig 定义了邮件发送相关的配置
type MailConfig struct {
	Provider     MailProvider  `mapstructure:"provider"`
	ResendAPIKey string        `mapstructure:"resendApiKey"`
	From         string        `mapstructure:"from"`
	To           string        `mapstructure:"to"`
	Timeout      time.Duration `mapstructure:"timeout"`
	SMTP         SMTPConfig    `mapstructure:"smtp"`
}

// SMTPConfig 用于 smtp 渠道
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// ContactConfig 定义了联系表单的限流参数。RateLimit 为0表示不限流。
type ContactConfig struct {
	RateLimit  int           `mapstructure:"rateLimit"`
	RateWindow time.Duration `mapstructure:"rateWindow"`
}

// AdminConfig 保护 /api/stats/init。Token 为空时该接口不做鉴权。
type AdminConfig struct {
	Token string `mapstructure:"token"`
}

// envBindings 把部署平台上惯用的环境变量名映射到配置键
var envBindings = map[string][]string{
	"server.address":         {"SERVER_ADDRESS"},
	"database.url":           {"DATABASE_URL"},
	"database.redis.address": {"REDIS_ADDRESS", "REDIS_URL"},
	"mail.resendApiKey":      {"RESEND_API_KEY"},
	"mail.from":              {"EMAIL_FROM"},
	"mail.to":                {"EMAIL_TO"},
	"mail.smtp.username":     {"EMAIL_USER"},
	"mail.smtp.password":     {"EMAIL_PASS"},
	"admin.token":            {"ADMIN_TOKEN"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:5173", "http://localhost:5000"})

	v.SetDefault("database.url", "portfolio.db")
	v.SetDefault("database.queryTimeout", 5*time.Second)
	v.SetDefault("database.logLevel", "silent")

	v.SetDefault("mail.provider", string(MailProviderResend))
	v.SetDefault("mail.from", "Portfolio Contact <onboarding@resend.dev>")
	v.SetDefault("mail.timeout", 10*time.Second)
	v.SetDefault("mail.smtp.host", "smtp.gmail.com")
	v.SetDefault("mail.smtp.port", 587)

	v.SetDefault("contact.rateLimit", 5)
	v.SetDefault("contact.rateWindow", time.Hour)
}

// LoadConfig 函数负责查找、加载和解析配置文件
// 配置文件是可选的：没有 config.yaml 时完全依靠默认值和环境变量
func LoadConfig() (*Config, error) {
	// .env 只在本地开发时存在，找不到不是错误
	_ = godotenv.Load()

	v := viper.New()

	// 1. 设置配置文件名和类型
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// 2. 添加配置文件搜索路径
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// 3. 环境变量支持，例如 SERVER_ADDRESS=:8888
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("无法绑定环境变量 %s: %w", key, err)
		}
	}
	setDefaults(v)

	// 4. 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("无法读取配置文件: %w", err)
		}
	}

	// 5. 将配置反序列化到结构体中
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("无法解析配置: %w", err)
	}

	// PORT 是托管平台注入的端口，优先级最高
	if port := v.GetString("PORT"); port != "" {
		cfg.Server.Address = ":" + port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查邮件渠道所需的密钥是否齐全。
// smtp 渠道未配置收件人时发给 EMAIL_USER 自己，resend 渠道必须配置 EMAIL_TO。
func (c *Config) Validate() error {
	switch c.Mail.Provider {
	case MailProviderResend:
		if c.Mail.To == "" {
			return errors.New("缺少收件人地址 (EMAIL_TO)")
		}
		if c.Mail.ResendAPIKey == "" {
			return errors.New("mail.provider=resend 需要 RESEND_API_KEY")
		}
	case MailProviderSMTP:
		if c.Mail.SMTP.Username == "" || c.Mail.SMTP.Password == "" {
			return errors.New("mail.provider=smtp 需要 EMAIL_USER 和 EMAIL_PASS")
		}
	default:
		return fmt.Errorf("未知的邮件渠道: %q", c.Mail.Provider)
	}
	if c.Contact.RateLimit < 0 {
		return errors.New("contact.rateLimit 不能为负数")
	}
	return nil
}
