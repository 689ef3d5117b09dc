package contact

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/SlpAus/portfolio-backend/internal/platform/config"
)

// ErrSendFailed 表示邮件渠道没有确认接收
var ErrSendFailed = errors.New("邮件发送失败")

const defaultSendTimeout = 10 * time.Second

// Relay 把联系表单消息转发到站长邮箱
type Relay struct {
	sender  Sender
	cfg     config.MailConfig
	timeout time.Duration
}

// NewRelay 创建转发服务
func NewRelay(sender Sender, cfg config.MailConfig) *Relay {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Relay{sender: sender, cfg: cfg, timeout: timeout}
}

// from 返回发件人头部。SMTP渠道以访客姓名显示，但地址必须是已认证的账号。
func (r *Relay) from(m Message) string {
	if r.cfg.Provider == config.MailProviderSMTP {
		return (&mail.Address{Name: m.Name, Address: r.cfg.SMTP.Username}).String()
	}
	return r.cfg.From
}

func (r *Relay) to() string {
	if r.cfg.To == "" && r.cfg.Provider == config.MailProviderSMTP {
		return r.cfg.SMTP.Username
	}
	return r.cfg.To
}

// Compose 由一条消息构造出完整邮件
func (r *Relay) Compose(m Message) (Email, error) {
	html, err := RenderHTML(m)
	if err != nil {
		return Email{}, err
	}
	return Email{
		From:    r.from(m),
		To:      r.to(),
		ReplyTo: m.Email,
		Subject: Subject(m),
		HTML:    html,
	}, nil
}

// Relay 渲染并同步发送一条消息，只有渠道确认后才返回 nil
func (r *Relay) Relay(ctx context.Context, m Message) error {
	e, err := r.Compose(m)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.sender.Send(ctx, e); err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	return nil
}
