package contact

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net"
	"net/http"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/SlpAus/portfolio-backend/internal/platform/config"
	"github.com/resend/resend-go/v2"
)

// Sender 把一封邮件交给外部邮件渠道，返回 nil 表示对方已确认接收
type Sender interface {
	Send(ctx context.Context, e Email) error
}

// NewSender 根据配置选择邮件渠道
func NewSender(cfg config.MailConfig) (Sender, error) {
	switch cfg.Provider {
	case config.MailProviderResend, "":
		return NewResendSender(cfg.ResendAPIKey, cfg.Timeout), nil
	case config.MailProviderSMTP:
		return NewSMTPSender(cfg.SMTP), nil
	default:
		return nil, fmt.Errorf("未知的邮件渠道: %q", cfg.Provider)
	}
}

// ResendSender 通过 Resend HTTP API 发送邮件
type ResendSender struct {
	client *resend.Client
}

// NewResendSender 创建一个带超时的 Resend 客户端
func NewResendSender(apiKey string, timeout time.Duration) *ResendSender {
	httpClient := &http.Client{Timeout: timeout}
	return &ResendSender{client: resend.NewCustomClient(httpClient, apiKey)}
}

// Send 实现 Sender
func (s *ResendSender) Send(ctx context.Context, e Email) error {
	params := &resend.SendEmailRequest{
		From:    e.From,
		To:      []string{e.To},
		Subject: e.Subject,
		Html:    e.HTML,
		ReplyTo: e.ReplyTo,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}

// SMTPSender 通过带认证的SMTP服务器发送邮件（默认 Gmail 587 端口 + STARTTLS）
type SMTPSender struct {
	addr     string
	host     string
	username string
	password string
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender 创建SMTP发送器
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		host:     cfg.Host,
		username: cfg.Username,
		password: cfg.Password,
		send:     smtp.SendMail,
	}
}

// Send 实现 Sender。net/smtp 不接受 context，这里在独立goroutine中发送并等待 ctx。
func (s *SMTPSender) Send(ctx context.Context, e Email) error {
	envelopeFrom := s.username
	if addr, err := mail.ParseAddress(e.From); err == nil {
		envelopeFrom = addr.Address
	}
	msg, err := buildMIMEMessage(e)
	if err != nil {
		return err
	}

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	done := make(chan error, 1)
	go func() {
		done <- s.send(s.addr, auth, envelopeFrom, []string{e.To}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp: %w", ctx.Err())
	}
}

// stripCRLF 防止头部注入
func stripCRLF(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

// buildMIMEMessage 组装一封 text/html 邮件
func buildMIMEMessage(e Email) ([]byte, error) {
	if _, err := mail.ParseAddress(e.To); err != nil {
		return nil, fmt.Errorf("收件人地址无效: %w", err)
	}

	var buf bytes.Buffer
	writeHeader := func(k, v string) {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(stripCRLF(v))
		buf.WriteString("\r\n")
	}
	writeHeader("From", e.From)
	writeHeader("To", e.To)
	if e.ReplyTo != "" {
		writeHeader("Reply-To", e.ReplyTo)
	}
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", stripCRLF(e.Subject)))
	writeHeader("Date", time.Now().Format(time.RFC1123Z))
	writeHeader("MIME-Version", "1.0")
	writeHeader("Content-Type", `text/html; charset="utf-8"`)
	writeHeader("Content-Transfer-Encoding", "base64")
	buf.WriteString("\r\n")

	encoded := base64.StdEncoding.EncodeToString([]byte(e.HTML))
	for len(encoded) > 76 {
		buf.WriteString(encoded[:76])
		buf.WriteString("\r\n")
		encoded = encoded[76:]
	}
	buf.WriteString(encoded)
	buf.WriteString("\r\n")
	return buf.Bytes(), nil
}
