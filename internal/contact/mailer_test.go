package contact

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"net/smtp"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/SlpAus/portfolio-backend/internal/platform/config"
)

var testEmail = Email{
	From:    "Portfolio Contact <onboarding@resend.dev>",
	To:      "owner@example.com",
	ReplyTo: "ada@example.com",
	Subject: "Portfolio Message from Ada",
	HTML:    "<p>hello</p>",
}

func TestNewSender(t *testing.T) {
	if s, err := NewSender(config.MailConfig{Provider: config.MailProviderResend, ResendAPIKey: "re_x"}); err != nil {
		t.Fatalf("resend: %v", err)
	} else if _, ok := s.(*ResendSender); !ok {
		t.Fatalf("resend: got %T", s)
	}
	if s, err := NewSender(config.MailConfig{Provider: config.MailProviderSMTP}); err != nil {
		t.Fatalf("smtp: %v", err)
	} else if _, ok := s.(*SMTPSender); !ok {
		t.Fatalf("smtp: got %T", s)
	}
	if _, err := NewSender(config.MailConfig{Provider: "pigeon"}); err == nil {
		t.Fatal("unknown provider should fail")
	}
}

func newResendServer(t *testing.T, status int, got *map[string]interface{}) *ResendSender {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/emails" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer re_test" {
			t.Errorf("missing api key, got %q", r.Header.Get("Authorization"))
		}
		body, _ := io.ReadAll(r.Body)
		if got != nil {
			_ = json.Unmarshal(body, got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(`{"id":"49a3999c-0ce1-4ea6-ab68-afcd6dc2e794"}`))
		} else {
			_, _ = w.Write([]byte(`{"statusCode":500,"name":"internal_server_error","message":"boom"}`))
		}
	}))
	t.Cleanup(srv.Close)

	s := NewResendSender("re_test", 5*time.Second)
	base, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	s.client.BaseURL = base
	return s
}

func TestResendSender_Send(t *testing.T) {
	var got map[string]interface{}
	s := newResendServer(t, http.StatusOK, &got)

	if err := s.Send(context.Background(), testEmail); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got["from"] != testEmail.From || got["subject"] != testEmail.Subject || got["html"] != testEmail.HTML {
		t.Fatalf("unexpected payload: %v", got)
	}
	if got["reply_to"] != testEmail.ReplyTo {
		t.Fatalf("reply_to: %v", got["reply_to"])
	}
	to, _ := got["to"].([]interface{})
	if len(to) != 1 || to[0] != testEmail.To {
		t.Fatalf("to: %v", got["to"])
	}
}

func TestResendSender_ProviderError(t *testing.T) {
	s := newResendServer(t, http.StatusInternalServerError, nil)
	if err := s.Send(context.Background(), testEmail); err == nil {
		t.Fatal("provider error should be returned")
	}
}

func TestSMTPSender_Send(t *testing.T) {
	s := NewSMTPSender(config.SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "me@example.com", Password: "pw"})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	e := testEmail
	e.From = `"Ada" <me@example.com>`
	if err := s.Send(context.Background(), e); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotAddr != "smtp.example.com:587" {
		t.Fatalf("addr: %q", gotAddr)
	}
	if gotFrom != "me@example.com" {
		t.Fatalf("envelope from: %q", gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "owner@example.com" {
		t.Fatalf("to: %v", gotTo)
	}

	parsed, err := mail.ReadMessage(strings.NewReader(string(gotMsg)))
	if err != nil {
		t.Fatalf("message is not parseable: %v", err)
	}
	if got := parsed.Header.Get("Reply-To"); got != "ada@example.com" {
		t.Fatalf("reply-to: %q", got)
	}
	if got := parsed.Header.Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Fatalf("content-type: %q", got)
	}
}

func TestSMTPSender_Failure(t *testing.T) {
	s := NewSMTPSender(config.SMTPConfig{Host: "smtp.example.com", Port: 587})
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("535 auth failed")
	}
	if err := s.Send(context.Background(), testEmail); err == nil {
		t.Fatal("smtp error should be returned")
	}
}

func TestSMTPSender_RespectsContext(t *testing.T) {
	s := NewSMTPSender(config.SMTPConfig{Host: "smtp.example.com", Port: 587})
	release := make(chan struct{})
	defer close(release)
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		<-release
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Send(ctx, testEmail); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want deadline exceeded, got %v", err)
	}
}

func TestBuildMIMEMessage_StripsHeaderInjection(t *testing.T) {
	e := testEmail
	e.ReplyTo = "ada@example.com\r\nBcc: victim@example.com"
	msg, err := buildMIMEMessage(e)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	parsed, err := mail.ReadMessage(strings.NewReader(string(msg)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Header.Get("Bcc") != "" {
		t.Fatal("header injection produced a Bcc header")
	}
}
