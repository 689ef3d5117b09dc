package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 5 * time.Second

// Stats 是 GET /api/stats 返回的计数
type Stats struct {
	ID        int64 `json:"id"`
	SiteViews int64 `json:"site_views"`
	LoveCount int64 `json:"love_count"`
}

// APIError 表示服务端返回了非2xx响应
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("计数接口返回 %d", e.Status)
	}
	return fmt.Sprintf("计数接口返回 %d: %s", e.Status, e.Message)
}

// Client 是计数接口的HTTP客户端
type Client struct {
	baseURL    string
	adminToken string
	http       *http.Client
}

// NewClient 创建客户端。baseURL 形如 http://localhost:8080，timeout <= 0 时使用默认值。
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// WithAdminToken 设置初始化接口使用的管理令牌
func (c *Client) WithAdminToken(token string) *Client {
	c.adminToken = token
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.adminToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.adminToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("请求 %s %s 失败: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("解析 %s 响应失败: %w", path, err)
	}
	return nil
}

// FetchStats 读取当前计数
func (c *Client) FetchStats(ctx context.Context) (Stats, error) {
	var s Stats
	err := c.do(ctx, http.MethodGet, "/api/stats", nil, &s)
	return s, err
}

// IncrementViews 浏览数 +1，返回新值
func (c *Client) IncrementViews(ctx context.Context) (int64, error) {
	var r struct {
		NewViewCount int64 `json:"newViewCount"`
	}
	err := c.do(ctx, http.MethodPost, "/api/stats/views", nil, &r)
	return r.NewViewCount, err
}

// IncrementLoves 喜欢数 +1，返回新值
func (c *Client) IncrementLoves(ctx context.Context) (int64, error) {
	var r struct {
		NewLoveCount int64 `json:"newLoveCount"`
	}
	err := c.do(ctx, http.MethodPost, "/api/stats/loves", nil, &r)
	return r.NewLoveCount, err
}

// Initialize 把计数设置为给定值
func (c *Client) Initialize(ctx context.Context, views, loves int64) (Stats, error) {
	body := map[string]int64{"site_views": views, "love_count": loves}
	var s Stats
	err := c.do(ctx, http.MethodPost, "/api/stats/init", body, &s)
	return s, err
}
