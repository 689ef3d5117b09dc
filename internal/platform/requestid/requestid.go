package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header 是请求ID在请求和响应中使用的头部
const Header = "X-Request-ID"

const contextKey = "requestID"

// Middleware 为每个请求分配ID。客户端自带的合法UUID会被沿用。
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(contextKey, id)
		c.Header(Header, id)
		c.Next()
	}
}

// Get 返回当前请求的ID，未经过中间件时返回 "-"
func Get(c *gin.Context) string {
	if id := c.GetString(contextKey); id != "" {
		return id
	}
	return "-"
}
