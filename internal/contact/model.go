package contact

import (
	"encoding/json"
	"strings"
)

// Message 是一次联系表单提交，只在请求期间存在，不做持久化
type Message struct {
	Name    string `json:"name" binding:"required,max=200"`
	Email   string `json:"email" binding:"required,email,max=320"`
	Message string `json:"message" binding:"required,max=10000"`
}

// UnmarshalJSON 在解码时去掉首尾空白，这样校验规则看到的是去空白后的值：
// 只有空白的字段按缺失处理，" a@example.com " 按合法邮箱处理。
func (m *Message) UnmarshalJSON(b []byte) error {
	type plain Message
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*m = Message(p)
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Message = strings.TrimSpace(m.Message)
	return nil
}

// Email 是交给邮件渠道的发送请求
type Email struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	HTML    string
}
