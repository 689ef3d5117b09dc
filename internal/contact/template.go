package contact

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// 消息正文中的换行渲染为 <br>；所有字段都经过 html/template 转义
const emailTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>New Contact Message</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Poppins', Arial, sans-serif; background-color: #0a0a0a; color: #c4c4c4;">
  <div style="width: 100%; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="padding: 20px 0; text-align: center;">
      <h1 style="color: #00ff9d; margin: 0; font-size: 26px;">New Contact Form Message</h1>
      <p style="color: #c4c4c4; margin: 5px 0 0; font-size: 16px;">from your portfolio</p>
    </div>
    <div style="background-color: #1a1a1a; padding: 30px; border-radius: 8px; border: 2px solid #00ff9d;">
      <h2 style="color: #00ff9d; font-size: 20px; margin-top: 0; border-bottom: 1px solid #444; padding-bottom: 10px;">Sender Details</h2>
      <p style="font-size: 16px; line-height: 1.6;">
        <strong style="color: #00ff9d; min-width: 80px; display: inline-block;">Name:</strong>
        <span id="sender-name" style="color: #ffffff;">{{.Name}}</span>
      </p>
      <p style="font-size: 16px; line-height: 1.6;">
        <strong style="color: #00ff9d; min-width: 80px; display: inline-block;">Email:</strong>
        <a id="sender-email" href="mailto:{{.Email}}" style="color: #ffffff; text-decoration: underline;">{{.Email}}</a>
      </p>
      <hr style="border: 0; border-top: 1px solid #444; margin: 25px 0;">
      <h2 style="color: #00ff9d; font-size: 20px; margin-top: 0;">Message</h2>
      <div id="message" style="background-color: #0a0a0a; padding: 20px; border-radius: 5px; font-size: 16px; line-height: 1.7; color: #e0e0e0; border: 1px solid #00ff9d;">
        {{- range $i, $line := lines .Message}}{{if $i}}<br>{{end}}{{$line}}{{end -}}
      </div>
    </div>
    <div style="text-align: center; padding: 20px; font-size: 12px; color: #777;">
      <p>This email was sent from the contact form on your portfolio website.</p>
      <p>Reply directly to this email to respond to {{.Name}}.</p>
    </div>
  </div>
</body>
</html>
`

var tmpl = template.Must(template.New("contact").Funcs(template.FuncMap{
	"lines": splitLines,
}).Parse(emailTemplate))

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(s, "\n")
}

// RenderHTML 把一条联系消息渲染为HTML邮件正文
func RenderHTML(m Message) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, m); err != nil {
		return "", fmt.Errorf("渲染邮件模板失败: %w", err)
	}
	return buf.String(), nil
}

// Subject 生成邮件标题
func Subject(m Message) string {
	return "Portfolio Message from " + m.Name
}
