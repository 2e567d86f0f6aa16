// Package mail delivers templated account emails over SMTP. The core only
// produces the token embedded in a message; delivery is this package's job
// and is always dispatched off the request path.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	netmail "net/mail"
	"net/smtp"
	"strings"

	sc "github.com/mkravets/contactdesk/internal/server/config"
)

//go:embed templates/*.html
var templateFS embed.FS

// Dispatcher sends templated account emails carrying a one-time token.
type Dispatcher interface {
	SendVerification(ctx context.Context, to, username, baseURL, token string) error
	SendPasswordReset(ctx context.Context, to, username, baseURL, token string) error
}

type templateData struct {
	Username string
	Host     string
	Token    string
}

// SMTPDispatcher renders the embedded templates and submits the message to
// the configured SMTP relay.
type SMTPDispatcher struct {
	config    *sc.Config
	templates *template.Template

	// seam for testing without a relay
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPDispatcher(config *sc.Config) (*SMTPDispatcher, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &SMTPDispatcher{config: config, templates: templates, send: smtp.SendMail}, nil
}

func (d *SMTPDispatcher) SendVerification(ctx context.Context, to, username, baseURL, token string) error {
	return d.deliver(to, "Confirm your email for Contacts App", "verify_email.html",
		templateData{Username: username, Host: baseURL, Token: token})
}

func (d *SMTPDispatcher) SendPasswordReset(ctx context.Context, to, username, baseURL, token string) error {
	return d.deliver(to, "Reset password for Contacts App", "reset_password.html",
		templateData{Username: username, Host: baseURL, Token: token})
}

func (d *SMTPDispatcher) deliver(to, subject, templateName string, data templateData) error {
	var body bytes.Buffer
	if err := d.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("render %s: %w", templateName, err)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", d.config.MailFrom)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	addr := fmt.Sprintf("%s:%d", d.config.SMTPHost, d.config.SMTPPort)

	var auth smtp.Auth
	if d.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", d.config.SMTPUsername, d.config.SMTPPassword, d.config.SMTPHost)
	}

	// envelope sender must be a bare address
	from := d.config.MailFrom
	if parsed, err := netmail.ParseAddress(from); err == nil {
		from = parsed.Address
	}

	if err := d.send(addr, auth, from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
