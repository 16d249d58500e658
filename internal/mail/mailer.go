package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"path/filepath"

	"github.com/hyunwoo/beluga-backend/internal/config"
)

// Mailer dispatches templated emails. Account mutations that trigger mail
// run the send inside the same transaction boundary, so a send failure
// rolls the mutation back.
type Mailer interface {
	Send(ctx context.Context, to, subject, templateName string, params any) error
}

type SMTPMailer struct {
	host          string
	port          int
	user          string
	pass          string
	sender        string
	templatesPath string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		host:          cfg.SMTPHost,
		port:          cfg.SMTPPort,
		user:          cfg.SMTPUser,
		pass:          cfg.SMTPPass,
		sender:        cfg.MailSender,
		templatesPath: cfg.MailTemplatesPath,
	}
}

// Send renders the named HTML template with params and delivers it over
// SMTP. Template names carry their extension, e.g. "welcome.html".
func (m *SMTPMailer) Send(ctx context.Context, to, subject, templateName string, params any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := m.render(templateName, params)
	if err != nil {
		return err
	}

	msg := bytes.Buffer{}
	fmt.Fprintf(&msg, "From: %s\r\n", m.sender)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.user, m.pass, m.host)

	if err := smtp.SendMail(addr, auth, m.sender, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

func (m *SMTPMailer) render(templateName string, params any) ([]byte, error) {
	tmpl, err := template.ParseFiles(filepath.Join(m.templatesPath, templateName))
	if err != nil {
		return nil, fmt.Errorf("failed to parse mail template %s: %w", templateName, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return nil, fmt.Errorf("failed to render mail template %s: %w", templateName, err)
	}
	return buf.Bytes(), nil
}
