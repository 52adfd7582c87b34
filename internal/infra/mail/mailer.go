// Package mail delivers transactional mail over SMTP. When no SMTP server
// is configured (local development) messages are logged instead of sent, so
// flows that depend on mail still work end to end.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"

	"melodia/config"
	"melodia/internal/domain/service"
	"melodia/internal/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

type smtpMailer struct {
	host      string
	port      int
	username  string
	password  string
	from      string
	templates *template.Template
	logger    *slog.Logger
}

type logMailer struct {
	templates *template.Template
	logger    *slog.Logger
}

// New creates a Mailer from configuration. A nil SMTP section yields the
// log-only mailer.
func New(cfg *config.Config, logger *slog.Logger) (service.Mailer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "parse mail templates")
	}

	if cfg.SMTP == nil {
		logger.Warn("SMTP not configured, mail will be logged instead of sent")

		return &logMailer{templates: templates, logger: logger}, nil
	}

	return &smtpMailer{
		host:      cfg.SMTP.Host,
		port:      cfg.SMTP.Port,
		username:  cfg.SMTP.Username,
		password:  cfg.SMTP.Password,
		from:      cfg.SMTP.From,
		templates: templates,
		logger:    logger,
	}, nil
}

func (m *smtpMailer) Send(ctx context.Context, to, subject, templateName string, data any) error {
	body, err := renderTemplate(m.templates, templateName, data)
	if err != nil {
		return err
	}

	msg := buildMessage(m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)

	// net/smtp has no context support; run the dial in a goroutine so a
	// cancelled caller is not held hostage by a slow server.
	errCh := make(chan error, 1)
	go func() {
		errCh <- smtp.SendMail(addr, auth, m.from, []string{to}, msg)
	}()

	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "send mail")
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, "send mail")
		}
	}

	m.logger.Debug("mail sent",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("template", templateName))

	return nil
}

func (m *logMailer) Send(_ context.Context, to, subject, templateName string, data any) error {
	body, err := renderTemplate(m.templates, templateName, data)
	if err != nil {
		return err
	}

	m.logger.Info("mail (log-only)",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("template", templateName),
		slog.Int("bodyBytes", len(body)))

	return nil
}

func renderTemplate(templates *template.Template, name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, errors.Wrapf(err, "render mail template %q", name)
	}

	return buf.Bytes(), nil
}

func buildMessage(from, to, subject string, body []byte) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	buf.WriteString("\r\n")
	buf.Write(body)

	return buf.Bytes()
}
