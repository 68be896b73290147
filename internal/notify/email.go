package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/gateline/gateline/pkg/apierr"
)

// DefaultFrom is used when the sender config omits a from address.
const DefaultFrom = "Gateline Mailer <noreply@localhost>"

// SMTPConfig describes the system email sender.
type SMTPConfig struct {
	Host           string `yaml:"host" envconfig:"HOST"`
	Port           int    `yaml:"port" envconfig:"PORT"`
	Username       string `yaml:"username" envconfig:"USERNAME"`
	Password       string `yaml:"password" envconfig:"PASSWORD"`
	From           string `yaml:"from" envconfig:"FROM"`
	TemplateDir    string `yaml:"template_dir" envconfig:"TEMPLATE_DIR"`
	DebugRecipient string `yaml:"debug_recipient" envconfig:"DEBUG_RECIPIENT"`
}

// SMTPMailer renders HTML templates from a directory and delivers them over
// SMTP. Templates use merge-substitution only: {{.Field}} lookups against
// the data map, no logic.
type SMTPMailer struct {
	cfg    SMTPConfig
	debug  bool
	logger *zap.Logger

	// send is swapped out by tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer builds a mailer from the system sender config.
func NewSMTPMailer(cfg SMTPConfig, debug bool, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		debug:  debug,
		logger: logger.Named("mailer"),
		send:   smtp.SendMail,
	}
}

// SendTemplate renders template (a filename under the template directory)
// with data and sends the result. In debug mode delivery reroutes to the
// configured debug recipient.
func (m *SMTPMailer) SendTemplate(ctx context.Context, to []string, subject, tmpl string, data map[string]any) error {
	if m.cfg.Host == "" || m.cfg.Port == 0 {
		return apierr.Make(apierr.EmailNoSender, nil)
	}

	body, err := m.render(tmpl, data)
	if err != nil {
		m.logger.Error("template render failed", zap.String("template", tmpl), zap.Error(err))
		return apierr.Make(apierr.EmailTemplate, err.Error())
	}

	if m.debug && m.cfg.DebugRecipient != "" {
		m.logger.Debug("debug mode, rerouting email",
			zap.Strings("original_to", to),
			zap.String("debug_recipient", m.cfg.DebugRecipient))
		to = []string{m.cfg.DebugRecipient}
	}

	from := m.cfg.From
	if from == "" {
		from = DefaultFrom
	}

	msg := buildMessage(from, to, subject, body)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := m.send(addr, auth, from, to, msg); err != nil {
		m.logger.Error("email delivery failed", zap.Error(err))
		return apierr.Make(apierr.EmailNotSent, err.Error())
	}
	return nil
}

func (m *SMTPMailer) render(name string, data map[string]any) (string, error) {
	t, err := template.ParseFiles(filepath.Join(m.cfg.TemplateDir, name))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildMessage(from string, to []string, subject, html string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	for _, addr := range to {
		fmt.Fprintf(&buf, "To: %s\r\n", addr)
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(html)
	return buf.Bytes()
}
