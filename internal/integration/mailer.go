package integration

import (
	"errors"

	mail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/updesk/helpdesk/internal/config"
)

// ErrSMTPNotConfigured is returned when SMTP credentials are absent.
var ErrSMTPNotConfigured = errors.New("smtp not configured")

// Mailer sends plain-text confirmation e-mails over SMTP with STARTTLS.
type Mailer struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

// NewMailer builds the mailer.
func NewMailer(cfg config.SMTPConfig, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

// Configured reports whether sends can be attempted.
func (m *Mailer) Configured() bool {
	return m.cfg.Configured()
}

// Send delivers a plain-text message to the recipient.
func (m *Mailer) Send(to, subject, body string) error {
	if !m.Configured() {
		return ErrSMTPNotConfigured
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.Sender()); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTimeout(m.cfg.Timeout()),
	)
	if err != nil {
		return err
	}
	return client.DialAndSend(msg)
}
