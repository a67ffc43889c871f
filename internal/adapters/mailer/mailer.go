// Package mailer implements the ports.Notifier interface over SMTP using
// gomail. Failures are reported as ErrDispatchFailed; callers log and
// continue, an undelivered alert never fails an evaluation.
package mailer

import (
	"context"
	"fmt"

	"btcSignalBot/internal/ports"

	"gopkg.in/gomail.v2"
)

// Mailer sends plain-text alert emails to a single configured recipient.
type Mailer struct {
	dialer    *gomail.Dialer
	from      string
	recipient string
	logger    ports.Logger
}

// Config holds configuration specific to the SMTP mailer adapter.
type Config struct {
	Host      string // e.g., "smtp.gmail.com"
	Port      int    // e.g., 587
	Username  string // sender identity, also used as the From address
	Password  string // app password for the sender account
	Recipient string
	Logger    ports.Logger
}

// New creates a new SMTP mailer adapter.
func New(cfg Config) (*Mailer, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for mailer")
	}
	if cfg.Host == "" || cfg.Port <= 0 {
		return nil, fmt.Errorf("SMTP host and port are required: %w", ports.ErrConfiguration)
	}
	if cfg.Username == "" || cfg.Password == "" || cfg.Recipient == "" {
		return nil, fmt.Errorf("sender credentials and recipient are required: %w", ports.ErrConfiguration)
	}

	return &Mailer{
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:      cfg.Username,
		recipient: cfg.Recipient,
		logger:    cfg.Logger,
	}, nil
}

// Send delivers one email. gomail dials per message, which keeps the
// adapter stateless; the send is already off the poll loop's critical path.
func (m *Mailer) Send(ctx context.Context, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Warn(ctx, "Email delivery failed", map[string]interface{}{
			"subject": subject,
			"error":   err.Error(),
		})
		return fmt.Errorf("sending %q: %v: %w", subject, err, ports.ErrDispatchFailed)
	}

	m.logger.Info(ctx, "Email sent", map[string]interface{}{"subject": subject, "to": m.recipient})
	return nil
}
