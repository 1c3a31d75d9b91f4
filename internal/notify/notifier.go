// Package notify turns domain events into messages for the people involved
// and delivers them by email or to the log.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-gomail/gomail"
	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier delivers one message.
type Notifier interface {
	Notify(ctx context.Context, m Message) error
}

// ConsoleNotifier writes messages to the log. Used when no SMTP host is set.
type ConsoleNotifier struct {
	Log *zap.Logger
}

func (n ConsoleNotifier) Notify(_ context.Context, m Message) error {
	n.Log.Info("notification",
		zap.String("to", m.To),
		zap.String("subject", m.Subject),
		zap.String("body", m.Body))
	return nil
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// EmailNotifier sends plain-text mail through an SMTP relay.
type EmailNotifier struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailNotifier(cfg SMTPConfig) *EmailNotifier {
	return &EmailNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (n *EmailNotifier) Notify(_ context.Context, m Message) error {
	if strings.TrimSpace(m.To) == "" {
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.Body)

	if err := n.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("error sending email to %s: %w", m.To, err)
	}
	return nil
}
