// Package notify delivers customer messages over email and SMS.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

var ErrNoRecipient = errors.New("notify: empty recipient")

// Console writes messages to the log instead of delivering them.
type Console struct {
	Log *slog.Logger
}

func (c Console) Notify(_ context.Context, msg Message) error {
	l := c.Log
	if l == nil {
		l = slog.Default()
	}
	l.Info("notify_console", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}

// Router sends recipients containing "@" by email and everything else by SMS.
type Router struct {
	Email Notifier
	SMS   Notifier
}

func IsEmail(to string) bool {
	return strings.Contains(to, "@")
}

func (r Router) Notify(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	if IsEmail(msg.To) {
		return r.Email.Notify(ctx, msg)
	}
	return r.SMS.Notify(ctx, msg)
}

// NewRouter wires the configured channels. A channel without credentials
// falls back to Console.
func NewRouter(smtp SMTPConfig, twilio TwilioConfig, l *slog.Logger) Router {
	r := Router{Email: Console{Log: l}, SMS: Console{Log: l}}
	if smtp.Host != "" {
		r.Email = NewEmail(smtp)
	}
	if twilio.AccountSID != "" && twilio.AuthToken != "" {
		r.SMS = NewSMS(twilio)
	}
	return r
}
