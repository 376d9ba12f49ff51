package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Skotchmaster/pharmacy/internal/events"
)

// Worker turns domain events into customer notifications.
type Worker struct {
	Notifier Notifier
	Log      *slog.Logger
}

func (w *Worker) Handle(ctx context.Context, msg events.Message) error {
	msgs, err := Compose(msg.Value)
	if err != nil {
		return err
	}

	var errs []error
	for _, m := range msgs {
		if err := w.Notifier.Notify(ctx, m); err != nil {
			errs = append(errs, err)
			continue
		}
		w.Log.Info("notification_sent", "topic", msg.Topic, "to", m.To, "subject", m.Subject)
	}
	return errors.Join(errs...)
}

// Compose builds the messages for one event. Unknown event types yield none.
func Compose(value []byte) ([]Message, error) {
	env, err := events.Decode[events.Envelope](value)
	if err != nil {
		return nil, err
	}

	switch env.Type {
	case events.TypeUserRegistered:
		ev, err := events.Decode[events.UserEvent](value)
		if err != nil {
			return nil, err
		}
		return toContact(ev.Contact, "Welcome to the pharmacy",
			fmt.Sprintf("Hi %s, your account is ready. Verify your email to start ordering.", ev.Name)), nil

	case events.TypeOrderPlaced:
		ev, err := events.Decode[events.OrderEvent](value)
		if err != nil {
			return nil, err
		}
		return toContact(ev.Contact, "Order "+ev.OrderNumber+" placed",
			fmt.Sprintf("We received your order %s for %s.", ev.OrderNumber, Money(ev.Total))), nil

	case events.TypeOrderStatusChanged:
		ev, err := events.Decode[events.OrderEvent](value)
		if err != nil {
			return nil, err
		}
		return toContact(ev.Contact, "Order "+ev.OrderNumber+" "+ev.Status,
			fmt.Sprintf("Your order %s is now %s.", ev.OrderNumber, ev.Status)), nil

	case events.TypeOrderPaymentChanged:
		ev, err := events.Decode[events.OrderEvent](value)
		if err != nil {
			return nil, err
		}
		return toContact(ev.Contact, "Payment update for "+ev.OrderNumber,
			fmt.Sprintf("Payment for order %s is %s.", ev.OrderNumber, ev.PaymentStatus)), nil

	case events.TypePrescriptionReviewed:
		ev, err := events.Decode[events.PrescriptionEvent](value)
		if err != nil {
			return nil, err
		}
		body := fmt.Sprintf("Your prescription was %s.", ev.Status)
		if ev.Note != "" {
			body += " Note: " + ev.Note
		}
		return toContact(ev.Contact, "Prescription "+ev.Status, body), nil
	}
	return nil, nil
}

func toContact(c events.Contact, subject, body string) []Message {
	var out []Message
	if c.Email != "" {
		out = append(out, Message{To: c.Email, Subject: subject, Body: body})
	}
	if c.Phone != "" {
		out = append(out, Message{To: c.Phone, Subject: subject, Body: body})
	}
	return out
}

// Money formats minor units as a rupee amount.
func Money(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s₹%d.%02d", sign, minor/100, minor%100)
}
