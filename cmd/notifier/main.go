package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Skotchmaster/pharmacy/pkg/logging"

	"github.com/Skotchmaster/pharmacy/internal/config"
	"github.com/Skotchmaster/pharmacy/internal/events"
	"github.com/Skotchmaster/pharmacy/internal/notify"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ValidateNotifier(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", "pharmacy-notifier")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker := &notify.Worker{
		Notifier: notify.NewRouter(
			notify.SMTPConfig{Host: cfg.SMTPHost, Port: cfg.SMTPPort, User: cfg.SMTPUser, Password: cfg.SMTPPassword, From: cfg.MailFrom},
			notify.TwilioConfig{AccountSID: cfg.TwilioAccountSID, AuthToken: cfg.TwilioAuthToken, From: cfg.TwilioFrom},
			logger,
		),
		Log: logger,
	}

	consumer := events.NewConsumer(events.ConsumerConfig{
		Brokers: cfg.KafkaBrokers,
		GroupID: cfg.KafkaGroupID,
		Topics:  []string{events.TopicOrders, events.TopicPrescriptions, events.TopicUsers},
	}, logger)

	logger.Info("notifier_started", "brokers", cfg.KafkaBrokers, "group", cfg.KafkaGroupID)
	if err := consume(ctx, consumer, worker.Handle, logger); err != nil {
		logger.Error("notifier_stopped", "error", err)
		stop()
		os.Exit(1)
	}
	logger.Info("notifier_stopped")
}

type eventSource interface {
	Run(ctx context.Context, h events.Handler) error
	Close() error
}

// consume runs src until it stops and always closes it.
func consume(ctx context.Context, src eventSource, h events.Handler, l *slog.Logger) error {
	err := src.Run(ctx, h)
	if cerr := src.Close(); cerr != nil {
		l.Error("kafka_close_failed", "error", cerr)
	}
	return err
}
