package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/harentsoaR/docspot-api/internal/config"
	"github.com/harentsoaR/docspot-api/internal/events"
	"github.com/harentsoaR/docspot-api/internal/logger"
	"github.com/harentsoaR/docspot-api/internal/mq"
	"github.com/harentsoaR/docspot-api/internal/notify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg, err := logger.New(cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if cfg.RabbitURL == "" {
		lg.Fatal("RABBIT_URL is required for the notifier")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var n notify.Notifier = notify.ConsoleNotifier{Log: lg}
	if cfg.SMTPHost != "" {
		n = notify.NewEmailNotifier(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}

	var cons *mq.Consumer
	for cons == nil {
		cons, err = mq.NewConsumer(cfg.RabbitURL, cfg.EventsExchange, cfg.NotifyQueue, events.Bindings, 16)
		if err == nil {
			break
		}
		lg.Warn("connect failed, retrying", zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
	defer func() { _ = cons.Close() }()

	deliveries, err := cons.Deliveries(ctx, "docspot-notifier")
	if err != nil {
		lg.Fatal("consume", zap.Error(err))
	}
	lg.Info("notifier started",
		zap.String("queue", cfg.NotifyQueue),
		zap.Strings("bindings", events.Bindings),
		zap.Bool("smtp", cfg.SMTPHost != ""))

	if err := notify.NewWorker(n, lg).Run(ctx, deliveries); err != nil {
		lg.Error("worker stopped", zap.Error(err))
	}
	lg.Info("notifier stopped")
}
