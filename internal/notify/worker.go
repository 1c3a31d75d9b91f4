package notify

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Worker drains event deliveries and sends the rendered messages.
type Worker struct {
	notifier Notifier
	log      *zap.Logger
}

func NewWorker(n Notifier, log *zap.Logger) *Worker {
	return &Worker{notifier: n, log: log}
}

// Run acks handled deliveries and nacks with requeue on failure. Malformed
// payloads are nacked without requeue. It returns when ctx is done or the
// channel closes.
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			err := w.Handle(ctx, d.RoutingKey, d.Body)
			if errors.Is(err, ErrMalformed) {
				w.log.Error("dropping malformed event", zap.String("key", d.RoutingKey), zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			if err != nil {
				w.log.Warn("handle event failed, requeueing", zap.String("key", d.RoutingKey), zap.Error(err))
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (w *Worker) Handle(ctx context.Context, key string, body []byte) error {
	msgs, known, err := Render(key, body)
	if err != nil {
		return err
	}
	if !known {
		w.log.Info("skip unknown key", zap.String("key", key))
		return nil
	}
	for _, m := range msgs {
		if m.To == "" {
			continue
		}
		if err := w.notifier.Notify(ctx, m); err != nil {
			return fmt.Errorf("notify %s: %w", m.To, err)
		}
	}
	return nil
}
