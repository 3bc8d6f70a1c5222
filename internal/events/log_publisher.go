package events

import (
	"context"
	"encoding/json"
	"log/slog"
)

// LogPublisher writes ledger events to a logger. It stands in for the
// Kafka publisher when no brokers are configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "ledger event", "key", key, "event", json.RawMessage(data))
	return nil
}
