package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/inventory-sales-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// SellCommandProducer publishes sell commands for the sale processor.
// Messages are keyed by item id so commands for one item stay on one partition.
type SellCommandProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewSellCommandProducer ensures the sell topic exists and returns a synchronous producer:
// Publish returns only after the brokers acknowledged the write.
func NewSellCommandProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*SellCommandProducer, error) {
	if cfg.SellTopic == "" {
		return nil, fmt.Errorf("kafka sell topic is not configured")
	}

	if err := ensureTopic(ctx, logger, cfg, cfg.SellTopic); err != nil {
		return nil, err
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.BrokerList()...),
		Topic:        cfg.SellTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: cfg.MaxWait,
	}

	return &SellCommandProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.SellTopic,
	}, nil
}

func (p *SellCommandProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal sell command: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish sell command",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish sell command to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published sell command", "topic", p.topic, "key", key)
	return nil
}

func (p *SellCommandProducer) Close() error {
	p.logger.Info("Closing sell command producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
