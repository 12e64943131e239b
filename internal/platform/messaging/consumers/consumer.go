package consumers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/inventory-sales-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

const (
	fetchRetryDelay   = time.Second
	handlerRetryDelay = time.Second
)

// MessageHandler processes one message. A nil return commits the offset; on an
// error the same message is handed to the handler again, so later offsets are never
// committed past it.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Consumer defines the message queue consumer interface
type Consumer interface {
	Subscribe(ctx context.Context, handler MessageHandler) error
	Close() error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer implements Consumer on a consumer-group reader of the sell topic
type KafkaConsumer struct {
	reader  messageReader
	logger  *slog.Logger
	topic   string
	groupID string
	done    chan struct{}

	retryDelay time.Duration // Pause between handler attempts on one message
}

func NewKafkaConsumer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig) *KafkaConsumer {
	startOffset := cfg.StartOffset
	if startOffset != kafka.LastOffset {
		startOffset = kafka.FirstOffset
	}

	return &KafkaConsumer{
		logger:  logger,
		topic:   cfg.SellTopic,
		groupID: cfg.ConsumerGroup,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.BrokerList(),
			Topic:       cfg.SellTopic,
			GroupID:     cfg.ConsumerGroup,
			MinBytes:    cfg.MinBytes,
			MaxBytes:    cfg.MaxBytes,
			MaxWait:     cfg.MaxWait,
			StartOffset: startOffset,
		}),
	}
}

// Subscribe starts the fetch loop in a goroutine. It stops when ctx is canceled;
// Done is closed once the loop has returned.
func (c *KafkaConsumer) Subscribe(ctx context.Context, handler MessageHandler) error {
	if handler == nil {
		return errors.New("message handler is required")
	}

	c.logger.Info("Subscribed to Kafka topic", "topic", c.topic, "group_id", c.groupID)

	c.done = make(chan struct{})
	go func() {
		defer close(c.done)
		c.run(ctx, handler)
	}()

	return nil
}

// Done is closed when the fetch loop exits. It is nil before Subscribe.
func (c *KafkaConsumer) Done() <-chan struct{} {
	return c.done
}

func (c *KafkaConsumer) run(ctx context.Context, handler MessageHandler) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Context canceled, stopping consumer", "topic", c.topic, "group_id", c.groupID)
				return
			}
			c.logger.Error("Failed to fetch message from Kafka", "topic", c.topic, "error", err)

			select {
			case <-ctx.Done():
				return
			case <-time.After(fetchRetryDelay):
			}
			continue
		}

		log := c.logger.With(
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
		)
		log.Debug("Received message from Kafka")

		if !c.handle(ctx, log, handler, msg) {
			return
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			log.Error("Failed to commit message", "error", err)
			continue
		}
		log.Debug("Message committed")
	}
}

// handle retries handler on msg until it succeeds. It returns false when ctx ends first.
func (c *KafkaConsumer) handle(ctx context.Context, log *slog.Logger, handler MessageHandler, msg kafka.Message) bool {
	delay := c.retryDelay
	if delay <= 0 {
		delay = handlerRetryDelay
	}

	for attempt := 1; ; attempt++ {
		err := handler(ctx, msg.Key, msg.Value)
		if err == nil {
			return true
		}
		log.Error("Failed to process message, retrying", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			log.Info("Context canceled, message left uncommitted")
			return false
		case <-time.After(delay):
		}
	}
}

func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
