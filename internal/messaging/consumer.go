package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler processes one received message. Returning an error logs
// the failure; consumption continues with the next message.
type MessageHandler func(ctx context.Context, key, value []byte) error

// KafkaConsumer reads one topic within a consumer group.
type KafkaConsumer struct {
	reader *kafka.Reader
	logger *zap.Logger
}

// NewKafkaConsumer creates a consumer for the given topic.
func NewKafkaConsumer(config *Config, topic Topic, logger *zap.Logger) *KafkaConsumer {
	if config == nil {
		config = DefaultConfig()
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: config.Brokers,
		Topic:   string(topic),
		GroupID: config.GroupID,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error(fmt.Sprintf(msg, args...))
		}),
	})

	return &KafkaConsumer{reader: reader, logger: logger}
}

// Run consumes messages until the context is cancelled. It blocks; run it
// on its own goroutine.
func (c *KafkaConsumer) Run(ctx context.Context, handler MessageHandler) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			c.logger.Error("Failed to read message", zap.Error(err))
			continue
		}

		if err := handler(ctx, msg.Key, msg.Value); err != nil {
			c.logger.Error("Message handler failed",
				zap.Error(err),
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset))
		}
	}
}

// Close closes the underlying reader.
func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
