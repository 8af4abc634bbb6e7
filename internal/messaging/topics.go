// Package messaging provides the Kafka transport for the order feed and the
// outbound breach / notional-update events.
package messaging

import "time"

// Topic identifies a Kafka topic used by the service.
type Topic string

const (
	// TopicOrders carries the inbound trade order feed.
	TopicOrders Topic = "orders"
	// TopicLimitBreaches carries breach events.
	TopicLimitBreaches Topic = "limit.breaches"
	// TopicDeskNotionalUpdates carries per-desk notional updates.
	TopicDeskNotionalUpdates Topic = "desk.notional.updates"
	// TopicTraderNotionalUpdates carries per-trader notional updates.
	TopicTraderNotionalUpdates Topic = "trader.notional.updates"
)

// Config contains the Kafka connection settings.
type Config struct {
	Brokers      []string
	GroupID      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns settings suitable for local development.
func DefaultConfig() *Config {
	return &Config{
		Brokers:      []string{"localhost:9092"},
		GroupID:      "limit-service",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: time.Second,
	}
}
