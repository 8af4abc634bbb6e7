// Package publisher delivers breach and notional-update events downstream.
//
// Delivery is fire-and-forget: events are handed to a buffered channel and
// written to Kafka by a dedicated goroutine, so a slow or failing broker can
// never stall the order processing path. When the buffer is full the event
// is dropped and counted; semantics are at-most-once.
package publisher

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/LeonAdeoye/notional-limit-service/internal/messaging"
	"github.com/LeonAdeoye/notional-limit-service/pkg/metrics"
)

const publishTimeout = 5 * time.Second

type outbound struct {
	topic   messaging.Topic
	key     string
	payload interface{}
}

// AsyncPublisher implements the engine's notification sink over Kafka.
type AsyncPublisher struct {
	producer messaging.Producer
	events   chan outbound
	logger   *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewAsyncPublisher creates a publisher and starts its dispatch goroutine.
func NewAsyncPublisher(producer messaging.Producer, bufferSize int, logger *zap.Logger) *AsyncPublisher {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	p := &AsyncPublisher{
		producer: producer,
		events:   make(chan outbound, bufferSize),
		logger:   logger,
	}
	p.wg.Add(1)
	go p.dispatch()
	return p
}

// PublishLimitBreach enqueues a breach event.
func (p *AsyncPublisher) PublishLimitBreach(event *messaging.BreachEvent) {
	p.enqueue(messaging.TopicLimitBreaches, event.DeskID.String(), event)
}

// PublishDeskNotionalUpdate enqueues a desk-level notional update.
func (p *AsyncPublisher) PublishDeskNotionalUpdate(event *messaging.NotionalUpdateEvent) {
	p.enqueue(messaging.TopicDeskNotionalUpdates, event.DeskID.String(), event)
}

// PublishTraderNotionalUpdate enqueues a trader-level notional update.
func (p *AsyncPublisher) PublishTraderNotionalUpdate(event *messaging.NotionalUpdateEvent) {
	key := event.DeskID.String()
	if event.TraderID != nil {
		key = event.TraderID.String()
	}
	p.enqueue(messaging.TopicTraderNotionalUpdates, key, event)
}

func (p *AsyncPublisher) enqueue(topic messaging.Topic, key string, payload interface{}) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return
	}
	select {
	case p.events <- outbound{topic: topic, key: key, payload: payload}:
	default:
		metrics.EventsDropped.Inc()
		p.logger.Warn("Publisher buffer full, dropping event", zap.String("topic", string(topic)))
	}
}

func (p *AsyncPublisher) dispatch() {
	defer p.wg.Done()

	for event := range p.events {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := p.producer.Publish(ctx, event.topic, event.key, event.payload); err != nil {
			p.logger.Error("Failed to publish event",
				zap.String("topic", string(event.topic)),
				zap.Error(err))
		}
		cancel()
	}
}

// Close stops accepting events, flushes the buffer and waits for the
// dispatch goroutine to finish.
func (p *AsyncPublisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.events)
	p.mu.Unlock()

	p.wg.Wait()
}
