// Package processor serializes concurrently submitted orders into a single
// deterministic processing sequence.
//
// A bounded channel feeds exactly one consumer goroutine, which runs the
// accounting engine to completion on each order before dequeuing the next.
// That consumer is the only writer of the risk state store, so counter
// updates need no locking against other writers, and replaying the same
// enqueue sequence always yields the same final state.
package processor

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/LeonAdeoye/notional-limit-service/internal/engine"
	"github.com/LeonAdeoye/notional-limit-service/pkg/metrics"
	"github.com/LeonAdeoye/notional-limit-service/pkg/models"
)

var (
	// ErrQueueFull is returned by Submit when the bounded buffer is
	// saturated. The producer decides whether to retry or drop; orders are
	// never silently discarded.
	ErrQueueFull = errors.New("order queue full")

	// ErrShutdown is returned by Submit after shutdown has begun.
	ErrShutdown = errors.New("processor shut down")
)

// Processor is the sequential order processor.
type Processor struct {
	queue  chan *models.Order
	engine *engine.Engine
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewProcessor creates a processor with the given queue capacity.
func NewProcessor(eng *engine.Engine, capacity int, logger *zap.Logger) *Processor {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Processor{
		queue:  make(chan *models.Order, capacity),
		engine: eng,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start launches the consumer goroutine. Call it exactly once.
func (p *Processor) Start() {
	go p.consume()
}

func (p *Processor) consume() {
	defer close(p.done)

	for order := range p.queue {
		metrics.QueueDepth.Set(float64(len(p.queue)))
		p.engine.ProcessOrder(order)
	}
	p.logger.Info("Order processor drained and stopped")
}

// Submit enqueues an order for processing. It never blocks: when the buffer
// is full it returns ErrQueueFull as explicit backpressure. Orders that are
// accepted are processed in FIFO submission order.
func (p *Processor) Submit(order *models.Order) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrShutdown
	}
	select {
	case p.queue <- order:
		metrics.QueueDepth.Set(float64(len(p.queue)))
		return nil
	default:
		return ErrQueueFull
	}
}

// Depth reports the number of queued, not yet processed orders.
func (p *Processor) Depth() int {
	return len(p.queue)
}

// Shutdown stops accepting new submissions and drains already-queued orders
// to completion. The context bounds how long to wait for the drain.
func (p *Processor) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.logger.Info("Shutting down order processor", zap.Int("queued", len(p.queue)))

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
