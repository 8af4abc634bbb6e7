// Package ingress turns raw order-feed messages into validated Orders and
// hands them to the sequential processor. Malformed payloads are journaled
// to disk and never enqueued.
package ingress

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/LeonAdeoye/notional-limit-service/internal/processor"
	"github.com/LeonAdeoye/notional-limit-service/pkg/metrics"
	"github.com/LeonAdeoye/notional-limit-service/pkg/models"
)

const submitRetryDelay = 10 * time.Millisecond

// Submitter accepts validated orders for processing.
type Submitter interface {
	Submit(order *models.Order) error
}

// Ingress validates inbound payloads and submits them in arrival order.
type Ingress struct {
	validator *Validator
	journal   *Journal
	processor Submitter
	logger    *zap.Logger
}

// NewIngress creates the order ingress.
func NewIngress(v *Validator, journal *Journal, submitter Submitter, logger *zap.Logger) *Ingress {
	return &Ingress{
		validator: v,
		journal:   journal,
		processor: submitter,
		logger:    logger,
	}
}

// HandleMessage processes one raw feed message. Invalid payloads are
// journaled and acknowledged. When the processor queue is full the handler
// retries until it gets through, pushing the backpressure onto the feed
// rather than dropping the order.
func (i *Ingress) HandleMessage(ctx context.Context, key, value []byte) error {
	order, err := i.validator.Validate(value)
	if err != nil {
		metrics.InvalidMessages.Inc()
		i.logger.Error("Invalid order message", zap.Error(err))
		i.journal.Record(value, err.Error())
		return nil
	}

	for {
		err := i.processor.Submit(order)
		if err == nil {
			return nil
		}
		if errors.Is(err, processor.ErrShutdown) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(submitRetryDelay):
		}
	}
}
