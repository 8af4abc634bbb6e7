// Package engine implements the limit accounting pipeline executed for every
// dequeued order: reference resolution, validation, USD conversion, side and
// gross limit checks, counter updates and tiered breach detection.
//
// ProcessOrder runs only on the processor's consumer goroutine; it is the
// single writer of the risk state store.
package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/LeonAdeoye/notional-limit-service/internal/fx"
	"github.com/LeonAdeoye/notional-limit-service/internal/messaging"
	"github.com/LeonAdeoye/notional-limit-service/internal/store"
	"github.com/LeonAdeoye/notional-limit-service/pkg/metrics"
	"github.com/LeonAdeoye/notional-limit-service/pkg/models"
)

// Notifier receives fully-formed breach and update payloads. Implementations
// must never block; the engine treats delivery as fire-and-forget.
type Notifier interface {
	PublishLimitBreach(event *messaging.BreachEvent)
	PublishDeskNotionalUpdate(event *messaging.NotionalUpdateEvent)
	PublishTraderNotionalUpdate(event *messaging.NotionalUpdateEvent)
}

// Rejection reasons recorded in metrics.
const (
	rejectUnknownReference = "unknown_reference"
	rejectValidation       = "validation"
	rejectInvalidRate      = "invalid_rate"
	rejectLimitExceeded    = "limit_exceeded"
)

// breachTiers are the utilization thresholds scanned in descending order.
var breachTiers = []int{80, 60, 40, 20}

// Engine applies limit accounting to orders.
type Engine struct {
	store    *store.Store
	fx       *fx.Converter
	notifier Notifier
	logger   *zap.Logger
}

// NewEngine creates a new accounting engine.
func NewEngine(s *store.Store, converter *fx.Converter, notifier Notifier, logger *zap.Logger) *Engine {
	return &Engine{
		store:    s,
		fx:       converter,
		notifier: notifier,
		logger:   logger,
	}
}

// ProcessOrder runs the full pipeline for one order. Per-order failures are
// logged with a correlation id and dropped; nothing escapes to the caller,
// so a bad order can never take down the consumer goroutine.
func (e *Engine) ProcessOrder(order *models.Order) {
	start := time.Now()
	defer func() {
		metrics.OrderLatency.Observe(time.Since(start).Seconds())
	}()

	logger := e.logger.With(
		zap.String("error_id", uuid.NewString()),
		zap.String("order_id", order.ID.String()))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered from panic while processing order", zap.Any("panic", r))
		}
	}()

	trader, desk, err := e.store.ResolveOrder(order.TraderID)
	if err != nil {
		logger.Error("Dropping order with unknown reference",
			zap.String("trader_id", order.TraderID.String()),
			zap.Error(err))
		metrics.OrdersRejected.WithLabelValues(rejectUnknownReference).Inc()
		return
	}

	if order.Quantity <= 0 || order.Price.LessThanOrEqual(decimal.Zero) {
		logger.Error("Dropping invalid order",
			zap.Int64("quantity", order.Quantity),
			zap.String("price", order.Price.String()))
		metrics.OrdersRejected.WithLabelValues(rejectValidation).Inc()
		return
	}

	notionalUSD, err := e.fx.Convert(order.NotionalLocal(), order.Currency)
	if err != nil {
		logger.Error("Dropping order, cannot convert notional to USD",
			zap.String("currency", order.Currency),
			zap.Error(err))
		metrics.OrdersRejected.WithLabelValues(rejectInvalidRate).Inc()
		return
	}

	current := desk.SideNotional(order.Side)
	limit := desk.SideLimit(order.Side)
	candidate := current.Add(notionalUSD)
	if candidate.GreaterThan(limit) {
		logger.Info("Order rejected, side notional limit breach",
			zap.String("desk", desk.Name),
			zap.String("side", string(order.Side)),
			zap.String("notional_usd", notionalUSD.Round(2).String()),
			zap.String("current_notional", current.Round(2).String()),
			zap.String("limit", limit.String()))
		e.publishBreach(e.breachEvent(messaging.FullSideBreach(order.Side), 100, &desk, &trader, order, notionalUSD))
		metrics.OrdersRejected.WithLabelValues(rejectLimitExceeded).Inc()
		return
	}

	// Both counters move in one critical section; a reader never sees the
	// desk updated without the trader or vice versa.
	trader, desk, err = e.store.ApplyFill(order.TraderID, order.Side, notionalUSD)
	if err != nil {
		logger.Error("Failed to apply accepted order", zap.Error(err))
		metrics.OrdersRejected.WithLabelValues(rejectUnknownReference).Inc()
		return
	}

	logger.Debug("Order accepted",
		zap.String("desk", desk.Name),
		zap.String("side", string(order.Side)),
		zap.String("notional_usd", notionalUSD.Round(2).String()))

	// The gross check is advisory: the side counters stay updated even when
	// the combined exposure now exceeds the gross limit.
	if desk.CurrentGrossNotional().GreaterThan(desk.GrossNotionalLimit) {
		logger.Info("Gross notional limit breach",
			zap.String("desk", desk.Name),
			zap.String("current_gross", desk.CurrentGrossNotional().Round(2).String()),
			zap.String("gross_limit", desk.GrossNotionalLimit.String()))
		e.publishBreach(e.breachEvent(messaging.BreachFullGross, 100, &desk, &trader, order, notionalUSD))
	}

	e.scanBreachTiers(&desk, &trader, order, notionalUSD)

	e.notifier.PublishTraderNotionalUpdate(e.traderUpdate(&trader, &desk, order.Side, notionalUSD))
	e.notifier.PublishDeskNotionalUpdate(e.deskUpdate(&desk, order.Side, notionalUSD))
	metrics.OrdersProcessed.WithLabelValues(string(order.Side)).Inc()
}

// scanBreachTiers walks the thresholds in descending order. A gross hit is
// reported and scanning continues; a hit on the order's own side is reported
// and stops the scan, so at most one side-level alert fires per order.
func (e *Engine) scanBreachTiers(desk *models.Desk, trader *models.Trader, order *models.Order, notionalUSD decimal.Decimal) {
	grossUtilization := desk.GrossUtilizationPercentage()

	var sideUtilization decimal.Decimal
	if order.Side == models.SideBuy {
		sideUtilization = desk.BuyUtilizationPercentage()
	} else {
		sideUtilization = desk.SellUtilizationPercentage()
	}

	for _, tier := range breachTiers {
		threshold := decimal.NewFromInt(int64(tier))
		if grossUtilization.GreaterThan(threshold) {
			e.publishBreach(e.breachEvent(messaging.BreachGross, tier, desk, trader, order, notionalUSD))
		}
		if sideUtilization.GreaterThan(threshold) {
			e.publishBreach(e.breachEvent(messaging.SideBreach(order.Side), tier, desk, trader, order, notionalUSD))
			break
		}
	}
}

func (e *Engine) publishBreach(event *messaging.BreachEvent) {
	metrics.LimitBreaches.WithLabelValues(event.BreachType).Inc()
	e.notifier.PublishLimitBreach(event)
}
