package engine

import (
	"github.com/shopspring/decimal"

	"github.com/LeonAdeoye/notional-limit-service/internal/messaging"
	"github.com/LeonAdeoye/notional-limit-service/pkg/models"
)

var oneHundred = decimal.NewFromInt(100)

// round2 converts a decimal to a float rounded to two decimal places, the
// precision used for all outbound monetary figures. Internal counters keep
// full precision.
func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func utilizationPct(current, limit decimal.Decimal) float64 {
	if limit.IsZero() {
		return 0
	}
	return round2(current.Div(limit).Mul(oneHundred))
}

// breachEvent builds a breach payload from the desk snapshot held by the
// caller, so rejected orders report pre-order counters and accepted ones
// report post-update counters.
func (e *Engine) breachEvent(breachType string, limitPercentage int, desk *models.Desk, trader *models.Trader, order *models.Order, notionalUSD decimal.Decimal) *messaging.BreachEvent {
	return &messaging.BreachEvent{
		BreachType:      breachType,
		LimitPercentage: limitPercentage,
		DeskID:          desk.ID,
		DeskName:        desk.Name,
		OrderID:         order.ID,
		TraderID:        trader.ID,
		TraderName:      trader.Name,
		Symbol:          order.Symbol,
		Side:            order.Side,
		Quantity:        order.Quantity,
		Price:           round2(order.Price),
		Currency:        order.Currency,
		NotionalLocal:   round2(order.NotionalLocal()),
		NotionalUSD:     round2(notionalUSD),
		TradeTimestamp:  order.TradeTimestamp,

		CurrentBuyNotional:   round2(desk.CurrentBuyNotional),
		CurrentSellNotional:  round2(desk.CurrentSellNotional),
		CurrentGrossNotional: round2(desk.CurrentGrossNotional()),

		BuyUtilizationPercentage:   round2(desk.BuyUtilizationPercentage()),
		SellUtilizationPercentage:  round2(desk.SellUtilizationPercentage()),
		GrossUtilizationPercentage: round2(desk.GrossUtilizationPercentage()),

		BuyNotionalLimit:   round2(desk.BuyNotionalLimit),
		SellNotionalLimit:  round2(desk.SellNotionalLimit),
		GrossNotionalLimit: round2(desk.GrossNotionalLimit),
	}
}

// deskUpdate builds the desk-level notional update for an accepted order.
func (e *Engine) deskUpdate(desk *models.Desk, side models.Side, notionalUSD decimal.Decimal) *messaging.NotionalUpdateEvent {
	return &messaging.NotionalUpdateEvent{
		DeskID:   desk.ID,
		DeskName: desk.Name,
		Side:     side,

		NotionalValueUSD: round2(notionalUSD),

		CurrentBuyNotional:   round2(desk.CurrentBuyNotional),
		CurrentSellNotional:  round2(desk.CurrentSellNotional),
		CurrentGrossNotional: round2(desk.CurrentGrossNotional()),

		BuyUtilizationPercentage:   round2(desk.BuyUtilizationPercentage()),
		SellUtilizationPercentage:  round2(desk.SellUtilizationPercentage()),
		GrossUtilizationPercentage: round2(desk.GrossUtilizationPercentage()),

		BuyNotionalLimit:   round2(desk.BuyNotionalLimit),
		SellNotionalLimit:  round2(desk.SellNotionalLimit),
		GrossNotionalLimit: round2(desk.GrossNotionalLimit),
	}
}

// traderUpdate builds the trader-level notional update for an accepted
// order. Trader utilization is measured against the owning desk's limits;
// traders carry no limits of their own.
func (e *Engine) traderUpdate(trader *models.Trader, desk *models.Desk, side models.Side, notionalUSD decimal.Decimal) *messaging.NotionalUpdateEvent {
	traderID := trader.ID
	return &messaging.NotionalUpdateEvent{
		DeskID:     desk.ID,
		DeskName:   desk.Name,
		TraderID:   &traderID,
		TraderName: trader.Name,
		Side:       side,

		NotionalValueUSD: round2(notionalUSD),

		CurrentBuyNotional:   round2(trader.CurrentBuyNotional),
		CurrentSellNotional:  round2(trader.CurrentSellNotional),
		CurrentGrossNotional: round2(trader.CurrentGrossNotional()),

		BuyUtilizationPercentage:   utilizationPct(trader.CurrentBuyNotional, desk.BuyNotionalLimit),
		SellUtilizationPercentage:  utilizationPct(trader.CurrentSellNotional, desk.SellNotionalLimit),
		GrossUtilizationPercentage: utilizationPct(trader.CurrentGrossNotional(), desk.GrossNotionalLimit),

		BuyNotionalLimit:   round2(desk.BuyNotionalLimit),
		SellNotionalLimit:  round2(desk.SellNotionalLimit),
		GrossNotionalLimit: round2(desk.GrossNotionalLimit),
	}
}

// PublishInitialState publishes one desk-level and one trader-level update
// per configured record so downstream consumers start from a known state.
// Called once at startup, before the processor accepts orders.
func (e *Engine) PublishInitialState() {
	for _, desk := range e.store.Desks() {
		desk := desk
		e.notifier.PublishDeskNotionalUpdate(e.deskUpdate(&desk, "", decimal.Zero))
	}
	for _, trader := range e.store.Traders() {
		trader := trader
		desk, ok := e.store.Desk(trader.DeskID)
		if !ok {
			continue
		}
		e.notifier.PublishTraderNotionalUpdate(e.traderUpdate(&trader, &desk, "", decimal.Zero))
	}
}
