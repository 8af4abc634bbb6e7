// Package models holds the domain model shared across the limit service:
// orders arriving on the feed, desks with their configured notional limits,
// traders, and FX rates.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Side indicates whether an order is buying or selling.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Valid reports whether the side is one of the known values.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

var oneHundred = decimal.NewFromInt(100)

// Order is an immutable trade order produced by the ingress layer.
type Order struct {
	ID             uuid.UUID       `json:"id"`
	TraderID       uuid.UUID       `json:"traderId" validate:"required"`
	Symbol         string          `json:"symbol" validate:"required"`
	Quantity       int64           `json:"quantity" validate:"required,gt=0"`
	Price          decimal.Decimal `json:"price"`
	Side           Side            `json:"side" validate:"required,oneof=BUY SELL"`
	Currency       string          `json:"currency" validate:"required,len=3"`
	TradeTimestamp time.Time       `json:"tradeTimestamp" validate:"required"`
}

// NotionalLocal is the order's cash value in its settlement currency.
func (o *Order) NotionalLocal() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(o.Quantity))
}

// Trader belongs to exactly one desk. The exposure counters are runtime
// state owned by the accounting engine and are not persisted.
type Trader struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name   string    `json:"name" gorm:"type:varchar(100);not null" validate:"required"`
	DeskID uuid.UUID `json:"deskId" gorm:"type:uuid;not null;index" validate:"required"`

	CurrentBuyNotional  decimal.Decimal `json:"currentBuyNotional" gorm:"-"`
	CurrentSellNotional decimal.Decimal `json:"currentSellNotional" gorm:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CurrentGrossNotional is always derived as buy + sell so the gross figure
// can never drift from the side counters.
func (t *Trader) CurrentGrossNotional() decimal.Decimal {
	return t.CurrentBuyNotional.Add(t.CurrentSellNotional)
}

// Desk is a trading unit aggregating one or more traders, with configured
// buy/sell/gross notional limits in USD. The exposure counters are runtime
// state owned by the accounting engine and are not persisted.
type Desk struct {
	ID   uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name string    `json:"name" gorm:"type:varchar(100);not null" validate:"required"`

	BuyNotionalLimit   decimal.Decimal `json:"buyNotionalLimit" gorm:"type:decimal(20,8);not null"`
	SellNotionalLimit  decimal.Decimal `json:"sellNotionalLimit" gorm:"type:decimal(20,8);not null"`
	GrossNotionalLimit decimal.Decimal `json:"grossNotionalLimit" gorm:"type:decimal(20,8);not null"`

	CurrentBuyNotional  decimal.Decimal `json:"currentBuyNotional" gorm:"-"`
	CurrentSellNotional decimal.Decimal `json:"currentSellNotional" gorm:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CurrentGrossNotional is always derived as buy + sell.
func (d *Desk) CurrentGrossNotional() decimal.Decimal {
	return d.CurrentBuyNotional.Add(d.CurrentSellNotional)
}

// BuyUtilizationPercentage is current buy exposure over the buy limit, times 100.
func (d *Desk) BuyUtilizationPercentage() decimal.Decimal {
	return utilization(d.CurrentBuyNotional, d.BuyNotionalLimit)
}

// SellUtilizationPercentage is current sell exposure over the sell limit, times 100.
func (d *Desk) SellUtilizationPercentage() decimal.Decimal {
	return utilization(d.CurrentSellNotional, d.SellNotionalLimit)
}

// GrossUtilizationPercentage is current gross exposure over the gross limit, times 100.
func (d *Desk) GrossUtilizationPercentage() decimal.Decimal {
	return utilization(d.CurrentGrossNotional(), d.GrossNotionalLimit)
}

// SideLimit returns the configured limit for the given side.
func (d *Desk) SideLimit(side Side) decimal.Decimal {
	if side == SideBuy {
		return d.BuyNotionalLimit
	}
	return d.SellNotionalLimit
}

// SideNotional returns the current exposure for the given side.
func (d *Desk) SideNotional(side Side) decimal.Decimal {
	if side == SideBuy {
		return d.CurrentBuyNotional
	}
	return d.CurrentSellNotional
}

func utilization(current, limit decimal.Decimal) decimal.Decimal {
	if limit.IsZero() {
		return decimal.Zero
	}
	return current.Div(limit).Mul(oneHundred)
}

// FxRate is a persisted currency -> USD conversion rate.
type FxRate struct {
	Currency  string          `json:"currency" gorm:"type:varchar(10);primaryKey"`
	Rate      decimal.Decimal `json:"rate" gorm:"type:decimal(20,8);not null"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
