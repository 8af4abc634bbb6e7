// Package fx maintains the currency -> USD rate table and converts order
// notionals to USD on the hot processing path.
package fx

import (
	"errors"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrInvalidRate signals a missing or non-positive FX rate.
var ErrInvalidRate = errors.New("invalid fx rate")

// USD is the reporting currency; conversions from it are the identity.
const USD = "USD"

// Converter converts local-currency amounts to USD.
//
// The rate table is published by atomic whole-map replacement: readers load
// the current map pointer and never observe a half-written update, and the
// hot path takes no locks.
type Converter struct {
	rates  atomic.Pointer[map[string]decimal.Decimal]
	logger *zap.Logger
}

// NewConverter creates a converter with an empty rate table.
func NewConverter(logger *zap.Logger) *Converter {
	c := &Converter{logger: logger}
	empty := make(map[string]decimal.Decimal)
	c.rates.Store(&empty)
	return c
}

// Convert returns the USD value of amount. USD amounts pass through
// unchanged; any other currency requires a positive stored rate.
func (c *Converter) Convert(amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	if currency == USD {
		return amount, nil
	}

	rates := *c.rates.Load()
	rate, ok := rates[currency]
	if !ok || rate.LessThanOrEqual(decimal.Zero) {
		c.logger.Error("FX rate invalid for currency", zap.String("currency", currency))
		return decimal.Zero, ErrInvalidRate
	}
	return amount.Mul(rate), nil
}

// UpdateRate atomically replaces the stored rate for one currency.
func (c *Converter) UpdateRate(currency string, rate decimal.Decimal) error {
	if rate.LessThanOrEqual(decimal.Zero) {
		c.logger.Error("Rejected invalid FX rate",
			zap.String("currency", currency),
			zap.String("rate", rate.String()))
		return ErrInvalidRate
	}

	for {
		old := c.rates.Load()
		next := make(map[string]decimal.Decimal, len(*old)+1)
		for k, v := range *old {
			next[k] = v
		}
		prev, existed := next[currency]
		next[currency] = rate
		if c.rates.CompareAndSwap(old, &next) {
			if !existed || !prev.Equal(rate) {
				c.logger.Info("Updated FX rate",
					zap.String("currency", currency),
					zap.String("rate", rate.String()))
			}
			return nil
		}
	}
}

// ReplaceAll swaps in a complete new rate table in one atomic step.
// Non-positive entries are dropped rather than published.
func (c *Converter) ReplaceAll(rates map[string]decimal.Decimal) {
	next := make(map[string]decimal.Decimal, len(rates))
	for currency, rate := range rates {
		if rate.LessThanOrEqual(decimal.Zero) {
			c.logger.Warn("Dropping non-positive FX rate",
				zap.String("currency", currency),
				zap.String("rate", rate.String()))
			continue
		}
		next[currency] = rate
	}
	c.rates.Store(&next)
	c.logger.Info("Refreshed FX rates", zap.Int("currencies", len(next)))
}

// Rate returns the stored rate for a currency.
func (c *Converter) Rate(currency string) (decimal.Decimal, bool) {
	rates := *c.rates.Load()
	rate, ok := rates[currency]
	return rate, ok
}

// HasRate reports whether a rate is stored for the currency.
func (c *Converter) HasRate(currency string) bool {
	_, ok := c.Rate(currency)
	return ok
}

// Rates returns a defensive copy of the current rate table.
func (c *Converter) Rates() map[string]decimal.Decimal {
	rates := *c.rates.Load()
	out := make(map[string]decimal.Decimal, len(rates))
	for k, v := range rates {
		out[k] = v
	}
	return out
}

// DefaultRates is the seed table applied when no rates are persisted yet.
func DefaultRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"EUR": decimal.NewFromFloat(1.18),
		"GBP": decimal.NewFromFloat(1.40),
		"JPY": decimal.NewFromFloat(0.0091),
		"HKD": decimal.NewFromFloat(0.13),
		"SGD": decimal.NewFromFloat(0.74),
		"AUD": decimal.NewFromFloat(0.73),
		"USD": decimal.NewFromFloat(1.0),
		"CAD": decimal.NewFromFloat(0.75),
		"KRW": decimal.NewFromFloat(0.00068),
	}
}
