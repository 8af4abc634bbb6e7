package fx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/LeonAdeoye/notional-limit-service/pkg/models"
)

type stubSource struct {
	rates []models.FxRate
	err   error
}

func (s *stubSource) Rates(context.Context) ([]models.FxRate, error) {
	return s.rates, s.err
}

func TestRefreshSwapsInSourceRates(t *testing.T) {
	logger := zaptest.NewLogger(t)
	c := NewConverter(logger)
	source := &stubSource{rates: []models.FxRate{
		{Currency: "EUR", Rate: decimal.NewFromFloat(1.18)},
		{Currency: "JPY", Rate: decimal.NewFromFloat(0.0091)},
	}}

	r := NewRefresher(c, source, nil, time.Minute, logger)
	r.Refresh(context.Background())

	assert.True(t, c.HasRate("EUR"))
	assert.True(t, c.HasRate("JPY"))
	assert.False(t, c.HasRate("GBP"))
}

func TestRefreshFallsBackToSeedRates(t *testing.T) {
	logger := zaptest.NewLogger(t)
	c := NewConverter(logger)

	r := NewRefresher(c, &stubSource{}, nil, time.Minute, logger)
	r.Refresh(context.Background())

	for currency := range DefaultRates() {
		assert.True(t, c.HasRate(currency), "seed rate for %s must be applied", currency)
	}
}

func TestRefreshKeepsTableOnSourceError(t *testing.T) {
	logger := zaptest.NewLogger(t)
	c := NewConverter(logger)
	require.NoError(t, c.UpdateRate("EUR", decimal.NewFromFloat(1.18)))

	r := NewRefresher(c, &stubSource{err: errors.New("db down")}, nil, time.Minute, logger)
	r.Refresh(context.Background())

	rate, ok := c.Rate("EUR")
	require.True(t, ok, "a failed refresh must not clear the current table")
	assert.True(t, rate.Equal(decimal.NewFromFloat(1.18)))
}
