package ingress

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func validPayload() string {
	return fmt.Sprintf(`{
		"id": %q,
		"traderId": %q,
		"symbol": "0700.HK",
		"quantity": 500,
		"price": "350.20",
		"side": "BUY",
		"currency": "HKD",
		"tradeTimestamp": %q
	}`, uuid.NewString(), uuid.NewString(), time.Now().Format(time.RFC3339))
}

func TestValidateAcceptsWellFormedOrder(t *testing.T) {
	v := NewValidator(zaptest.NewLogger(t))

	order, err := v.Validate([]byte(validPayload()))
	require.NoError(t, err)
	assert.Equal(t, "0700.HK", order.Symbol)
	assert.Equal(t, int64(500), order.Quantity)
	assert.Equal(t, "350.2", order.Price.String())
}

func TestValidateRejectsMalformedJSON(t *testing.T) {
	v := NewValidator(zaptest.NewLogger(t))

	_, err := v.Validate([]byte(`{"symbol": `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse message")
}

func TestValidateAggregatesAllProblems(t *testing.T) {
	v := NewValidator(zaptest.NewLogger(t))

	payload := fmt.Sprintf(`{
		"traderId": %q,
		"symbol": "",
		"quantity": 0,
		"price": "-1",
		"side": "SHORT",
		"currency": "HKD",
		"tradeTimestamp": %q
	}`, uuid.NewString(), time.Now().Format(time.RFC3339))

	_, err := v.Validate([]byte(payload))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price must be positive")
	assert.Contains(t, err.Error(), "quantity must be positive")
	assert.Contains(t, err.Error(), "symbol is required")
	assert.Contains(t, err.Error(), "side must be BUY or SELL")
}

func TestValidateRejectsMissingTrader(t *testing.T) {
	v := NewValidator(zaptest.NewLogger(t))

	payload := fmt.Sprintf(`{
		"symbol": "7203.T",
		"quantity": 100,
		"price": "210.5",
		"side": "SELL",
		"currency": "JPY",
		"tradeTimestamp": %q
	}`, time.Now().Format(time.RFC3339))

	_, err := v.Validate([]byte(payload))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trader id is required")
}

func TestValidateRejectsBadCurrency(t *testing.T) {
	v := NewValidator(zaptest.NewLogger(t))

	payload := fmt.Sprintf(`{
		"traderId": %q,
		"symbol": "7203.T",
		"quantity": 100,
		"price": "210.5",
		"side": "SELL",
		"currency": "YEN2",
		"tradeTimestamp": %q
	}`, uuid.NewString(), time.Now().Format(time.RFC3339))

	_, err := v.Validate([]byte(payload))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "currency must be a 3-letter code")
}
