package messaging

import (
	"time"

	"github.com/google/uuid"

	"github.com/LeonAdeoye/notional-limit-service/pkg/models"
)

// Breach types carried in BreachEvent.BreachType. "Full" breaches mark an
// order rejected at 100% of a limit; the others are tiered utilization alerts.
const (
	BreachFullBuy   = "Full Buy limit"
	BreachFullSell  = "Full Sell limit"
	BreachFullGross = "Full Gross limit"
	BreachBuy       = "Buy limit"
	BreachSell      = "Sell limit"
	BreachGross     = "Gross limit"
)

// FullSideBreach returns the full-limit breach type for an order side.
func FullSideBreach(side models.Side) string {
	if side == models.SideBuy {
		return BreachFullBuy
	}
	return BreachFullSell
}

// SideBreach returns the tiered breach type for an order side.
func SideBreach(side models.Side) string {
	if side == models.SideBuy {
		return BreachBuy
	}
	return BreachSell
}

// BreachEvent is published whenever an order trips a limit check. All
// monetary figures are rounded to two decimal places.
type BreachEvent struct {
	BreachType      string      `json:"breachType"`
	LimitPercentage int         `json:"limitPercentage"`
	DeskID          uuid.UUID   `json:"deskId"`
	DeskName        string      `json:"deskName"`
	OrderID         uuid.UUID   `json:"orderId"`
	TraderID        uuid.UUID   `json:"traderId"`
	TraderName      string      `json:"traderName"`
	Symbol          string      `json:"symbol"`
	Side            models.Side `json:"side"`
	Quantity        int64       `json:"quantity"`
	Price           float64     `json:"price"`
	Currency        string      `json:"currency"`
	NotionalLocal   float64     `json:"notionalLocal"`
	NotionalUSD     float64     `json:"notionalUSD"`
	TradeTimestamp  time.Time   `json:"tradeTimestamp"`

	CurrentBuyNotional   float64 `json:"currentBuyNotional"`
	CurrentSellNotional  float64 `json:"currentSellNotional"`
	CurrentGrossNotional float64 `json:"currentGrossNotional"`

	BuyUtilizationPercentage   float64 `json:"buyUtilizationPercentage"`
	SellUtilizationPercentage  float64 `json:"sellUtilizationPercentage"`
	GrossUtilizationPercentage float64 `json:"grossUtilizationPercentage"`

	BuyNotionalLimit   float64 `json:"buyNotionalLimit"`
	SellNotionalLimit  float64 `json:"sellNotionalLimit"`
	GrossNotionalLimit float64 `json:"grossNotionalLimit"`
}

// NotionalUpdateEvent is published once per desk and once per trader for
// every accepted order, carrying the post-update counters. Trader-level
// updates also carry the trader identity; desk-level updates leave it empty.
type NotionalUpdateEvent struct {
	DeskID     uuid.UUID   `json:"deskId"`
	DeskName   string      `json:"deskName"`
	TraderID   *uuid.UUID  `json:"traderId,omitempty"`
	TraderName string      `json:"traderName,omitempty"`
	Side       models.Side `json:"side,omitempty"`

	NotionalValueUSD float64 `json:"notionalValueUSD"`

	CurrentBuyNotional   float64 `json:"currentBuyNotional"`
	CurrentSellNotional  float64 `json:"currentSellNotional"`
	CurrentGrossNotional float64 `json:"currentGrossNotional"`

	BuyUtilizationPercentage   float64 `json:"buyUtilizationPercentage"`
	SellUtilizationPercentage  float64 `json:"sellUtilizationPercentage"`
	GrossUtilizationPercentage float64 `json:"grossUtilizationPercentage"`

	BuyNotionalLimit   float64 `json:"buyNotionalLimit"`
	SellNotionalLimit  float64 `json:"sellNotionalLimit"`
	GrossNotionalLimit float64 `json:"grossNotionalLimit"`
}
