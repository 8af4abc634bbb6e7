// Command ordergen publishes randomized synthetic orders to the order feed
// for exercising the limit service end to end.
package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/LeonAdeoye/notional-limit-service/internal/messaging"
	"github.com/LeonAdeoye/notional-limit-service/pkg/logger"
	"github.com/LeonAdeoye/notional-limit-service/pkg/models"
)

var (
	hkSymbols = []string{"0700.HK", "0001.HK", "0005.HK", "0011.HK", "0016.HK"}
	jpSymbols = []string{"7203.T", "9984.T", "6758.T", "6861.T", "9432.T"}
	krSymbols = []string{"005930.KS", "035720.KS", "035420.KS", "068270.KS", "051910.KS"}
)

var defaultTraderIDs = []string{
	"aa477902-f601-48f0-b206-48c472f75161",
	"0927b5e0-162d-41c6-98ec-630c1a8d5b22",
	"8f12a606-1e67-43de-bf55-5292fd535224",
	"ddcc0ccd-3f61-43ff-bbb2-49f7a8eac64d",
	"6eef7deb-f873-410f-93ae-09cfa209d84f",
}

func main() {
	brokers := flag.String("brokers", "localhost:9092", "comma-separated Kafka brokers")
	count := flag.Int("count", 50, "number of orders to send")
	duration := flag.Duration("duration", 5*time.Minute, "window over which orders are spread")
	tradersArg := flag.String("traders", strings.Join(defaultTraderIDs, ","), "comma-separated trader UUIDs")
	flag.Parse()

	log, err := logger.NewLogger("info")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	traderIDs, err := parseTraderIDs(*tradersArg)
	if err != nil {
		log.Fatal("Invalid trader id", zap.Error(err))
	}

	producer := messaging.NewKafkaProducer(&messaging.Config{
		Brokers:      strings.Split(*brokers, ","),
		WriteTimeout: 10 * time.Second,
	}, log)
	defer producer.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	deadline := time.Now().Add(*duration)

	sent := 0
	for sent < *count && time.Now().Before(deadline) {
		order := randomOrder(rng, traderIDs)
		if err := producer.Publish(ctx, messaging.TopicOrders, order.TraderID.String(), order); err != nil {
			log.Error("Failed to publish order", zap.Error(err))
		} else {
			log.Info("Sent order",
				zap.String("order_id", order.ID.String()),
				zap.String("symbol", order.Symbol),
				zap.String("side", string(order.Side)),
				zap.Int64("quantity", order.Quantity),
				zap.String("price", order.Price.String()))
			sent++
		}

		select {
		case <-ctx.Done():
			log.Info("Interrupted", zap.Int("sent", sent))
			os.Exit(0)
		case <-time.After(nextDelay(rng, deadline, *count-sent)):
		}
	}

	log.Info("Done", zap.Int("sent", sent))
}

func parseTraderIDs(arg string) ([]uuid.UUID, error) {
	parts := strings.Split(arg, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// nextDelay spreads the remaining orders over the remaining window, jittered.
func nextDelay(rng *rand.Rand, deadline time.Time, remaining int) time.Duration {
	if remaining <= 0 {
		return time.Millisecond
	}
	window := time.Until(deadline)
	if window <= 0 {
		return time.Millisecond
	}
	slot := window / time.Duration(remaining)
	if slot <= 0 {
		return time.Millisecond
	}
	return time.Duration(rng.Int63n(int64(slot)) + 1)
}

func randomOrder(rng *rand.Rand, traderIDs []uuid.UUID) *models.Order {
	var symbol, currency string
	switch rng.Intn(3) {
	case 0:
		symbol = hkSymbols[rng.Intn(len(hkSymbols))]
		currency = "HKD"
	case 1:
		symbol = jpSymbols[rng.Intn(len(jpSymbols))]
		currency = "JPY"
	default:
		symbol = krSymbols[rng.Intn(len(krSymbols))]
		currency = "KRW"
	}

	side := models.SideBuy
	if rng.Intn(2) == 1 {
		side = models.SideSell
	}

	price := decimal.NewFromFloat(100 + rng.Float64()*900).Round(2)

	return &models.Order{
		ID:             uuid.New(),
		TraderID:       traderIDs[rng.Intn(len(traderIDs))],
		Symbol:         symbol,
		Quantity:       int64(rng.Intn(9901) + 100),
		Price:          price,
		Side:           side,
		Currency:       currency,
		TradeTimestamp: time.Now(),
	}
}
