package processor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/LeonAdeoye/notional-limit-service/internal/engine"
	"github.com/LeonAdeoye/notional-limit-service/internal/fx"
	"github.com/LeonAdeoye/notional-limit-service/internal/messaging"
	"github.com/LeonAdeoye/notional-limit-service/internal/store"
	"github.com/LeonAdeoye/notional-limit-service/pkg/models"
)

// orderedNotifier records the USD notionals in the order the engine emitted
// them. All engine calls happen on the consumer goroutine; reads happen
// after Shutdown returns.
type orderedNotifier struct {
	notionals []float64
}

func (n *orderedNotifier) PublishLimitBreach(*messaging.BreachEvent) {}

func (n *orderedNotifier) PublishDeskNotionalUpdate(*messaging.NotionalUpdateEvent) {}

func (n *orderedNotifier) PublishTraderNotionalUpdate(event *messaging.NotionalUpdateEvent) {
	n.notionals = append(n.notionals, event.NotionalValueUSD)
}

type harness struct {
	processor *Processor
	store     *store.Store
	notifier  *orderedNotifier
	deskID    uuid.UUID
	traderID  uuid.UUID
}

func newHarness(t *testing.T, capacity int) *harness {
	t.Helper()
	logger := zaptest.NewLogger(t)

	riskStore := store.NewStore(logger)
	deskID := uuid.New()
	traderID := uuid.New()
	require.NoError(t, riskStore.CreateDesk(models.Desk{
		ID:                 deskID,
		Name:               "desk",
		BuyNotionalLimit:   decimal.NewFromInt(1_000_000),
		SellNotionalLimit:  decimal.NewFromInt(1_000_000),
		GrossNotionalLimit: decimal.NewFromInt(2_000_000),
	}))
	require.NoError(t, riskStore.CreateTrader(models.Trader{ID: traderID, Name: "trader", DeskID: deskID}))

	converter := fx.NewConverter(logger)
	converter.ReplaceAll(fx.DefaultRates())

	notifier := &orderedNotifier{}
	eng := engine.NewEngine(riskStore, converter, notifier, logger)
	return &harness{
		processor: NewProcessor(eng, capacity, logger),
		store:     riskStore,
		notifier:  notifier,
		deskID:    deskID,
		traderID:  traderID,
	}
}

func (h *harness) order(quantity int64) *models.Order {
	return &models.Order{
		ID:             uuid.New(),
		TraderID:       h.traderID,
		Symbol:         "7203.T",
		Quantity:       quantity,
		Price:          decimal.NewFromInt(1),
		Side:           models.SideBuy,
		Currency:       "USD",
		TradeTimestamp: time.Now(),
	}
}

func TestProcessesInSubmissionOrder(t *testing.T) {
	h := newHarness(t, 16)
	h.processor.Start()

	quantities := []int64{7, 3, 11, 5, 2}
	for _, q := range quantities {
		require.NoError(t, h.processor.Submit(h.order(q)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.processor.Shutdown(ctx))

	want := []float64{7, 3, 11, 5, 2}
	assert.Equal(t, want, h.notifier.notionals, "orders must be processed in FIFO order")
}

func TestSubmitReturnsQueueFull(t *testing.T) {
	h := newHarness(t, 1)
	// Not started: the single slot fills and stays full.

	require.NoError(t, h.processor.Submit(h.order(1)))
	assert.ErrorIs(t, h.processor.Submit(h.order(2)), ErrQueueFull)
	assert.Equal(t, 1, h.processor.Depth())
}

func TestSubmitAfterShutdown(t *testing.T) {
	h := newHarness(t, 16)
	h.processor.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.processor.Shutdown(ctx))

	assert.ErrorIs(t, h.processor.Submit(h.order(1)), ErrShutdown)
}

func TestShutdownDrainsQueuedOrders(t *testing.T) {
	h := newHarness(t, 64)

	for i := 0; i < 50; i++ {
		require.NoError(t, h.processor.Submit(h.order(10)))
	}
	h.processor.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.processor.Shutdown(ctx))

	desk, _ := h.store.Desk(h.deskID)
	assert.True(t, desk.CurrentBuyNotional.Equal(decimal.NewFromInt(500)),
		"all queued orders must be applied before shutdown completes, got %s", desk.CurrentBuyNotional)
}

func TestConcurrentSubmissionsAllAccounted(t *testing.T) {
	h := newHarness(t, 1024)
	h.processor.Start()

	const producers = 4
	const perProducer = 25

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				for {
					if err := h.processor.Submit(h.order(10)); err == nil {
						break
					}
					time.Sleep(time.Millisecond)
				}
			}
		}()
	}
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.processor.Shutdown(ctx))

	desk, _ := h.store.Desk(h.deskID)
	assert.True(t, desk.CurrentBuyNotional.Equal(decimal.NewFromInt(producers*perProducer*10)),
		"every submitted order must be applied exactly once, got %s", desk.CurrentBuyNotional)
}

func TestShutdownIsIdempotent(t *testing.T) {
	h := newHarness(t, 16)
	h.processor.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.processor.Shutdown(ctx))
	require.NoError(t, h.processor.Shutdown(ctx))
}
