package fx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/LeonAdeoye/notional-limit-service/pkg/models"
)

// RateSource supplies the persisted FX rates for a refresh cycle.
type RateSource interface {
	Rates(ctx context.Context) ([]models.FxRate, error)
}

// Refresher periodically reloads the rate table from the rate source and
// publishes it to the converter in one atomic swap. When a Redis client is
// configured, the snapshot is mirrored there best-effort for other services.
type Refresher struct {
	converter *Converter
	source    RateSource
	cache     *redis.Client
	interval  time.Duration
	logger    *zap.Logger
}

// NewRefresher creates a refresher. cache may be nil.
func NewRefresher(converter *Converter, source RateSource, cache *redis.Client, interval time.Duration, logger *zap.Logger) *Refresher {
	return &Refresher{
		converter: converter,
		source:    source,
		cache:     cache,
		interval:  interval,
		logger:    logger,
	}
}

// Run performs an immediate refresh and then refreshes on every tick until
// the context is cancelled. It blocks; run it on its own goroutine.
func (r *Refresher) Run(ctx context.Context) {
	r.Refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Refresh(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Refresh loads rates from the source and swaps them into the converter.
// When the source holds no rates yet, the default seed table is applied.
func (r *Refresher) Refresh(ctx context.Context) {
	records, err := r.source.Rates(ctx)
	if err != nil {
		r.logger.Error("Failed to refresh FX rates, keeping current table", zap.Error(err))
		return
	}

	rates := make(map[string]decimal.Decimal, len(records))
	for _, record := range records {
		rates[record.Currency] = record.Rate
	}
	if len(rates) == 0 {
		r.logger.Info("No persisted FX rates, applying default seed rates")
		rates = DefaultRates()
	}

	r.converter.ReplaceAll(rates)
	r.cacheSnapshot(ctx)
}

func (r *Refresher) cacheSnapshot(ctx context.Context) {
	if r.cache == nil {
		return
	}

	snapshot := r.converter.Rates()
	fields := make(map[string]interface{}, len(snapshot))
	for currency, rate := range snapshot {
		fields[currency] = rate.String()
	}
	if err := r.cache.HSet(ctx, "fx:rates", fields).Err(); err != nil {
		r.logger.Warn("Failed to cache FX rate snapshot", zap.Error(err))
	}
}

// NewRateCache connects to Redis for rate snapshot mirroring. When Redis is
// unreachable the service proceeds without a cache.
func NewRateCache(addr string, logger *zap.Logger) *redis.Client {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis not available, proceeding without rate cache", zap.Error(err))
		return nil
	}
	logger.Info("Redis rate cache initialized")
	return rdb
}
