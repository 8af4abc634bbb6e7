package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/LeonAdeoye/notional-limit-service/internal/api"
	"github.com/LeonAdeoye/notional-limit-service/internal/config"
	"github.com/LeonAdeoye/notional-limit-service/internal/database"
	"github.com/LeonAdeoye/notional-limit-service/internal/engine"
	"github.com/LeonAdeoye/notional-limit-service/internal/fx"
	"github.com/LeonAdeoye/notional-limit-service/internal/ingress"
	"github.com/LeonAdeoye/notional-limit-service/internal/messaging"
	"github.com/LeonAdeoye/notional-limit-service/internal/processor"
	"github.com/LeonAdeoye/notional-limit-service/internal/publisher"
	"github.com/LeonAdeoye/notional-limit-service/internal/repository"
	"github.com/LeonAdeoye/notional-limit-service/internal/store"
	"github.com/LeonAdeoye/notional-limit-service/pkg/logger"
)

const (
	eventBufferSize = 4096
	shutdownTimeout = 30 * time.Second
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("Starting notional limit service")

	db, err := database.NewPostgresDB(cfg.Database.DSN, cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	repo, err := repository.NewGormRepository(db, log)
	if err != nil {
		log.Fatal("Failed to initialize repository", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Rebuild the in-memory risk state from persisted configuration. All
	// exposure counters start at zero on every boot.
	riskStore := store.NewStore(log)
	desks, err := repo.Desks(ctx)
	if err != nil {
		log.Fatal("Failed to load desks", zap.Error(err))
	}
	traders, err := repo.Traders(ctx)
	if err != nil {
		log.Fatal("Failed to load traders", zap.Error(err))
	}
	riskStore.Load(desks, traders)
	log.Info("Loaded risk configuration",
		zap.Int("desks", len(desks)),
		zap.Int("traders", len(traders)))

	converter := fx.NewConverter(log)
	rateCache := fx.NewRateCache(cfg.Redis.Addr, log)
	refresher := fx.NewRefresher(converter, repo, rateCache, cfg.FX.RefreshInterval, log)
	// Synchronous first refresh so the engine never starts with an empty
	// rate table.
	refresher.Refresh(ctx)
	go refresher.Run(ctx)

	kafkaCfg := &messaging.Config{
		Brokers:      cfg.Kafka.Brokers,
		GroupID:      cfg.Kafka.GroupID,
		ReadTimeout:  cfg.Kafka.ReadTimeout,
		WriteTimeout: cfg.Kafka.WriteTimeout,
	}
	producer := messaging.NewKafkaProducer(kafkaCfg, log)
	events := publisher.NewAsyncPublisher(producer, eventBufferSize, log)

	riskEngine := engine.NewEngine(riskStore, converter, events, log)
	riskEngine.PublishInitialState()

	proc := processor.NewProcessor(riskEngine, cfg.Queue.Capacity, log)
	proc.Start()

	journal := ingress.NewJournal(cfg.Journal.Dir, log)
	orderIngress := ingress.NewIngress(ingress.NewValidator(log), journal, proc, log)

	consumer := messaging.NewKafkaConsumer(kafkaCfg, messaging.TopicOrders, log)
	go consumer.Run(ctx, orderIngress.HandleMessage)

	server := api.NewServer(log, riskStore, converter, repo)
	go func() {
		if err := server.Start(cfg.Server.Addr); err != nil {
			log.Error("API server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Shutting down", zap.String("signal", sig.String()))

	// Stop the feed first, then drain the queue, then flush events.
	cancel()
	if err := consumer.Close(); err != nil {
		log.Error("Failed to close consumer", zap.Error(err))
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer drainCancel()
	if err := proc.Shutdown(drainCtx); err != nil {
		log.Error("Processor drain incomplete", zap.Error(err))
	}

	events.Close()
	if err := producer.Close(); err != nil {
		log.Error("Failed to close producer", zap.Error(err))
	}
	if rateCache != nil {
		_ = rateCache.Close()
	}

	log.Info("Shutdown complete")
}
