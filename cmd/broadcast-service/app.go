package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"herald/internal/broadcast"
	"herald/internal/broker"
	"herald/internal/config"
	"herald/internal/constants"
	"herald/internal/droplog"
	"herald/internal/enrichment"
	"herald/internal/guild"
	"herald/internal/logger"
	"herald/internal/pipeline"
	"herald/pkg/bootstrap"
	"herald/pkg/health"
	"herald/pkg/metrics"
	"herald/pkg/migrations"
	"herald/pkg/tracing"
)

const serviceName = "broadcast-service"

type App struct {
	*bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	mongoClient    *mongo.Client
	redisClient    *redis.Client
	pipeline       *pipeline.Pipeline
	tracerProvider *tracing.TracerProvider
	server         *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName(serviceName)
	}
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initDatabases(ctx); err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := a.InitBroker(serviceName); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	a.initPipeline()

	tp, err := tracing.Init(a.Config.Tracing, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	metrics.RegisterBroadcastMetrics()
	metrics.RegisterEnrichmentMetrics()
	metrics.RegisterBrokerMetrics()
	if a.Config.Enrichment.BreakerEnabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	if err := a.initHTTPServer(ctx); err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	return nil
}

func (a *App) initDatabases(ctx context.Context) error {
	mongoClient, err := a.dbConnector.InitMongoDB(ctx)
	if err != nil {
		return err
	}
	a.mongoClient = mongoClient

	redisClient, err := a.dbConnector.InitRedis(ctx)
	if err != nil {
		return err
	}
	a.redisClient = redisClient

	db := a.mongoClient.Database(a.Config.Database.MongoDB.Database)
	if err := migrations.EnsureCollections(ctx, db); err != nil {
		return fmt.Errorf("failed to ensure collections: %w", err)
	}
	return nil
}

func (a *App) initPipeline() {
	db := a.mongoClient.Database(a.Config.Database.MongoDB.Database)

	guildRepo := guild.NewRepository(db)
	cacheTTL := time.Duration(a.Config.Pipeline.GuildCacheSeconds) * time.Second
	guilds := guild.NewService(guildRepo, cacheTTL, a.Logger)

	geClient := enrichment.NewGEClient(a.Config.Enrichment)
	wikiClient := enrichment.NewWikiClient(a.Config.Enrichment)
	cache := enrichment.NewCache(a.redisClient)
	enricher := enrichment.NewService(geClient, wikiClient, cache, a.Logger)

	a.pipeline = pipeline.New(
		guilds,
		broadcast.NewHandler(a.Logger),
		enricher,
		droplog.NewRepository(db),
		a.Producer,
		a.Config.Broker.Kafka,
		a.Logger,
	)
}

func (a *App) initHTTPServer(ctx context.Context) error {
	mux := http.NewServeMux()

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewMongoDBChecker(a.mongoClient))
	healthRegistry.Register(health.NewRedisChecker(a.redisClient))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		h := healthRegistry.Check(r.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		fmt.Fprintf(w, `{"status":"%s","timestamp":"%s"}`, h.Status, h.Timestamp.Format(time.RFC3339))
	})

	mux.Handle("/metrics", promhttp.Handler())

	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler: mux,
	}

	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	inputTopic := a.Config.Broker.Kafka.ClanChatTopic

	g.Go(func() error {
		return a.Consumer.Consume(gCtx, inputTopic, a.pipeline.HandleEnvelope)
	})

	// Additional consumers in the same group split the topic's partitions.
	for i := 1; i < a.Config.Pipeline.Workers; i++ {
		extra, err := broker.NewConsumer(a.Config.Broker, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to create worker consumer: %w", err)
		}
		extra.SetServiceName(serviceName)
		defer extra.Close()

		g.Go(func() error {
			return extra.Consume(gCtx, inputTopic, a.pipeline.HandleEnvelope)
		})
	}

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.InfowCtx(ctx, "Shutting down broadcast service")

	additionalShutdown := func(ctx context.Context) []error {
		var errs []error

		if a.server != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()
			if err := a.server.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("HTTP server shutdown error: %w", err))
			}
		}

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		errs = append(errs, a.dbConnector.ShutdownDatabases(ctx, a.redisClient, a.mongoClient)...)

		return errs
	}

	return a.Base.Shutdown(ctx, additionalShutdown)
}
