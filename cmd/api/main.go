package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/supporthub/support-dashboard/internal/api/http"
	"github.com/supporthub/support-dashboard/internal/api/http/handlers"
	"github.com/supporthub/support-dashboard/internal/assistant"
	"github.com/supporthub/support-dashboard/internal/auth"
	"github.com/supporthub/support-dashboard/internal/config"
	"github.com/supporthub/support-dashboard/internal/events"
	"github.com/supporthub/support-dashboard/internal/kafka"
	"github.com/supporthub/support-dashboard/internal/observability"
	"github.com/supporthub/support-dashboard/internal/persistence"
	"github.com/supporthub/support-dashboard/internal/repository"
	"github.com/supporthub/support-dashboard/internal/repository/memory"
	"github.com/supporthub/support-dashboard/internal/service"
	"github.com/supporthub/support-dashboard/internal/worker"
)

const (
	sinkQueueSize    = 1024
	sinkWriteTimeout = 10 * time.Second
)

type repositories struct {
	tickets   repository.TicketRepository
	messages  repository.TicketMessageRepository
	history   repository.TicketHistoryRepository
	customers repository.CustomerRepository
	articles  repository.ArticleRepository
	agents    repository.AgentRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.PoolHandle() != nil && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	repos, err := buildRepositories(ctx, pg, logger)
	if err != nil {
		logger.Fatal("failed to prepare repositories", zap.Error(err))
	}

	local := events.NewInMemoryDispatcher()
	var feed events.Dispatcher = local
	var relay worker.Relay
	if redis.Enabled() {
		broker := events.NewRedisBroker(redis.Client, cfg.Realtime.Channel, local, logger)
		feed, relay = broker, broker
	}
	relayDone := worker.StartRealtimeRelay(ctx, relay, logger)

	var sink service.ChangeSink
	sinkCtx, stopSink := context.WithCancel(context.Background())
	defer stopSink()
	var sinkDone <-chan struct{}
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ChangesTopic, logger)
		defer producer.Close() //nolint:errcheck
		queue := worker.NewSinkQueue(producer, sinkQueueSize, sinkWriteTimeout, logger)
		sinkDone = queue.Start(sinkCtx)
		sink = queue
		logger.Info("mirroring changes to kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.ChangesTopic))
	}
	changes := service.NewChangeRelay(feed, sink, metrics, logger)

	helperOpts := assistant.Options{
		Invoker:  assistant.NewFunctionClient(cfg.AI.FunctionsURL, cfg.AI.APIKey, cfg.AI.Timeout()),
		Function: cfg.AI.FunctionName,
		CacheTTL: cfg.AI.CacheTTL(),
		Logger:   logger,
	}
	if redis.Enabled() {
		helperOpts.Cache = assistant.NewRedisCache(redis.Client)
	}
	helper := assistant.New(helperOpts)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(cfg.Auth, repos.agents, tokens, logger)
	if cfg.Auth.HasBootstrapAgent() {
		if _, _, err := authService.EnsureAgent(ctx, cfg.Auth.BootstrapName, cfg.Auth.BootstrapEmail, cfg.Auth.BootstrapPassword); err != nil {
			logger.Fatal("failed to bootstrap agent", zap.Error(err))
		}
	}

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   repos.tickets,
		MessageRepo:  repos.messages,
		HistoryRepo:  repos.history,
		CustomerRepo: repos.customers,
		Publisher:    changes,
		Suggester:    helper,
		Logger:       logger,
	})
	knowledgeService := service.NewKnowledgeService(repos.articles, changes, logger)
	analyticsService := service.NewAnalyticsService(repos.tickets)

	shutdown := make(chan struct{})

	app := httptransport.NewApp(httptransport.ServerConfig{
		AppName:        cfg.App.Name,
		RequestTimeout: cfg.App.RequestTimeout(),
		Logger:         logger,
		Metrics:        metrics,
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Knowledge:      handlers.NewKnowledgeHandler(knowledgeService),
		Analytics:      handlers.NewAnalyticsHandler(analyticsService),
		Functions:      handlers.NewFunctionsHandler(helper, cfg.AI.FunctionName),
		Realtime:       handlers.NewRealtimeHandler(feed, cfg.Realtime.Heartbeat(), shutdown, metrics, logger),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, repos.agents),
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	close(shutdown)
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	<-relayDone
	if cfg.Kafka.Enabled() {
		stopSink()
		<-sinkDone
	}
}

// buildRepositories returns Postgres-backed repositories, or a seeded in-memory store when
// no database is configured.
func buildRepositories(ctx context.Context, pg *persistence.Postgres, logger *zap.Logger) (repositories, error) {
	if pool := pg.PoolHandle(); pool != nil {
		return repositories{
			tickets:   repository.NewTicketRepository(pool),
			messages:  repository.NewTicketMessageRepository(pool),
			history:   repository.NewTicketHistoryRepository(pool),
			customers: repository.NewCustomerRepository(pool),
			articles:  repository.NewArticleRepository(pool),
			agents:    repository.NewAgentRepository(pool),
		}, nil
	}

	logger.Warn("using in-memory demo store; data is lost on restart")
	store := memory.NewStore()
	if err := memory.Seed(ctx, store); err != nil {
		return repositories{}, err
	}
	return repositories{
		tickets:   store.Tickets(),
		messages:  store.Messages(),
		history:   store.History(),
		customers: store.Customers(),
		articles:  store.Articles(),
		agents:    store.Agents(),
	}, nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
