package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fitpulse/ranking-engine/internal/config"
	"github.com/fitpulse/ranking-engine/internal/domain/metric"
	"github.com/fitpulse/ranking-engine/internal/domain/ranking"
	"github.com/fitpulse/ranking-engine/internal/domain/user"
	"github.com/fitpulse/ranking-engine/internal/domain/weights"
	"github.com/fitpulse/ranking-engine/internal/infrastructure/account"
	"github.com/fitpulse/ranking-engine/internal/infrastructure/jobqueue"
	"github.com/fitpulse/ranking-engine/internal/infrastructure/pubsub"
	"github.com/fitpulse/ranking-engine/internal/infrastructure/repository/memory"
	"github.com/fitpulse/ranking-engine/internal/infrastructure/repository/postgres"
	"github.com/fitpulse/ranking-engine/internal/interfaces/httpapi"
	"github.com/fitpulse/ranking-engine/internal/platform/cache"
	"github.com/fitpulse/ranking-engine/internal/platform/logging"
	"github.com/fitpulse/ranking-engine/internal/platform/resilience"
	"github.com/fitpulse/ranking-engine/internal/usecase"
)

// Application bundles the wired HTTP server with the pieces the process
// entry point drives directly: the job orchestrator for the recalculation
// chain and the aggregator for in-process scheduling.
type Application struct {
	Server        *http.Server
	Orchestrator  *usecase.JobOrchestratorService
	Aggregator    *usecase.AggregatorService
	QStashEnabled bool

	closers []func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Application, error) {
	if logger == nil {
		logger = logging.Default()
	}

	app := &Application{QStashEnabled: cfg.QStashEnabled}

	var (
		metricRepo   metric.Repository
		weightsRepo  weights.Repository
		snapshotRepo ranking.SnapshotRepository
		directory    user.Directory
	)

	accountClient := account.NewClient(account.ClientConfig{
		BaseURL:        cfg.AccountBaseURL,
		IntrospectPath: cfg.AccountIntrospectPath,
		ProfilesPath:   cfg.AccountProfilesPath,
		Timeout:        cfg.AccountTimeout,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.AccountCircuitEnabled,
			FailureThreshold: cfg.AccountCircuitFailureCount,
			OpenTimeout:      cfg.AccountCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.AccountCircuitHalfOpenMaxReq,
		},
	}, nil, logger)
	directory = accountClient

	switch cfg.DBDriver {
	case config.DBDriverPostgres:
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, db.Close)

		metricRepo = postgres.NewMetricRepository(db)
		weightsRepo = postgres.NewWeightsRepository(db)
		snapshotRepo = postgres.NewSnapshotRepository(db)
	case config.DBDriverMemory:
		var records []metric.Record
		if cfg.SeedDemoData {
			records = memory.SeedMetrics(time.Now())
			directory = memory.NewUserDirectory(memory.SeedProfiles())
		}
		metricRepo = memory.NewMetricRepository(records)
		weightsRepo = memory.NewWeightsRepository(weights.Default())
		snapshotRepo = memory.NewSnapshotRepository()
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}

	broker := pubsub.NewBroker(logger)

	aggregatorSvc := usecase.NewAggregatorService(metricRepo, weightsRepo, snapshotRepo, directory, broker, logger)
	metricSvc := usecase.NewMetricService(metricRepo, aggregatorSvc)
	weightSvc := usecase.NewWeightService(weightsRepo, aggregatorSvc)

	var pages *cache.Store
	if cfg.CacheEnabled {
		pages = cache.NewStore(cfg.CacheTTL)
	}
	leaderboardSvc := usecase.NewLeaderboardService(snapshotRepo, aggregatorSvc, pages)

	queue := usecase.NewNoopJobQueue()
	if cfg.QStashEnabled {
		queue = jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.QStashCircuitEnabled,
				FailureThreshold: cfg.QStashCircuitFailureCount,
				OpenTimeout:      cfg.QStashCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
			},
		}, logger)
	}
	app.Orchestrator = usecase.NewJobOrchestratorService(aggregatorSvc, queue, cfg.RecalculateInterval, logger)
	app.Aggregator = aggregatorSvc

	handler := httpapi.NewHandler(leaderboardSvc, metricSvc, weightSvc, aggregatorSvc, app.Orchestrator, broker, logger)
	router := httpapi.NewRouter(handler, accountClient, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	app.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if app.Server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return app, nil
}

// Close releases resources opened during wiring, last-opened first.
func (a *Application) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
