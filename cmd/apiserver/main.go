// API server entry point: wires the storage, ontology, cache, queue, and LLM
// adapters into the scoring and citation services and serves the REST API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	promclient "github.com/prometheus/client_golang/prometheus"

	"github.com/cr625/proethica-sub007/internal/application/citation"
	"github.com/cr625/proethica-sub007/internal/application/relevance"
	"github.com/cr625/proethica-sub007/internal/config"
	"github.com/cr625/proethica-sub007/internal/infrastructure/database/postgres"
	"github.com/cr625/proethica-sub007/internal/infrastructure/database/postgres/repositories"
	"github.com/cr625/proethica-sub007/internal/infrastructure/database/redis"
	"github.com/cr625/proethica-sub007/internal/infrastructure/messaging/kafka"
	"github.com/cr625/proethica-sub007/internal/infrastructure/monitoring/logging"
	"github.com/cr625/proethica-sub007/internal/infrastructure/monitoring/prometheus"
	"github.com/cr625/proethica-sub007/internal/infrastructure/ontology/neo4j"
	"github.com/cr625/proethica-sub007/internal/intelligence/embedding"
	"github.com/cr625/proethica-sub007/internal/intelligence/llm"
	httpserver "github.com/cr625/proethica-sub007/internal/interfaces/http"
	"github.com/cr625/proethica-sub007/internal/interfaces/http/handlers"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	logger.Info("starting relevance engine api server", logging.Int("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := prometheus.New(promclient.DefaultRegisterer)

	// Storage and ontology backends.
	pool, err := postgres.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("postgres connection failed", logging.Err(err))
	}
	defer pool.Close()

	driver, err := neo4j.NewDriver(ctx, cfg.Neo4j, logger)
	if err != nil {
		logger.Fatal("neo4j connection failed", logging.Err(err))
	}
	defer driver.Close(context.Background())

	cache, err := redis.NewCache(cfg.Redis, logger)
	if err != nil {
		logger.Fatal("redis connection failed", logging.Err(err))
	}
	defer cache.Close()

	publisher := kafka.NewJobPublisher(cfg.Kafka, logger)
	defer publisher.Close()

	// LLM completer; absence degrades the judge and validator.
	var completer llm.Completer
	if cfg.LLM.APIKey != "" {
		gemini, err := llm.NewGeminiCompleter(ctx, llm.Config{
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   int32(cfg.LLM.MaxTokens),
		}, logger)
		if err != nil {
			logger.Fatal("gemini client failed", logging.Err(err))
		}
		defer gemini.Close()
		completer = llm.WithRetry(gemini, llm.RetryConfig{
			MaxAttempts:    cfg.LLM.MaxAttempts,
			InitialBackoff: cfg.LLM.InitialBackoff,
			MaxBackoff:     cfg.LLM.MaxBackoff,
			CallTimeout:    cfg.LLM.CallTimeout,
		}, logger)
	} else {
		logger.Warn("llm api key not configured; judge and validator run degraded")
	}

	embedder := embedding.NewHTTPEmbedder(embedding.Config{
		Endpoint:  cfg.Embedding.Endpoint,
		Dimension: cfg.Embedding.Dimension,
		Timeout:   cfg.Embedding.Timeout,
	}, logger)

	// Application services.
	service := relevance.NewService(
		repositories.NewSectionRepository(pool.Pool(), logger),
		neo4j.NewStatementRepository(driver, logger),
		repositories.NewAssessmentRepository(pool.Pool(), logger),
		embedder,
		relevance.NewSemanticJudge(completer, logger),
		cache,
		metrics,
		relevance.Config{
			PreliminaryWeights: relevance.PreliminaryWeights{
				Vector:     cfg.Relevance.VectorWeight,
				Term:       cfg.Relevance.TermWeight,
				Structural: cfg.Relevance.StructuralWeight,
			},
			FinalWeights: relevance.FinalWeights{
				Vector:     cfg.Relevance.FinalVectorWeight,
				Term:       cfg.Relevance.FinalTermWeight,
				Structural: cfg.Relevance.FinalStructural,
				Judge:      cfg.Relevance.FinalJudgeWeight,
			},
			EscalationThreshold: cfg.Relevance.EscalationThreshold,
			MaxConcurrent:       cfg.Relevance.MaxConcurrent,
			CacheTTL:            cfg.Relevance.CacheTTL,
		},
		logger,
	)

	matcher := citation.NewPatternMatcher(logger)
	validator := citation.NewValidator(completer, logger,
		citation.WithBatchSize(cfg.Citation.BatchSize),
		citation.WithValidatorMetrics(metrics),
	)

	// HTTP surface.
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	router := httpserver.NewRouter(httpserver.RouterConfig{
		RelevanceHandler: handlers.NewRelevanceHandler(service, publisher),
		CitationHandler:  handlers.NewCitationHandler(matcher, validator),
		HealthHandler: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"postgres": pool,
			"neo4j":    driver,
			"redis":    cache,
		}),
		Logger:      logger,
		Metrics:     metrics,
		Mode:        cfg.Server.Mode,
		MetricsPath: metricsPath,
	})

	server := httpserver.NewServer(cfg.Server, router, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("http server failed", logging.Err(err))
		}
	}

	if err := server.Stop(context.Background()); err != nil {
		logger.Error("shutdown incomplete", logging.Err(err))
	}
	logger.Info("api server stopped")
}

// loadConfig reads the config file when it exists, falling back to
// environment variables so containerized deployments need no file at all.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}
