// Worker entry point: consumes document-assessment jobs from the queue and
// runs the scoring pipeline against the full backend stack.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

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
)

const (
	defaultConfigPath = "configs/config.yaml"
	defaultHealthPort = 8081
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	healthPort := flag.Int("health-port", defaultHealthPort, "port for /healthz and /metrics")
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
	logger.Info("starting relevance engine worker",
		logging.String("group_id", cfg.Kafka.GroupID),
		logging.Int("concurrency", cfg.Worker.Concurrency),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := prometheus.New(promclient.DefaultRegisterer)

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
		logger.Warn("llm api key not configured; judge runs degraded")
	}

	embedder := embedding.NewHTTPEmbedder(embedding.Config{
		Endpoint:  cfg.Embedding.Endpoint,
		Dimension: cfg.Embedding.Dimension,
		Timeout:   cfg.Embedding.Timeout,
	}, logger)

	// The worker owns the heavy cross-product scoring, so its concurrency
	// setting overrides the service default.
	maxConcurrent := cfg.Relevance.MaxConcurrent
	if cfg.Worker.Concurrency > 0 {
		maxConcurrent = cfg.Worker.Concurrency
	}

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
			MaxConcurrent:       maxConcurrent,
			CacheTTL:            cfg.Relevance.CacheTTL,
		},
		logger,
	)

	consumer := kafka.NewJobConsumer(cfg.Kafka, func(ctx context.Context, job kafka.AssessDocumentJob) error {
		result, err := service.AssessDocument(ctx, job.DocumentID, job.DomainID)
		if err != nil {
			return err
		}
		logger.Info("document assessment finished",
			logging.String("job_id", job.JobID.String()),
			logging.String("document_id", result.DocumentID.String()),
			logging.Int("pairs", result.Pairs),
			logging.Int("escalations", result.Escalations),
		)
		return nil
	}, logger)
	consumer.Start(ctx)

	healthSrv := startHealthServer(*healthPort, logger)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownTimeout := cfg.Worker.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := consumer.Close(); err != nil {
		logger.Error("consumer shutdown failed", logging.Err(err))
	}
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("health server shutdown failed", logging.Err(err))
	}
	logger.Info("worker stopped")
}

// startHealthServer exposes /healthz and /metrics for probes and scrapes.
func startHealthServer(port int, logger logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", logging.Err(err))
		}
	}()
	return srv
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}
