package config

import "time"

// Default values for unset configuration fields.
const (
	DefaultServerPort = 8080
	DefaultServerMode = "debug"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "proethica"
	DefaultDBMaxConns = 25

	DefaultNeo4jURI = "bolt://localhost:7687"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "proethica:"

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "proethica-workers"
	DefaultAssessTopic  = "proethica.assess.document"

	DefaultLLMModel = "gemini-1.5-flash"

	DefaultEmbeddingDimension = 384

	DefaultEscalationThreshold = 0.3
	DefaultMaxConcurrent       = 4

	DefaultCitationBatchSize = 10
	DefaultCitationThreshold = 0.5
	DefaultWorkerConcurrency = 4

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills every zero-value field in cfg with the production
// default. Fields already set by the caller are left unchanged so explicit
// configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	if cfg.Neo4j.URI == "" {
		cfg.Neo4j.URI = DefaultNeo4jURI
	}
	if cfg.Neo4j.Database == "" {
		cfg.Neo4j.Database = "neo4j"
	}
	if cfg.Neo4j.ConnectionTimeout == 0 {
		cfg.Neo4j.ConnectionTimeout = 10 * time.Second
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = time.Hour
	}

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.AssessTopic == "" {
		cfg.Kafka.AssessTopic = DefaultAssessTopic
	}

	if cfg.LLM.Model == "" {
		cfg.LLM.Model = DefaultLLMModel
	}
	if cfg.LLM.MaxAttempts == 0 {
		cfg.LLM.MaxAttempts = 3
	}
	if cfg.LLM.InitialBackoff == 0 {
		cfg.LLM.InitialBackoff = time.Second
	}
	if cfg.LLM.MaxBackoff == 0 {
		cfg.LLM.MaxBackoff = 15 * time.Second
	}
	if cfg.LLM.CallTimeout == 0 {
		cfg.LLM.CallTimeout = 30 * time.Second
	}

	if cfg.Embedding.Dimension == 0 {
		cfg.Embedding.Dimension = DefaultEmbeddingDimension
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = 10 * time.Second
	}

	if cfg.Relevance.VectorWeight == 0 && cfg.Relevance.TermWeight == 0 && cfg.Relevance.StructuralWeight == 0 {
		cfg.Relevance.VectorWeight = 0.60
		cfg.Relevance.TermWeight = 0.25
		cfg.Relevance.StructuralWeight = 0.15
	}
	if cfg.Relevance.FinalVectorWeight == 0 && cfg.Relevance.FinalTermWeight == 0 &&
		cfg.Relevance.FinalStructural == 0 && cfg.Relevance.FinalJudgeWeight == 0 {
		cfg.Relevance.FinalVectorWeight = 0.35
		cfg.Relevance.FinalTermWeight = 0.20
		cfg.Relevance.FinalStructural = 0.10
		cfg.Relevance.FinalJudgeWeight = 0.35
	}
	if cfg.Relevance.EscalationThreshold == 0 {
		cfg.Relevance.EscalationThreshold = DefaultEscalationThreshold
	}
	if cfg.Relevance.MaxConcurrent == 0 {
		cfg.Relevance.MaxConcurrent = DefaultMaxConcurrent
	}
	if cfg.Relevance.CacheTTL == 0 {
		cfg.Relevance.CacheTTL = time.Hour
	}

	if cfg.Citation.BatchSize == 0 {
		cfg.Citation.BatchSize = DefaultCitationBatchSize
	}
	if cfg.Citation.ConfidenceThreshold == 0 {
		cfg.Citation.ConfidenceThreshold = DefaultCitationThreshold
	}

	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.ShutdownTimeout == 0 {
		cfg.Worker.ShutdownTimeout = 30 * time.Second
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
