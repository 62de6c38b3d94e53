// Package postgres manages the PostgreSQL connection pool and hosts the
// repositories backed by it. Section embeddings are stored as pgvector
// columns in the same database as the documents they belong to.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/cr625/proethica-sub007/internal/config"
	"github.com/cr625/proethica-sub007/internal/infrastructure/monitoring/logging"
	apperrors "github.com/cr625/proethica-sub007/pkg/errors"
)

// Pool wraps the pgx connection pool.
type Pool struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewPool connects to PostgreSQL, registers the pgvector type codecs on every
// connection, and verifies the pool with a ping.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, log logging.Logger) (*Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode)

	pc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabase, "invalid database configuration")
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		pc.MinConns = int32(cfg.MinConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		pc.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}
	pc.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabase, "failed to create connection pool")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, apperrors.Wrap(err, apperrors.CodeDatabase, "database connection failed")
	}

	log.Info("connected to postgres",
		logging.String("host", cfg.Host),
		logging.Int("port", cfg.Port),
		logging.String("database", cfg.DBName),
	)

	return &Pool{pool: pool, logger: log.Named("postgres")}, nil
}

// Pool exposes the underlying pgx pool for repositories.
func (p *Pool) Pool() *pgxpool.Pool { return p.pool }

// Ping verifies the pool is reachable.
func (p *Pool) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }

// Close releases every connection in the pool.
func (p *Pool) Close() {
	p.pool.Close()
	p.logger.Info("postgres pool closed")
}
