// Package neo4j connects the engine to the ontology store. Guideline
// statements live as RDF-ish triples in a Neo4j graph maintained by the
// ontology pipeline; this package only reads them.
package neo4j

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	neo4jcfg "github.com/neo4j/neo4j-go-driver/v5/neo4j/config"

	"github.com/cr625/proethica-sub007/internal/config"
	"github.com/cr625/proethica-sub007/internal/infrastructure/monitoring/logging"
	apperrors "github.com/cr625/proethica-sub007/pkg/errors"
)

// Driver wraps the neo4j driver with the engine's session defaults.
type Driver struct {
	driver   neo4j.DriverWithContext
	database string
	logger   logging.Logger
}

// NewDriver connects to Neo4j and verifies connectivity.
func NewDriver(ctx context.Context, cfg config.Neo4jConfig, log logging.Logger) (*Driver, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""),
		func(c *neo4jcfg.Config) {
			if cfg.MaxConnectionPoolSize > 0 {
				c.MaxConnectionPoolSize = cfg.MaxConnectionPoolSize
			}
			if cfg.ConnectionTimeout > 0 {
				c.SocketConnectTimeout = cfg.ConnectionTimeout
			}
		})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeOntologyQuery, "failed to create neo4j driver")
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, apperrors.Wrap(err, apperrors.CodeOntologyQuery, "neo4j connection failed")
	}

	log.Info("connected to neo4j", logging.String("uri", cfg.URI), logging.String("database", cfg.Database))

	return &Driver{driver: driver, database: cfg.Database, logger: log.Named("neo4j")}, nil
}

// ReadSession opens a read-mode session against the configured database.
func (d *Driver) ReadSession(ctx context.Context) neo4j.SessionWithContext {
	return d.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: d.database,
		AccessMode:   neo4j.AccessModeRead,
	})
}

// Ping verifies connectivity.
func (d *Driver) Ping(ctx context.Context) error {
	return d.driver.VerifyConnectivity(ctx)
}

// Close releases the driver's connections.
func (d *Driver) Close(ctx context.Context) error {
	return d.driver.Close(ctx)
}
