package persistence

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/riserite/internal/awsclient"
	"example.com/riserite/internal/config"
	"example.com/riserite/internal/persistence/dynamo"
	"example.com/riserite/internal/persistence/memory"
	"example.com/riserite/internal/persistence/postgres"
)

// Store bundles the instrumented repository with its release function.
type Store struct {
	*InstrumentedRepository
	// Dynamo is set when the dynamodb backend is active.
	Dynamo *dynamo.Repository
	// Postgres is set when the postgres backend is active.
	Postgres *postgres.Repository
	closeFn  func()
}

// Close releases connections held by the backend.
func (s *Store) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

// Open builds the store selected by cfg.StoreBackend.
func Open(ctx context.Context, cfg config.Config, logger *log.Logger) (*Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return &Store{InstrumentedRepository: Instrument(cfg.StoreBackend, memory.NewRepository())}, nil

	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		repo := postgres.NewRepository(pool)
		return &Store{
			InstrumentedRepository: Instrument(cfg.StoreBackend, repo),
			Postgres:               repo,
			closeFn:                pool.Close,
		}, nil

	case config.BackendDynamoDB:
		settings := awsclient.Settings{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			DynamoEndpoint:  cfg.DynamoEndpoint,
		}
		awsCfg, err := awsclient.Load(ctx, settings)
		if err != nil {
			return nil, err
		}
		repo := dynamo.NewRepository(awsclient.NewDynamoClient(awsCfg, settings), cfg.DynamoTable, dynamo.WithLogger(logger))
		return &Store{
			InstrumentedRepository: Instrument(cfg.StoreBackend, repo),
			Dynamo:                 repo,
		}, nil
	}
	return nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
}
