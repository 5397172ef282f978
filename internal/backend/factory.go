package backend

import (
	"context"
	"errors"
	"fmt"

	"foyer/internal/core"
	"foyer/internal/household"
	"foyer/internal/log"
	"foyer/internal/sheets/memory"
	"foyer/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	if config.HouseholdFile != "" {
		if err := f.seedIfEmpty(ctx, repo, config.HouseholdFile); err != nil {
			repo.Close()
			return nil, err
		}
	}

	f.logger.Info("Initialized SQLite backend", log.FieldBackend, SQLiteBackend, "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Backend: repo,
		Cleanup: repo.Close,
	}, nil
}

// seedIfEmpty imports the household file into a database that has no
// household yet. An existing household is never overwritten.
func (f *DefaultFactory) seedIfEmpty(ctx context.Context, repo *storage.SQLiteRepository, path string) error {
	_, err := repo.ReadHousehold(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, core.ErrNoHousehold) {
		return fmt.Errorf("check household: %w", err)
	}

	setup, err := household.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load household file: %w", err)
	}
	if err := repo.Seed(ctx, setup); err != nil {
		return fmt.Errorf("seed from %s: %w", path, err)
	}
	f.logger.Info("Seeded empty database from household file", "file", path)
	return nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store := memory.New(core.Setup{})
	if config.HouseholdFile != "" {
		var err error
		if store, err = memory.NewFromFile(config.HouseholdFile); err != nil {
			return nil, fmt.Errorf("failed to load household file: %w", err)
		}
	}

	f.logger.Info("Initialized memory backend", log.FieldBackend, MemoryBackend, "household_file", config.HouseholdFile)

	return &BackendResult{Backend: store}, nil
}
