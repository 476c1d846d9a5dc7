// Package store is the persistence gateway for index datasets. It exposes
// two operations, Replace and Load, over interchangeable backends: a flat
// CSV file or a Postgres table. Caller code never changes with the backend.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/regionpulse/prosperity-index/internal/config"
	"github.com/regionpulse/prosperity-index/internal/domain"
)

// ErrNotFound is returned by Load when no dataset has ever been persisted.
// It is terminal, not transient: retrying will not make a dataset appear.
var ErrNotFound = errors.New("no dataset has been persisted yet")

// Store is the backend-neutral persistence gateway.
type Store interface {
	// Replace atomically supersedes the previously stored dataset. Readers
	// never observe a mix of old and new rows.
	Replace(ctx context.Context, ds domain.Dataset) error

	// Load returns the current dataset, or ErrNotFound if none exists.
	Load(ctx context.Context) (domain.Dataset, error)

	// Close releases backend resources.
	Close() error
}

// Open constructs the backend selected by cfg.StoreBackend.
func Open(cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.StoreBackend {
	case config.BackendCSV:
		return NewCSVStore(cfg.DataFilePath, logger), nil
	case config.BackendPostgres:
		return NewPostgresStore(cfg.PostgresDSN, logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
