// Command showindex is the presentation reader: it loads the persisted
// dataset through the same gateway the service writes through and renders
// the index per region as a terminal bar chart.
//
// Usage:
//
//	STORE_BACKEND=csv DATA_FILE_PATH=index_data.csv go run ./cmd/showindex
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/regionpulse/prosperity-index/internal/config"
	"github.com/regionpulse/prosperity-index/internal/domain"
	"github.com/regionpulse/prosperity-index/internal/observability"
	"github.com/regionpulse/prosperity-index/internal/store"
)

const barWidth = 40

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg)

	backing, err := store.Open(cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer backing.Close()

	reading := store.NewRetryingStore(backing, cfg.LoadRetryAttempts, cfg.LoadRetryDelay,
		clockwork.NewRealClock(), logger, nil)

	ds, err := reading.Load(context.Background())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errors.New("no dataset found; start indexd or trigger a refresh first")
		}
		return fmt.Errorf("load dataset: %w", err)
	}

	render(os.Stdout, ds)
	return nil
}

func render(w *os.File, ds domain.Dataset) {
	fmt.Fprintln(w, "Health and Prosperity Index")
	fmt.Fprintln(w)

	width := 0
	for _, rec := range ds {
		if len(rec.RegionID) > width {
			width = len(rec.RegionID)
		}
	}

	for _, rec := range ds {
		bar := strings.Repeat("█", int(rec.Index*barWidth))
		fmt.Fprintf(w, "%-*s  %s %.3f\n", width, rec.RegionID, bar, rec.Index)
	}
}
