//go:build integration

package integration_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/regionpulse/prosperity-index/internal/adapter/datausa"
	"github.com/regionpulse/prosperity-index/internal/domain"
	"github.com/regionpulse/prosperity-index/internal/observability"
	"github.com/regionpulse/prosperity-index/internal/pipeline"
	"github.com/regionpulse/prosperity-index/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// startPostgres launches a disposable Postgres and returns a connected store.
func startPostgres(ctx context.Context, t *testing.T) *store.PostgresStore {
	t.Helper()

	ctr, err := pgmodule.Run(ctx, "postgres:16-alpine",
		pgmodule.WithDatabase("index"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		pgmodule.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := store.NewPostgresStore(dsn, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func makeDataset(t *testing.T, regions ...string) domain.Dataset {
	t.Helper()
	raw := make([]domain.RawIndicatorRecord, 0, len(regions))
	for i, region := range regions {
		v := float64(10 * (i + 1))
		raw = append(raw, domain.RawIndicatorRecord{
			State:                 region,
			LifeExpectancy:        &v,
			MedianHouseholdIncome: &v,
			UnemploymentRate:      &v,
			ObesityRate:           &v,
			PovertyRate:           &v,
			AccessToHealthcare:    &v,
		})
	}
	records, err := domain.ValidateBatch(raw)
	require.NoError(t, err)
	ds, err := domain.Aggregate(domain.Normalize(records))
	require.NoError(t, err)
	return ds
}

func TestPostgresStore_ReplaceLoadRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	s := startPostgres(ctx, t)

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound, "load before any replace")

	want := makeDataset(t, "Alabama", "Alaska", "Arizona")
	require.NoError(t, s.Replace(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].RegionID, got[i].RegionID)
		assert.InDelta(t, want[i].Index, got[i].Index, 1e-9)
		for _, ind := range domain.Indicators {
			assert.InDelta(t, want[i].Norms[ind.Name], got[i].Norms[ind.Name], 1e-9)
		}
	}
}

func TestPostgresStore_ReplaceSupersedes(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	s := startPostgres(ctx, t)

	require.NoError(t, s.Replace(ctx, makeDataset(t, "Alabama", "Alaska")))
	second := makeDataset(t, "Texas")
	require.NoError(t, s.Replace(ctx, second))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Texas", got[0].RegionID)
}

// TestPipelineIntoPostgres runs a full refresh cycle from a mock HTTP source
// into the relational backend and reads it back through the retrying
// gateway, the same wiring indexd uses.
func TestPipelineIntoPostgres(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data": [
			{"state": "A", "life_expectancy": 70, "median_household_income": 50000,
			 "unemployment_rate": 3, "obesity_rate": 30, "poverty_rate": 10,
			 "access_to_healthcare": 80},
			{"state": "B", "life_expectancy": 80, "median_household_income": 60000,
			 "unemployment_rate": 4, "obesity_rate": 35, "poverty_rate": 15,
			 "access_to_healthcare": 90}
		]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	s := startPostgres(ctx, t)

	source := datausa.NewClient(srv.URL, 5*time.Second, discardLogger())
	refresher := pipeline.New(source, s, nil, discardLogger(), observability.NewMetricsForTesting())

	res := refresher.RunCycle(ctx)
	require.Equal(t, pipeline.OutcomeSuccess, res.Outcome)
	require.Equal(t, 2, res.Records)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0.0, got[0].Norms[domain.LifeExpectancy])
	assert.Equal(t, 1.0, got[1].Norms[domain.LifeExpectancy])
	assert.Greater(t, got[1].Index, got[0].Index)
}
