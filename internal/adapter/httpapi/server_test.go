package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regionpulse/prosperity-index/internal/domain"
	"github.com/regionpulse/prosperity-index/internal/store"
)

type stubReady struct{ err error }

func (s stubReady) CheckReadiness(context.Context) error { return s.err }

type stubLoader struct {
	ds  domain.Dataset
	err error
}

func (s stubLoader) Load(context.Context) (domain.Dataset, error) { return s.ds, s.err }

type stubTrigger struct{ triggered chan struct{} }

func (s stubTrigger) TriggerNow(context.Context) { s.triggered <- struct{}{} }

func testDataset() domain.Dataset {
	mk := func(state string, index float64) domain.IndexedRecord {
		return domain.IndexedRecord{
			NormalizedRecord: domain.NormalizedRecord{
				IndicatorRecord: domain.IndicatorRecord{RegionID: state, LifeExpectancy: 75},
				Norms:           map[string]float64{domain.LifeExpectancy: index},
			},
			Index: index,
		}
	}
	return domain.Dataset{mk("Alabama", 0.25), mk("Alaska", 0.75)}
}

func newTestServer(ready ReadinessChecker, loader Loader, trigger RefreshTrigger) *Server {
	return NewServer(":0", ready, loader, trigger, slog.New(slog.DiscardHandler))
}

func doRequest(s *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(stubReady{}, stubLoader{}, nil)
	rec := doRequest(s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz(t *testing.T) {
	t.Run("not ready before first cycle", func(t *testing.T) {
		s := newTestServer(stubReady{err: errors.New("no refresh cycle has completed yet")}, stubLoader{}, nil)
		rec := doRequest(s, http.MethodGet, "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("ready", func(t *testing.T) {
		s := newTestServer(stubReady{}, stubLoader{}, nil)
		rec := doRequest(s, http.MethodGet, "/readyz")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestDataset(t *testing.T) {
	t.Run("returns rows", func(t *testing.T) {
		s := newTestServer(stubReady{}, stubLoader{ds: testDataset()}, nil)
		rec := doRequest(s, http.MethodGet, "/dataset")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data []struct {
				State string  `json:"state"`
				Index float64 `json:"index"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Data, 2)
		assert.Equal(t, "Alabama", body.Data[0].State)
		assert.Equal(t, 0.25, body.Data[0].Index)
		assert.Equal(t, "Alaska", body.Data[1].State)
	})

	t.Run("not found includes operator hint", func(t *testing.T) {
		s := newTestServer(stubReady{}, stubLoader{err: store.ErrNotFound}, nil)
		rec := doRequest(s, http.MethodGet, "/dataset")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "trigger a refresh")
	})

	t.Run("terminal read failure is surfaced, not a crash", func(t *testing.T) {
		s := newTestServer(stubReady{}, stubLoader{err: errors.New("load failed after 3 attempts: file is locked")}, nil)
		rec := doRequest(s, http.MethodGet, "/dataset")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "temporarily unavailable")
	})
}

func TestChart(t *testing.T) {
	s := newTestServer(stubReady{}, stubLoader{ds: testDataset()}, nil)
	rec := doRequest(s, http.MethodGet, "/chart")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "Alabama")
	assert.Contains(t, body, "Alaska")
	assert.True(t, strings.Contains(body, "width:75%") || strings.Contains(body, "width:75.0%"),
		"bar width should scale with the index")
}

func TestRefresh(t *testing.T) {
	trigger := stubTrigger{triggered: make(chan struct{}, 1)}
	s := newTestServer(stubReady{}, stubLoader{}, trigger)

	rec := doRequest(s, http.MethodPost, "/refresh")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	select {
	case <-trigger.triggered:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh was not triggered")
	}
}
