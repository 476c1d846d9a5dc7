package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/regionpulse/prosperity-index/internal/domain"
)

// CSVStore persists the dataset as a flat tabular file. Replace writes a
// temp file in the target directory and renames it over the destination,
// which is atomic on POSIX filesystems: a reader opening the path sees
// either the old file or the new one, never a half-written mix.
type CSVStore struct {
	path   string
	logger *slog.Logger
}

// NewCSVStore creates a file-backed store writing to path.
func NewCSVStore(path string, logger *slog.Logger) *CSVStore {
	return &CSVStore{path: path, logger: logger}
}

// header returns the column layout: region key, six raw indicators, six
// normalized columns, then the index. The region column is named "state"
// for reader compatibility.
func header() []string {
	cols := []string{"state"}
	for _, ind := range domain.Indicators {
		cols = append(cols, ind.Name)
	}
	for _, ind := range domain.Indicators {
		cols = append(cols, ind.Name+"_norm")
	}
	return append(cols, "index")
}

// Replace writes the dataset to a temp file and atomically renames it into
// place.
func (s *CSVStore) Replace(_ context.Context, ds domain.Dataset) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".index_data-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	w := csv.NewWriter(tmp)
	if err := w.Write(header()); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range ds {
		row := []string{rec.RegionID}
		for _, ind := range domain.Indicators {
			row = append(row, formatFloat(ind.Value(rec.IndicatorRecord)))
		}
		for _, ind := range domain.Indicators {
			row = append(row, formatFloat(rec.Norms[ind.Name]))
		}
		row = append(row, formatFloat(rec.Index))
		if err := w.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("write row %s: %w", rec.RegionID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}

	s.logger.Debug("dataset file replaced", "path", s.path, "records", len(ds))
	return nil
}

// Load reads the dataset file back. A missing file is ErrNotFound; anything
// else surfaces as a read error for the retry layer to classify.
func (s *CSVStore) Load(_ context.Context) (domain.Dataset, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset file: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("dataset file %s has no header", s.path)
	}

	colIdx := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		colIdx[col] = i
	}

	ds := make(domain.Dataset, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec, err := parseRow(row, colIdx)
		if err != nil {
			return nil, fmt.Errorf("parse dataset row: %w", err)
		}
		ds = append(ds, rec)
	}
	return ds, nil
}

// Close is a no-op; the file is only held open during calls.
func (s *CSVStore) Close() error { return nil }

func parseRow(row []string, colIdx map[string]int) (domain.IndexedRecord, error) {
	get := func(col string) (float64, error) {
		i, ok := colIdx[col]
		if !ok || i >= len(row) {
			return 0, fmt.Errorf("missing column %s", col)
		}
		return strconv.ParseFloat(row[i], 64)
	}

	stateIdx, ok := colIdx["state"]
	if !ok || stateIdx >= len(row) {
		return domain.IndexedRecord{}, fmt.Errorf("missing column state")
	}

	rec := domain.IndexedRecord{
		NormalizedRecord: domain.NormalizedRecord{
			IndicatorRecord: domain.IndicatorRecord{RegionID: row[stateIdx]},
			Norms:           make(map[string]float64, len(domain.Indicators)),
		},
	}

	raw := map[string]*float64{
		domain.LifeExpectancy:        &rec.LifeExpectancy,
		domain.MedianHouseholdIncome: &rec.MedianHouseholdIncome,
		domain.UnemploymentRate:      &rec.UnemploymentRate,
		domain.ObesityRate:           &rec.ObesityRate,
		domain.PovertyRate:           &rec.PovertyRate,
		domain.AccessToHealthcare:    &rec.AccessToHealthcare,
	}
	for _, ind := range domain.Indicators {
		v, err := get(ind.Name)
		if err != nil {
			return domain.IndexedRecord{}, err
		}
		*raw[ind.Name] = v

		norm, err := get(ind.Name + "_norm")
		if err != nil {
			return domain.IndexedRecord{}, err
		}
		rec.Norms[ind.Name] = norm
	}

	index, err := get("index")
	if err != nil {
		return domain.IndexedRecord{}, err
	}
	rec.Index = index
	return rec, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
