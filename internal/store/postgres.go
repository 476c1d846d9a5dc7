package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/lib/pq"

	"github.com/regionpulse/prosperity-index/internal/domain"
)

// datasetTable is the fixed relational table: one row per region, region key
// in the "state" column so chart readers can use it as the category axis.
const datasetTable = "index_dataset"

// PostgresStore persists the dataset in a relational table. Replace runs
// DELETE plus bulk INSERT inside one transaction, so concurrent readers see
// the old rows or the new rows, never a mix.
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStore connects to Postgres and ensures the dataset table
// exists. The DSN uses lib/pq form:
// "host=... port=... user=... password=... dbname=... sslmode=...".
func NewPostgresStore(dsn string, logger *slog.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{db: db, logger: logger}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema() error {
	var cols strings.Builder
	for _, ind := range domain.Indicators {
		fmt.Fprintf(&cols, "%s double precision not null, %s_norm double precision not null, ", ind.Name, ind.Name)
	}
	query := fmt.Sprintf(`create table if not exists %s (
		position integer not null,
		state text primary key,
		%sindex double precision not null
	)`, datasetTable, cols.String())

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("ensure dataset table: %w", err)
	}
	return nil
}

// Replace swaps the stored dataset inside a single transaction.
func (s *PostgresStore) Replace(ctx context.Context, ds domain.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("delete from %s", datasetTable)); err != nil {
		return fmt.Errorf("clear dataset table: %w", err)
	}

	insert := insertStatement()
	for i, rec := range ds {
		args := make([]any, 0, 2+2*len(domain.Indicators)+1)
		args = append(args, i, rec.RegionID)
		for _, ind := range domain.Indicators {
			args = append(args, ind.Value(rec.IndicatorRecord), rec.Norms[ind.Name])
		}
		args = append(args, rec.Index)
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return fmt.Errorf("insert row %s: %w", rec.RegionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit dataset replace: %w", err)
	}

	s.logger.Debug("dataset table replaced", "table", datasetTable, "records", len(ds))
	return nil
}

// Load reads the stored dataset back in its original order. Zero rows means
// no dataset has ever been persisted.
func (s *PostgresStore) Load(ctx context.Context) (domain.Dataset, error) {
	cols := []string{"state"}
	for _, ind := range domain.Indicators {
		cols = append(cols, ind.Name, ind.Name+"_norm")
	}
	cols = append(cols, "index")

	query := fmt.Sprintf("select %s from %s order by position",
		strings.Join(cols, ", "), datasetTable)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query dataset: %w", err)
	}
	defer rows.Close()

	var ds domain.Dataset
	for rows.Next() {
		rec := domain.IndexedRecord{
			NormalizedRecord: domain.NormalizedRecord{
				Norms: make(map[string]float64, len(domain.Indicators)),
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

		dest := []any{&rec.RegionID}
		norms := make([]float64, len(domain.Indicators))
		for i, ind := range domain.Indicators {
			dest = append(dest, raw[ind.Name], &norms[i])
		}
		dest = append(dest, &rec.Index)

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan dataset row: %w", err)
		}
		for i, ind := range domain.Indicators {
			rec.Norms[ind.Name] = norms[i]
		}
		ds = append(ds, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dataset rows: %w", err)
	}

	if len(ds) == 0 {
		return nil, ErrNotFound
	}
	return ds, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func insertStatement() string {
	cols := []string{"position", "state"}
	for _, ind := range domain.Indicators {
		cols = append(cols, ind.Name, ind.Name+"_norm")
	}
	cols = append(cols, "index")

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	return fmt.Sprintf("insert into %s (%s) values (%s)",
		datasetTable, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
}
