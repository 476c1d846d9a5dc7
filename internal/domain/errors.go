package domain

import "errors"

// Sentinel errors for the pipeline's failure taxonomy. Callers classify with
// errors.Is and apply per-class policy: recoverable conditions simply wait
// for the next scheduled cycle, defects warrant an alert.
var (
	// ErrFetch marks a transport or decode failure reaching the indicator
	// source. The cycle halts; the next scheduled run retries naturally.
	ErrFetch = errors.New("indicator source fetch failed")

	// ErrEmptyBatch marks a successful fetch that produced zero rows.
	// Logged as a warning, not an error.
	ErrEmptyBatch = errors.New("empty indicator batch")

	// ErrInvalidSchema marks a batch with at least one record missing a
	// required indicator. The whole batch is rejected, never filtered.
	ErrInvalidSchema = errors.New("invalid indicator schema")

	// ErrMissingNormalizedField marks an internal consistency failure
	// between normalization and aggregation. This is a defect, not an
	// expected runtime condition.
	ErrMissingNormalizedField = errors.New("missing normalized field")
)

// Recoverable reports whether err is an expected per-cycle condition that
// the next scheduled refresh retries naturally, as opposed to a defect.
func Recoverable(err error) bool {
	return errors.Is(err, ErrFetch) ||
		errors.Is(err, ErrEmptyBatch) ||
		errors.Is(err, ErrInvalidSchema)
}
