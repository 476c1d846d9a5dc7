package domain

import (
	"fmt"
	"math"
)

// ValidateBatch checks that every record in the batch carries all six
// indicators with finite numeric values, and converts the batch to concrete
// records. An empty batch returns ErrEmptyBatch. Any missing or non-finite
// field rejects the entire batch with ErrInvalidSchema; no partial dataset
// is ever produced.
func ValidateBatch(raw []RawIndicatorRecord) ([]IndicatorRecord, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyBatch
	}

	records := make([]IndicatorRecord, 0, len(raw))
	for i, r := range raw {
		if r.State == "" {
			return nil, fmt.Errorf("%w: record %d has no region key", ErrInvalidSchema, i)
		}
		rec := IndicatorRecord{RegionID: r.State}
		fields := []struct {
			name string
			src  *float64
			dst  *float64
		}{
			{LifeExpectancy, r.LifeExpectancy, &rec.LifeExpectancy},
			{MedianHouseholdIncome, r.MedianHouseholdIncome, &rec.MedianHouseholdIncome},
			{UnemploymentRate, r.UnemploymentRate, &rec.UnemploymentRate},
			{ObesityRate, r.ObesityRate, &rec.ObesityRate},
			{PovertyRate, r.PovertyRate, &rec.PovertyRate},
			{AccessToHealthcare, r.AccessToHealthcare, &rec.AccessToHealthcare},
		}
		for _, f := range fields {
			if f.src == nil {
				return nil, fmt.Errorf("%w: record %d (%s) missing %s", ErrInvalidSchema, i, r.State, f.name)
			}
			if math.IsNaN(*f.src) || math.IsInf(*f.src, 0) {
				return nil, fmt.Errorf("%w: record %d (%s) has non-finite %s", ErrInvalidSchema, i, r.State, f.name)
			}
			*f.dst = *f.src
		}
		records = append(records, rec)
	}
	return records, nil
}
