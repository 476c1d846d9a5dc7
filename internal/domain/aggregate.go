package domain

import "fmt"

// Aggregate combines normalized records into the composite index. It is a
// pure, deterministic function of its input: the same batch always yields
// the same index values. Every record must carry a normalized value for all
// six indicators; a hole fails the whole cycle with ErrMissingNormalizedField
// rather than producing a partially weighted index.
func Aggregate(records []NormalizedRecord) (Dataset, error) {
	ds := make(Dataset, 0, len(records))
	for _, rec := range records {
		var index float64
		for _, ind := range Indicators {
			norm, ok := rec.Norms[ind.Name]
			if !ok {
				return nil, fmt.Errorf("%w: %s on region %s", ErrMissingNormalizedField, ind.Name, rec.RegionID)
			}
			index += ind.Weight * norm
		}
		ds = append(ds, IndexedRecord{NormalizedRecord: rec, Index: index})
	}
	return ds, nil
}
