package domain

// degenerateNorm is the value assigned to every record of an indicator whose
// batch min equals its batch max. An all-tied column ranks nobody, so each
// region gets the neutral midpoint instead of a divide-by-zero.
const degenerateNorm = 0.5

// Normalize min-max rescales every indicator to [0,1] over the current batch
// and returns the enriched records. Pure and batch-scoped: no state survives
// between calls, and the range is never taken from history. The record
// holding a column's max maps to 1, the min to 0.
func Normalize(records []IndicatorRecord) []NormalizedRecord {
	out := make([]NormalizedRecord, len(records))
	for i, rec := range records {
		out[i] = NormalizedRecord{
			IndicatorRecord: rec,
			Norms:           make(map[string]float64, len(Indicators)),
		}
	}

	for _, ind := range Indicators {
		normalizeColumn(records, out, ind)
	}
	return out
}

// normalizeColumn rescales a single indicator across the batch.
func normalizeColumn(records []IndicatorRecord, out []NormalizedRecord, ind Indicator) {
	if len(records) == 0 {
		return
	}

	minVal := ind.Value(records[0])
	maxVal := minVal
	for _, rec := range records[1:] {
		v := ind.Value(rec)
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	spread := maxVal - minVal
	for i, rec := range records {
		if spread == 0 {
			out[i].Norms[ind.Name] = degenerateNorm
			continue
		}
		out[i].Norms[ind.Name] = (ind.Value(rec) - minVal) / spread
	}
}
