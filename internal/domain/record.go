package domain

// Indicator field names as they appear in the source payload and the
// persisted dataset.
const (
	LifeExpectancy        = "life_expectancy"
	MedianHouseholdIncome = "median_household_income"
	UnemploymentRate      = "unemployment_rate"
	ObesityRate           = "obesity_rate"
	PovertyRate           = "poverty_rate"
	AccessToHealthcare    = "access_to_healthcare"
)

// Indicator describes one socioeconomic measurement: its wire name, its
// weight in the composite index, and how to read it off a record.
type Indicator struct {
	Name   string
	Weight float64
	Value  func(IndicatorRecord) float64
}

// Indicators lists the six required indicators in aggregation order.
// The weights must sum to exactly 1.0; [WeightSum] guards the invariant.
var Indicators = []Indicator{
	{Name: LifeExpectancy, Weight: 0.20, Value: func(r IndicatorRecord) float64 { return r.LifeExpectancy }},
	{Name: MedianHouseholdIncome, Weight: 0.20, Value: func(r IndicatorRecord) float64 { return r.MedianHouseholdIncome }},
	{Name: UnemploymentRate, Weight: 0.20, Value: func(r IndicatorRecord) float64 { return r.UnemploymentRate }},
	{Name: ObesityRate, Weight: 0.15, Value: func(r IndicatorRecord) float64 { return r.ObesityRate }},
	{Name: PovertyRate, Weight: 0.05, Value: func(r IndicatorRecord) float64 { return r.PovertyRate }},
	{Name: AccessToHealthcare, Weight: 0.20, Value: func(r IndicatorRecord) float64 { return r.AccessToHealthcare }},
}

// WeightSum returns the sum of all indicator weights.
func WeightSum() float64 {
	var sum float64
	for _, ind := range Indicators {
		sum += ind.Weight
	}
	return sum
}

// RawIndicatorRecord is the wire shape of one region's row in the source
// payload. Pointer fields distinguish "absent" from a literal zero, which is
// what schema validation is about.
type RawIndicatorRecord struct {
	State                 string   `json:"state"`
	LifeExpectancy        *float64 `json:"life_expectancy"`
	MedianHouseholdIncome *float64 `json:"median_household_income"`
	UnemploymentRate      *float64 `json:"unemployment_rate"`
	ObesityRate           *float64 `json:"obesity_rate"`
	PovertyRate           *float64 `json:"poverty_rate"`
	AccessToHealthcare    *float64 `json:"access_to_healthcare"`
}

// IndicatorRecord is one validated region row. All six indicators are known
// to be present and finite.
type IndicatorRecord struct {
	RegionID              string  `json:"state"`
	LifeExpectancy        float64 `json:"life_expectancy"`
	MedianHouseholdIncome float64 `json:"median_household_income"`
	UnemploymentRate      float64 `json:"unemployment_rate"`
	ObesityRate           float64 `json:"obesity_rate"`
	PovertyRate           float64 `json:"poverty_rate"`
	AccessToHealthcare    float64 `json:"access_to_healthcare"`
}

// NormalizedRecord is an IndicatorRecord plus its per-indicator min-max
// normalized values, keyed by indicator name. The map form keeps the
// aggregator's presence check meaningful: a malformed normalization pass
// leaves holes that [Aggregate] refuses to paper over.
type NormalizedRecord struct {
	IndicatorRecord
	Norms map[string]float64 `json:"norms"`
}

// IndexedRecord is a NormalizedRecord plus the composite index.
type IndexedRecord struct {
	NormalizedRecord
	Index float64 `json:"index"`
}

// Dataset is the ordered set of indexed records produced by one refresh
// cycle. It wholly replaces whatever was persisted before it.
type Dataset []IndexedRecord
