// Package domain models the regional health and prosperity index.
//
// # Data Source
//
// Indicator records originate from a DataUSA-style measures API. The source
// returns one JSON object per region under a top-level "data" key, carrying a
// region key ("state") and six socioeconomic indicators:
//
//	life_expectancy, median_household_income, unemployment_rate,
//	obesity_rate, poverty_rate, access_to_healthcare
//
// # Index Computation
//
// Each refresh cycle runs the full batch through three pure stages:
//
//  1. Validation — all six indicators must be present and numeric on every
//     record, or the whole batch is rejected. Partial batches are never
//     produced.
//  2. Normalization — per-indicator min-max rescaling to [0,1], computed over
//     the current batch only. No historical range is kept.
//  3. Aggregation — a weighted sum of the six normalized values. The weights
//     sum to exactly 1.0, so the index itself lands in [0,1].
//
// # Degenerate Columns
//
// When every region reports the same value for an indicator, min-max scaling
// has no spread to work with. Such a column carries no ranking information,
// so every region is assigned the neutral midpoint 0.5 for it. See
// [Normalize].
package domain
