// Command mocksource serves a fixed indicator payload in the source API
// shape, for local development and end-to-end smoke runs:
//
//	go run ./cmd/mocksource -addr :9000
//	SOURCE_URL=http://localhost:9000/data go run ./cmd/indexd
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"

	"github.com/regionpulse/prosperity-index/internal/domain"
)

type row struct {
	State                 string  `json:"state"`
	LifeExpectancy        float64 `json:"life_expectancy"`
	MedianHouseholdIncome float64 `json:"median_household_income"`
	UnemploymentRate      float64 `json:"unemployment_rate"`
	ObesityRate           float64 `json:"obesity_rate"`
	PovertyRate           float64 `json:"poverty_rate"`
	AccessToHealthcare    float64 `json:"access_to_healthcare"`
}

// Plausible values for a handful of states, enough spread per indicator to
// exercise normalization.
var rows = []row{
	{"Alabama", 75.1, 52035, 3.5, 39.9, 16.1, 82.4},
	{"Alaska", 78.0, 77640, 4.6, 34.3, 10.5, 85.0},
	{"Arizona", 78.8, 65913, 4.1, 31.3, 12.8, 86.2},
	{"California", 80.9, 84097, 4.9, 27.6, 12.3, 92.7},
	{"Colorado", 80.5, 80184, 3.3, 24.9, 9.6, 91.8},
	{"Mississippi", 74.4, 48716, 3.9, 39.5, 19.4, 80.1},
	{"New York", 80.7, 74314, 4.3, 29.1, 13.9, 94.6},
	{"Texas", 78.5, 66963, 4.0, 35.5, 14.2, 79.8},
	{"Utah", 79.9, 86833, 2.8, 29.2, 8.2, 89.5},
	{"West Virginia", 74.5, 51248, 3.7, 41.0, 16.8, 84.9},
}

func main() {
	addr := flag.String("addr", ":9000", "listen address")
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /data", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{"data": rows}); err != nil {
			log.Printf("encode payload: %v", err)
		}
	})

	log.Printf("mock indicator source listening on %s (%d regions, %d indicators)",
		*addr, len(rows), len(domain.Indicators))
	log.Fatal(http.ListenAndServe(*addr, mux))
}
