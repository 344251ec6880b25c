package data

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// PriceTable is a JSON file of per-period prices.
type PriceTable struct {
	Unit   string             `json:"unit,omitempty"`
	Series []PriceSeries      `json:"series"`
	CO2    map[string]float64 `json:"co2,omitempty"`
}

// PriceSeries holds one price per model period for a good. An empty region
// applies to every region.
type PriceSeries struct {
	Good   string    `json:"good"`
	Region string    `json:"region,omitempty"`
	Prices []float64 `json:"prices"`
}

func LoadPriceTable(path string) (*PriceTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodePriceTable(f, path)
}

// DecodePriceTable reads a price table; name only labels errors.
func DecodePriceTable(r io.Reader, name string) (*PriceTable, error) {
	var t PriceTable
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	for i, s := range t.Series {
		if s.Good == "" {
			return nil, fmt.Errorf("%s: series %d has no good", name, i)
		}
	}
	return &t, nil
}

// GroupByGood splits a table into good-keyed slices.
func (t *PriceTable) GroupByGood() map[string][]PriceSeries {
	out := map[string][]PriceSeries{}
	if t == nil {
		return out
	}
	for _, s := range t.Series {
		out[s.Good] = append(out[s.Good], s)
	}
	return out
}
