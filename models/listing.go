// Package models defines data structures for the watcher.
package models

import "time"

// Listing represents one vehicle extracted from a search-results page.
// Records are immutable once built; optional fields are nil when the card
// did not yield a parsable value.
type Listing struct {
	ID       string    `json:"listing_id"`
	Title    string    `json:"title"`
	PriceGBP *int      `json:"price_gbp"`
	Mileage  *int      `json:"mileage"`
	Year     *int      `json:"year"`
	URL      string    `json:"url,omitempty"`
	SeenAt   time.Time `json:"seen_at_utc"`
}

// MatchConfig holds the operator's match rules for a run. Nil bounds and
// empty keyword lists disable the corresponding rule.
type MatchConfig struct {
	MaxPriceGBP     *int     `yaml:"max_price_gbp" json:"max_price_gbp"`
	MaxMileage      *int     `yaml:"max_mileage" json:"max_mileage"`
	MinYear         *int     `yaml:"min_year" json:"min_year"`
	IncludeKeywords []string `yaml:"include_keywords" json:"include_keywords"`
	ExcludeKeywords []string `yaml:"exclude_keywords" json:"exclude_keywords"`
}

// RunSummary holds the overall counts of a single watcher run.
type RunSummary struct {
	Found         int
	New           int
	NewMatches    int
	ParseFailures int
	Skipped       bool
}
