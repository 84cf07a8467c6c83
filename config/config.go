package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/aluiziolira/go-watch-listings/models"
)

// Config holds watcher configuration for one run.
type Config struct {
	SearchURL      string
	StatePath      string
	UserAgent      string
	RobotsAgent    string
	Timeout        time.Duration
	DelayMin       time.Duration
	DelayMax       time.Duration
	Rendered       bool
	TelegramToken  string
	TelegramChatID string
	MetricsAddr    string
	Verbose        bool

	Match models.MatchConfig
}

// DefaultConfig returns the saved-search defaults the watcher was built for.
func DefaultConfig() *Config {
	maxPrice := 14000
	return &Config{
		SearchURL: "https://www.fow.co.uk/vehicle-search?finance_deposit=&finance_deposit_type=&finance_mileage=" +
			"&finance_search_only=&finance_term=&make=honda&max_price=14000&monthly_to=&resultsPerPage=10" +
			"&reserved=&search=&sort=price%7Casc&transmission=AUTOMATIC&vrm_partial=&page=1",
		StatePath:   "state.json",
		UserAgent:   "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		RobotsAgent: "*",
		Timeout:     45 * time.Second,
		DelayMin:    2 * time.Second,
		DelayMax:    7 * time.Second,
		Rendered:    true,
		Match: models.MatchConfig{
			MaxPriceGBP: &maxPrice,
		},
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.SearchURL == "" {
		return fmt.Errorf("search URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.SearchURL)
	if err != nil {
		return fmt.Errorf("invalid search URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("search URL must include a host")
	}

	if c.StatePath == "" {
		return fmt.Errorf("state path cannot be empty")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.RobotsAgent == "" {
		return fmt.Errorf("robots agent cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.DelayMin < 0 {
		return fmt.Errorf("minimum delay cannot be negative")
	}
	if c.DelayMax < c.DelayMin {
		return fmt.Errorf("maximum delay (%s) cannot be below minimum delay (%s)", c.DelayMax, c.DelayMin)
	}

	if c.Match.MaxPriceGBP != nil && *c.Match.MaxPriceGBP < 0 {
		return fmt.Errorf("max price cannot be negative")
	}
	if c.Match.MaxMileage != nil && *c.Match.MaxMileage < 0 {
		return fmt.Errorf("max mileage cannot be negative")
	}
	if c.Match.MinYear != nil && *c.Match.MinYear < 0 {
		return fmt.Errorf("min year cannot be negative")
	}

	return nil
}
