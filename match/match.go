// Package match evaluates listings against the operator's rules.
package match

import (
	"strings"

	"github.com/aluiziolira/go-watch-listings/models"
)

// Matches reports whether a listing satisfies every configured rule. A rule
// is skipped when either side is absent: missing data can never violate a
// bound, so incomplete extraction does not suppress a genuine match.
func Matches(listing models.Listing, cfg models.MatchConfig) bool {
	if cfg.MaxPriceGBP != nil && listing.PriceGBP != nil && *listing.PriceGBP > *cfg.MaxPriceGBP {
		return false
	}
	if cfg.MaxMileage != nil && listing.Mileage != nil && *listing.Mileage > *cfg.MaxMileage {
		return false
	}
	if cfg.MinYear != nil && listing.Year != nil && *listing.Year < *cfg.MinYear {
		return false
	}

	text := strings.ToLower(listing.Title + " " + listing.URL)
	if include := cleanKeywords(cfg.IncludeKeywords); len(include) > 0 && !containsAny(text, include) {
		return false
	}
	if containsAny(text, cleanKeywords(cfg.ExcludeKeywords)) {
		return false
	}
	return true
}

func cleanKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		out = append(out, kw)
	}
	return out
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
