// Package notify renders and delivers the watcher's notifications.
package notify

import (
	"fmt"
	"html"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/aluiziolira/go-watch-listings/models"
)

// MaxSummaryListings caps how many matches a summary enumerates.
const MaxSummaryListings = 10

var gbPrinter = message.NewPrinter(language.BritishEnglish)

// BuildSummary renders the notification body for a run's new matching
// listings in input order, up to the cap, with an overflow line for the rest.
func BuildSummary(newMatches []models.Listing, totalNew, totalFound int) string {
	lines := []string{
		fmt.Sprintf("Listing watcher update: %d matching new listing(s)", len(newMatches)),
		fmt.Sprintf("Total listings found this run: %d", totalFound),
		fmt.Sprintf("Total new listings this run: %d", totalNew),
		"",
	}

	shown := newMatches
	if len(shown) > MaxSummaryListings {
		shown = shown[:MaxSummaryListings]
	}
	for i, listing := range shown {
		lines = append(lines,
			fmt.Sprintf("%d. %s", i+1, html.EscapeString(listing.Title)),
			fmt.Sprintf("   Price: %s | Mileage: %s | Year: %s",
				formatPrice(listing.PriceGBP),
				formatMileage(listing.Mileage),
				formatYear(listing.Year),
			),
			"   "+valueOrNA(listing.URL),
			"",
		)
	}

	if overflow := len(newMatches) - MaxSummaryListings; overflow > 0 {
		lines = append(lines, fmt.Sprintf("...and %d more matching listing(s).", overflow))
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// BuildSkipNotice renders the fixed-shape message sent when the robots
// policy denies the fetch.
func BuildSkipNotice(searchURL, robotsSource string) string {
	return "Listing watcher safety fallback: monitoring skipped because robots/allowed-access " +
		"checks did not permit fetching this URL.\n" +
		"URL: " + searchURL + "\n" +
		"Robots source: " + robotsSource
}

func formatPrice(priceGBP *int) string {
	if priceGBP == nil {
		return "N/A"
	}
	return gbPrinter.Sprintf("£%d", *priceGBP)
}

func formatMileage(mileage *int) string {
	if mileage == nil {
		return "N/A"
	}
	return gbPrinter.Sprintf("%d miles", *mileage)
}

func formatYear(year *int) string {
	if year == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *year)
}

func valueOrNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
