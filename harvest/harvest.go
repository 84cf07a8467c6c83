// Package harvest turns raw search-results markup into listing records.
//
// Card detection is deliberately loose: the source markup carries no stable
// schema, so candidates are any article/li/div whose first hyperlink looks
// like a vehicle page. Correctness rests on the identity resolver rather than
// on precise card boundaries, and overlapping structural matches collapse in
// the in-run dedup.
package harvest

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/aluiziolira/go-watch-listings/identity"
	"github.com/aluiziolira/go-watch-listings/models"
)

const (
	cardSelector  = "article, li, div"
	titleSelector = "h2, h3, h4, [class*=title], [data-testid*=title]"
)

var (
	vehicleHrefPattern = regexp.MustCompile(`(?i)(vehicle|used|car)`)
	whitespaceRun      = regexp.MustCompile(`\s+`)
	pricePattern       = regexp.MustCompile(`£\s*([\d,]+)`)
	mileagePattern     = regexp.MustCompile(`(?i)([\d,]+)\s*miles?`)
	yearPattern        = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
)

const minVehicleYear = 1980

// Harvest scans page markup for listing cards and extracts them in document
// order. Duplicate listing ids keep the first occurrence; cards that cannot
// yield a valid listing are counted as parse failures and skipped. All
// returned listings share seenAt as their extraction timestamp.
func Harvest(pageHTML, baseURL string, seenAt time.Time) ([]models.Listing, int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, 0, fmt.Errorf("parse page markup: %w", err)
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, 0, fmt.Errorf("parse base url: %w", err)
	}

	var listings []models.Listing
	parseFailures := 0
	seen := make(map[string]struct{})

	doc.Find(cardSelector).Each(func(_ int, card *goquery.Selection) {
		anchor := card.Find("a[href]").First()
		if anchor.Length() == 0 {
			return
		}
		href, _ := anchor.Attr("href")
		if !vehicleHrefPattern.MatchString(href) {
			return
		}

		listing := extractListing(card, base, seenAt)
		if listing == nil {
			parseFailures++
			return
		}
		if _, dup := seen[listing.ID]; dup {
			return
		}
		seen[listing.ID] = struct{}{}
		listings = append(listings, *listing)
	})

	return listings, parseFailures, nil
}

// extractListing builds a Listing from one card, or nil when the card has no
// usable title. Absent price/mileage/year/URL are unknowns, not failures.
func extractListing(card *goquery.Selection, base *url.URL, seenAt time.Time) *models.Listing {
	href, _ := card.Find("a[href]").First().Attr("href")
	listingURL := normalizeURL(base, href)

	title := flattenText(card.Find(titleSelector).First())
	if title == "" {
		title = flattenText(card)
	}
	title = collapseWhitespace(title)
	if title == "" {
		return nil
	}

	text := flattenText(card)
	price := parseGroupedInt(pricePattern, text)
	mileage := parseGroupedInt(mileagePattern, text)
	year := parseYear(text, seenAt)

	return &models.Listing{
		ID:       identity.Resolve(listingURL, title, price),
		Title:    title,
		PriceGBP: price,
		Mileage:  mileage,
		Year:     year,
		URL:      listingURL,
		SeenAt:   seenAt,
	}
}

// normalizeURL resolves href against base and canonicalizes the result:
// trailing slashes stripped, fragment dropped, query preserved. An empty or
// unparsable href yields no URL.
func normalizeURL(base *url.URL, href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	abs.Path = strings.TrimRight(abs.Path, "/")
	abs.Fragment = ""
	abs.RawFragment = ""
	return abs.String()
}

// flattenText joins the text nodes under sel with single spaces, the goquery
// analogue of soup-style separator-aware text extraction. Plain Text() would
// glue adjacent element texts together.
func flattenText(sel *goquery.Selection) string {
	var parts []string
	for _, node := range sel.Nodes {
		collectText(node, &parts)
	}
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
			*parts = append(*parts, trimmed)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

func parseGroupedInt(pattern *regexp.Regexp, text string) *int {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	value, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return nil
	}
	return &value
}

// parseYear accepts the first 4-digit year within the plausible vehicle
// range, bounded above by the year after the extraction time.
func parseYear(text string, seenAt time.Time) *int {
	m := yearPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	if year < minVehicleYear || year > seenAt.Year()+1 {
		return nil
	}
	return &year
}
