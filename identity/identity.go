// Package identity derives stable identifiers for listings.
//
// Site-assigned stock numbers are the strongest identity signal and survive
// URL and page changes, so they are tried first. Hashing the URL still dedups
// reliably while the site keeps a stable URL scheme. Hashing title and price
// is a last resort that reassigns an id when the advertised price changes.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strconv"
)

var (
	slugPattern        = regexp.MustCompile(`(?i)(?:stock|vehicle|car)[-_]?(\d{4,})`)
	trailingRunPattern = regexp.MustCompile(`/(\d{4,})(?:$|[/?#])`)
	labelPattern       = regexp.MustCompile(`(?i)\b(?:stock|vehicle)\s*(?:no\.?|id)?\s*[:#-]?\s*([A-Z0-9-]{4,})\b`)
)

// stockParams lists the query parameter names checked, in order, for a
// site-assigned stock identifier.
var stockParams = []string{"stock", "stockid", "vehicleid", "id", "vid"}

// Resolve derives a stable listing identifier from the listing URL, its
// surrounding text (typically the title) and the parsed price. The priority
// order is correctness-sensitive: reordering the fallbacks changes which id a
// vehicle gets across runs.
func Resolve(rawURL, contextText string, priceGBP *int) string {
	if id, ok := stockID(rawURL, contextText); ok {
		return "stock:" + id
	}
	if rawURL != "" {
		return "urlhash:" + shortHash(rawURL)
	}
	price := ""
	if priceGBP != nil {
		price = strconv.Itoa(*priceGBP)
	}
	return "fallback:" + shortHash(contextText+"|"+price)
}

func stockID(rawURL, contextText string) (string, bool) {
	if rawURL != "" {
		if parsed, err := url.Parse(rawURL); err == nil {
			query := parsed.Query()
			for _, key := range stockParams {
				if value := query.Get(key); value != "" {
					return value, true
				}
			}
			if m := slugPattern.FindStringSubmatch(parsed.Path); m != nil {
				return m[1], true
			}
			if m := trailingRunPattern.FindStringSubmatch(parsed.Path); m != nil {
				return m[1], true
			}
		}
	}
	if m := labelPattern.FindStringSubmatch(contextText); m != nil {
		return m[1], true
	}
	return "", false
}

func shortHash(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:16]
}
