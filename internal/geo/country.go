// Package geo resolves an effective country for each request, combining an
// explicit override, GeoIP lookup, and a configured default.
package geo

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// CountryCode is an ISO 3166-1 alpha-2 country code, always uppercase.
// The zero value is Unknown.
type CountryCode string

// Unknown marks an unresolvable country.
const Unknown CountryCode = ""

// String returns the two-letter code, or "unknown".
func (c CountryCode) String() string {
	if c == Unknown {
		return "unknown"
	}
	return string(c)
}

// ParseCountry validates s as an ISO 3166-1 alpha-2 country code and
// returns it uppercased. Values that are the wrong length, not letters, or
// not an assigned country (e.g. "zz") are rejected.
func ParseCountry(s string) (CountryCode, error) {
	if len(s) != 2 {
		return Unknown, fmt.Errorf("country code must be two letters, got %q", s)
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return Unknown, fmt.Errorf("country code must be two letters, got %q", s)
		}
	}
	region, err := language.ParseRegion(s)
	if err != nil {
		return Unknown, fmt.Errorf("parse country %q: %w", s, err)
	}
	if !region.IsCountry() {
		return Unknown, fmt.Errorf("%q is not an assigned country code", s)
	}
	return CountryCode(strings.ToUpper(s)), nil
}
