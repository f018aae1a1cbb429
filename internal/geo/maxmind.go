package geo

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/oschwald/maxminddb-golang"
)

// MaxMind is a Provider backed by a GeoLite2/GeoIP2 country database.
type MaxMind struct {
	reader *maxminddb.Reader
}

type countryRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// FindDatabase returns the first existing file from candidates.
func FindDatabase(candidates []string) (string, bool) {
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// OpenMaxMind opens the database at path.
func OpenMaxMind(path string) (*MaxMind, error) {
	reader, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open maxmind db %s: %w", path, err)
	}
	return &MaxMind{reader: reader}, nil
}

// Country looks up the ISO country code for ip. A record without a country
// entry yields ErrNotFound.
func (m *MaxMind) Country(ip net.IP) (CountryCode, error) {
	var rec countryRecord
	if err := m.reader.Lookup(ip, &rec); err != nil {
		return Unknown, fmt.Errorf("maxmind lookup: %w", err)
	}
	if rec.Country.ISOCode == "" {
		return Unknown, ErrNotFound
	}
	return CountryCode(strings.ToUpper(rec.Country.ISOCode)), nil
}

// Close releases the underlying reader.
func (m *MaxMind) Close() error {
	if err := m.reader.Close(); err != nil {
		return fmt.Errorf("close maxmind db: %w", err)
	}
	return nil
}
