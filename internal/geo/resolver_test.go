package geo

import (
	"errors"
	"net"
	"testing"
)

type fakeProvider struct {
	country CountryCode
	err     error
	calls   int
}

func (f *fakeProvider) Country(_ net.IP) (CountryCode, error) {
	f.calls++
	return f.country, f.err
}

func TestParseCountry(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    CountryCode
		wantErr bool
	}{
		{"JP", "JP", false},
		{"jp", "JP", false},
		{"Se", "SE", false},
		{"us", "US", false},
		{"zz", Unknown, true},
		{"USA", Unknown, true},
		{"1A", Unknown, true},
		{"", Unknown, true},
		{"j", Unknown, true},
	}
	for _, tc := range cases {
		got, err := ParseCountry(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseCountry(%q): expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseCountry(%q): unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseCountry(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolveExplicitWins(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{country: "US"}
	r := NewResolver(provider, "GB", nil)

	if got := r.Resolve("8.8.8.8", "JP"); got != "JP" {
		t.Fatalf("expected explicit override, got %q", got)
	}
	if provider.calls != 0 {
		t.Fatalf("expected no lookup when explicit country is set, got %d calls", provider.calls)
	}
}

func TestResolveLocalAddressesUseDefault(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{country: "US"}
	r := NewResolver(provider, "GB", nil)

	for _, ip := range []string{"127.0.0.1", "::1", "192.168.0.10", "10.0.0.1", "not-an-ip", ""} {
		if got := r.Resolve(ip, Unknown); got != "GB" {
			t.Fatalf("Resolve(%q) = %q, want default GB", ip, got)
		}
	}
	if provider.calls != 0 {
		t.Fatalf("expected no lookup for local addresses, got %d calls", provider.calls)
	}
}

func TestResolvePublicAddressQueriesProvider(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{country: "DE"}
	r := NewResolver(provider, "GB", nil)

	if got := r.Resolve("93.184.216.34", Unknown); got != "DE" {
		t.Fatalf("expected DE from provider, got %q", got)
	}
}

func TestResolveDegradesToUnknown(t *testing.T) {
	t.Parallel()

	// No provider at all.
	r := NewResolver(nil, "GB", nil)
	if got := r.Resolve("8.8.8.8", Unknown); got != Unknown {
		t.Fatalf("expected Unknown without a provider, got %q", got)
	}

	// Entry missing.
	r = NewResolver(&fakeProvider{err: ErrNotFound}, "GB", nil)
	if got := r.Resolve("8.8.8.8", Unknown); got != Unknown {
		t.Fatalf("expected Unknown for missing entry, got %q", got)
	}

	// Arbitrary provider failure must not surface.
	r = NewResolver(&fakeProvider{err: errors.New("corrupt database")}, "GB", nil)
	if got := r.Resolve("8.8.8.8", Unknown); got != Unknown {
		t.Fatalf("expected Unknown on provider failure, got %q", got)
	}
}

func TestCountryCodeString(t *testing.T) {
	t.Parallel()

	if got := Unknown.String(); got != "unknown" {
		t.Fatalf("Unknown.String() = %q", got)
	}
	if got := CountryCode("FR").String(); got != "FR" {
		t.Fatalf("CountryCode(FR).String() = %q", got)
	}
}
