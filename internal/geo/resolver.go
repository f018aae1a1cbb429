package geo

import (
	"errors"
	"net"

	"go.uber.org/zap"
)

// ErrNotFound reports that the database has no entry for an address.
var ErrNotFound = errors.New("ip address not found")

// Provider answers country lookups for IP addresses.
type Provider interface {
	Country(ip net.IP) (CountryCode, error)
}

// Resolver chooses one effective country per request. Precedence: explicit
// override, then the configured default for local/unparseable addresses,
// then GeoIP lookup. Lookup failures degrade to Unknown, never to an error.
type Resolver struct {
	provider Provider
	def      CountryCode
	logger   *zap.Logger
}

// NewResolver builds a Resolver. provider may be nil, in which case every
// lookup resolves to Unknown.
func NewResolver(provider Provider, def CountryCode, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{provider: provider, def: def, logger: logger}
}

// Default returns the country substituted when resolution yields Unknown.
func (r *Resolver) Default() CountryCode {
	return r.def
}

// Resolve maps a remote address and an optional explicit override to a
// single country code. explicit is assumed already validated via
// ParseCountry; pass Unknown when absent.
func (r *Resolver) Resolve(remoteIP string, explicit CountryCode) CountryCode {
	if explicit != Unknown {
		return explicit
	}

	ip := net.ParseIP(remoteIP)
	if ip == nil {
		r.logger.Debug("unparseable remote address", zap.String("remote_ip", remoteIP))
		return r.def
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() {
		return r.def
	}

	if r.provider == nil {
		return Unknown
	}
	country, err := r.provider.Country(ip)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.logger.Warn("geoip lookup failed", zap.String("ip", ip.String()), zap.Error(err))
		}
		return Unknown
	}
	return country
}
