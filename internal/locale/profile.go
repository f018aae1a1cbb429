// Package locale maps country codes to browser presentation profiles.
package locale

import "isitchristmas-screenshot/internal/geo"

// Profile holds the presentation settings a browser context is configured
// with so the target page sees a visitor from the given country.
type Profile struct {
	Locale         string
	Timezone       string
	AcceptLanguage string
}

// Fallback is used for countries without a table entry.
var Fallback = Profile{
	Locale:         "en-GB",
	Timezone:       "Europe/London",
	AcceptLanguage: "en-GB,en;q=0.9",
}

var profiles = map[geo.CountryCode]Profile{
	"AR": {"es-AR", "America/Argentina/Buenos_Aires", "es-AR,es;q=0.9,en;q=0.8"},
	"AT": {"de-AT", "Europe/Vienna", "de-AT,de;q=0.9,en;q=0.8"},
	"AU": {"en-AU", "Australia/Sydney", "en-AU,en;q=0.9"},
	"BE": {"nl-BE", "Europe/Brussels", "nl-BE,nl;q=0.9,fr;q=0.8,en;q=0.7"},
	"BR": {"pt-BR", "America/Sao_Paulo", "pt-BR,pt;q=0.9,en;q=0.8"},
	"CA": {"en-CA", "America/Toronto", "en-CA,en;q=0.9,fr-CA;q=0.8"},
	"CH": {"de-CH", "Europe/Zurich", "de-CH,de;q=0.9,fr;q=0.8,en;q=0.7"},
	"CN": {"zh-CN", "Asia/Shanghai", "zh-CN,zh;q=0.9,en;q=0.8"},
	"CZ": {"cs-CZ", "Europe/Prague", "cs-CZ,cs;q=0.9,en;q=0.8"},
	"DE": {"de-DE", "Europe/Berlin", "de-DE,de;q=0.9,en;q=0.8"},
	"DK": {"da-DK", "Europe/Copenhagen", "da-DK,da;q=0.9,en;q=0.8"},
	"ES": {"es-ES", "Europe/Madrid", "es-ES,es;q=0.9,en;q=0.8"},
	"FI": {"fi-FI", "Europe/Helsinki", "fi-FI,fi;q=0.9,en;q=0.8"},
	"FR": {"fr-FR", "Europe/Paris", "fr-FR,fr;q=0.9,en;q=0.8"},
	"GB": {"en-GB", "Europe/London", "en-GB,en;q=0.9"},
	"IE": {"en-IE", "Europe/Dublin", "en-IE,en;q=0.9"},
	"IN": {"en-IN", "Asia/Kolkata", "en-IN,en;q=0.9,hi;q=0.8"},
	"IT": {"it-IT", "Europe/Rome", "it-IT,it;q=0.9,en;q=0.8"},
	"JP": {"ja-JP", "Asia/Tokyo", "ja-JP,ja;q=0.9,en;q=0.8"},
	"KR": {"ko-KR", "Asia/Seoul", "ko-KR,ko;q=0.9,en;q=0.8"},
	"MX": {"es-MX", "America/Mexico_City", "es-MX,es;q=0.9,en;q=0.8"},
	"NL": {"nl-NL", "Europe/Amsterdam", "nl-NL,nl;q=0.9,en;q=0.8"},
	"NO": {"nb-NO", "Europe/Oslo", "nb-NO,nb;q=0.9,en;q=0.8"},
	"NZ": {"en-NZ", "Pacific/Auckland", "en-NZ,en;q=0.9"},
	"PL": {"pl-PL", "Europe/Warsaw", "pl-PL,pl;q=0.9,en;q=0.8"},
	"PT": {"pt-PT", "Europe/Lisbon", "pt-PT,pt;q=0.9,en;q=0.8"},
	"SE": {"sv-SE", "Europe/Stockholm", "sv-SE,sv;q=0.9,en;q=0.8"},
	"US": {"en-US", "America/New_York", "en-US,en;q=0.9"},
	"ZA": {"en-ZA", "Africa/Johannesburg", "en-ZA,en;q=0.9,af;q=0.8"},
}

// Build returns the profile for country, or Fallback when the country has
// no entry. Identical inputs always yield identical profiles.
func Build(country geo.CountryCode) Profile {
	if p, ok := profiles[country]; ok {
		return p
	}
	return Fallback
}
