// Package geocode resolves free-form dealer and home addresses to a city,
// county, state and coordinates.
package geocode

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strings"
)

// ErrNoMatch is returned when a geocoder finds nothing for a query.
var ErrNoMatch = errors.New("no geocoding match")

// ErrEmptyQuery is returned for blank queries.
var ErrEmptyQuery = errors.New("empty address")

// Location is a resolved address. Coordinates are nil when unknown.
type Location struct {
	Address   string   `json:"address,omitempty"`
	City      string   `json:"city,omitempty"`
	County    string   `json:"county,omitempty"`
	StateCode string   `json:"stateCode,omitempty"`
	Zip       string   `json:"zip,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lon       *float64 `json:"lon,omitempty"`
}

// Geocoder resolves an address to a Location.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (Location, error)
}

// HasCoordinates reports whether both latitude and longitude are known.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lon != nil
}

// Normalized renders the location as "City, ST 12345", dropping whatever is
// unknown.
func (l Location) Normalized() string {
	var parts []string
	if l.City != "" {
		parts = append(parts, l.City)
	}
	tail := strings.TrimSpace(strings.Join([]string{l.StateCode, l.Zip}, " "))
	if tail != "" {
		parts = append(parts, tail)
	}
	return strings.Join(parts, ", ")
}

var (
	countySuffix = regexp.MustCompile(`(?i)\s+county$`)
	zipPattern   = regexp.MustCompile(`\b(\d{5})(?:-\d{4})?\b`)
	statePattern = regexp.MustCompile(`(?i)\b([a-z]{2})\b`)
)

// NormalizeCounty strips surrounding space and a trailing "County".
func NormalizeCounty(county string) string {
	return strings.TrimSpace(countySuffix.ReplaceAllString(strings.TrimSpace(county), ""))
}

// ParseLoose pulls what it can out of a "City, ST 12345" style string
// without any lookup. County and coordinates are never filled.
func ParseLoose(query string) Location {
	loc := Location{Address: strings.TrimSpace(query)}
	if m := zipPattern.FindStringSubmatch(query); m != nil {
		loc.Zip = m[1]
	}

	var parts []string
	for _, p := range strings.Split(query, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 {
		loc.City = parts[0]
	}
	if len(parts) > 1 {
		if m := statePattern.FindStringSubmatch(parts[1]); m != nil {
			loc.StateCode = strings.ToUpper(m[1])
		}
	}
	return loc
}

const earthRadiusMiles = 3958.7613

// HaversineMiles is the great-circle distance between two locations. It
// returns false when either lacks coordinates.
func HaversineMiles(a, b Location) (float64, bool) {
	if !a.HasCoordinates() || !b.HasCoordinates() {
		return 0, false
	}
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(*b.Lat - *a.Lat)
	dLon := toRad(*b.Lon - *a.Lon)
	lat1, lat2 := toRad(*a.Lat), toRad(*b.Lat)

	h := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	return 2 * earthRadiusMiles * math.Asin(math.Min(1, math.Sqrt(h))), true
}
