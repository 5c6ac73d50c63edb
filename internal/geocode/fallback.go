package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/iwvelando/auto-loan-calc/internal/store"
	"github.com/iwvelando/auto-loan-calc/pkg/constants"
	"go.uber.org/zap"
)

// FallbackGeocoder asks its primary geocoder and, when that fails, returns
// what ParseLoose can recover so callers still get a city and state.
type FallbackGeocoder struct {
	primary Geocoder
	logger  *zap.Logger
}

// NewFallbackGeocoder wraps primary. A nil primary always parses loosely.
func NewFallbackGeocoder(logger *zap.Logger, primary Geocoder) *FallbackGeocoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackGeocoder{primary: primary, logger: logger}
}

// Geocode implements Geocoder.
func (g *FallbackGeocoder) Geocode(ctx context.Context, query string) (Location, error) {
	if strings.TrimSpace(query) == "" {
		return Location{}, ErrEmptyQuery
	}
	if g.primary != nil {
		loc, err := g.primary.Geocode(ctx, query)
		if err == nil {
			return loc, nil
		}
		if ctx.Err() != nil {
			return Location{}, ctx.Err()
		}
		g.logger.Warn("geocoder failed, falling back to loose parsing",
			zap.String("op", "geocode.Fallback"),
			zap.Error(err),
		)
	}
	return ParseLoose(query), nil
}

// CachingGeocoder memoizes another geocoder's answers in a store.Cache.
type CachingGeocoder struct {
	next   Geocoder
	cache  store.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachingGeocoder wraps next. A non-positive ttl caches for the default
// period.
func NewCachingGeocoder(logger *zap.Logger, next Geocoder, cache store.Cache, ttl time.Duration) *CachingGeocoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = constants.DefaultGeocodeCacheHours * time.Hour
	}
	return &CachingGeocoder{next: next, cache: cache, ttl: ttl, logger: logger}
}

// Geocode implements Geocoder. Cache failures are logged and bypassed.
func (g *CachingGeocoder) Geocode(ctx context.Context, query string) (Location, error) {
	key := constants.GeocodeCachePrefix + strings.ToLower(strings.Join(strings.Fields(query), " "))

	raw, ok, err := g.cache.Get(ctx, key)
	switch {
	case err != nil:
		g.logger.Warn("geocode cache read failed",
			zap.String("op", "geocode.Cache"),
			zap.Error(err),
		)
	case ok:
		var loc Location
		if err := json.Unmarshal([]byte(raw), &loc); err == nil {
			return loc, nil
		}
	}

	loc, err := g.next.Geocode(ctx, query)
	if err != nil {
		return Location{}, err
	}
	if data, err := json.Marshal(loc); err == nil {
		if err := g.cache.Set(ctx, key, string(data), g.ttl); err != nil {
			g.logger.Warn("geocode cache write failed",
				zap.String("op", "geocode.Cache"),
				zap.Error(err),
			)
		}
	}
	return loc, nil
}

// IsNoMatch reports whether err means the address was not found.
func IsNoMatch(err error) bool {
	return errors.Is(err, ErrNoMatch)
}
