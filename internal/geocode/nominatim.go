package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/auto-loan-calc/pkg/constants"
	"go.uber.org/zap"
)

// DefaultUserAgent identifies requests to the public Nominatim service,
// which rejects anonymous clients.
const DefaultUserAgent = "auto-loan-calc/1.0"

// NominatimClient geocodes through an OpenStreetMap Nominatim search
// endpoint.
type NominatimClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewNominatimClient creates a client for the search endpoint at baseURL.
// Empty arguments take the public endpoint, DefaultUserAgent and a 10 second
// timeout.
func NewNominatimClient(logger *zap.Logger, baseURL, userAgent string, timeout time.Duration) *NominatimClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if baseURL == "" {
		baseURL = constants.DefaultGeocoderURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NominatimClient{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type nominatimResult struct {
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	DisplayName string           `json:"display_name"`
	Address     nominatimAddress `json:"address"`
}

type nominatimAddress struct {
	City     string `json:"city"`
	Town     string `json:"town"`
	Village  string `json:"village"`
	Hamlet   string `json:"hamlet"`
	County   string `json:"county"`
	State    string `json:"state"`
	ISOState string `json:"ISO3166-2-lvl4"`
	Postcode string `json:"postcode"`
}

// Geocode returns the best match for query.
func (c *NominatimClient) Geocode(ctx context.Context, query string) (Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Location{}, ErrEmptyQuery
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return Location{}, fmt.Errorf("invalid geocoder URL: %w", err)
	}
	params := u.Query()
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Location{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("geocoder request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Location{}, fmt.Errorf("failed to read geocoder response: %w", err)
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return Location{}, fmt.Errorf("failed to parse geocoder response: %w", err)
	}
	if len(results) == 0 {
		return Location{}, fmt.Errorf("%q: %w", query, ErrNoMatch)
	}

	loc := results[0].location()
	c.logger.Debug(fmt.Sprintf("geocoded %q to %s", query, loc.Normalized()),
		zap.String("op", "geocode.Nominatim"),
		zap.String("county", loc.County),
	)
	return loc, nil
}

func (r nominatimResult) location() Location {
	loc := Location{
		Address: r.DisplayName,
		County:  NormalizeCounty(r.Address.County),
		Zip:     r.Address.Postcode,
	}
	for _, city := range []string{r.Address.City, r.Address.Town, r.Address.Village, r.Address.Hamlet} {
		if city != "" {
			loc.City = city
			break
		}
	}
	if code := strings.TrimPrefix(r.Address.ISOState, "US-"); len(code) == 2 {
		loc.StateCode = code
	}
	if lat, err := strconv.ParseFloat(r.Lat, 64); err == nil {
		loc.Lat = &lat
	}
	if lon, err := strconv.ParseFloat(r.Lon, 64); err == nil {
		loc.Lon = &lon
	}
	if !loc.HasCoordinates() {
		loc.Lat, loc.Lon = nil, nil
	}
	return loc
}
