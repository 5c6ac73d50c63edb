// Package constants provides shared constants for the auto-loan-calc application.
package constants

// Loan defaults applied when an input is left unset.
const (
	// DefaultAPRPercent is the annual percentage rate used when none is entered.
	DefaultAPRPercent = 6.5

	// DefaultTermMonths is the loan term used when none is entered.
	DefaultTermMonths = 72

	// MaxTermMonths is the longest term a goal-payment strategy may suggest.
	MaxTermMonths = 96

	// MinAPRPercent is the lowest APR a goal-payment strategy may suggest.
	MinAPRPercent = 0.0
)

// Tax defaults for the reference jurisdiction.
const (
	// DefaultStateTaxRate is the state sales tax rate as a decimal fraction.
	DefaultStateTaxRate = 0.06

	// DefaultCountyCap is the portion of the taxable base subject to county surtax.
	DefaultCountyCap = 5000.0

	// DefaultCountyRate is the county surtax rate used when no lookup is available.
	DefaultCountyRate = 0.01

	// DefaultCountyKey is the rate-table entry used for unknown counties.
	DefaultCountyKey = "DEFAULT"
)

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyPlaces is the number of decimal places shown for currency.
	CurrencyPlaces = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// RateSearchIterations bounds the bisection used to solve for a monthly rate.
	RateSearchIterations = 60

	// MaxMonthlyRate is the upper bound of the monthly rate search (100% per month).
	MaxMonthlyRate = 1.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatPDF is the printable deal sheet format
	OutputFormatPDF = "pdf"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for rate tables (2 MB)
	DefaultMaxUploadSizeBytes int64 = 2 * 1024 * 1024

	// DefaultRateLimitRequests is the number of requests a client may make per window
	DefaultRateLimitRequests = 120

	// DefaultRateLimitWindow is the refill window for the rate limiter, in seconds
	DefaultRateLimitWindow = 60

	// DefaultGeocoderURL is the Nominatim search endpoint
	DefaultGeocoderURL = "https://nominatim.openstreetmap.org/search"

	// DefaultGeocodeCacheHours is how long geocoder answers are cached
	DefaultGeocodeCacheHours = 24 * 30
)

// Cache keys
const (
	// CountyRatesCacheKey stores the active county rate table
	CountyRatesCacheKey = "countyRates"

	// GeocodeCachePrefix prefixes cached geocoder answers
	GeocodeCachePrefix = "geocode:"
)
