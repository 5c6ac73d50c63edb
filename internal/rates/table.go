// Package rates holds county surtax rate tables: lookup by county name,
// import from spreadsheets and delimited text, and the process-wide active
// table backed by a cache.
package rates

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/iwvelando/auto-loan-calc/pkg/constants"
	"github.com/iwvelando/auto-loan-calc/pkg/tax"
)

// Meta carries the statewide figures that accompany a county table. A nil
// figure was not supplied; zero is a real rate or cap.
type Meta struct {
	StateRate *float64 `json:"stateRate,omitempty" yaml:"stateRate,omitempty"`
	CountyCap *float64 `json:"countyCap,omitempty" yaml:"countyCap,omitempty"`
}

// NewMeta returns Meta with both figures supplied.
func NewMeta(stateRate, countyCap float64) Meta {
	return Meta{StateRate: &stateRate, CountyCap: &countyCap}
}

// StateRateOrDefault returns the state rate, or the 6% default when unset.
func (m Meta) StateRateOrDefault() float64 {
	if m.StateRate == nil {
		return constants.DefaultStateTaxRate
	}
	return *m.StateRate
}

// CountyCapOrDefault returns the county cap, or the $5,000 default when unset.
func (m Meta) CountyCapOrDefault() float64 {
	if m.CountyCap == nil {
		return constants.DefaultCountyCap
	}
	return *m.CountyCap
}

func (m Meta) clone() Meta {
	var c Meta
	if m.StateRate != nil {
		v := *m.StateRate
		c.StateRate = &v
	}
	if m.CountyCap != nil {
		v := *m.CountyCap
		c.CountyCap = &v
	}
	return c
}

// Table maps county names to surtax rates (decimal fractions). The DEFAULT
// entry, when present, applies to counties that are not listed.
type Table struct {
	Meta     Meta               `json:"meta" yaml:"meta"`
	Counties map[string]float64 `json:"counties" yaml:"counties"`
}

// Lookup is the outcome of resolving one county against a table.
type Lookup struct {
	County    string  `json:"county"`
	Rate      float64 `json:"rate"`
	Defaulted bool    `json:"defaulted"`
}

var countySuffix = regexp.MustCompile(`(?i)\s*county$`)

// DefaultTable returns the table used before any import: statewide
// defaults and a 1% DEFAULT county rate.
func DefaultTable() *Table {
	return &Table{
		Meta: NewMeta(constants.DefaultStateTaxRate, constants.DefaultCountyCap),
		Counties: map[string]float64{
			constants.DefaultCountyKey: constants.DefaultCountyRate,
		},
	}
}

// CountyName trims whitespace and a trailing "County" from a county name.
func CountyName(name string) string {
	return strings.TrimSpace(countySuffix.ReplaceAllString(strings.TrimSpace(name), ""))
}

// Lookup resolves county to a rate. Names match case-insensitively with or
// without a "County" suffix. Unknown, blank and zero-rated counties fall
// back to DEFAULT.
func (t *Table) Lookup(county string) Lookup {
	name := CountyName(county)
	if t != nil && name != "" && !strings.EqualFold(name, constants.DefaultCountyKey) {
		if rate, ok := t.Counties[name]; ok && rate > 0 {
			return Lookup{County: name, Rate: rate}
		}
		for key, rate := range t.Counties {
			if strings.EqualFold(key, name) && rate > 0 {
				return Lookup{County: key, Rate: rate}
			}
		}
	}
	return Lookup{County: name, Rate: t.DefaultRate(), Defaulted: true}
}

// DefaultRate is the rate for counties the table does not list.
func (t *Table) DefaultRate() float64 {
	if t == nil {
		return constants.DefaultCountyRate
	}
	if rate, ok := t.Counties[constants.DefaultCountyKey]; ok && rate >= 0 && !math.IsNaN(rate) {
		return rate
	}
	return constants.DefaultCountyRate
}

// Context returns the rates to compute taxes with for county. The county
// rate is left at zero when the lookup defaulted, so the calculator reports
// the default as its source. Statewide figures the table does not supply
// take the built-in defaults.
func (t *Table) Context(county string) (tax.RateContext, Lookup) {
	lookup := t.Lookup(county)
	var meta Meta
	if t != nil {
		meta = t.Meta
	}
	rc := tax.RateContext{
		StateRate: meta.StateRateOrDefault(),
		CountyCap: meta.CountyCapOrDefault(),
	}
	if !lookup.Defaulted {
		rc.CountyRate = lookup.Rate
	}
	return rc.Clamped(), lookup
}

// Merge fills what t lacks from previous: the DEFAULT entry and any
// statewide figure t does not supply.
func (t *Table) Merge(previous *Table) {
	if previous == nil {
		return
	}
	if t.Counties == nil {
		t.Counties = make(map[string]float64)
	}
	if _, ok := t.Counties[constants.DefaultCountyKey]; !ok {
		if rate, ok := previous.Counties[constants.DefaultCountyKey]; ok {
			t.Counties[constants.DefaultCountyKey] = rate
		}
	}
	inherited := previous.Meta.clone()
	if t.Meta.StateRate == nil {
		t.Meta.StateRate = inherited.StateRate
	}
	if t.Meta.CountyCap == nil {
		t.Meta.CountyCap = inherited.CountyCap
	}
}

// Validate checks that every rate is a finite, non-negative fraction.
func (t *Table) Validate() error {
	if len(t.Counties) == 0 {
		return ErrNoRows
	}
	for county, rate := range t.Counties {
		if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 || rate > maxFraction {
			return fmt.Errorf("county %q has invalid rate %v", county, rate)
		}
	}
	for _, v := range []*float64{t.Meta.StateRate, t.Meta.CountyCap} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0) {
			return fmt.Errorf("state rate and county cap must be finite and non-negative")
		}
	}
	return nil
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	c := &Table{Meta: t.Meta.clone(), Counties: make(map[string]float64, len(t.Counties))}
	for k, v := range t.Counties {
		c.Counties[k] = v
	}
	return c
}

// Names returns the listed county names in order, without DEFAULT.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.Counties))
	for k := range t.Counties {
		if k != constants.DefaultCountyKey {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}
