// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/auto-loan-calc/pkg/format"
	"github.com/iwvelando/auto-loan-calc/pkg/priceexpr"
)

// MaxReasonableAPRPercent is the APR above which a scenario is flagged as a
// likely typo.
const MaxReasonableAPRPercent = 36.0

// ConfigValidator performs comprehensive configuration validation
type ConfigValidator struct {
	MaxTermMonths int
	Vehicles      []VehicleConfig
	Scenarios     []ScenarioConfig
}

// VehicleConfig is the part of a vehicle entry that is validated.
type VehicleConfig struct {
	Name string
	MSRP float64
}

// ScenarioConfig is the part of a scenario that is validated, with vehicle
// references already resolved.
type ScenarioConfig struct {
	Name          string
	Active        bool
	Vehicle       string
	MSRP          float64
	FinalPrice    string
	TradeInValue  float64
	TradeInPayoff float64
	CashDown      float64
	APR           *float64
	TermMonths    int
	GoalPayment   *float64
}

// ValidateTerm flags a term longer than maxTerm months.
func ValidateTerm(name string, termMonths, maxTerm int) string {
	if maxTerm > 0 && termMonths > maxTerm {
		return fmt.Sprintf("%s term of %d months exceeds the %d month limit", name, termMonths, maxTerm)
	}
	return ""
}

// ValidateAPR flags negative and implausibly high rates.
func ValidateAPR(name string, apr *float64) string {
	switch {
	case apr == nil:
		return ""
	case *apr < 0:
		return fmt.Sprintf("%s APR of %s is negative and will be treated as 0%%", name, format.Percent(*apr))
	case *apr > MaxReasonableAPRPercent:
		return fmt.Sprintf("%s APR of %s looks too high; APR is entered as a percentage", name, format.Percent(*apr))
	}
	return ""
}

// ValidateFinalPrice flags a sale price expression that does not resolve to
// a usable price.
func ValidateFinalPrice(name, expr string, msrp float64) string {
	if strings.TrimSpace(expr) == "" {
		return ""
	}
	price := priceexpr.ParseFinalPrice(expr)
	if price.IsRelative() && msrp <= 0 {
		return fmt.Sprintf("%s final price %q is relative to MSRP but no MSRP is set", name, expr)
	}
	if resolved := price.Resolve(msrp); resolved < 0 {
		return fmt.Sprintf("%s final price %q evaluates to %s", name, expr, format.Currency(resolved))
	}
	return ""
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	for i, v := range cv.Vehicles {
		if strings.TrimSpace(v.Name) == "" {
			warnings = append(warnings, fmt.Sprintf("Vehicle #%d has no name", i+1))
		}
		if v.MSRP < 0 {
			warnings = append(warnings, fmt.Sprintf("Vehicle '%s' has a negative MSRP", v.Name))
		}
	}

	seen := make(map[string]bool)
	active := 0
	for _, s := range cv.Scenarios {
		key := strings.ToLower(strings.TrimSpace(s.Name))
		if seen[key] {
			warnings = append(warnings, fmt.Sprintf("Scenario name '%s' is used more than once", s.Name))
		}
		seen[key] = true
		if !s.Active {
			continue
		}
		active++
		warnings = append(warnings, cv.validateScenario(s)...)
	}
	if active == 0 {
		warnings = append(warnings, "No active scenarios; nothing will be computed")
	}

	return warnings
}

func (cv *ConfigValidator) validateScenario(s ScenarioConfig) []string {
	var warnings []string
	name := fmt.Sprintf("Scenario '%s'", s.Name)

	if s.Vehicle != "" && !cv.hasVehicle(s.Vehicle) {
		warnings = append(warnings, fmt.Sprintf("%s references unknown vehicle '%s'", name, s.Vehicle))
	}
	if s.MSRP <= 0 && strings.TrimSpace(s.FinalPrice) == "" {
		warnings = append(warnings, fmt.Sprintf("%s has neither an MSRP nor a final price", name))
	}
	if w := ValidateFinalPrice(name, s.FinalPrice, s.MSRP); w != "" {
		warnings = append(warnings, w)
	}
	if s.TradeInPayoff > 0 && s.TradeInValue <= 0 {
		warnings = append(warnings, fmt.Sprintf("%s has a trade-in payoff but no trade-in value; the payoff is ignored", name))
	}
	if s.TradeInValue < 0 || s.TradeInPayoff < 0 || s.CashDown < 0 {
		warnings = append(warnings, fmt.Sprintf("%s has negative amounts that will be treated as zero", name))
	}
	if w := ValidateAPR(name, s.APR); w != "" {
		warnings = append(warnings, w)
	}
	if w := ValidateTerm(name, s.TermMonths, cv.MaxTermMonths); w != "" {
		warnings = append(warnings, w)
	}
	if s.GoalPayment != nil && *s.GoalPayment <= 0 {
		warnings = append(warnings, fmt.Sprintf("%s goal payment must be positive; it is ignored", name))
	}
	return warnings
}

func (cv *ConfigValidator) hasVehicle(name string) bool {
	for _, v := range cv.Vehicles {
		if strings.EqualFold(strings.TrimSpace(v.Name), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}
