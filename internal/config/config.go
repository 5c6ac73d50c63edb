// Package config defines the data structures related to configuration and
// includes functions for loading and checking the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/auto-loan-calc/internal/calculator"
	"github.com/iwvelando/auto-loan-calc/pkg/constants"
	"github.com/iwvelando/auto-loan-calc/pkg/tax"
	"github.com/iwvelando/auto-loan-calc/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for auto-loan-calc.
type Configuration struct {
	Logging   LoggingConfig  `yaml:"logging,omitempty"`
	Output    OutputConfig   `yaml:"output,omitempty"`
	Rates     RatesConfig    `yaml:"rates,omitempty"`
	Defaults  DefaultsConfig `yaml:"defaults,omitempty"`
	Limits    LimitsConfig   `yaml:"limits,omitempty"`
	Vehicles  []Vehicle      `yaml:"vehicles,omitempty"`
	Scenarios []Scenario     `yaml:"scenarios"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json, pdf
}

// RatesConfig sets the tax rates. Unset figures fall back to the rate table
// or the built-in defaults; an explicit 0 is kept. TableFile, when set, is a
// county rate table (JSON, CSV, TSV or XLSX) whose entries take precedence
// over DefaultCountyRate.
type RatesConfig struct {
	StateRate         *float64 `yaml:"stateRate,omitempty"`
	CountyCap         *float64 `yaml:"countyCap,omitempty"`
	DefaultCountyRate *float64 `yaml:"defaultCountyRate,omitempty"`
	TableFile         string  `yaml:"tableFile,omitempty"`
}

// DefaultsConfig holds the values used when a scenario leaves APR or term unset.
type DefaultsConfig struct {
	APRPercent float64 `yaml:"aprPercent,omitempty"`
	TermMonths int     `yaml:"termMonths,omitempty"`
}

// LimitsConfig bounds the goal-payment suggestions.
type LimitsConfig struct {
	MaxTermMonths int `yaml:"maxTermMonths,omitempty"`
}

// Vehicle is a car shared between scenarios.
type Vehicle struct {
	Name     string
	MSRP     float64
	Location string `yaml:"location,omitempty"`
	County   string `yaml:"county,omitempty"`
}

// Scenario is one deal to evaluate. Vehicle names an entry of Vehicles whose
// MSRP and county fill in what Inputs and County leave blank.
type Scenario struct {
	Name    string
	Active  bool
	Vehicle string                `yaml:"vehicle,omitempty"`
	County  string                `yaml:"county,omitempty"`
	Inputs  calculator.LoanInputs `yaml:"inputs"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %s", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// Options returns the calculator policy described by Defaults and Limits.
func (c *Configuration) Options() calculator.Options {
	return calculator.Options{
		DefaultAPRPercent: c.Defaults.APRPercent,
		DefaultTermMonths: c.Defaults.TermMonths,
		MaxTermMonths:     c.Limits.MaxTermMonths,
		DefaultCountyRate: c.Rates.DefaultCountyRate,
	}
}

// BaseRates returns the statewide rates with unset values defaulted. The
// county rate is left for the rate table to resolve.
func (c *Configuration) BaseRates() tax.RateContext {
	rc := tax.RateContext{
		StateRate: constants.DefaultStateTaxRate,
		CountyCap: constants.DefaultCountyCap,
	}
	if c.Rates.StateRate != nil {
		rc.StateRate = *c.Rates.StateRate
	}
	if c.Rates.CountyCap != nil {
		rc.CountyCap = *c.Rates.CountyCap
	}
	return rc.Clamped()
}

// FindVehicle returns the vehicle called name, compared case-insensitively.
func (c *Configuration) FindVehicle(name string) (Vehicle, bool) {
	for _, v := range c.Vehicles {
		if strings.EqualFold(strings.TrimSpace(v.Name), strings.TrimSpace(name)) {
			return v, true
		}
	}
	return Vehicle{}, false
}

// ResolveInputs returns the scenario's inputs with the referenced vehicle's
// MSRP filled in, plus the county its taxes are looked up under.
func (c *Configuration) ResolveInputs(s Scenario) (calculator.LoanInputs, string) {
	in := s.Inputs
	county := s.County
	if v, ok := c.FindVehicle(s.Vehicle); ok && s.Vehicle != "" {
		if in.MSRP <= 0 {
			in.MSRP = v.MSRP
		}
		if county == "" {
			county = v.County
		}
	}
	return in, county
}

// OutputFormat returns the configured output format, defaulting to pretty.
func (c *Configuration) OutputFormat() string {
	if c.Output.Format == "" {
		return constants.OutputFormatPretty
	}
	return c.Output.Format
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	validator := validation.ConfigValidator{
		MaxTermMonths: c.Options().MaxTermMonths,
	}
	if validator.MaxTermMonths <= 0 {
		validator.MaxTermMonths = constants.MaxTermMonths
	}
	for _, v := range c.Vehicles {
		validator.Vehicles = append(validator.Vehicles, validation.VehicleConfig{
			Name: v.Name,
			MSRP: v.MSRP,
		})
	}
	for _, s := range c.Scenarios {
		in, _ := c.ResolveInputs(s)
		validator.Scenarios = append(validator.Scenarios, validation.ScenarioConfig{
			Name:          s.Name,
			Active:        s.Active,
			Vehicle:       s.Vehicle,
			MSRP:          in.MSRP,
			FinalPrice:    in.FinalPrice,
			TradeInValue:  in.TradeInValue,
			TradeInPayoff: in.TradeInPayoff,
			CashDown:      in.CashDown,
			APR:           in.APR,
			TermMonths:    in.TermMonths,
			GoalPayment:   in.GoalMonthlyPayment,
		})
	}

	warnings := validator.ValidateAll()
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	return warnings
}
