package config

import (
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/auto-loan-calc/internal/calculator"
	"github.com/iwvelando/auto-loan-calc/pkg/constants"
)

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Example config file",
			configPath: "testdata/config.yaml",
			wantError:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationStructure(t *testing.T) {
	config, err := LoadConfiguration("testdata/config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if config.Logging.Level != "info" {
		t.Errorf("Expected logging level info, got %q", config.Logging.Level)
	}
	if config.Rates.CountyCap == nil || *config.Rates.CountyCap != 5000 {
		t.Errorf("Expected CountyCap = 5000, got %v", config.Rates.CountyCap)
	}
	if config.Defaults.TermMonths != 72 {
		t.Errorf("Expected default term 72, got %d", config.Defaults.TermMonths)
	}

	expectedScenarios := []string{"sticker price", "negotiated with trade", "parked"}
	if len(config.Scenarios) != len(expectedScenarios) {
		t.Fatalf("Expected %d scenarios, got %d", len(expectedScenarios), len(config.Scenarios))
	}
	for i, expectedName := range expectedScenarios {
		if config.Scenarios[i].Name != expectedName {
			t.Errorf("Expected scenario name %s, got %s", expectedName, config.Scenarios[i].Name)
		}
	}

	trade := config.Scenarios[1].Inputs
	if trade.FinalPrice != "MSRP - 6%" {
		t.Errorf("Expected final price expression to survive decoding, got %q", trade.FinalPrice)
	}
	if trade.APR == nil || math.Abs(*trade.APR-4.9) > 1e-9 {
		t.Errorf("Expected APR 4.9, got %v", trade.APR)
	}
	if trade.GoalMonthlyPayment == nil || *trade.GoalMonthlyPayment != 350 {
		t.Errorf("Expected goal payment 350, got %v", trade.GoalMonthlyPayment)
	}
	if !trade.FinanceNegativeEquity || !trade.FinanceTaxesAndFees {
		t.Errorf("Expected both financing flags to be set")
	}

	sticker := config.Scenarios[0].Inputs
	if len(sticker.DealerFees) != 1 || sticker.DealerFees[0].Amount != 999 {
		t.Errorf("Expected one dealer fee of 999, got %+v", sticker.DealerFees)
	}
	if sticker.APR != nil {
		t.Errorf("Expected APR to be unset, got %v", *sticker.APR)
	}
}

func TestLoadConfigurationFromReader(t *testing.T) {
	yaml := `
scenarios:
  - name: reader
    active: true
    inputs:
      msrp: 30000
      finalPrice: "29000"
      termMonths: 48
`
	config, err := LoadConfigurationFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	in := config.Scenarios[0].Inputs
	if in.MSRP != 30000 || in.FinalPrice != "29000" || in.TermMonths != 48 {
		t.Errorf("Unexpected inputs decoded: %+v", in)
	}

	if _, err := LoadConfigurationFromReader(strings.NewReader("scenarios: [")); err == nil {
		t.Errorf("Expected an error for malformed YAML")
	}
}

func TestResolveInputs(t *testing.T) {
	config, err := LoadConfiguration("testdata/config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	in, county := config.ResolveInputs(config.Scenarios[0])
	if in.MSRP != 27000 {
		t.Errorf("Expected vehicle MSRP 27000, got %v", in.MSRP)
	}
	if county != "Orange" {
		t.Errorf("Expected vehicle county Orange, got %q", county)
	}

	_, county = config.ResolveInputs(config.Scenarios[1])
	if county != "Seminole" {
		t.Errorf("Expected scenario county to win, got %q", county)
	}

	in, county = config.ResolveInputs(config.Scenarios[2])
	if in.MSRP != 45000 || county != "" {
		t.Errorf("Expected standalone scenario untouched, got MSRP %v county %q", in.MSRP, county)
	}
}

func TestOptionsAndRates(t *testing.T) {
	config := &Configuration{
		Rates:    RatesConfig{DefaultCountyRate: calculator.Float(0.015)},
		Defaults: DefaultsConfig{APRPercent: 7.25},
	}

	opts := config.Options()
	if opts.DefaultAPRPercent != 7.25 || opts.DefaultCountyRate == nil || *opts.DefaultCountyRate != 0.015 {
		t.Errorf("Unexpected options %+v", opts)
	}

	rates := config.BaseRates()
	if rates.StateRate != constants.DefaultStateTaxRate || rates.CountyCap != constants.DefaultCountyCap {
		t.Errorf("Expected unset rates to default, got %+v", rates)
	}
	if config.OutputFormat() != constants.OutputFormatPretty {
		t.Errorf("Expected pretty output by default, got %s", config.OutputFormat())
	}
}

func TestZeroRatesAreKept(t *testing.T) {
	yaml := `rates:
  stateRate: 0
  countyCap: 0
  defaultCountyRate: 0
scenarios:
  - name: tax free
    active: true
    inputs:
      msrp: 20000
`
	config, err := LoadConfigurationFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}

	if config.Rates.StateRate == nil || *config.Rates.StateRate != 0 {
		t.Errorf("Expected an explicit zero state rate, got %v", config.Rates.StateRate)
	}
	rates := config.BaseRates()
	if rates.StateRate != 0 || rates.CountyCap != 0 {
		t.Errorf("Expected zero statewide rates, got %+v", rates)
	}
	opts := config.Options()
	if opts.DefaultCountyRate == nil || *opts.DefaultCountyRate != 0 {
		t.Errorf("Expected a zero default county rate, got %v", opts.DefaultCountyRate)
	}

	unset, err := LoadConfigurationFromReader(strings.NewReader("scenarios: []\n"))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if unset.Rates.StateRate != nil || unset.Rates.CountyCap != nil || unset.Rates.DefaultCountyRate != nil {
		t.Errorf("Expected absent rates to stay unset, got %+v", unset.Rates)
	}
}

func TestValidateConfiguration(t *testing.T) {
	config, err := LoadConfiguration("testdata/config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if warnings := config.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("Expected no warnings for the example config, got %v", warnings)
	}

	config.Output.Format = "xml"
	config.Scenarios[0].Vehicle = "Missing"
	warnings := config.ValidateConfiguration()
	if len(warnings) < 2 {
		t.Errorf("Expected warnings for bad format and unknown vehicle, got %v", warnings)
	}
}
