package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/auto-loan-calc/internal/calculator"
	"github.com/iwvelando/auto-loan-calc/internal/config"
)

const testConfig = "../../internal/config/testdata/config.yaml"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name     string
		config   config.LoggingConfig
		override string
		wantErr  bool
	}{
		{"Defaults", config.LoggingConfig{}, "", false},
		{"Console debug", config.LoggingConfig{Level: "debug", Format: "console"}, "", false},
		{"Override wins", config.LoggingConfig{Level: "bogus"}, "warn", false},
		{"Invalid level", config.LoggingConfig{Level: "loud"}, "", true},
		{"Invalid format", config.LoggingConfig{Format: "xml"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.config, tt.override)
			if (err != nil) != tt.wantErr {
				t.Fatalf("initializeLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && logger == nil {
				t.Fatal("expected a logger")
			}
		})
	}
}

func TestInitializeLoggerOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "calc.log")
	logger, err := initializeLogger(config.LoggingConfig{OutputFile: path}, "")
	if err != nil {
		t.Fatalf("initializeLogger() error = %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected log file to exist: %v", err)
	}
}

func TestComputeJSON(t *testing.T) {
	out, err := execute(t, "--config", testConfig, "--log-level", "error", "compute", "--format", "json")
	if err != nil {
		t.Fatalf("compute failed: %v\n%s", err, out)
	}

	var results []calculator.Report
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 active scenarios, got %d", len(results))
	}
	if results[0].Name != "sticker price" || results[1].Name != "negotiated with trade" {
		t.Errorf("unexpected scenario order: %s, %s", results[0].Name, results[1].Name)
	}
	if results[1].Outputs.Goal == nil {
		t.Error("expected a goal result for the negotiated scenario")
	}
}

func TestComputePrettyWithSchedule(t *testing.T) {
	out, err := execute(t, "--config", testConfig, "--log-level", "error", "compute", "--schedule")
	if err != nil {
		t.Fatalf("compute failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "sticker price") {
		t.Errorf("expected scenario name in output:\n%s", out)
	}
	if !strings.Contains(out, "Amortization for scenario negotiated with trade") {
		t.Errorf("expected amortization table in output:\n%s", out)
	}
}

func TestComputePDFToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deal.pdf")
	if out, err := execute(t, "--config", testConfig, "--log-level", "error", "compute", "--format", "pdf", "--out", path); err != nil {
		t.Fatalf("compute failed: %v\n%s", err, out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read PDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("expected PDF header, got %q", data[:min(len(data), 8)])
	}
}

func TestComputeRejectsUnknownFormat(t *testing.T) {
	if _, err := execute(t, "--config", testConfig, "compute", "--format", "xml"); err == nil {
		t.Fatal("expected error for unknown output format")
	}
}

func TestComputeMissingConfig(t *testing.T) {
	if _, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "compute"); err == nil {
		t.Fatal("expected error for missing configuration")
	}
}

func TestEval(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"Percent off MSRP", []string{"eval", "MSRP - 6%", "--msrp", "30,000"}, "$28,200.00 (relative)"},
		{"Literal", []string{"eval", "27,450"}, "$27,450.00 (literal)"},
		{"Split arguments", []string{"eval", "MSRP", "-", "500", "--msrp", "20000"}, "$19,500.00 (relative)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if err != nil {
				t.Fatalf("eval failed: %v", err)
			}
			if strings.TrimSpace(out) != tt.expected {
				t.Errorf("eval output = %q, expected %q", strings.TrimSpace(out), tt.expected)
			}
		})
	}
}

func TestRatesImportAndLookup(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	dir := t.TempDir()
	src := filepath.Join(dir, "rates.tsv")
	if err := os.WriteFile(src, []byte("County\tSurtax Rate\nOrange\t0.5%\nMiami-Dade\t1%\n"), 0600); err != nil {
		t.Fatalf("failed to write rates: %v", err)
	}
	dst := filepath.Join(dir, "rates.json")

	if out, err := execute(t, "--log-level", "error", "rates", "import", src, "--out", dst); err != nil {
		t.Fatalf("rates import failed: %v\n%s", err, out)
	}

	out, err := execute(t, "rates", "lookup", "Orange", "County", "--file", dst)
	if err != nil {
		t.Fatalf("rates lookup failed: %v", err)
	}
	if !strings.Contains(out, "Orange: county 0.50% (table)") {
		t.Errorf("unexpected lookup output: %q", out)
	}

	out, err = execute(t, "rates", "lookup", "--file", dst)
	if err != nil {
		t.Fatalf("rates lookup of all counties failed: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 2 {
		t.Errorf("expected one line per listed county, got %q", out)
	}
	if !strings.HasPrefix(out, "Miami-Dade: county 1.00% (table)") {
		t.Errorf("expected counties in name order, got %q", out)
	}

	out, err = execute(t, "rates", "lookup", "Nowhere")
	if err != nil {
		t.Fatalf("rates lookup failed: %v", err)
	}
	if !strings.Contains(out, "(default)") {
		t.Errorf("expected default rate, got %q", out)
	}
}
