// Package output provides utilities for formatting and displaying loan reports.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iwvelando/auto-loan-calc/internal/calculator"
	"github.com/iwvelando/auto-loan-calc/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable summary.
func PrettyFormat(results []calculator.Report) {
	WritePretty(os.Stdout, results)
}

// WritePretty writes the human-readable summary of results to w.
func WritePretty(w io.Writer, results []calculator.Report) {
	p := message.NewPrinter(language.English)
	money := printerMoney(p)
	for i, result := range results {
		fmt.Fprintf(w, "--- Results for scenario %s ---\n", result.Name)
		if result.Vehicle != "" || result.County != "" {
			fmt.Fprintf(w, "Vehicle: %s | County: %s\n", orDash(result.Vehicle), orDash(result.County))
		}
		lines := summaryLines(result, money)
		lines = append(lines, goalLines(result.Outputs.Goal, money)...)
		width := 0
		for _, l := range lines {
			if len(l.Label) > width {
				width = len(l.Label)
			}
		}
		for _, l := range lines {
			if l.Value == "" {
				continue
			}
			fmt.Fprintf(w, "%-*s | %s\n", width, l.Label, l.Value)
		}
		for _, warning := range result.Outputs.Warnings {
			fmt.Fprintf(w, "Warning: %s\n", warning)
		}
		if len(results) > 1 && i < len(results)-1 {
			fmt.Fprintf(w, "\n")
		}
	}
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(results []calculator.Report) {
	fmt.Print(CsvString(results))
}

// CsvString renders results as CSV: one row per figure and one column per
// scenario. Goal rows appear when any scenario set a goal.
func CsvString(results []calculator.Report) string {
	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(quote("metric"))
	for _, result := range results {
		b.WriteString("," + quote(result.Name))
	}
	b.WriteString("\n")

	columns := make([]map[string]string, len(results))
	labels := make([]string, 0)
	hasGoal := false
	for i, result := range results {
		columns[i] = make(map[string]string)
		lines := summaryLines(result, csvMoney)
		if i == 0 {
			for _, l := range lines {
				labels = append(labels, l.Label)
			}
		}
		for _, l := range append(lines, goalLines(result.Outputs.Goal, csvMoney)...) {
			columns[i][l.Label] = l.Value
		}
		hasGoal = hasGoal || result.Outputs.Goal != nil
	}
	if hasGoal {
		labels = append(labels, goalLabels...)
	}

	for _, label := range labels {
		b.WriteString(quote(label))
		for i := range results {
			b.WriteString("," + quote(columns[i][label]))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// csvMoney renders an amount without symbol or grouping.
func csvMoney(v float64) string {
	if !mathutil.IsFinite(v) {
		return "0.00"
	}
	// Adding zero turns a rounded -0 into 0.
	return fmt.Sprintf("%.2f", mathutil.RoundCents(v)+0)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// printerMoney formats currency with the printer's digit grouping.
func printerMoney(p *message.Printer) func(float64) string {
	return func(v float64) string {
		if mathutil.Round(v) < 0 {
			return p.Sprintf("-$%.2f", -v)
		}
		return p.Sprintf("$%.2f", v)
	}
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
