package output

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/iwvelando/auto-loan-calc/internal/calculator"
	"github.com/iwvelando/auto-loan-calc/pkg/format"
)

const (
	pageWidth    = 215.9
	marginLeft   = 18.0
	marginRight  = 18.0
	marginTop    = 18.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
	labelWidth   = contentWidth * 0.6
)

// dealSheet renders reports onto a PDF document, one page per scenario.
type dealSheet struct {
	pdf       *fpdf.Fpdf
	translate func(string) string
	generated time.Time
}

// PDF writes a printable deal sheet for results to w.
func PDF(w io.Writer, results []calculator.Report) error {
	return writePDF(w, results, time.Now())
}

// PDFBytes returns the deal sheet for results as a byte slice.
func PDFBytes(results []calculator.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := PDF(&buf, results); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writePDF(w io.Writer, results []calculator.Report, generated time.Time) error {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetTitle("Auto Loan Deal Sheet", true)
	pdf.SetCreator("auto-loan-calc", true)

	sheet := &dealSheet{
		pdf:       pdf,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
		generated: generated,
	}
	if len(results) == 0 {
		sheet.addEmptyPage()
	}
	for _, result := range results {
		sheet.addReportPage(result)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render deal sheet: %w", err)
	}
	return nil
}

func (s *dealSheet) addEmptyPage() {
	s.pdf.AddPage()
	s.drawTitle("Auto Loan Deal Sheet")
	s.pdf.SetFont("Arial", "I", 11)
	s.pdf.CellFormat(contentWidth, 8, "No active scenarios.", "", 1, "L", false, 0, "")
}

func (s *dealSheet) addReportPage(r calculator.Report) {
	s.pdf.AddPage()
	s.drawTitle(r.Name)

	s.pdf.SetFont("Arial", "", 10)
	s.pdf.SetTextColor(80, 80, 80)
	subtitle := fmt.Sprintf("Generated %s", s.generated.Format("January 2, 2006"))
	if r.Vehicle != "" {
		subtitle = r.Vehicle + " | " + subtitle
	}
	if r.County != "" {
		subtitle += " | " + r.County + " County"
	}
	s.pdf.CellFormat(contentWidth, 6, s.translate(subtitle), "", 1, "L", false, 0, "")
	s.pdf.Ln(4)

	s.drawHighlight(r.Outputs)

	s.drawSectionHeader("Deal breakdown")
	s.drawLines(summaryLines(r, format.Currency))

	if goal := goalLines(r.Outputs.Goal, format.Currency); len(goal) > 0 {
		s.pdf.Ln(4)
		s.drawSectionHeader("Payment goal")
		s.drawLines(goal)
	}

	if len(r.Outputs.Warnings) > 0 {
		s.pdf.Ln(4)
		s.drawSectionHeader("Warnings")
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(160, 40, 40)
		for _, warning := range r.Outputs.Warnings {
			s.pdf.MultiCell(contentWidth, 5, s.translate(warning), "", "L", false)
		}
	}

	s.pdf.Ln(8)
	s.pdf.SetFont("Arial", "I", 8)
	s.pdf.SetTextColor(120, 120, 120)
	s.pdf.MultiCell(contentWidth, 4,
		"Estimates only. Taxes, fees and financing terms are set by the dealer, lender and "+
			"tax authority at signing.", "", "L", false)
}

func (s *dealSheet) drawTitle(title string) {
	s.pdf.SetFont("Arial", "B", 20)
	s.pdf.SetTextColor(0, 51, 102)
	s.pdf.CellFormat(contentWidth, 12, s.translate(title), "", 1, "L", false, 0, "")
}

func (s *dealSheet) drawHighlight(o calculator.LoanOutputs) {
	s.pdf.SetFillColor(235, 241, 250)
	s.pdf.SetDrawColor(200, 200, 200)
	s.pdf.SetFont("Arial", "B", 16)
	s.pdf.SetTextColor(0, 51, 102)
	headline := fmt.Sprintf("%s / month", format.Currency(o.MonthlyPayment))
	s.pdf.CellFormat(contentWidth, 12, headline, "1", 1, "C", true, 0, "")
	s.pdf.SetFont("Arial", "", 10)
	s.pdf.SetTextColor(50, 50, 50)
	detail := fmt.Sprintf("%s financed at %s for %d months", format.Currency(o.AmountFinanced),
		format.Percent(o.APRPercent), o.TermMonths)
	s.pdf.CellFormat(contentWidth, 7, s.translate(detail), "LRB", 1, "C", true, 0, "")
	s.pdf.Ln(6)
}

func (s *dealSheet) drawSectionHeader(title string) {
	s.pdf.SetFont("Arial", "B", 12)
	s.pdf.SetTextColor(0, 51, 102)
	s.pdf.CellFormat(contentWidth, 8, s.translate(title), "B", 1, "L", false, 0, "")
	s.pdf.Ln(1)
}

func (s *dealSheet) drawLines(lines []line) {
	s.pdf.SetFont("Arial", "", 10)
	s.pdf.SetTextColor(50, 50, 50)
	s.pdf.SetFillColor(245, 247, 250)
	fill := false
	for _, l := range lines {
		if l.Value == "" {
			continue
		}
		s.pdf.CellFormat(labelWidth, 6, s.translate(l.Label), "", 0, "L", fill, 0, "")
		s.pdf.CellFormat(contentWidth-labelWidth, 6, s.translate(l.Value), "", 1, "R", fill, 0, "")
		fill = !fill
	}
}
