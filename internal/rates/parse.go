package rates

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/hjson/hjson-go/v4"
	"github.com/iwvelando/auto-loan-calc/pkg/constants"
	"github.com/xuri/excelize/v2"
)

// Import errors.
var (
	ErrNoData          = errors.New("no data to import")
	ErrHeadersNotFound = errors.New(`could not detect headers; expected columns like "County" and "Total Surtax Rate"`)
	ErrNoRows          = errors.New("no county rows parsed")
)

// A bare number at or below maxFraction is already a fraction; up to
// maxPercent it is read as a percentage.
const (
	maxFraction = 0.25
	maxPercent  = 25.0
)

var (
	countyAliases = []string{
		"county", "county name", "buyer county", "destination county",
		"county of sale", "county code", "countyname", "jurisdiction",
	}
	rateAliases = []string{
		"total surtax rate", "total surtax", "surtax rate", "discretionary sales surtax",
		"discretionary surtax", "local option surtax", "local surtax", "local rate",
		"rate", "total local rate",
	}

	headerNoise = regexp.MustCompile(`[^a-z0-9]+`)
	rateNoise   = regexp.MustCompile(`[^0-9.\-]`)
)

// Parse reads a rate table from an uploaded file. Spreadsheets are chosen by
// extension; anything else is tried as JSON (HJSON accepted) and then as
// comma or tab separated text. Statewide figures stay unset unless the JSON
// supplies them, so an import inherits them from the table it replaces.
func Parse(name string, data []byte) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xltx":
		return parseSpreadsheet(data)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNoData
	}
	if table, ok, err := parseJSON(data); ok {
		return table, err
	}
	return parseDelimited(data)
}

// ParseRateValue converts a rate cell to a fraction. Values carrying a
// percent sign are divided by 100; bare values up to 0.25 are fractions and
// up to 25 are percentages. Negative and larger values are rejected.
func ParseRateValue(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	hasPercent := strings.Contains(s, "%")
	n, err := strconv.ParseFloat(rateNoise.ReplaceAllString(s, ""), 64)
	if err != nil || n < 0 {
		return 0, false
	}
	switch {
	case hasPercent:
		return n / constants.PercentageMultiplier, true
	case n <= maxFraction:
		return n, true
	case n <= maxPercent:
		return n / constants.PercentageMultiplier, true
	}
	return 0, false
}

// parseJSON reports ok when data looks like a JSON object, whether or not
// it parsed.
func parseJSON(data []byte) (*Table, bool, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return nil, false, nil
	}
	var table Table
	if err := hjson.Unmarshal(data, &table); err != nil {
		return nil, true, fmt.Errorf("failed to parse rate table JSON: %w", err)
	}
	if len(table.Counties) == 0 {
		return nil, true, fmt.Errorf("rate table JSON has no counties: %w", ErrNoRows)
	}
	if err := table.Validate(); err != nil {
		return nil, true, err
	}
	return &table, true, nil
}

func parseSpreadsheet(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoData
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return fromRows(rows)
}

func parseDelimited(data []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	if bytes.Count(data, []byte("\t")) >= bytes.Count(data, []byte(",")) {
		r.Comma = '\t'
	}
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read delimited rates: %w", err)
		}
		rows = append(rows, record)
	}
	return fromRows(rows)
}

func fromRows(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	countyCol, rateCol := detectHeaders(rows[0])
	if countyCol < 0 || rateCol < 0 {
		return nil, ErrHeadersNotFound
	}

	table := &Table{Counties: make(map[string]float64)}
	for _, row := range rows[1:] {
		if countyCol >= len(row) || rateCol >= len(row) {
			continue
		}
		county := CountyName(row[countyCol])
		if county == "" {
			continue
		}
		rate, ok := ParseRateValue(row[rateCol])
		if !ok {
			continue
		}
		table.Counties[county] = rate
	}
	if len(table.Counties) == 0 {
		return nil, ErrNoRows
	}
	return table, nil
}

// detectHeaders returns the county and rate column indexes, or -1. The
// county column is chosen first and is never reused for the rate.
func detectHeaders(header []string) (countyCol, rateCol int) {
	countyCol, rateCol = -1, -1
	norms := make([]string, len(header))
	for i, h := range header {
		norms[i] = strings.TrimSpace(headerNoise.ReplaceAllString(strings.ToLower(h), " "))
	}
	for i, n := range norms {
		if containsAny(n, countyAliases) {
			countyCol = i
			break
		}
	}
	for i, n := range norms {
		if i != countyCol && containsAny(n, rateAliases) {
			rateCol = i
			break
		}
	}
	return countyCol, rateCol
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
