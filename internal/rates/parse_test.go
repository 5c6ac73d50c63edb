package rates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseRateValue(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"1.5%", 0.015, true},
		{"0.5 %", 0.005, true},
		{"0.015", 0.015, true},
		{"0.25", 0.25, true},
		{"1.5", 0.015, true},
		{"25", 0.25, true},
		{"26", 0, false},
		{"", 0, false},
		{"n/a", 0, false},
		{"-1", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseRateValue(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestParseTabSeparated(t *testing.T) {
	table, err := Parse("rates.tsv", []byte("County\tTotal Surtax Rate\nBrevard\t1.5%\nOrange\t0.5%\n"))
	require.NoError(t, err)

	assert.Len(t, table.Counties, 2)
	assert.InDelta(t, 0.015, table.Counties["Brevard"], 1e-12)
	assert.InDelta(t, 0.005, table.Counties["Orange"], 1e-12)
	assert.Nil(t, table.Meta.StateRate, "delimited text carries no statewide figures")
	assert.Nil(t, table.Meta.CountyCap)
}

func TestParseCommaSeparatedWithAliases(t *testing.T) {
	data := "Jurisdiction,Notes,Discretionary Sales Surtax\n" +
		"\"Alachua County\",\"effective Jan 1, 2025\",1.5\n" +
		"Baker County,,1\n" +
		"Bad Row,,huge\n" +
		",,0.5\n"
	table, err := Parse("rates.csv", []byte(data))
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"Alachua": 0.015, "Baker": 0.01}, table.Counties)
}

func TestParseJSON(t *testing.T) {
	table, err := Parse("rates.json", []byte(`{"meta":{"stateRate":0.06,"countyCap":5000},"counties":{"Orange":0.005,"DEFAULT":0.01}}`))
	require.NoError(t, err)
	assert.InDelta(t, 0.005, table.Counties["Orange"], 1e-12)
	assert.InDelta(t, 0.01, table.Counties["DEFAULT"], 1e-12)
}

func TestParseJSONKeepsZeroStateRate(t *testing.T) {
	table, err := Parse("rates.json", []byte(`{"meta":{"stateRate":0},"counties":{"Orange":0.005}}`))
	require.NoError(t, err)

	require.NotNil(t, table.Meta.StateRate)
	assert.Zero(t, *table.Meta.StateRate)
	assert.Nil(t, table.Meta.CountyCap)

	rc, _ := table.Context("Orange")
	assert.Zero(t, rc.StateRate)
	assert.InDelta(t, 5000, rc.CountyCap, 1e-9)
}

func TestParseHJSON(t *testing.T) {
	data := `{
  # exported by hand
  counties: {
    Orange: 0.005
    Brevard: 0.015,
  }
}`
	table, err := Parse("rates.hjson", []byte(data))
	require.NoError(t, err)
	assert.InDelta(t, 0.015, table.Counties["Brevard"], 1e-12)
	assert.Nil(t, table.Meta.StateRate)
	assert.InDelta(t, 0.06, table.Meta.StateRateOrDefault(), 1e-12)
}

func TestParseSpreadsheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"County Name", "Surtax Rate"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Orange County", "0.5%"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"Volusia", "0.015"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := Parse("Surtax.XLSX", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"Orange": 0.005, "Volusia": 0.015}, table.Counties)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
		want error
	}{
		{"empty input", "rates.csv", "  \n", ErrNoData},
		{"unknown headers", "rates.csv", "Name,Value\nOrange,1%\n", ErrHeadersNotFound},
		{"no usable rows", "rates.tsv", "County\tRate\nOrange\tunknown\n", ErrNoRows},
		{"JSON without counties", "rates.json", `{"meta":{"stateRate":0.06}}`, ErrNoRows},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.file, []byte(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := Parse("rates.json", []byte(`{"counties": [`))
	assert.Error(t, err)
}
