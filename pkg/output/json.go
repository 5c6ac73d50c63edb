package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iwvelando/auto-loan-calc/internal/calculator"
)

// JSONFormat writes results as an indented JSON array.
func JSONFormat(w io.Writer, results []calculator.Report) error {
	if results == nil {
		results = []calculator.Report{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}
