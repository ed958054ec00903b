package google

import (
	"fmt"
	"strings"

	"fintrack/internal/core"
)

// parseValues converts a values matrix (as returned by the Sheets API) into
// transactions. The first row must be the header. Sheets drops trailing
// empty cells, so short rows are padded; fully empty rows are skipped.
func parseValues(values [][]interface{}, layout string) ([]core.Transaction, error) {
	if len(values) == 0 {
		return nil, nil
	}
	if err := core.CheckHeader(toStrings(values[0])); err != nil {
		return nil, err
	}
	var out []core.Transaction
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if isBlank(row) {
			continue
		}
		for len(row) < len(core.Columns) {
			row = append(row, "")
		}
		t, err := core.DecodeRecord(row, layout)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
