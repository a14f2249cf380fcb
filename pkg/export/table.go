package export

import "fmt"

// Table is an ordered grid ready for rendering. Flagged, when set, marks rows
// that renderers should emphasise and must be as long as Rows.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Flagged []bool
}

func (t Table) validate(format string) error {
	if len(t.Headers) == 0 {
		return fmt.Errorf("%s requires at least one header", format)
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Headers) {
			return fmt.Errorf("%s row %d has %d cells, want %d", format, i, len(row), len(t.Headers))
		}
	}
	if t.Flagged != nil && len(t.Flagged) != len(t.Rows) {
		return fmt.Errorf("%s flags cover %d rows, want %d", format, len(t.Flagged), len(t.Rows))
	}
	return nil
}

func (t Table) flagged(i int) bool {
	return t.Flagged != nil && t.Flagged[i]
}
