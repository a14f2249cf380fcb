package export

import (
	"strings"
)

const (
	MIMECSV  = "text/csv; charset=utf-8"
	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEPDF  = "application/pdf"
)

// CSVExporter renders tables with every field quoted, rows separated by a
// bare newline and no trailing newline.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces the CSV bytes for the table, header row first.
func (e *CSVExporter) Render(t Table) ([]byte, error) {
	if err := t.validate("csv"); err != nil {
		return nil, err
	}
	var b strings.Builder
	writeQuotedRow(&b, t.Headers)
	for _, row := range t.Rows {
		b.WriteByte('\n')
		writeQuotedRow(&b, row)
	}
	return []byte(b.String()), nil
}

func writeQuotedRow(b *strings.Builder, fields []string) {
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(field, `"`, `""`))
		b.WriteByte('"')
	}
}
