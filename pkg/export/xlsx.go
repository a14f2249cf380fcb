package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Attendance"

// XLSXExporter renders tables into a single-sheet workbook.
type XLSXExporter struct{}

// NewXLSXExporter builds an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render writes the header row in bold followed by the data rows.
func (e *XLSXExporter) Render(t Table) ([]byte, error) {
	if err := t.validate("xlsx"); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := defaultSheet
	if t.Title != "" && len(t.Title) <= 31 {
		sheet = t.Title
	}
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	flagStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "#C00000"},
	})
	if err != nil {
		return nil, fmt.Errorf("create flag style: %w", err)
	}

	if err := writeRow(f, sheet, 1, t.Headers); err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(len(t.Headers), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, row := range t.Rows {
		rowNum := i + 2
		if err := writeRow(f, sheet, rowNum, row); err != nil {
			return nil, err
		}
		if t.flagged(i) {
			end, _ := excelize.CoordinatesToCellName(len(row), rowNum)
			if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", rowNum), end, flagStyle); err != nil {
				return nil, fmt.Errorf("style row %d: %w", rowNum, err)
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "C", 20); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	start := fmt.Sprintf("A%d", rowNum)
	if err := f.SetSheetRow(sheet, start, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}
