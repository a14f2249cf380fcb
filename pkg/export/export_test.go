package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func pivotTable() Table {
	return Table{
		Title:   "Attendance",
		Headers: []string{"Enrollment No.", "Student Name", "Department", "1/1/2024", "1/2/2024"},
		Rows: [][]string{
			{"CS001", `Ann "AJ" Lee`, "CS", "Present", "-"},
			{"CS002", "Bob", "CS", "-", "Absent"},
		},
	}
}

func TestCSVQuotesEveryField(t *testing.T) {
	out, err := NewCSVExporter().Render(pivotTable())
	require.NoError(t, err)

	want := `"Enrollment No.","Student Name","Department","1/1/2024","1/2/2024"` + "\n" +
		`"CS001","Ann ""AJ"" Lee","CS","Present","-"` + "\n" +
		`"CS002","Bob","CS","-","Absent"`
	assert.Equal(t, want, string(out))
}

func TestCSVHeaderOnly(t *testing.T) {
	out, err := NewCSVExporter().Render(Table{Headers: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, `"a","b"`, string(out))
}

func TestTableValidation(t *testing.T) {
	_, err := NewCSVExporter().Render(Table{})
	assert.Error(t, err)

	_, err = NewCSVExporter().Render(Table{Headers: []string{"a"}, Rows: [][]string{{"1", "2"}}})
	assert.Error(t, err)

	_, err = NewPDFExporter().Render(Table{Headers: []string{"a"}, Rows: [][]string{{"1"}}, Flagged: []bool{}})
	assert.Error(t, err)
}

func TestXLSXRoundTrip(t *testing.T) {
	table := pivotTable()
	table.Flagged = []bool{false, true}
	out, err := NewXLSXExporter().Render(table)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Attendance")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, table.Headers, rows[0])
	assert.Equal(t, `Ann "AJ" Lee`, rows[1][1])
	assert.Equal(t, "Absent", rows[2][4])
}

func TestPDFRender(t *testing.T) {
	out, err := NewPDFExporter().Render(Table{
		Title:   "Attendance percentages",
		Headers: []string{"Enrollment No.", "Percentage"},
		Rows:    [][]string{{"CS001", "50.00"}, {"CS002", "100.00"}},
		Flagged: []bool{true, false},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
