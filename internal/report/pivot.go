package report

import (
	"errors"
	"sort"

	"github.com/Kunj2411/Lokmanya-ATS/internal/models"
)

const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
	// Placeholder fills cells for dates a student has no record on.
	Placeholder = "-"
	// Unknown stands in for roster fields of records whose student is gone.
	Unknown = "N/A"

	DefaultDateLabelLayout = "1/2/2006"
)

// ErrNoRecords is returned when a computation is asked to run on nothing.
var ErrNoRecords = errors.New("no attendance records")

// FixedHeaders lead every pivot header row.
var FixedHeaders = []string{"Enrollment No.", "Student Name", "Department"}

// PivotRow is one student's line in the matrix, keyed by enrollment number.
type PivotRow struct {
	EnrollmentNo string            `json:"enrollment_no"`
	Name         string            `json:"name"`
	Department   string            `json:"department"`
	Attendance   map[string]string `json:"attendance"`
}

// Pivot is the student by date presence matrix.
type Pivot struct {
	Dates []string   `json:"dates"`
	Rows  []PivotRow `json:"rows"`
}

// BuildPivot groups records by enrollment number and date. Name and department
// come from the first record seen for an enrollment number. When several
// records share an (enrollment number, date) cell the one processed last wins,
// so duplicates make the result depend on input order.
func BuildPivot(records []models.AttendanceRecord) (Pivot, error) {
	if len(records) == 0 {
		return Pivot{}, ErrNoRecords
	}

	dateSet := make(map[string]struct{})
	byEnrollment := make(map[string]*PivotRow)

	for _, rec := range records {
		dateSet[rec.Date] = struct{}{}

		enrollmentNo, name, department := Unknown, Unknown, Unknown
		if rec.Student != nil {
			enrollmentNo = orUnknown(rec.Student.EnrollmentNo)
			name = orUnknown(rec.Student.Name)
			department = orUnknown(rec.Student.Department)
		}

		row, ok := byEnrollment[enrollmentNo]
		if !ok {
			row = &PivotRow{
				EnrollmentNo: enrollmentNo,
				Name:         name,
				Department:   department,
				Attendance:   make(map[string]string),
			}
			byEnrollment[enrollmentNo] = row
		}
		row.Attendance[rec.Date] = status(rec.IsPresent)
	}

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	rows := make([]PivotRow, 0, len(byEnrollment))
	for _, row := range byEnrollment {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].EnrollmentNo < rows[j].EnrollmentNo })

	return Pivot{Dates: dates, Rows: rows}, nil
}

// Header returns the fixed columns followed by one label per date.
func (p Pivot) Header(layout string) ([]string, error) {
	if layout == "" {
		layout = DefaultDateLabelLayout
	}
	header := make([]string, 0, len(FixedHeaders)+len(p.Dates))
	header = append(header, FixedHeaders...)
	for _, d := range p.Dates {
		label, err := DateLabel(d, layout)
		if err != nil {
			return nil, err
		}
		header = append(header, label)
	}
	return header, nil
}

// Matrix returns one line per row with a cell for every date.
func (p Pivot) Matrix() [][]string {
	out := make([][]string, 0, len(p.Rows))
	for _, row := range p.Rows {
		line := make([]string, 0, len(FixedHeaders)+len(p.Dates))
		line = append(line, row.EnrollmentNo, row.Name, row.Department)
		for _, d := range p.Dates {
			cell, ok := row.Attendance[d]
			if !ok {
				cell = Placeholder
			}
			line = append(line, cell)
		}
		out = append(out, line)
	}
	return out
}

func status(present bool) string {
	if present {
		return StatusPresent
	}
	return StatusAbsent
}

func orUnknown(v string) string {
	if v == "" {
		return Unknown
	}
	return v
}
