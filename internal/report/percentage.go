package report

import (
	"math"
	"sort"

	"github.com/Kunj2411/Lokmanya-ATS/internal/models"
)

// Threshold is the attendance percentage below which a student is flagged.
const Threshold = 75.0

// RangeInput is the date range and holiday count a summary is computed over.
type RangeInput struct {
	StartDate string
	EndDate   string
	Holidays  int
}

// PercentageStat is one student's attendance summary. HasData is false when no
// classes were counted, in which case Percentage is zero rather than NaN.
type PercentageStat struct {
	StudentID      string  `json:"student_id"`
	EnrollmentNo   string  `json:"enrollment_no"`
	Name           string  `json:"name"`
	Department     string  `json:"department"`
	TotalPresent   int     `json:"total_present"`
	TotalAbsent    int     `json:"total_absent"`
	TotalClasses   int     `json:"total_classes"`
	Percentage     float64 `json:"percentage"`
	HasData        bool    `json:"has_data"`
	BelowThreshold bool    `json:"below_threshold"`
	WorkingDays    int     `json:"working_days"`
	TotalDays      int     `json:"total_days"`
	Holidays       int     `json:"holidays"`
}

// RangeSummary holds the range level figures shared by every stat row.
type RangeSummary struct {
	TotalDays   int `json:"total_days"`
	WorkingDays int `json:"working_days"`
	Holidays    int `json:"holidays"`
}

// Summarize computes the range figures for in.
func Summarize(in RangeInput) (RangeSummary, error) {
	total, err := TotalDays(in.StartDate, in.EndDate)
	if err != nil {
		return RangeSummary{}, err
	}
	return RangeSummary{
		TotalDays:   total,
		WorkingDays: WorkingDays(total, in.Holidays),
		Holidays:    in.Holidays,
	}, nil
}

// CalculatePercentages groups records by student id and counts presence.
// Enrollment number and name come from the joined student and department from
// the record itself, taking the first record seen per student. Output is sorted
// by enrollment number with student id breaking ties.
func CalculatePercentages(records []models.AttendanceRecord, in RangeInput) ([]PercentageStat, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	summary, err := Summarize(in)
	if err != nil {
		return nil, err
	}

	byStudent := make(map[string]*PercentageStat)
	for _, rec := range records {
		stat, ok := byStudent[rec.StudentID]
		if !ok {
			stat = &PercentageStat{StudentID: rec.StudentID, Department: rec.Department}
			if rec.Student != nil {
				stat.EnrollmentNo = rec.Student.EnrollmentNo
				stat.Name = rec.Student.Name
			}
			byStudent[rec.StudentID] = stat
		}

		stat.TotalClasses++
		if rec.IsPresent {
			stat.TotalPresent++
		} else {
			stat.TotalAbsent++
		}
	}

	stats := make([]PercentageStat, 0, len(byStudent))
	for _, stat := range byStudent {
		stat.HasData = stat.TotalClasses > 0
		if stat.HasData {
			stat.Percentage = Percentage(stat.TotalPresent, stat.TotalClasses)
			stat.BelowThreshold = stat.Percentage < Threshold
		}
		stat.TotalDays = summary.TotalDays
		stat.WorkingDays = summary.WorkingDays
		stat.Holidays = summary.Holidays
		stats = append(stats, *stat)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].EnrollmentNo != stats[j].EnrollmentNo {
			return stats[i].EnrollmentNo < stats[j].EnrollmentNo
		}
		return stats[i].StudentID < stats[j].StudentID
	})

	return stats, nil
}

// Percentage returns present/total*100 rounded half away from zero to two
// decimals. It returns 0 when total is 0.
func Percentage(present, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(present)/float64(total)*10000) / 100
}
