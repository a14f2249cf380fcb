package models

import "time"

// DateLayout is the calendar-day format used for attendance dates.
const DateLayout = "2006-01-02"

// StudentRef is the roster data joined onto a fetched attendance record.
type StudentRef struct {
	EnrollmentNo string `json:"enrollment_no"`
	Name         string `json:"name"`
	Department   string `json:"department"`
	Email        string `json:"email"`
}

// AttendanceRecord is one student's mark for one lecture. Student is nil when
// the roster entry no longer exists.
type AttendanceRecord struct {
	ID         string      `db:"id" json:"id"`
	StudentID  string      `db:"student_id" json:"student_id"`
	Date       string      `db:"date" json:"date"`
	Department string      `db:"department" json:"department"`
	Subject    string      `db:"subject" json:"subject"`
	LectureNo  int         `db:"lecture_no" json:"lecture_no"`
	IsPresent  bool        `db:"is_present" json:"is_present"`
	MarkedBy   string      `db:"marked_by" json:"marked_by"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"`
	Student    *StudentRef `db:"-" json:"student,omitempty"`
}

// CaptureKey identifies one lecture's attendance sheet. Together with the
// student id it forms the natural key of an attendance record.
type CaptureKey struct {
	Date       string `json:"date" form:"date" validate:"required,datetime=2006-01-02"`
	Department string `json:"department" form:"department" validate:"required,max=128"`
	Subject    string `json:"subject" form:"subject" validate:"required,max=128"`
	LectureNo  int    `json:"lecture_no" form:"lecture" validate:"required,min=1"`
}

// ReportFilter selects attendance records for reporting. Dates are inclusive.
type ReportFilter struct {
	StartDate  string `json:"start_date" form:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date" form:"endDate" validate:"required,datetime=2006-01-02"`
	Department string `json:"department,omitempty" form:"department" validate:"omitempty,max=128"`
	Subject    string `json:"subject,omitempty" form:"subject" validate:"omitempty,max=128"`
}

// CaptureSubmitRequest carries the marks a faculty member submits for a key.
type CaptureSubmitRequest struct {
	CaptureKey
	Marks map[string]bool `json:"marks"`
}

// CaptureSnapshot is the loaded state of a capture session.
type CaptureSnapshot struct {
	Key          CaptureKey      `json:"key"`
	Students     []Student       `json:"students"`
	Marks        map[string]bool `json:"marks"`
	PresentCount int             `json:"present_count"`
	AbsentCount  int             `json:"absent_count"`
}

// CaptureResult reports a successful submission.
type CaptureResult struct {
	Key          CaptureKey `json:"key"`
	Saved        int        `json:"saved"`
	PresentCount int        `json:"present_count"`
	AbsentCount  int        `json:"absent_count"`
}
