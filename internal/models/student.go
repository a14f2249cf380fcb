package models

import "time"

// Student is a roster entry. Enrollment numbers are unique.
type Student struct {
	ID           string    `db:"id" json:"id"`
	EnrollmentNo string    `db:"enrollment_no" json:"enrollment_no"`
	Name         string    `db:"name" json:"name"`
	Department   string    `db:"department" json:"department"`
	Email        string    `db:"email" json:"email"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CreateStudentRequest is the admin payload for adding a student.
type CreateStudentRequest struct {
	EnrollmentNo string `json:"enrollment_no" validate:"required,max=32"`
	Name         string `json:"name" validate:"required,max=255"`
	Department   string `json:"department" validate:"required,max=128"`
	Email        string `json:"email" validate:"required,email"`
}

// StudentFilter narrows roster listings.
type StudentFilter struct {
	Department string
}

// RosterStats summarises the roster for the admin dashboard.
type RosterStats struct {
	TotalStudents     int `db:"total_students" json:"total_students"`
	ActiveDepartments int `db:"active_departments" json:"active_departments"`
}
