package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Kunj2411/Lokmanya-ATS/internal/models"
)

const studentColumns = "id, enrollment_no, name, department, email, created_at"

// StudentRepository manages persistence for the roster.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students ordered by enrollment number, optionally limited to a department.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	query := "SELECT " + studentColumns + " FROM students"
	args := []interface{}{}
	if filter.Department != "" {
		query += " WHERE department = $1"
		args = append(args, filter.Department)
	}
	query += " ORDER BY enrollment_no ASC"

	students := make([]models.Student, 0)
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := "SELECT " + studentColumns + " FROM students WHERE id = $1"
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// ExistsByEnrollmentNo checks whether an enrollment number is taken.
func (r *StudentRepository) ExistsByEnrollmentNo(ctx context.Context, enrollmentNo string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM students WHERE enrollment_no = $1 LIMIT 1", enrollmentNo); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment no: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO students (id, enrollment_no, name, department, email, created_at)
        VALUES (:id, :enrollment_no, :name, :department, :email, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Delete removes a student. It returns sql.ErrNoRows when nothing was deleted.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete student rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListDepartments returns the distinct departments present in the roster.
func (r *StudentRepository) ListDepartments(ctx context.Context) ([]string, error) {
	departments := make([]string, 0)
	if err := r.db.SelectContext(ctx, &departments, "SELECT DISTINCT department FROM students ORDER BY department ASC"); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// Stats counts students and distinct departments.
func (r *StudentRepository) Stats(ctx context.Context) (*models.RosterStats, error) {
	const query = `SELECT COUNT(*) AS total_students, COUNT(DISTINCT department) AS active_departments FROM students`
	var stats models.RosterStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("roster stats: %w", err)
	}
	return &stats, nil
}
