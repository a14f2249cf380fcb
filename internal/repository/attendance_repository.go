package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Kunj2411/Lokmanya-ATS/internal/models"
)

const attendanceSelect = `SELECT a.id, a.student_id, to_char(a.date, 'YYYY-MM-DD') AS date, a.department, a.subject, a.lecture_no,
        a.is_present, a.marked_by, a.created_at, a.updated_at,
        s.enrollment_no, s.name AS student_name, s.department AS student_department, s.email AS student_email
        FROM attendance a LEFT JOIN students s ON s.id = a.student_id`

// AttendanceRepository persists per-lecture attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

type attendanceRow struct {
	models.AttendanceRecord
	EnrollmentNo      sql.NullString `db:"enrollment_no"`
	StudentName       sql.NullString `db:"student_name"`
	StudentDepartment sql.NullString `db:"student_department"`
	StudentEmail      sql.NullString `db:"student_email"`
}

func (row attendanceRow) record() models.AttendanceRecord {
	rec := row.AttendanceRecord
	if row.EnrollmentNo.Valid {
		rec.Student = &models.StudentRef{
			EnrollmentNo: row.EnrollmentNo.String,
			Name:         row.StudentName.String,
			Department:   row.StudentDepartment.String,
			Email:        row.StudentEmail.String,
		}
	}
	return rec
}

// ListForReport returns the records within the inclusive date range, newest
// first, with the roster fields of students that still exist.
func (r *AttendanceRepository) ListForReport(ctx context.Context, filter models.ReportFilter) ([]models.AttendanceRecord, error) {
	conditions := []string{"a.date BETWEEN $1 AND $2"}
	args := []interface{}{filter.StartDate, filter.EndDate}
	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("a.department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Subject != "" {
		conditions = append(conditions, fmt.Sprintf("a.subject = $%d", len(args)+1))
		args = append(args, filter.Subject)
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY a.date DESC", attendanceSelect, strings.Join(conditions, " AND "))
	var rows []attendanceRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance for report: %w", err)
	}
	return toRecords(rows), nil
}

// FindByKey returns the marks already stored for one lecture sheet.
func (r *AttendanceRepository) FindByKey(ctx context.Context, key models.CaptureKey) ([]models.AttendanceRecord, error) {
	query := attendanceSelect + " WHERE a.date = $1 AND a.department = $2 AND a.lecture_no = $3 AND a.subject = $4"
	var rows []attendanceRow
	if err := r.db.SelectContext(ctx, &rows, query, key.Date, key.Department, key.LectureNo, key.Subject); err != nil {
		return nil, fmt.Errorf("find attendance by key: %w", err)
	}
	return toRecords(rows), nil
}

// UpsertBatch writes all records in one transaction. A record whose natural key
// already exists replaces the stored mark and marker.
func (r *AttendanceRepository) UpsertBatch(ctx context.Context, records []models.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance upsert: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO attendance (id, student_id, date, department, subject, lecture_no, is_present, marked_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (student_id, date, department, lecture_no, subject)
DO UPDATE SET is_present = EXCLUDED.is_present, marked_by = EXCLUDED.marked_by, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		rec.UpdatedAt = now
		if _, err := tx.ExecContext(ctx, query, rec.ID, rec.StudentID, rec.Date, rec.Department, rec.Subject, rec.LectureNo, rec.IsPresent, rec.MarkedBy, rec.CreatedAt, rec.UpdatedAt); err != nil {
			return fmt.Errorf("upsert attendance for student %s: %w", rec.StudentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance upsert: %w", err)
	}
	committed = true
	return nil
}

func toRecords(rows []attendanceRow) []models.AttendanceRecord {
	records := make([]models.AttendanceRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records
}
