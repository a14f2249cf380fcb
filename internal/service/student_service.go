package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Kunj2411/Lokmanya-ATS/internal/models"
	"github.com/Kunj2411/Lokmanya-ATS/internal/repository"
	appErrors "github.com/Kunj2411/Lokmanya-ATS/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	ExistsByEnrollmentNo(ctx context.Context, enrollmentNo string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
	ListDepartments(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (*models.RosterStats, error)
}

// RosterListener is notified after a student was added or removed.
type RosterListener interface {
	RosterChanged()
}

// StudentService manages the roster.
type StudentService struct {
	repo      studentRepository
	listener  RosterListener
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService. listener may be nil.
func NewStudentService(repo studentRepository, listener RosterListener, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, listener: listener, validator: validate, logger: logger}
}

// List returns the roster ordered by enrollment number.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	filter.Department = strings.TrimSpace(filter.Department)
	students, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.FromStore(err, "failed to list students")
	}
	return students, nil
}

// Create adds a student. Enrollment numbers must be unique.
func (s *StudentService) Create(ctx context.Context, req models.CreateStudentRequest) (*models.Student, error) {
	req.EnrollmentNo = strings.TrimSpace(req.EnrollmentNo)
	req.Name = strings.TrimSpace(req.Name)
	req.Department = strings.TrimSpace(req.Department)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "please fill all fields")
	}

	exists, err := s.repo.ExistsByEnrollmentNo(ctx, req.EnrollmentNo)
	if err != nil {
		return nil, appErrors.FromStore(err, "failed to check enrollment number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment number already exists")
	}

	student := &models.Student{
		EnrollmentNo: req.EnrollmentNo,
		Name:         req.Name,
		Department:   req.Department,
		Email:        req.Email,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment number already exists")
		}
		return nil, appErrors.FromStore(err, "failed to create student")
	}
	s.logger.Info("student created", zap.String("student_id", student.ID), zap.String("enrollment_no", student.EnrollmentNo))
	s.notify()
	return student, nil
}

// Delete removes a student from the roster. Past attendance records are kept.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.FromStore(err, "failed to delete student")
	}
	s.logger.Info("student deleted", zap.String("student_id", id))
	s.notify()
	return nil
}

func (s *StudentService) notify() {
	if s.listener != nil {
		s.listener.RosterChanged()
	}
}

// ListDepartments returns the distinct departments on the roster.
func (s *StudentService) ListDepartments(ctx context.Context) ([]string, error) {
	departments, err := s.repo.ListDepartments(ctx)
	if err != nil {
		return nil, appErrors.FromStore(err, "failed to list departments")
	}
	return departments, nil
}

// Stats returns roster totals.
func (s *StudentService) Stats(ctx context.Context) (*models.RosterStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, appErrors.FromStore(err, "failed to load roster stats")
	}
	return stats, nil
}
