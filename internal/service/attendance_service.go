package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Kunj2411/Lokmanya-ATS/internal/models"
	appErrors "github.com/Kunj2411/Lokmanya-ATS/pkg/errors"
)

// AttendanceListener is notified after a sheet has been stored.
type AttendanceListener interface {
	AttendanceChanged(key models.CaptureKey)
}

// AttendanceServiceConfig bounds capture keys.
type AttendanceServiceConfig struct {
	MaxLectures int
}

// AttendanceService drives faculty attendance capture over stateless requests.
type AttendanceService struct {
	roster    rosterSource
	store     attendanceStore
	catalog   *SubjectCatalog
	listener  AttendanceListener
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    AttendanceServiceConfig
}

// NewAttendanceService constructs an AttendanceService. listener may be nil.
func NewAttendanceService(roster rosterSource, store attendanceStore, catalog *SubjectCatalog, listener AttendanceListener, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg AttendanceServiceConfig) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxLectures <= 0 {
		cfg.MaxLectures = 10
	}
	if catalog == nil {
		catalog = NewSubjectCatalog(nil)
	}
	return &AttendanceService{
		roster:    roster,
		store:     store,
		catalog:   catalog,
		listener:  listener,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    cfg,
	}
}

// NewSession validates the key and returns an idle capture session for it.
func (s *AttendanceService) NewSession(session models.Session, key models.CaptureKey) (*CaptureSession, error) {
	if session.Role != models.RoleFaculty {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only faculty can mark attendance")
	}
	key, err := s.normalizeKey(key)
	if err != nil {
		return nil, err
	}
	return newCaptureSession(session, key, s.roster, s.store, s.logger), nil
}

// Load returns the roster and stored marks for a lecture sheet.
func (s *AttendanceService) Load(ctx context.Context, session models.Session, key models.CaptureKey) (*models.CaptureSnapshot, error) {
	capture, err := s.NewSession(session, key)
	if err != nil {
		return nil, err
	}
	if err := capture.Load(ctx); err != nil {
		return nil, err
	}
	snapshot := capture.Snapshot()
	return &snapshot, nil
}

// Submit loads the sheet, applies the submitted marks on top of stored ones
// and writes one record per roster student.
func (s *AttendanceService) Submit(ctx context.Context, session models.Session, req models.CaptureSubmitRequest) (*models.CaptureResult, error) {
	capture, err := s.NewSession(session, req.CaptureKey)
	if err != nil {
		return nil, err
	}
	if err := capture.Load(ctx); err != nil {
		return nil, err
	}
	for studentID, present := range req.Marks {
		if err := capture.Set(studentID, present); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	result, err := capture.Submit(ctx)
	if err != nil {
		s.metrics.RecordCapture("failure")
		return nil, err
	}
	s.metrics.RecordCapture("success")
	s.metrics.ObserveStore("upsert_batch", time.Since(start))

	if s.listener != nil {
		s.listener.AttendanceChanged(result.Key)
	}
	return result, nil
}

// Subjects lists the subjects attendance can be taken for.
func (s *AttendanceService) Subjects() []string {
	return s.catalog.List()
}

func (s *AttendanceService) normalizeKey(key models.CaptureKey) (models.CaptureKey, error) {
	key.Date = strings.TrimSpace(key.Date)
	key.Department = strings.TrimSpace(key.Department)
	key.Subject = strings.TrimSpace(key.Subject)
	if err := s.validator.Struct(key); err != nil {
		return key, appErrors.Invalid(err, "please select date, department, subject and lecture")
	}
	if !s.catalog.Contains(key.Subject) {
		return key, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown subject %q", key.Subject))
	}
	if key.LectureNo > s.config.MaxLectures {
		return key, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("lecture must be between 1 and %d", s.config.MaxLectures))
	}
	return key, nil
}
