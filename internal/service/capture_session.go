package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Kunj2411/Lokmanya-ATS/internal/models"
	appErrors "github.com/Kunj2411/Lokmanya-ATS/pkg/errors"
)

// CaptureState is the lifecycle position of a CaptureSession.
type CaptureState int

const (
	CaptureIdle CaptureState = iota
	CaptureLoaded
	CaptureEdited
	CaptureSubmitting
)

func (s CaptureState) String() string {
	switch s {
	case CaptureIdle:
		return "idle"
	case CaptureLoaded:
		return "loaded"
	case CaptureEdited:
		return "edited"
	case CaptureSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

type rosterSource interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
}

type attendanceStore interface {
	FindByKey(ctx context.Context, key models.CaptureKey) ([]models.AttendanceRecord, error)
	UpsertBatch(ctx context.Context, records []models.AttendanceRecord) error
}

// CaptureSession holds one faculty member's in-progress attendance sheet for a
// single lecture. Edits stay in memory until Submit, which writes exactly one
// record per loaded roster student.
type CaptureSession struct {
	mu       sync.Mutex
	session  models.Session
	key      models.CaptureKey
	roster   rosterSource
	store    attendanceStore
	logger   *zap.Logger
	state    CaptureState
	students []models.Student
	known    map[string]struct{}
	marks    map[string]bool
}

func newCaptureSession(session models.Session, key models.CaptureKey, roster rosterSource, store attendanceStore, logger *zap.Logger) *CaptureSession {
	return &CaptureSession{
		session: session,
		key:     key,
		roster:  roster,
		store:   store,
		logger:  logger.With(zap.String("user_id", session.UserID), zap.String("date", key.Date), zap.String("department", key.Department), zap.String("subject", key.Subject), zap.Int("lecture_no", key.LectureNo)),
		marks:   map[string]bool{},
		known:   map[string]struct{}{},
	}
}

// State returns the current lifecycle state.
func (c *CaptureSession) State() CaptureState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Load fetches the department roster and the marks already stored for the
// key. Students without a stored mark count as absent. Reloading discards
// unsaved edits.
func (c *CaptureSession) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == CaptureSubmitting {
		return appErrors.Clone(appErrors.ErrConflict, "attendance is being submitted")
	}

	students, err := c.roster.List(ctx, models.StudentFilter{Department: c.key.Department})
	if err != nil {
		return appErrors.FromStore(err, "failed to load students")
	}
	existing, err := c.store.FindByKey(ctx, c.key)
	if err != nil {
		return appErrors.FromStore(err, "failed to load existing attendance")
	}

	known := make(map[string]struct{}, len(students))
	for _, st := range students {
		known[st.ID] = struct{}{}
	}
	marks := make(map[string]bool, len(existing))
	for _, rec := range existing {
		if _, ok := known[rec.StudentID]; ok {
			marks[rec.StudentID] = rec.IsPresent
		}
	}

	c.students = students
	c.known = known
	c.marks = marks
	c.state = CaptureLoaded
	return nil
}

// Toggle flips one student's mark.
func (c *CaptureSession) Toggle(studentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(studentID); err != nil {
		return err
	}
	c.marks[studentID] = !c.marks[studentID]
	c.state = CaptureEdited
	return nil
}

// Set marks one student present or absent.
func (c *CaptureSession) Set(studentID string, present bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(studentID); err != nil {
		return err
	}
	c.marks[studentID] = present
	c.state = CaptureEdited
	return nil
}

// MarkAll sets every loaded student to the same mark.
func (c *CaptureSession) MarkAll(present bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(""); err != nil {
		return err
	}
	for _, st := range c.students {
		c.marks[st.ID] = present
	}
	c.state = CaptureEdited
	return nil
}

// Counts returns present and absent totals over the loaded roster.
func (c *CaptureSession) Counts() (present, absent int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts()
}

// Snapshot returns a copy of the loaded sheet.
func (c *CaptureSession) Snapshot() models.CaptureSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	marks := make(map[string]bool, len(c.students))
	for _, st := range c.students {
		marks[st.ID] = c.marks[st.ID]
	}
	present, absent := c.counts()
	return models.CaptureSnapshot{
		Key:          c.key,
		Students:     append([]models.Student(nil), c.students...),
		Marks:        marks,
		PresentCount: present,
		AbsentCount:  absent,
	}
}

// Submit upserts one record per loaded student in a single batch. On failure
// the session returns to Edited with its marks intact so it can be retried.
func (c *CaptureSession) Submit(ctx context.Context) (*models.CaptureResult, error) {
	c.mu.Lock()
	if c.state != CaptureLoaded && c.state != CaptureEdited {
		state := c.state
		c.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrConflict, "attendance sheet is "+state.String())
	}
	if len(c.marks) == 0 {
		c.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrValidation, "mark attendance for at least one student")
	}

	now := time.Now().UTC()
	records := make([]models.AttendanceRecord, 0, len(c.students))
	for _, st := range c.students {
		records = append(records, models.AttendanceRecord{
			StudentID:  st.ID,
			Date:       c.key.Date,
			Department: c.key.Department,
			Subject:    c.key.Subject,
			LectureNo:  c.key.LectureNo,
			IsPresent:  c.marks[st.ID],
			MarkedBy:   c.session.UserID,
			CreatedAt:  now,
		})
	}
	present, absent := c.counts()
	c.state = CaptureSubmitting
	c.mu.Unlock()

	err := c.store.UpsertBatch(ctx, records)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = CaptureEdited
		c.logger.Error("attendance submit failed", zap.Error(err))
		return nil, appErrors.FromStore(err, "failed to save attendance")
	}
	c.state = CaptureIdle
	c.logger.Info("attendance submitted", zap.Int("present", present), zap.Int("absent", absent))
	return &models.CaptureResult{Key: c.key, Saved: len(records), PresentCount: present, AbsentCount: absent}, nil
}

func (c *CaptureSession) editable(studentID string) error {
	if c.state != CaptureLoaded && c.state != CaptureEdited {
		return appErrors.Clone(appErrors.ErrConflict, "attendance sheet is "+c.state.String())
	}
	if studentID == "" {
		return nil
	}
	if _, ok := c.known[studentID]; !ok {
		return appErrors.Clone(appErrors.ErrValidation, "student "+studentID+" is not on this roster")
	}
	return nil
}

func (c *CaptureSession) counts() (present, absent int) {
	for _, st := range c.students {
		if c.marks[st.ID] {
			present++
		}
	}
	return present, len(c.students) - present
}
