package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kunj2411/Lokmanya-ATS/internal/models"
	appErrors "github.com/Kunj2411/Lokmanya-ATS/pkg/errors"
)

var facultySession = models.Session{UserID: "f1", Role: models.RoleFaculty, Email: "faculty@example.edu"}

func physicsKey() models.CaptureKey {
	return models.CaptureKey{Date: "2024-01-01", Department: "Computer Science", Subject: "Physics", LectureNo: 1}
}

type recordingListener struct {
	keys []models.CaptureKey
}

func (l *recordingListener) AttendanceChanged(key models.CaptureKey) {
	l.keys = append(l.keys, key)
}

func newAttendance(store *memoryStore, listener AttendanceListener) *AttendanceService {
	return NewAttendanceService(store, store, NewSubjectCatalog([]string{"Physics", "Chemistry"}), listener, nil, nil, nil, AttendanceServiceConfig{})
}

func TestCaptureSessionLifecycle(t *testing.T) {
	store := newMemoryStore(roster()...)
	svc := newAttendance(store, nil)
	ctx := context.Background()

	capture, err := svc.NewSession(facultySession, physicsKey())
	require.NoError(t, err)
	assert.Equal(t, CaptureIdle, capture.State())

	assert.Error(t, capture.Toggle("s1"))

	require.NoError(t, capture.Load(ctx))
	assert.Equal(t, CaptureLoaded, capture.State())
	present, absent := capture.Counts()
	assert.Equal(t, 0, present)
	assert.Equal(t, 2, absent)

	snapshot := capture.Snapshot()
	require.Len(t, snapshot.Students, 2)
	assert.Equal(t, "CS2024002", snapshot.Students[0].EnrollmentNo)

	require.NoError(t, capture.Toggle("s1"))
	assert.Equal(t, CaptureEdited, capture.State())

	err = capture.Toggle("s3")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	result, err := capture.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, CaptureIdle, capture.State())
	assert.Equal(t, 2, result.Saved)
	assert.Equal(t, 1, result.PresentCount)
	assert.Equal(t, 1, result.AbsentCount)

	stored := map[string]models.AttendanceRecord{}
	for _, rec := range store.records() {
		stored[rec.StudentID] = rec
	}
	require.Len(t, stored, 2)
	assert.True(t, stored["s1"].IsPresent)
	assert.False(t, stored["s2"].IsPresent)
	assert.Equal(t, "f1", stored["s2"].MarkedBy)
}

func TestCaptureSessionRejectsEmptySubmission(t *testing.T) {
	svc := newAttendance(newMemoryStore(roster()...), nil)
	capture, err := svc.NewSession(facultySession, physicsKey())
	require.NoError(t, err)
	require.NoError(t, capture.Load(context.Background()))

	_, err = capture.Submit(context.Background())
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "mark attendance for at least one student", appErr.Message)
}

func TestCaptureSessionFailedSubmitKeepsMarks(t *testing.T) {
	store := newMemoryStore(roster()...)
	store.upsertErr = errors.New("network down")
	svc := newAttendance(store, nil)
	ctx := context.Background()

	capture, err := svc.NewSession(facultySession, physicsKey())
	require.NoError(t, err)
	require.NoError(t, capture.Load(ctx))
	require.NoError(t, capture.MarkAll(true))

	_, err = capture.Submit(ctx)
	assert.Equal(t, appErrors.ErrStore.Code, appErrors.FromError(err).Code)
	assert.Equal(t, CaptureEdited, capture.State())
	present, _ := capture.Counts()
	assert.Equal(t, 2, present)

	store.mu.Lock()
	store.upsertErr = nil
	store.mu.Unlock()
	result, err := capture.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.PresentCount)
}

func TestCaptureSessionLoadsExistingMarks(t *testing.T) {
	store := newMemoryStore(roster()...)
	key := physicsKey()
	require.NoError(t, store.UpsertBatch(context.Background(), []models.AttendanceRecord{
		{StudentID: "s2", Date: key.Date, Department: key.Department, Subject: key.Subject, LectureNo: key.LectureNo, IsPresent: true},
	}))
	svc := newAttendance(store, nil)

	snapshot, err := svc.Load(context.Background(), facultySession, key)
	require.NoError(t, err)
	assert.True(t, snapshot.Marks["s2"])
	assert.False(t, snapshot.Marks["s1"])
	assert.Equal(t, 1, snapshot.PresentCount)
	assert.Equal(t, 1, snapshot.AbsentCount)
}

func TestAttendanceServiceSubmitTwiceOverwrites(t *testing.T) {
	store := newMemoryStore(roster()...)
	listener := &recordingListener{}
	svc := newAttendance(store, listener)
	ctx := context.Background()

	req := models.CaptureSubmitRequest{CaptureKey: physicsKey(), Marks: map[string]bool{"s1": true}}
	_, err := svc.Submit(ctx, facultySession, req)
	require.NoError(t, err)

	req.Marks = map[string]bool{"s1": false}
	result, err := svc.Submit(ctx, facultySession, req)
	require.NoError(t, err)
	assert.Equal(t, 0, result.PresentCount)

	records := store.records()
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.False(t, rec.IsPresent)
	}
	assert.Len(t, listener.keys, 2)
}

func TestAttendanceServiceKeyValidation(t *testing.T) {
	svc := newAttendance(newMemoryStore(roster()...), nil)
	ctx := context.Background()

	cases := map[string]models.CaptureKey{
		"missing date":    {Department: "Computer Science", Subject: "Physics", LectureNo: 1},
		"bad date":        {Date: "01/01/2024", Department: "Computer Science", Subject: "Physics", LectureNo: 1},
		"no department":   {Date: "2024-01-01", Subject: "Physics", LectureNo: 1},
		"unknown subject": {Date: "2024-01-01", Department: "Computer Science", Subject: "Astrology", LectureNo: 1},
		"lecture zero":    {Date: "2024-01-01", Department: "Computer Science", Subject: "Physics"},
		"lecture eleven":  {Date: "2024-01-01", Department: "Computer Science", Subject: "Physics", LectureNo: 11},
	}
	for name, key := range cases {
		_, err := svc.Load(ctx, facultySession, key)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code, name)
	}

	_, err := svc.Load(ctx, models.Session{UserID: "a1", Role: models.RoleAdmin}, physicsKey())
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceSubmitUnknownStudent(t *testing.T) {
	store := newMemoryStore(roster()...)
	svc := newAttendance(store, nil)

	_, err := svc.Submit(context.Background(), facultySession, models.CaptureSubmitRequest{CaptureKey: physicsKey(), Marks: map[string]bool{"s3": true}})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.records())
}
