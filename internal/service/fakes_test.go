package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/Kunj2411/Lokmanya-ATS/internal/models"
)

// memoryStore is an in-memory roster and attendance store keyed like the real tables.
type memoryStore struct {
	mu         sync.Mutex
	students   map[string]models.Student
	attendance map[string]models.AttendanceRecord
	upserts    int

	listErr   error
	upsertErr error
	reportErr error
	// reportHook runs inside ListForReport before results are returned.
	reportHook func(ctx context.Context) error
}

func newMemoryStore(students ...models.Student) *memoryStore {
	s := &memoryStore{students: map[string]models.Student{}, attendance: map[string]models.AttendanceRecord{}}
	for _, st := range students {
		s.students[st.ID] = st
	}
	return s
}

func naturalKey(r models.AttendanceRecord) string {
	return fmt.Sprintf("%s|%s|%s|%d|%s", r.StudentID, r.Date, r.Department, r.LectureNo, r.Subject)
}

func (s *memoryStore) List(_ context.Context, filter models.StudentFilter) ([]models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.Student, 0)
	for _, st := range s.students {
		if filter.Department == "" || st.Department == filter.Department {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrollmentNo < out[j].EnrollmentNo })
	return out, nil
}

func (s *memoryStore) ExistsByEnrollmentNo(_ context.Context, enrollmentNo string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.students {
		if st.EnrollmentNo == enrollmentNo {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) Create(_ context.Context, student *models.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if student.ID == "" {
		student.ID = fmt.Sprintf("student-%d", len(s.students)+1)
	}
	s.students[student.ID] = *student
	return nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.students[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.students, id)
	return nil
}

func (s *memoryStore) ListDepartments(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := map[string]struct{}{}
	for _, st := range s.students {
		set[st.Department] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out, nil
}

func (s *memoryStore) Stats(ctx context.Context) (*models.RosterStats, error) {
	departments, _ := s.ListDepartments(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	return &models.RosterStats{TotalStudents: len(s.students), ActiveDepartments: len(departments)}, nil
}

func (s *memoryStore) FindByKey(_ context.Context, key models.CaptureKey) ([]models.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AttendanceRecord, 0)
	for _, rec := range s.attendance {
		if rec.Date == key.Date && rec.Department == key.Department && rec.LectureNo == key.LectureNo && rec.Subject == key.Subject {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *memoryStore) UpsertBatch(_ context.Context, records []models.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserts++
	for _, rec := range records {
		s.attendance[naturalKey(rec)] = rec
	}
	return nil
}

func (s *memoryStore) ListForReport(ctx context.Context, filter models.ReportFilter) ([]models.AttendanceRecord, error) {
	if s.reportHook != nil {
		if err := s.reportHook(ctx); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reportErr != nil {
		return nil, s.reportErr
	}
	out := make([]models.AttendanceRecord, 0)
	for _, rec := range s.attendance {
		if rec.Date < filter.StartDate || rec.Date > filter.EndDate {
			continue
		}
		if filter.Department != "" && rec.Department != filter.Department {
			continue
		}
		if filter.Subject != "" && rec.Subject != filter.Subject {
			continue
		}
		if st, ok := s.students[rec.StudentID]; ok {
			rec.Student = &models.StudentRef{EnrollmentNo: st.EnrollmentNo, Name: st.Name, Department: st.Department, Email: st.Email}
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (s *memoryStore) records() []models.AttendanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AttendanceRecord, 0, len(s.attendance))
	for _, rec := range s.attendance {
		out = append(out, rec)
	}
	return out
}
