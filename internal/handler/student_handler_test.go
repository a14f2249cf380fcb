package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kunj2411/Lokmanya-ATS/internal/models"
	appErrors "github.com/Kunj2411/Lokmanya-ATS/pkg/errors"
)

type studentServiceMock struct {
	filter    models.StudentFilter
	created   models.CreateStudentRequest
	deletedID string
	err       error
}

func (m *studentServiceMock) List(_ context.Context, filter models.StudentFilter) ([]models.Student, error) {
	m.filter = filter
	return []models.Student{{ID: "s1", EnrollmentNo: "CS2024001"}}, m.err
}

func (m *studentServiceMock) Create(_ context.Context, req models.CreateStudentRequest) (*models.Student, error) {
	m.created = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.Student{ID: "s9", EnrollmentNo: req.EnrollmentNo, Name: req.Name}, nil
}

func (m *studentServiceMock) Delete(_ context.Context, id string) error {
	m.deletedID = id
	return m.err
}

func (m *studentServiceMock) ListDepartments(context.Context) ([]string, error) {
	return []string{"Computer Science", "Mechanical"}, m.err
}

func (m *studentServiceMock) Stats(context.Context) (*models.RosterStats, error) {
	return &models.RosterStats{TotalStudents: 3, ActiveDepartments: 2}, m.err
}

func TestStudentHandlerList(t *testing.T) {
	mockSvc := &studentServiceMock{}
	handler := NewStudentHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/students?department=+Mechanical+", nil)
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Mechanical", mockSvc.filter.Department)
}

func TestStudentHandlerCreate(t *testing.T) {
	mockSvc := &studentServiceMock{}
	handler := NewStudentHandler(mockSvc)

	body, _ := json.Marshal(models.CreateStudentRequest{EnrollmentNo: "CS2024003", Name: "Neha", Department: "Computer Science", Email: "neha@example.edu"})
	c, w := newGinContext(http.MethodPost, "/students", body)
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "CS2024003", mockSvc.created.EnrollmentNo)
}

func TestStudentHandlerCreateConflict(t *testing.T) {
	handler := NewStudentHandler(&studentServiceMock{err: appErrors.Clone(appErrors.ErrConflict, "enrollment number already exists")})

	c, w := newGinContext(http.MethodPost, "/students", []byte(`{"enrollment_no":"CS2024001"}`))
	handler.Create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestStudentHandlerCreateMalformedBody(t *testing.T) {
	handler := NewStudentHandler(&studentServiceMock{})

	c, w := newGinContext(http.MethodPost, "/students", []byte(`{`))
	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStudentHandlerDelete(t *testing.T) {
	mockSvc := &studentServiceMock{}
	handler := NewStudentHandler(mockSvc)

	c, w := newGinContext(http.MethodDelete, "/students/s1", nil)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	handler.Delete(c)
	c.Writer.WriteHeaderNow() // gin's engine flushes the pending status after handlers run

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "s1", mockSvc.deletedID)
}

func TestStudentHandlerDepartmentsStoreError(t *testing.T) {
	handler := NewStudentHandler(&studentServiceMock{err: appErrors.Wrap(errors.New("dial tcp"), appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list departments")})

	c, w := newGinContext(http.MethodGet, "/departments", nil)
	handler.Departments(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestStudentHandlerStats(t *testing.T) {
	handler := NewStudentHandler(&studentServiceMock{})

	c, w := newGinContext(http.MethodGet, "/students/stats", nil)
	handler.Stats(c)

	require.Equal(t, http.StatusOK, w.Code)
	var stats models.RosterStats
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &stats))
	assert.Equal(t, 3, stats.TotalStudents)
}
