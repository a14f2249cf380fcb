package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Kunj2411/Lokmanya-ATS/internal/models"
	"github.com/Kunj2411/Lokmanya-ATS/internal/service"
	appErrors "github.com/Kunj2411/Lokmanya-ATS/pkg/errors"
)

type tokenTable map[string]*models.JWTClaims

func (t tokenTable) ValidateToken(token string) (*models.JWTClaims, error) {
	claims, ok := t[token]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return claims, nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	tokens := tokenTable{
		"admin":   {UserID: "a1", Role: models.RoleAdmin},
		"faculty": {UserID: "f1", Role: models.RoleFaculty},
	}
	Register(r.Group("/api/v1"), tokens, Handlers{
		Auth:       NewAuthHandler(&authServiceMock{}),
		Students:   NewStudentHandler(&studentServiceMock{}),
		Attendance: NewAttendanceHandler(&attendanceServiceMock{}),
		Reports: NewReportHandler(&reportServiceMock{
			pivot: &service.PivotReport{Header: []string{"Enrollment No."}},
		}),
	})
	return r
}

func call(r http.Handler, method, path, token string) int {
	req := httptest.NewRequest(method, path, strings.NewReader(""))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRouterRoleAccess(t *testing.T) {
	r := newTestRouter()
	pivot := "/api/v1/reports/attendance/pivot?startDate=2024-01-01&endDate=2024-01-31"
	sheet := "/api/v1/attendance/sessions?date=2024-01-01&department=CS&subject=Physics&lecture=1"

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"anonymous report", http.MethodGet, pivot, "", http.StatusUnauthorized},
		{"faculty report", http.MethodGet, pivot, "faculty", http.StatusForbidden},
		{"admin report", http.MethodGet, pivot, "admin", http.StatusOK},
		{"admin capture", http.MethodGet, sheet, "admin", http.StatusForbidden},
		{"faculty capture", http.MethodGet, sheet, "faculty", http.StatusOK},
		{"faculty roster", http.MethodGet, "/api/v1/students", "faculty", http.StatusForbidden},
		{"faculty departments", http.MethodGet, "/api/v1/departments", "faculty", http.StatusOK},
		{"admin subjects", http.MethodGet, "/api/v1/subjects", "admin", http.StatusOK},
		{"bad token", http.MethodGet, "/api/v1/auth/me", "forged", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, call(r, tc.method, tc.path, tc.token))
		})
	}
}
