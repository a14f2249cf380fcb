package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kunj2411/Lokmanya-ATS/internal/models"
	appErrors "github.com/Kunj2411/Lokmanya-ATS/pkg/errors"
	"github.com/Kunj2411/Lokmanya-ATS/pkg/response"
)

type attendanceService interface {
	Load(ctx context.Context, session models.Session, key models.CaptureKey) (*models.CaptureSnapshot, error)
	Submit(ctx context.Context, session models.Session, req models.CaptureSubmitRequest) (*models.CaptureResult, error)
	Subjects() []string
}

// AttendanceHandler exposes the faculty capture endpoints.
type AttendanceHandler struct {
	attendance attendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance attendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// LoadSession godoc
// @Summary Load an attendance sheet
// @Description Roster of the department with any marks already stored for the lecture
// @Tags Attendance
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param department query string true "Department"
// @Param subject query string true "Subject"
// @Param lecture query int true "Lecture number"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/sessions [get]
func (h *AttendanceHandler) LoadSession(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}

	var key models.CaptureKey
	if err := c.ShouldBindQuery(&key); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid attendance key"))
		return
	}

	snapshot, err := h.attendance.Load(c.Request.Context(), session, key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// SubmitSession godoc
// @Summary Submit an attendance sheet
// @Description Stores one record per roster student; unmarked students are absent
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body models.CaptureSubmitRequest true "Marks keyed by student id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /attendance/sessions [put]
func (h *AttendanceHandler) SubmitSession(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}

	var req models.CaptureSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid attendance payload"))
		return
	}

	result, err := h.attendance.Submit(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Subjects godoc
// @Summary List subjects
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *AttendanceHandler) Subjects(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.attendance.Subjects(), nil)
}
