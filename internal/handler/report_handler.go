package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Kunj2411/Lokmanya-ATS/internal/models"
	"github.com/Kunj2411/Lokmanya-ATS/internal/service"
	appErrors "github.com/Kunj2411/Lokmanya-ATS/pkg/errors"
	"github.com/Kunj2411/Lokmanya-ATS/pkg/response"
)

type reportService interface {
	Generate(ctx context.Context, session models.Session, filter models.ReportFilter) ([]models.AttendanceRecord, error)
	Pivot(ctx context.Context, session models.Session, filter models.ReportFilter) (*service.PivotReport, error)
	Percentages(ctx context.Context, session models.Session, filter models.ReportFilter, holidays int) (*service.PercentageReport, error)
	Export(ctx context.Context, session models.Session, filter models.ReportFilter, format string) (*service.ExportFile, error)
	ExportPercentages(ctx context.Context, session models.Session, filter models.ReportFilter, holidays int) (*service.ExportFile, error)
}

// ReportHandler exposes the admin reporting endpoints.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Records godoc
// @Summary Fetch attendance records
// @Tags Reports
// @Produce json
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Param department query string false "Department"
// @Param subject query string false "Subject"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /reports/attendance [get]
func (h *ReportHandler) Records(c *gin.Context) {
	session, filter, ok := reportRequest(c)
	if !ok {
		return
	}

	records, err := h.reports.Generate(c.Request.Context(), session, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil, map[string]interface{}{"total": len(records)})
}

// Pivot godoc
// @Summary Student by date attendance matrix
// @Tags Reports
// @Produce json
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Param department query string false "Department"
// @Param subject query string false "Subject"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /reports/attendance/pivot [get]
func (h *ReportHandler) Pivot(c *gin.Context) {
	session, filter, ok := reportRequest(c)
	if !ok {
		return
	}

	pivot, err := h.reports.Pivot(c.Request.Context(), session, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pivot, nil)
}

// Percentages godoc
// @Summary Attendance percentages per student
// @Tags Reports
// @Produce json
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Param department query string false "Department"
// @Param subject query string false "Subject"
// @Param holidays query int false "Holidays in range"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /reports/attendance/percentages [get]
func (h *ReportHandler) Percentages(c *gin.Context) {
	session, filter, ok := reportRequest(c)
	if !ok {
		return
	}
	holidays, ok := holidaysParam(c)
	if !ok {
		return
	}

	result, err := h.reports.Percentages(c.Request.Context(), session, filter, holidays)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Stats, nil, map[string]interface{}{
		"total_days":            result.Summary.TotalDays,
		"working_days":          result.Summary.WorkingDays,
		"holidays":              result.Summary.Holidays,
		"threshold":             result.Threshold,
		"holidays_exceed_range": result.HolidaysExceedRange,
	})
}

// Export godoc
// @Summary Download the attendance matrix
// @Tags Reports
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Param department query string false "Department"
// @Param subject query string false "Subject"
// @Param format query string false "csv or xlsx"
// @Success 200 {file} file
// @Failure 412 {object} response.Envelope
// @Router /reports/attendance/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	session, filter, ok := reportRequest(c)
	if !ok {
		return
	}

	file, err := h.reports.Export(c.Request.Context(), session, filter, c.DefaultQuery("format", service.FormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// ExportPercentages godoc
// @Summary Download the percentage sheet
// @Tags Reports
// @Produce application/pdf
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Param department query string false "Department"
// @Param subject query string false "Subject"
// @Param holidays query int false "Holidays in range"
// @Success 200 {file} file
// @Failure 412 {object} response.Envelope
// @Router /reports/attendance/percentages/export [get]
func (h *ReportHandler) ExportPercentages(c *gin.Context) {
	session, filter, ok := reportRequest(c)
	if !ok {
		return
	}
	holidays, ok := holidaysParam(c)
	if !ok {
		return
	}

	file, err := h.reports.ExportPercentages(c.Request.Context(), session, filter, holidays)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

func reportRequest(c *gin.Context) (models.Session, models.ReportFilter, bool) {
	session, ok := sessionFromContext(c)
	if !ok {
		return models.Session{}, models.ReportFilter{}, false
	}
	var filter models.ReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid report filter"))
		return models.Session{}, models.ReportFilter{}, false
	}
	return session, filter, true
}

func holidaysParam(c *gin.Context) (int, bool) {
	raw := strings.TrimSpace(c.Query("holidays"))
	if raw == "" {
		return 0, true
	}
	holidays, err := strconv.Atoi(raw)
	if err != nil {
		response.Error(c, appErrors.Invalid(err, "holidays must be a whole number"))
		return 0, false
	}
	return holidays, true
}
