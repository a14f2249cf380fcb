package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Kunj2411/Lokmanya-ATS/internal/models"
	"github.com/Kunj2411/Lokmanya-ATS/internal/report"
	appErrors "github.com/Kunj2411/Lokmanya-ATS/pkg/errors"
	"github.com/Kunj2411/Lokmanya-ATS/pkg/export"
	"github.com/Kunj2411/Lokmanya-ATS/pkg/jobs"
)

const (
	reportCachePrefix = "reports:attendance:"
	// JobInvalidateReports drops cached report fetches after attendance changes.
	JobInvalidateReports = "reports.invalidate"

	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

type reportStore interface {
	ListForReport(ctx context.Context, filter models.ReportFilter) ([]models.AttendanceRecord, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type tableRenderer interface {
	Render(t export.Table) ([]byte, error)
}

// ReportServiceConfig tunes report rendering and caching.
type ReportServiceConfig struct {
	DateLabelLayout string
	CacheTTL        time.Duration
}

// PivotReport is the student by date matrix ready for display.
type PivotReport struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
	Dates  []string   `json:"dates"`
}

// PercentageReport carries per-student stats and the range they cover.
type PercentageReport struct {
	Stats               []report.PercentageStat `json:"stats"`
	Summary             report.RangeSummary     `json:"summary"`
	Threshold           float64                 `json:"threshold"`
	HolidaysExceedRange bool                    `json:"holidays_exceed_range"`
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportService fetches attendance for a filter and runs the report engine over it.
type ReportService struct {
	store     reportStore
	cache     *CacheService
	queue     jobEnqueuer
	metrics   *MetricsService
	tracker   *requestTracker
	validator *validator.Validate
	logger    *zap.Logger
	config    ReportServiceConfig
	renderers map[string]tableRenderer
}

// NewReportService constructs a ReportService. cache and queue may be nil.
func NewReportService(store reportStore, cache *CacheService, queue jobEnqueuer, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DateLabelLayout == "" {
		cfg.DateLabelLayout = report.DefaultDateLabelLayout
	}
	return &ReportService{
		store:     store,
		cache:     cache,
		queue:     queue,
		metrics:   metrics,
		tracker:   newRequestTracker(),
		validator: validate,
		logger:    logger,
		config:    cfg,
		renderers: map[string]tableRenderer{
			FormatCSV:  export.NewCSVExporter(),
			FormatXLSX: export.NewXLSXExporter(),
			FormatPDF:  export.NewPDFExporter(),
		},
	}
}

// Generate returns the raw records for the filter, newest first. An empty
// result is not an error here.
func (s *ReportService) Generate(ctx context.Context, session models.Session, filter models.ReportFilter) ([]models.AttendanceRecord, error) {
	filter, err := s.prepare(session, filter)
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, session, filter)
}

// Pivot builds the presence matrix for the filter.
func (s *ReportService) Pivot(ctx context.Context, session models.Session, filter models.ReportFilter) (*PivotReport, error) {
	filter, err := s.prepare(session, filter)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	records, err := s.fetchNonEmpty(ctx, session, filter)
	if err != nil {
		return nil, err
	}
	pivot, err := report.BuildPivot(records)
	if err != nil {
		return nil, s.engineError(err)
	}
	header, err := pivot.Header(s.config.DateLabelLayout)
	if err != nil {
		return nil, s.engineError(err)
	}
	s.metrics.ObserveReport("pivot", len(records), time.Since(start))
	return &PivotReport{Header: header, Rows: pivot.Matrix(), Dates: pivot.Dates}, nil
}

// Percentages computes per-student attendance over the filter's range.
func (s *ReportService) Percentages(ctx context.Context, session models.Session, filter models.ReportFilter, holidays int) (*PercentageReport, error) {
	if holidays < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "holidays must not be negative")
	}
	filter, err := s.prepare(session, filter)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	records, err := s.fetchNonEmpty(ctx, session, filter)
	if err != nil {
		return nil, err
	}
	in := report.RangeInput{StartDate: filter.StartDate, EndDate: filter.EndDate, Holidays: holidays}
	stats, err := report.CalculatePercentages(records, in)
	if err != nil {
		return nil, s.engineError(err)
	}
	summary, err := report.Summarize(in)
	if err != nil {
		return nil, s.engineError(err)
	}

	result := &PercentageReport{Stats: stats, Summary: summary, Threshold: report.Threshold}
	if summary.WorkingDays < 0 {
		result.HolidaysExceedRange = true
		s.logger.Warn("holidays exceed report range",
			zap.String("start_date", filter.StartDate),
			zap.String("end_date", filter.EndDate),
			zap.Int("total_days", summary.TotalDays),
			zap.Int("holidays", holidays))
	}
	s.metrics.ObserveReport("percentages", len(records), time.Since(start))
	return result, nil
}

// Export renders the pivot as csv or xlsx.
func (s *ReportService) Export(ctx context.Context, session models.Session, filter models.ReportFilter, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	filter, err := s.prepare(session, filter)
	if err != nil {
		return nil, err
	}
	pivot, err := s.Pivot(ctx, session, filter)
	if err != nil {
		return nil, err
	}
	data, err := s.renderers[format].Render(export.Table{Title: "Attendance", Headers: pivot.Header, Rows: pivot.Rows})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("attendance_report_%s_to_%s.%s", filter.StartDate, filter.EndDate, format),
		ContentType: contentType(format),
		Data:        data,
	}, nil
}

// ExportPercentages renders the percentage sheet as a PDF with students
// below the threshold highlighted.
func (s *ReportService) ExportPercentages(ctx context.Context, session models.Session, filter models.ReportFilter, holidays int) (*ExportFile, error) {
	filter, err := s.prepare(session, filter)
	if err != nil {
		return nil, err
	}
	result, err := s.Percentages(ctx, session, filter, holidays)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Title: fmt.Sprintf("Attendance %s to %s (working days %d, holidays %d)",
			filter.StartDate, filter.EndDate, result.Summary.WorkingDays, result.Summary.Holidays),
		Headers: []string{"Enrollment No.", "Student Name", "Department", "Present", "Absent", "Total Classes", "Percentage", "Working Days"},
		Rows:    make([][]string, 0, len(result.Stats)),
		Flagged: make([]bool, 0, len(result.Stats)),
	}
	for _, stat := range result.Stats {
		percentage := "no data"
		if stat.HasData {
			percentage = strconv.FormatFloat(stat.Percentage, 'f', 2, 64) + "%"
		}
		table.Rows = append(table.Rows, []string{
			stat.EnrollmentNo,
			stat.Name,
			stat.Department,
			strconv.Itoa(stat.TotalPresent),
			strconv.Itoa(stat.TotalAbsent),
			strconv.Itoa(stat.TotalClasses),
			percentage,
			strconv.Itoa(stat.WorkingDays),
		})
		table.Flagged = append(table.Flagged, stat.BelowThreshold)
	}

	data, err := s.renderers[FormatPDF].Render(table)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("attendance_percentages_%s_to_%s.pdf", filter.StartDate, filter.EndDate),
		ContentType: contentType(FormatPDF),
		Data:        data,
	}, nil
}

// AttendanceChanged drops cached report fetches after a sheet was stored.
func (s *ReportService) AttendanceChanged(key models.CaptureKey) {
	s.invalidate(map[string]string{"reason": "attendance", "date": key.Date})
}

// RosterChanged drops cached report fetches after a student was added or
// removed. Cached records carry the joined student fields.
func (s *ReportService) RosterChanged() {
	s.invalidate(map[string]string{"reason": "roster"})
}

// invalidate clears the report cache before returning so the next report
// reads the store. A failed attempt is retried through the jobs queue.
func (s *ReportService) invalidate(payload map[string]string) {
	if !s.cache.Enabled() {
		return
	}
	payload["pattern"] = reportCachePrefix + "*"
	job := jobs.Job{Type: JobInvalidateReports, Payload: payload}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.HandleInvalidate(ctx, job)
	if err == nil {
		return
	}
	if s.queue == nil {
		s.logger.Error("cache invalidation failed", zap.String("reason", payload["reason"]), zap.Error(err))
		return
	}
	s.logger.Warn("cache invalidation failed, retrying in background", zap.String("reason", payload["reason"]), zap.Error(err))
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Error("enqueue cache invalidation failed", zap.Error(err))
	}
}

// RegisterJobs binds the report handlers to q.
func (s *ReportService) RegisterJobs(q *jobs.Queue) {
	q.Register(JobInvalidateReports, s.HandleInvalidate)
}

// HandleInvalidate is the jobs handler for JobInvalidateReports.
func (s *ReportService) HandleInvalidate(ctx context.Context, job jobs.Job) error {
	pattern := job.Payload["pattern"]
	if pattern == "" {
		pattern = reportCachePrefix + "*"
	}
	return s.cache.Invalidate(ctx, pattern)
}

func (s *ReportService) fetchNonEmpty(ctx context.Context, session models.Session, filter models.ReportFilter) ([]models.AttendanceRecord, error) {
	records, err := s.fetch(ctx, session, filter)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoData, "")
	}
	return records, nil
}

// prepare checks the caller's role and returns the trimmed, validated filter.
func (s *ReportService) prepare(session models.Session, filter models.ReportFilter) (models.ReportFilter, error) {
	if session.Role != models.RoleAdmin {
		return filter, appErrors.Clone(appErrors.ErrForbidden, "only administrators can run reports")
	}
	return s.normalizeFilter(filter)
}

// fetch loads the records of a prepared filter through the cache. Only the
// latest request per user completes; older ones fail with ErrSuperseded.
func (s *ReportService) fetch(ctx context.Context, session models.Session, filter models.ReportFilter) ([]models.AttendanceRecord, error) {
	key := cacheKey(filter)
	var records []models.AttendanceRecord
	if s.cache.Get(ctx, key, &records) {
		return records, nil
	}

	reqCtx, release := s.tracker.begin(ctx, session.UserID)
	defer release()

	start := time.Now()
	records, err := s.store.ListForReport(reqCtx, filter)
	s.metrics.ObserveStore("list_for_report", time.Since(start))
	if superseded(reqCtx) {
		s.metrics.IncSuperseded()
		return nil, appErrors.Clone(appErrors.ErrSuperseded, "")
	}
	if err != nil {
		s.logger.Error("attendance fetch failed", zap.String("user_id", session.UserID), zap.Error(err))
		return nil, appErrors.FromStore(err, "failed to fetch attendance")
	}

	s.cache.Set(ctx, key, records, s.config.CacheTTL)
	return records, nil
}

func (s *ReportService) normalizeFilter(filter models.ReportFilter) (models.ReportFilter, error) {
	filter.StartDate = strings.TrimSpace(filter.StartDate)
	filter.EndDate = strings.TrimSpace(filter.EndDate)
	filter.Department = strings.TrimSpace(filter.Department)
	filter.Subject = strings.TrimSpace(filter.Subject)
	if err := s.validator.Struct(filter); err != nil {
		return filter, appErrors.Invalid(err, "please select start and end dates")
	}
	return filter, nil
}

func (s *ReportService) engineError(err error) error {
	if errors.Is(err, report.ErrNoRecords) {
		return appErrors.Clone(appErrors.ErrNoData, "")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build report")
}

func cacheKey(filter models.ReportFilter) string {
	return reportCachePrefix + strings.Join([]string{
		filter.StartDate,
		filter.EndDate,
		url.QueryEscape(filter.Department),
		url.QueryEscape(filter.Subject),
	}, ":")
}

func contentType(format string) string {
	switch format {
	case FormatXLSX:
		return export.MIMEXLSX
	case FormatPDF:
		return export.MIMEPDF
	default:
		return export.MIMECSV
	}
}
