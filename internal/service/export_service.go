package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edulane/sims-api/internal/models"
	appErrors "github.com/edulane/sims-api/pkg/errors"
	"github.com/edulane/sims-api/pkg/export"
	"github.com/edulane/sims-api/pkg/storage"
)

// ExportFormat enumerates supported report payload formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportKind enumerates exportable datasets.
type ExportKind string

const (
	ExportKindGrades     ExportKind = "grades"
	ExportKindAttendance ExportKind = "attendance"
	ExportKindTimesheets ExportKind = "timesheets"
)

type gradeLister interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, int, error)
}

type attendanceLister interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, int, error)
}

type timesheetLister interface {
	List(ctx context.Context, filter models.TimesheetFilter) ([]models.Timesheet, int, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportRequest describes one report generation.
type ExportRequest struct {
	Kind      ExportKind   `json:"kind" validate:"required,oneof=grades attendance timesheets"`
	Format    ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
	StudentID string       `json:"student_id"`
	CourseID  string       `json:"course_id"`
	SectionID string       `json:"section_id"`
	TeacherID string       `json:"teacher_id"`
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string       `json:"relative_path"`
	Token        string       `json:"token"`
	URL          string       `json:"url"`
	Format       ExportFormat `json:"format"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

// ExportService builds report datasets and persists rendered files behind
// signed download URLs.
type ExportService struct {
	grades     gradeLister
	attendance attendanceLister
	timesheets timesheetLister
	storage    fileStorage
	csv        csvRenderer
	pdf        pdfRenderer
	signer     *storage.SignedURLSigner
	logger     *zap.Logger
	cfg        ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(grades gradeLister, attendance attendanceLister, timesheets timesheetLister, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		grades:     grades,
		attendance: attendance,
		timesheets: timesheets,
		storage:    store,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		signer:     signer,
		logger:     logger,
		cfg:        cfg,
	}
}

// Generate builds the requested dataset and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	dataset, title, err := s.buildDataset(ctx, req)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch req.Format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %s", req.Format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	exportID := fmt.Sprintf("%s-%d", req.Kind, time.Now().UnixNano())
	filename := fmt.Sprintf("%s_%s.%s", req.Kind, time.Now().UTC().Format("20060102_150405"), req.Format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	s.logger.Info("export generated",
		zap.String("kind", string(req.Kind)),
		zap.String("format", string(req.Format)),
		zap.String("path", relPath))

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/download/%s", prefix, token),
		Format:       req.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// Open validates a download token and returns a handle to the stored file.
func (s *ExportService) Open(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export file not found")
	}
	return file, nil
}

// Cleanup removes files older than the configured TTL. Run periodically by
// the background queue.
func (s *ExportService) Cleanup() ([]string, error) {
	return s.storage.CleanupOlderThan(s.cfg.ResultTTL)
}

func (s *ExportService) buildDataset(ctx context.Context, req ExportRequest) (export.Dataset, string, error) {
	switch req.Kind {
	case ExportKindGrades:
		return s.buildGradeDataset(ctx, req)
	case ExportKindAttendance:
		return s.buildAttendanceDataset(ctx, req)
	case ExportKindTimesheets:
		return s.buildTimesheetDataset(ctx, req)
	default:
		return export.Dataset{}, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export kind %s", req.Kind))
	}
}

func (s *ExportService) buildGradeDataset(ctx context.Context, req ExportRequest) (export.Dataset, string, error) {
	rows, _, err := s.grades.List(ctx, models.GradeFilter{
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		PageSize:  exportPageSize,
	})
	if err != nil {
		return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}
	dataRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		dataRows = append(dataRows, map[string]string{
			"Student Code": row.StudentCode,
			"Student":      row.StudentName,
			"Course":       fmt.Sprintf("%s %s", row.CourseCode, row.CourseTitle),
			"Grade Type":   row.GradeType,
			"Value":        fmt.Sprintf("%.2f", row.Value),
			"Updated At":   row.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Student Code", "Student", "Course", "Grade Type", "Value", "Updated At"},
		Rows:    dataRows,
	}
	return dataset, "Grade Report", nil
}

func (s *ExportService) buildAttendanceDataset(ctx context.Context, req ExportRequest) (export.Dataset, string, error) {
	rows, _, err := s.attendance.List(ctx, models.AttendanceFilter{
		StudentID: req.StudentID,
		SectionID: req.SectionID,
		PageSize:  exportPageSize,
	})
	if err != nil {
		return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	dataRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		note := ""
		if row.Note != nil {
			note = *row.Note
		}
		dataRows = append(dataRows, map[string]string{
			"Student ID": row.StudentID,
			"Section ID": row.SectionID,
			"Date":       row.Date.UTC().Format("2006-01-02"),
			"Status":     string(row.Status),
			"Note":       note,
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Student ID", "Section ID", "Date", "Status", "Note"},
		Rows:    dataRows,
	}
	return dataset, "Attendance Report", nil
}

func (s *ExportService) buildTimesheetDataset(ctx context.Context, req ExportRequest) (export.Dataset, string, error) {
	rows, _, err := s.timesheets.List(ctx, models.TimesheetFilter{
		TeacherID: req.TeacherID,
		PageSize:  exportPageSize,
	})
	if err != nil {
		return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timesheets")
	}
	dataRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		dataRows = append(dataRows, map[string]string{
			"Teacher ID":  row.TeacherID,
			"Date":        row.WorkDate.UTC().Format("2006-01-02"),
			"Hours":       fmt.Sprintf("%.2f", row.Hours),
			"Status":      string(row.Status),
			"Description": row.Description,
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Teacher ID", "Date", "Hours", "Status", "Description"},
		Rows:    dataRows,
	}
	return dataset, "Timesheet Report", nil
}

const exportPageSize = 10000
