package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/teamsp-admin-api/internal/models"
	appErrors "github.com/noah-isme/teamsp-admin-api/pkg/errors"
	"github.com/noah-isme/teamsp-admin-api/pkg/export"
)

// DefaultExportMaxRows caps an export when no limit is configured.
const DefaultExportMaxRows = 1000

type subjectRoster interface {
	Roster(ctx context.Context, filter models.SubjectFilter, max int) ([]SubjectRosterRow, error)
}

type renderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportFile is a rendered export ready to be sent as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

var subjectExportHeaders = []string{"id", "code", "name", "coordinator", "coordinator_email", "status", "created"}

// ExportService renders subject rosters as CSV or PDF.
type ExportService struct {
	subjects  subjectRoster
	renderers map[string]renderer
	maxRows   int
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService with the csv and pdf renderers.
func NewExportService(subjects subjectRoster, maxRows int, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRows <= 0 {
		maxRows = DefaultExportMaxRows
	}
	csv := export.NewCSVExporter()
	pdf := export.NewPDFExporter()
	return &ExportService{
		subjects: subjects,
		renderers: map[string]renderer{
			csv.Extension(): csv,
			pdf.Extension(): pdf,
		},
		maxRows: maxRows,
		logger:  logger,
		now:     time.Now,
	}
}

// Subjects renders every subject matching filter, up to the configured row cap.
func (s *ExportService) Subjects(ctx context.Context, filter models.SubjectFilter, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	r, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidParameter, fmt.Sprintf("unsupported export format %q", format))
	}

	rows, err := s.subjects.Roster(ctx, filter, s.maxRows)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: subjectExportHeaders, Rows: make([]map[string]string, 0, len(rows))}
	for _, row := range rows {
		record := map[string]string{
			"id":      strconv.FormatInt(row.Subject.ID, 10),
			"code":    row.Subject.Code,
			"name":    row.Subject.Name,
			"status":  statusLabel(row.Subject.Status),
			"created": time.Unix(row.Subject.CreateDate, 0).UTC().Format("2006-01-02"),
		}
		if row.Coordinator != nil {
			record["coordinator"] = row.Coordinator.Name
			record["coordinator_email"] = row.Coordinator.Email
		}
		dataset.Rows = append(dataset.Rows, record)
	}

	body, err := r.Render(dataset, "Subjects")
	if err != nil {
		s.logger.Error("render subject export", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to render export")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("subjects_%s.%s", s.now().UTC().Format("20060102_150405"), r.Extension()),
		ContentType: r.ContentType(),
		Body:        body,
	}, nil
}

func statusLabel(status models.Status) string {
	if status == models.StatusValid {
		return "valid"
	}
	return "invalid"
}
