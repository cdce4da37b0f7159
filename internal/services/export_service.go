package services

import (
	"context"
	"strings"
	"time"

	"github.com/soaringjerry/Jornada/internal/models"
)

type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

type reportSource interface {
	Get(ctx context.Context, id string) (*models.Report, error)
	List(ctx context.Context) ([]models.Report, error)
}

// ExportService turns stored reports into downloads. Rendering never writes to the store.
type ExportService struct {
	reports  reportSource
	location *time.Location
	now      func() time.Time
}

func NewExportService(reports reportSource, location *time.Location) *ExportService {
	return &ExportService{
		reports:  reports,
		location: location,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ExportReport renders one report as json, csv or html.
func (s *ExportService) ExportReport(ctx context.Context, id, format, locale string) (*ExportResult, error) {
	r, err := s.reports.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Render(*r, format, locale)
}

func (s *ExportService) Render(r models.Report, format, locale string) (*ExportResult, error) {
	opts := ExportOptions{Locale: locale, Location: s.location}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "json"
	}
	switch format {
	case "json":
		data, err := ExportReportJSON(r)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: ReportFilename(r, "json", locale), ContentType: "application/json", Data: data}, nil
	case "csv":
		return &ExportResult{
			Filename:    ReportFilename(r, "csv", locale),
			ContentType: "text/csv; charset=utf-8",
			Data:        ExportReportCSV(r, opts),
		}, nil
	case "html", "pdf":
		data, err := ExportReportHTML(r, opts)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: ReportFilename(r, "html", locale), ContentType: "text/html; charset=utf-8", Data: data}, nil
	default:
		return nil, NewInvalidError("unsupported format")
	}
}

// ExportAll renders every report, newest first, as one JSON file.
func (s *ExportService) ExportAll(ctx context.Context, locale string) (*ExportResult, error) {
	list, err := s.reports.List(ctx)
	if err != nil {
		return nil, err
	}
	data, err := ExportReportsJSON(list)
	if err != nil {
		return nil, err
	}
	return &ExportResult{Filename: AllReportsFilename(s.now(), locale), ContentType: "application/json", Data: data}, nil
}
