package service

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hoshigumi/cast-console-api/internal/analytics"
	appErrors "github.com/hoshigumi/cast-console-api/pkg/errors"
	"github.com/hoshigumi/cast-console-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered analysis report ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders analysis reports into downloadable files.
type ExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger}
}

// Render produces the report in the requested format, "csv" or "pdf".
func (s *ExportService) Render(report *analytics.AnalysisReport, format string) (*ExportFile, error) {
	dataset := buildReportDataset(report)
	title := fmt.Sprintf("Cast Analysis %s %s", report.CastName, report.Month)

	var payload []byte
	var contentType string
	var err error
	switch format {
	case "csv":
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case "pdf":
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if err != nil {
		return nil, appErrors.WrapInternal(err)
	}

	filename := fmt.Sprintf("analysis_%s_%s_%s.%s", report.CastID, report.Month, uuid.NewString()[:8], format)
	return &ExportFile{Filename: filename, ContentType: contentType, Payload: payload}, nil
}

func buildReportDataset(report *analytics.AnalysisReport) export.Dataset {
	headers := []string{"metric", "current", "previous", "two_back", "vs_previous_pct"}

	type metricRow struct {
		name     string
		current  float64
		previous float64
		twoBack  float64
	}
	current := report.Snapshots.Current
	previous := report.Snapshots.Previous
	twoBack := report.Snapshots.TwoBack

	metrics := []metricRow{
		{"worked_days", float64(current.WorkedDays), float64(previous.WorkedDays), float64(twoBack.WorkedDays)},
		{"absent_days", float64(current.AbsentDays), float64(previous.AbsentDays), float64(twoBack.AbsentDays)},
		{"minutes_worked", float64(current.MinutesWorked), float64(previous.MinutesWorked), float64(twoBack.MinutesWorked)},
		{"working_rate", current.WorkingRate, previous.WorkingRate, twoBack.WorkingRate},
		{"service_count", float64(current.ServiceCount), float64(previous.ServiceCount), float64(twoBack.ServiceCount)},
		{"total_sales", current.TotalSales, previous.TotalSales, twoBack.TotalSales},
		{"total_payout", current.TotalPayout, previous.TotalPayout, twoBack.TotalPayout},
		{"average_ticket", current.AverageTicket, previous.AverageTicket, twoBack.AverageTicket},
		{"new_customers", float64(current.NewCustomerCount), float64(previous.NewCustomerCount), float64(twoBack.NewCustomerCount)},
		{"repeat_rate", current.RepeatRate, previous.RepeatRate, twoBack.RepeatRate},
		{"cancellation_rate", current.CancellationRate, previous.CancellationRate, twoBack.CancellationRate},
		{"add_on_usage_rate", current.AddOnUsageRate, previous.AddOnUsageRate, twoBack.AddOnUsageRate},
	}

	rows := make([]map[string]string, 0, len(metrics)+len(report.Risk.Predicates)+2)
	for _, m := range metrics {
		row := map[string]string{
			"metric":   m.name,
			"current":  formatNumber(m.current),
			"previous": formatNumber(m.previous),
			"two_back": formatNumber(m.twoBack),
		}
		if trend, ok := report.Trends.VsPrevious[m.name]; ok {
			row["vs_previous_pct"] = formatTrend(trend)
		}
		rows = append(rows, row)
	}

	rows = append(rows, map[string]string{
		"metric":  "risk_level",
		"current": string(report.Risk.Level),
	}, map[string]string{
		"metric":  "risk_signal_count",
		"current": strconv.Itoa(report.Risk.TrueCount),
	})
	for _, p := range report.Risk.Predicates {
		rows = append(rows, map[string]string{
			"metric":  "risk:" + p.Key,
			"current": strconv.FormatBool(p.Triggered),
		})
	}

	return export.Dataset{Headers: headers, Rows: rows}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatTrend(t analytics.Trend) string {
	if t.Infinite {
		return "inf"
	}
	if t.Percent == nil {
		return ""
	}
	return strconv.FormatFloat(*t.Percent, 'f', 1, 64)
}
