package reports

import (
	"fmt"
	"io"
	"sort"

	"github.com/solaros/solar-os/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	reportsSheet = "Reports"
	metricsSheet = "Metrics"
)

var reportHeaders = []string{"ID", "Title", "Category", "Period", "Generated By", "Status", "Created At"}

var metricHeaders = []string{"Report ID", "Metric", "Value"}

// BuildWorkbook lays out reports as a workbook with a summary sheet and a metrics sheet.
// Metrics are listed per report in name order.
func BuildWorkbook(reports []domain.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", reportsSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(metricsSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to add metrics sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeHeaders(f, reportsSheet, reportHeaders, headerStyle); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeHeaders(f, metricsSheet, metricHeaders, headerStyle); err != nil {
		_ = f.Close()
		return nil, err
	}

	metricRow := 2
	for i, r := range reports {
		row := i + 2
		values := []any{r.ID, r.Title, string(r.Category), r.Period, r.GeneratedBy, string(r.Status), r.CreatedAt.String()}
		if err := writeRow(f, reportsSheet, row, values); err != nil {
			_ = f.Close()
			return nil, err
		}

		names := make([]string, 0, len(r.Metrics))
		for name := range r.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := writeRow(f, metricsSheet, metricRow, []any{r.ID, name, r.Metrics[name]}); err != nil {
				_ = f.Close()
				return nil, err
			}
			metricRow++
		}
	}

	widths := []float64{28, 30, 12, 12, 16, 10, 26}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(reportsSheet, col, col, w)
	}
	_ = f.SetColWidth(metricsSheet, "A", "B", 28)

	return f, nil
}

// WriteXLSX writes the reports workbook to w
func WriteXLSX(w io.Writer, reports []domain.Report) error {
	f, err := BuildWorkbook(reports)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Filename returns the export file name for the given timestamp
func Filename(ts domain.Timestamp) string {
	return fmt.Sprintf("reports_%s.xlsx", ts.Format("20060102_150405"))
}

func writeHeaders(f *excelize.File, sheet string, headers []string, style int) error {
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header %s: %w", h, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("failed to style header %s: %w", h, err)
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", cell, err)
		}
	}
	return nil
}
