package store

import (
	"context"
	"fmt"
	"time"

	"github.com/solaros/solar-os/internal/domain"
	"github.com/solaros/solar-os/internal/reports"
)

// ListReports returns all reports in insertion order
func (s *Store) ListReports() []domain.Report {
	var out []domain.Report
	s.read(func(st *domain.State) { out = st.Reports.Items() })
	return out
}

// GetReport returns a report by id
func (s *Store) GetReport(id string) (domain.Report, error) {
	var (
		out domain.Report
		err error
	)
	s.read(func(st *domain.State) { out, err = getRecord(&st.Reports, "report", id) })
	return out, err
}

// CreateReport stores a draft report with the caller's metrics
func (s *Store) CreateReport(ctx context.Context, r domain.Report) (domain.Report, error) {
	var out domain.Report
	err := s.mutate(ctx, mutation{op: "create_report", collection: "reports"}, func(st *domain.State, now time.Time, m *mutation) error {
		if r.Status == "" {
			r.Status = domain.ReportStatusDraft
		}
		if r.Metrics == nil {
			r.Metrics = map[string]float64{}
		}
		if err := s.check(r); err != nil {
			return err
		}
		out = insertRecord(&st.Reports, r, s.ids.New("RPT"), now, nil)
		m.id = out.ID
		return nil
	})
	return out, err
}

// GenerateReport computes the metrics of a category from the current state and stores them
// as a Generated report
func (s *Store) GenerateReport(ctx context.Context, category domain.ReportCategory, period, generatedBy string) (domain.Report, error) {
	var out domain.Report
	err := s.mutate(ctx, mutation{op: "generate_report", collection: "reports"}, func(st *domain.State, now time.Time, m *mutation) error {
		metrics, err := reports.Compute(st, category, now)
		if err != nil {
			return err
		}
		title := fmt.Sprintf("%s report", category)
		if period != "" {
			title = fmt.Sprintf("%s report %s", category, period)
		}
		out = insertRecord(&st.Reports, domain.Report{
			Title:       title,
			Category:    category,
			Period:      period,
			GeneratedBy: generatedBy,
			Status:      domain.ReportStatusGenerated,
			Metrics:     metrics,
		}, s.ids.New("RPT"), now, nil)
		m.id = out.ID
		return nil
	})
	return out, err
}
