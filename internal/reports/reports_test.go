package reports

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/solaros/solar-os/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var fixedNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func seededState() *domain.State {
	return domain.InitialState(fixedNow)
}

func TestCompute_Sales(t *testing.T) {
	st := seededState()
	st.Quotations.Put(domain.Quotation{Base: domain.Base{ID: "QUO-002"}, Status: domain.QuotationStatusSent, TotalAmount: 99999.995})
	st.Quotations.Put(domain.Quotation{Base: domain.Base{ID: "QUO-003"}, Status: domain.QuotationStatusRejected})

	m, err := Compute(st, domain.ReportCategorySales, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, 2.0, m[MetricTotalLeads])
	assert.Equal(t, 1.0, m[MetricQualifiedLeads])
	assert.Equal(t, 1.0, m[StatusKey("leads", "New")])
	assert.Equal(t, 0.0, m[StatusKey("leads", "Lost")])
	assert.Equal(t, 100000.0, m[MetricPipelineValue])
	assert.Equal(t, 50.0, m[MetricQuotationConversion])
}

func TestCompute_Operations(t *testing.T) {
	m, err := Compute(seededState(), domain.ReportCategoryOperations, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, 1.0, m[MetricTotalProjects])
	assert.Equal(t, 1.0, m[StatusKey("projects", "Installation")])
	assert.Equal(t, 0.0, m[StatusKey("projects", "Survey")])
	assert.Equal(t, 1.0, m[MetricActiveProjects])
	// Solar Cells: available 250 against minStock 500
	assert.Equal(t, 1.0, m[MetricStockAlerts])
	assert.Equal(t, 1.0, m[MetricBottleneckStages])
}

func TestCompute_Finance(t *testing.T) {
	st := seededState()
	st.Invoices.Put(domain.Invoice{Base: domain.Base{ID: "INV-2024-002"}, Amount: 50000, Status: domain.InvoiceStatusOverdue})
	st.Payments.Put(domain.Payment{Base: domain.Base{ID: "PAY-1"}, Amount: 150000, Status: domain.PaymentStatusCompleted})
	st.Payments.Put(domain.Payment{Base: domain.Base{ID: "PAY-2"}, Amount: 10, Status: domain.PaymentStatusFailed})

	m, err := Compute(st, domain.ReportCategoryFinance, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, 200000.0, m[MetricTotalRevenue])
	assert.Equal(t, 150000.0, m[MetricPaidRevenue])
	assert.Equal(t, 50000.0, m[MetricOutstandingReceivables])
	assert.Equal(t, 75.0, m[MetricCollectionRate])
	assert.Equal(t, 1.0, m[MetricOverdueInvoices])
	assert.Equal(t, 150000.0, m[MetricPaymentsReceived])
}

func TestCompute_FinanceEmpty(t *testing.T) {
	m, err := Compute(&domain.State{}, domain.ReportCategoryFinance, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 0.0, m[MetricCollectionRate])
	assert.Equal(t, 0.0, m[MetricTotalRevenue])
}

func TestCompute_Service(t *testing.T) {
	st := seededState()
	created := domain.NewTimestamp(fixedNow.Add(-5 * time.Hour))
	st.ServiceTickets.Put(domain.ServiceTicket{
		Base:     domain.Base{ID: "TKT-002", CreatedAt: created},
		Priority: domain.TicketPriorityHigh,
		Status:   domain.TicketStatusInProgress,
	})
	st.ServiceTickets.Put(domain.ServiceTicket{
		Base:     domain.Base{ID: "TKT-003", CreatedAt: created},
		Priority: domain.TicketPriorityLow,
		Status:   domain.TicketStatusClosed,
	})
	st.ComplianceRecords.Put(domain.ComplianceRecord{
		Base:       domain.Base{ID: "COMP-1"},
		ExpiryDate: fixedNow.AddDate(0, 0, 10).Format("2006-01-02"),
	})

	m, err := Compute(st, domain.ReportCategoryService, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, 3.0, m[MetricTotalTickets])
	assert.Equal(t, 2.0, m[MetricOpenTickets])
	assert.Equal(t, 1.0, m[MetricSLABreached])
	assert.Equal(t, 2.0, m[StatusKey("tickets", "High")])
	assert.Equal(t, 1.0, m[MetricComplianceAlerts])
}

func TestCompute_UnknownCategory(t *testing.T) {
	_, err := Compute(seededState(), domain.ReportCategory("Marketing"), fixedNow)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestWriteXLSX(t *testing.T) {
	reports := []domain.Report{
		{
			Base:     domain.Base{ID: "RPT-1", CreatedAt: domain.NewTimestamp(fixedNow)},
			Title:    "Finance 2024-05",
			Category: domain.ReportCategoryFinance,
			Period:   "2024-05",
			Status:   domain.ReportStatusGenerated,
			Metrics:  map[string]float64{MetricTotalRevenue: 150000, MetricCollectionRate: 100},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, reports))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(reportsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, reportHeaders, rows[0])
	assert.Equal(t, "RPT-1", rows[1][0])
	assert.Equal(t, "Finance", rows[1][2])
	assert.Equal(t, "2024-06-01T10:00:00.000Z", rows[1][6])

	metricRows, err := f.GetRows(metricsSheet)
	require.NoError(t, err)
	require.Len(t, metricRows, 3)
	// sorted by metric name
	assert.Equal(t, MetricCollectionRate, metricRows[1][1])
	assert.Equal(t, MetricTotalRevenue, metricRows[2][1])
	assert.Equal(t, "150000", metricRows[2][2])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "reports_20240601_100000.xlsx", Filename(domain.NewTimestamp(fixedNow)))
}
