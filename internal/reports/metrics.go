// Package reports computes business metrics from the application state and exports them.
package reports

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/solaros/solar-os/internal/domain"
)

// Metric names shared by every report category
const (
	MetricTotalProjects          = "totalProjects"
	MetricTotalLeads             = "totalLeads"
	MetricQualifiedLeads         = "qualifiedLeads"
	MetricPipelineValue          = "pipelineValue"
	MetricQuotationConversion    = "quotationConversionRate"
	MetricActiveProjects         = "activeProjects"
	MetricStockAlerts            = "stockAlerts"
	MetricBottleneckStages       = "bottleneckStages"
	MetricOpenPurchaseOrders     = "openPurchaseOrders"
	MetricInstallationsActive    = "installationsInProgress"
	MetricTotalRevenue           = "totalRevenue"
	MetricPaidRevenue            = "paidRevenue"
	MetricOutstandingReceivables = "outstandingReceivables"
	MetricCollectionRate         = "collectionRate"
	MetricOverdueInvoices        = "overdueInvoices"
	MetricPaymentsReceived       = "paymentsReceived"
	MetricTotalTickets           = "totalTickets"
	MetricOpenTickets            = "openTickets"
	MetricSLABreached            = "slaBreachedTickets"
	MetricComplianceAlerts       = "complianceAlerts"
)

// Compute returns the metrics for a report category. Money totals are summed in decimal and
// rounded to two places.
func Compute(st *domain.State, category domain.ReportCategory, now time.Time) (map[string]float64, error) {
	switch category {
	case domain.ReportCategorySales:
		return salesMetrics(st), nil
	case domain.ReportCategoryOperations:
		return operationsMetrics(st), nil
	case domain.ReportCategoryFinance:
		return financeMetrics(st), nil
	case domain.ReportCategoryService:
		return serviceMetrics(st, now), nil
	default:
		return nil, fmt.Errorf("%w: unknown report category %q", domain.ErrInvalidInput, category)
	}
}

// StatusKey names a per-status count metric, e.g. "leads.Qualified"
func StatusKey(collection, status string) string {
	return collection + "." + status
}

func salesMetrics(st *domain.State) map[string]float64 {
	out := map[string]float64{}
	leads := st.Leads.Items()
	out[MetricTotalLeads] = float64(len(leads))
	for _, status := range []domain.LeadStatus{
		domain.LeadStatusNew,
		domain.LeadStatusContacted,
		domain.LeadStatusSurveyScheduled,
		domain.LeadStatusQualified,
		domain.LeadStatusLost,
	} {
		out[StatusKey("leads", string(status))] = 0
	}
	for _, l := range leads {
		out[StatusKey("leads", string(l.Status))]++
	}
	out[MetricQualifiedLeads] = out[StatusKey("leads", string(domain.LeadStatusQualified))]

	pipeline := decimal.Zero
	var decided, approved int
	for _, q := range st.Quotations.Items() {
		switch q.Status {
		case domain.QuotationStatusSent:
			pipeline = pipeline.Add(decimal.NewFromFloat(q.TotalAmount))
		case domain.QuotationStatusApproved:
			approved++
			decided++
		case domain.QuotationStatusRejected:
			decided++
		}
	}
	out[MetricPipelineValue] = money(pipeline)
	out[MetricQuotationConversion] = percent(decimal.NewFromInt(int64(approved)), decimal.NewFromInt(int64(decided)))
	return out
}

func operationsMetrics(st *domain.State) map[string]float64 {
	out := map[string]float64{}
	projects := st.Projects.Items()
	out[MetricTotalProjects] = float64(len(projects))
	for _, status := range []domain.ProjectStatus{
		domain.ProjectStatusSurvey,
		domain.ProjectStatusDesign,
		domain.ProjectStatusProduction,
		domain.ProjectStatusLogistics,
		domain.ProjectStatusInstallation,
		domain.ProjectStatusCommissioning,
		domain.ProjectStatusCompleted,
	} {
		out[StatusKey("projects", string(status))] = 0
	}
	for _, p := range projects {
		out[StatusKey("projects", string(p.Status))]++
		if p.Status != domain.ProjectStatusCompleted {
			out[MetricActiveProjects]++
		}
	}

	out[MetricStockAlerts] = 0
	for _, item := range st.Inventory.Items() {
		if item.Status != domain.InventoryStatusGood {
			out[MetricStockAlerts]++
		}
	}
	out[MetricBottleneckStages] = 0
	for _, stage := range st.ProductionLineStages.Items() {
		if stage.Status == domain.StageStatusBottleneck {
			out[MetricBottleneckStages]++
		}
	}
	out[MetricOpenPurchaseOrders] = 0
	for _, po := range st.PurchaseOrders.Items() {
		if po.Status == domain.PurchaseOrderStatusOpen || po.Status == domain.PurchaseOrderStatusOrdered {
			out[MetricOpenPurchaseOrders]++
		}
	}
	out[MetricInstallationsActive] = 0
	for _, inst := range st.Installations.Items() {
		if inst.Status == domain.InstallationStatusInProgress {
			out[MetricInstallationsActive]++
		}
	}
	return out
}

func financeMetrics(st *domain.State) map[string]float64 {
	out := map[string]float64{}
	total := decimal.Zero
	paid := decimal.Zero
	var overdue int
	for _, inv := range st.Invoices.Items() {
		amount := decimal.NewFromFloat(inv.Amount)
		total = total.Add(amount)
		switch inv.Status {
		case domain.InvoiceStatusPaid:
			paid = paid.Add(amount)
		case domain.InvoiceStatusOverdue:
			overdue++
		}
	}
	received := decimal.Zero
	for _, p := range st.Payments.Items() {
		if p.Status == domain.PaymentStatusCompleted {
			received = received.Add(decimal.NewFromFloat(p.Amount))
		}
	}

	out[MetricTotalRevenue] = money(total)
	out[MetricPaidRevenue] = money(paid)
	out[MetricOutstandingReceivables] = money(total.Sub(paid))
	out[MetricCollectionRate] = percent(paid, total)
	out[MetricOverdueInvoices] = float64(overdue)
	out[MetricPaymentsReceived] = money(received)
	return out
}

func serviceMetrics(st *domain.State, now time.Time) map[string]float64 {
	out := map[string]float64{
		MetricOpenTickets:      0,
		MetricSLABreached:      0,
		MetricComplianceAlerts: 0,
	}
	tickets := st.ServiceTickets.Items()
	out[MetricTotalTickets] = float64(len(tickets))
	for _, t := range tickets {
		if t.Status == domain.TicketStatusOpen || t.Status == domain.TicketStatusInProgress {
			out[MetricOpenTickets]++
		}
		if t.SLABreached(now) {
			out[MetricSLABreached]++
		}
		out[StatusKey("tickets", string(t.Priority))]++
	}
	for _, rec := range st.ComplianceRecords.Items() {
		if domain.ComplianceStatusFor(rec, now) != domain.ComplianceStatusValid {
			out[MetricComplianceAlerts]++
		}
	}
	return out
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// percent returns part/whole×100 rounded to one place, or 0 for an empty whole
func percent(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
}
