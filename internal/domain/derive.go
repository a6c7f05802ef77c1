package domain

import (
	"math"
	"time"
)

const (
	// BottleneckDelay is the delay in minutes at which a stage counts as a bottleneck
	BottleneckDelay = 30

	// DelayRecoveredPerWorker is the delay in minutes absorbed by each reassigned worker
	DelayRecoveredPerWorker = 10

	// ExpiringSoonWindow is how many days ahead a certificate counts as expiring
	ExpiringSoonWindow = 30
)

// DefaultInstallationTasks is the checklist used when an installation is created without one
var DefaultInstallationTasks = []string{
	"Site Preparation",
	"Structure Installation",
	"Panel Mounting",
	"Wiring & Connections",
	"Inverter Setup",
	"Testing",
}

// DeriveInventory recomputes available stock and the stock status
func DeriveInventory(item *InventoryItem) {
	item.Available = item.TotalStock - item.Reserved
	item.Status = InventoryStatusFor(item.Available, item.MinStock)
}

// InventoryStatusFor classifies available stock against the minimum threshold
func InventoryStatusFor(available, minStock int) InventoryStatus {
	switch {
	case float64(available) < float64(minStock)*0.5:
		return InventoryStatusCritical
	case available < minStock:
		return InventoryStatusWarning
	default:
		return InventoryStatusGood
	}
}

// DeriveStage recomputes a stage status from its delay. Completed stages stay completed.
func DeriveStage(stage *ProductionLineStage) {
	if stage.Status == StageStatusCompleted {
		return
	}
	if stage.Delay < 0 {
		stage.Delay = 0
	}
	switch {
	case stage.Delay >= BottleneckDelay:
		stage.Status = StageStatusBottleneck
	case stage.Delay > 0:
		stage.Status = StageStatusDelayed
	default:
		stage.Status = StageStatusOnTrack
	}
}

// DeriveInstallation recomputes checklist progress and the installation status
func DeriveInstallation(inst *Installation) {
	inst.Progress = InstallationProgress(inst.Tasks)
	switch {
	case inst.Progress >= 100:
		inst.Status = InstallationStatusCompleted
	case inst.Progress > 0:
		inst.Status = InstallationStatusInProgress
	default:
		inst.Status = InstallationStatusScheduled
	}
}

// InstallationProgress returns the rounded completion percentage of a checklist
func InstallationProgress(tasks []InstallationTask) int {
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}
	return int(math.Round(float64(done) * 100 / float64(len(tasks))))
}

// DaysUntilExpiry returns the whole days between now and the expiry date, rounded down
func DaysUntilExpiry(expiryDate string, now time.Time) (int, bool) {
	expiry, ok := ParseDate(expiryDate)
	if !ok {
		return 0, false
	}
	return int(math.Floor(expiry.Sub(now).Hours() / 24)), true
}

// ComplianceStatusFor derives a certificate status from its expiry date.
// An unparseable expiry date keeps the stored status.
func ComplianceStatusFor(rec ComplianceRecord, now time.Time) ComplianceStatus {
	days, ok := DaysUntilExpiry(rec.ExpiryDate, now)
	if !ok {
		if rec.Status == "" {
			return ComplianceStatusValid
		}
		return rec.Status
	}
	switch {
	case days < 0:
		return ComplianceStatusExpired
	case days < ExpiringSoonWindow:
		return ComplianceStatusExpiringSoon
	default:
		return ComplianceStatusValid
	}
}

// SLAWindow returns the resolution window for a ticket priority
func SLAWindow(priority TicketPriority) time.Duration {
	switch priority {
	case TicketPriorityHigh:
		return 4 * time.Hour
	case TicketPriorityMedium:
		return 8 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// SLADeadline returns when a ticket must be resolved. It is never persisted.
func (t ServiceTicket) SLADeadline() time.Time {
	return t.CreatedAt.Add(SLAWindow(t.Priority))
}

// SLABreached reports whether an unresolved ticket is past its deadline
func (t ServiceTicket) SLABreached(now time.Time) bool {
	if t.Status == TicketStatusResolved || t.Status == TicketStatusClosed {
		return false
	}
	return now.After(t.SLADeadline())
}

// NextLogisticsStatus returns the following shipment status, or false at Delivered
func NextLogisticsStatus(s LogisticsStatus) (LogisticsStatus, bool) {
	switch s {
	case LogisticsStatusPlanned:
		return LogisticsStatusDispatched, true
	case LogisticsStatusDispatched:
		return LogisticsStatusInTransit, true
	case LogisticsStatusInTransit:
		return LogisticsStatusDelivered, true
	default:
		return s, false
	}
}

// NextTicketStatus returns the following ticket status, or false at Closed
func NextTicketStatus(s TicketStatus) (TicketStatus, bool) {
	switch s {
	case TicketStatusOpen:
		return TicketStatusInProgress, true
	case TicketStatusInProgress:
		return TicketStatusScheduled, true
	case TicketStatusScheduled:
		return TicketStatusResolved, true
	case TicketStatusResolved:
		return TicketStatusClosed, true
	default:
		return s, false
	}
}

// projectStatusOrder lists project statuses in their forward order
var projectStatusOrder = []ProjectStatus{
	ProjectStatusSurvey,
	ProjectStatusDesign,
	ProjectStatusProduction,
	ProjectStatusLogistics,
	ProjectStatusInstallation,
	ProjectStatusCommissioning,
	ProjectStatusCompleted,
}

// ProjectStatusRank returns the position of a status in the project lifecycle, or -1
func ProjectStatusRank(s ProjectStatus) int {
	for i, candidate := range projectStatusOrder {
		if candidate == s {
			return i
		}
	}
	return -1
}
