package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/solaros/solar-os/internal/domain"
	"github.com/solaros/solar-os/internal/idgen"
	"go.uber.org/zap"
)

// Adapter loads and saves full state snapshots through a Slot
type Adapter struct {
	slot   Slot
	logger *zap.Logger
	now    func() time.Time
}

// NewAdapter creates an adapter over slot
func NewAdapter(slot Slot, logger *zap.Logger) *Adapter {
	return &Adapter{
		slot:   slot,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock returns the adapter with a fixed clock for the canonical seed timestamps
func (a *Adapter) WithClock(now func() time.Time) *Adapter {
	a.now = now
	return a
}

// Load reads the stored snapshot. An empty slot yields the canonical initial state;
// a snapshot that cannot be parsed at all is replaced by it entirely. Keys missing from an
// older snapshot are backfilled from the canonical state, and odd records are kept in
// repaired form rather than discarded.
func (a *Adapter) Load(ctx context.Context) (*domain.State, error) {
	payload, found, err := a.slot.Read(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		a.logger.Info("No stored snapshot, starting from initial state")
		return domain.InitialState(a.now()), nil
	}

	state, report, err := Decode(payload, a.now())
	if err != nil {
		a.logger.Warn("Stored snapshot is malformed, falling back to initial state",
			zap.Error(err),
			zap.Int("payload_bytes", len(payload)),
		)
		return domain.InitialState(a.now()), nil
	}
	if len(report.Missing) > 0 {
		a.logger.Info("Backfilled snapshot keys from initial state",
			zap.Strings("keys", report.Missing),
		)
	}
	if len(report.Issues) > 0 {
		a.logger.Warn("Repaired stored records while loading snapshot",
			zap.Int("issues", len(report.Issues)),
			zap.Strings("details", report.Details(maxLoggedIssues)),
		)
	}
	return state, nil
}

// Save serializes the entire state and writes it to the slot
func (a *Adapter) Save(ctx context.Context, state *domain.State) error {
	payload, err := Encode(state)
	if err != nil {
		return err
	}
	return a.slot.Write(ctx, payload)
}

// Encode serializes the state in the persisted layout
func Encode(state *domain.State) ([]byte, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return payload, nil
}

// maxLoggedIssues caps the per-record details written to the load warning
const maxLoggedIssues = 20

// idPrefixes are the identifier prefixes given to stored records that load without a usable id
var idPrefixes = map[string]string{
	"leads":                "LD",
	"surveys":              "SUR",
	"quotations":           "QUO",
	"projects":             "PRJ",
	"inventory":            "INV",
	"purchaseOrders":       "PO",
	"productionOrders":     "BATCH",
	"productionLineStages": "STAGE",
	"qualityRecords":       "QC",
	"logistics":            "LOG",
	"installations":        "INST",
	"invoices":             "INV",
	"payments":             "PAY",
	"serviceTickets":       "TKT",
	"employees":            "EMP",
	"complianceRecords":    "COMP",
	"communityPosts":       "POST",
	"reports":              "RPT",
}

// Issue describes a key or record Decode kept in repaired form. Index is -1 for key level issues.
type Issue struct {
	Key    string
	Index  int
	ID     string
	Reason string
}

func (i Issue) String() string {
	if i.Index < 0 {
		return fmt.Sprintf("%s: %s", i.Key, i.Reason)
	}
	return fmt.Sprintf("%s[%d] %s: %s", i.Key, i.Index, i.ID, i.Reason)
}

// DecodeReport lists what Decode had to repair
type DecodeReport struct {
	// Missing are the keys absent or null in the payload, taken from the initial state
	Missing []string
	// Issues are the keys and records that were repaired
	Issues []Issue
}

// Details renders at most limit issues for logging
func (r DecodeReport) Details(limit int) []string {
	out := make([]string, 0, limit)
	for i, issue := range r.Issues {
		if i == limit {
			out = append(out, fmt.Sprintf("and %d more", len(r.Issues)-limit))
			break
		}
		out = append(out, issue.String())
	}
	return out
}

// recordDecoder is implemented by every state collection
type recordDecoder interface {
	Decode(data []byte, newID func() string) ([]domain.DecodeIssue, error)
}

// Decode parses a snapshot, falling back to the canonical value for every key that is
// absent or null. Settings are merged field by field over the defaults. Decoding is lenient
// below the top level: a collection that is not an array keeps its canonical value, records
// keep every field that decodes, and records without a usable id get a fresh one. Only a
// payload that is not a JSON object is an error.
func Decode(payload []byte, now time.Time) (*domain.State, DecodeReport, error) {
	var report DecodeReport

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, report, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if raw == nil {
		return nil, report, fmt.Errorf("failed to decode snapshot: top level is null")
	}

	state := domain.InitialState(now)
	targets := decodeTargets(state)
	ids := idgen.New(idgen.WithClock(func() time.Time { return now }))

	for _, key := range domain.StateKeys {
		value, ok := raw[key]
		if !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			report.Missing = append(report.Missing, key)
			continue
		}

		if collection, ok := targets[key].(recordDecoder); ok {
			prefix := idPrefixes[key]
			issues, err := collection.Decode(value, func() string { return ids.New(prefix) })
			if err != nil {
				report.Issues = append(report.Issues, Issue{Key: key, Index: -1, Reason: "not an array, initial value kept"})
				continue
			}
			for _, issue := range issues {
				report.Issues = append(report.Issues, Issue{Key: key, Index: issue.Index, ID: issue.ID, Reason: issue.Reason})
			}
			continue
		}

		// settings and currentModule: fields that decode are kept over the defaults
		if err := json.Unmarshal(value, targets[key]); err != nil {
			report.Issues = append(report.Issues, Issue{Key: key, Index: -1, Reason: err.Error()})
		}
	}

	normalize(state)
	return state, report, nil
}

// decodeTargets maps every persisted key to the state field it decodes into
func decodeTargets(s *domain.State) map[string]any {
	return map[string]any{
		"leads":                &s.Leads,
		"surveys":              &s.Surveys,
		"quotations":           &s.Quotations,
		"projects":             &s.Projects,
		"inventory":            &s.Inventory,
		"purchaseOrders":       &s.PurchaseOrders,
		"productionOrders":     &s.ProductionOrders,
		"productionLineStages": &s.ProductionLineStages,
		"qualityRecords":       &s.QualityRecords,
		"logistics":            &s.Logistics,
		"installations":        &s.Installations,
		"invoices":             &s.Invoices,
		"payments":             &s.Payments,
		"serviceTickets":       &s.ServiceTickets,
		"employees":            &s.Employees,
		"complianceRecords":    &s.ComplianceRecords,
		"communityPosts":       &s.CommunityPosts,
		"reports":              &s.Reports,
		"settings":             &s.Settings,
		"currentModule":        &s.CurrentModule,
	}
}

// normalize replaces nil owned lists written by older versions with empty ones
func normalize(s *domain.State) {
	for _, p := range s.Projects.Items() {
		if p.Documents != nil && p.Timeline != nil && p.Team != nil {
			continue
		}
		if p.Documents == nil {
			p.Documents = []domain.ProjectDocument{}
		}
		if p.Timeline == nil {
			p.Timeline = []domain.TimelineEvent{}
		}
		if p.Team == nil {
			p.Team = []domain.TeamMember{}
		}
		s.Projects.Put(p)
	}
	for _, sv := range s.Surveys.Items() {
		if sv.Photos == nil {
			sv.Photos = []string{}
			s.Surveys.Put(sv)
		}
	}
	for _, inst := range s.Installations.Items() {
		if inst.Tasks == nil {
			inst.Tasks = []domain.InstallationTask{}
			s.Installations.Put(inst)
		}
	}
}
