package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/solaros/solar-os/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC)

func newTestAdapter(slot Slot) *Adapter {
	return NewAdapter(slot, zap.NewNop()).WithClock(func() time.Time { return fixedNow })
}

func TestAdapter_Load_EmptySlotSeedsInitialState(t *testing.T) {
	a := newTestAdapter(NewMemorySlot())

	state, err := a.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultSettings(), state.Settings)
	assert.Equal(t, 7, state.ProductionLineStages.Len())
	assert.Equal(t, 2, state.Inventory.Len())

	cells, ok := state.Inventory.Get("INV-001")
	require.True(t, ok)
	assert.Equal(t, 250, cells.Available)
	assert.Equal(t, domain.InventoryStatusWarning, cells.Status)
}

func TestAdapter_SaveLoad_RoundTrip(t *testing.T) {
	slot := NewMemorySlot()
	a := newTestAdapter(slot)
	ctx := context.Background()

	original := domain.InitialState(fixedNow)
	original.CurrentModule = "inventory"
	original.Employees.Put(domain.Employee{
		Base:   domain.Base{ID: "EMP-1", CreatedAt: domain.NewTimestamp(fixedNow), UpdatedAt: domain.NewTimestamp(fixedNow)},
		Name:   "Asha",
		Role:   "Installer",
		Status: domain.EmployeeStatusActive,
	})

	require.NoError(t, a.Save(ctx, original))

	loaded, err := a.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, original.Leads.Items(), loaded.Leads.Items())
	assert.Equal(t, original.Projects.Items(), loaded.Projects.Items())
	assert.Equal(t, original.Inventory.Items(), loaded.Inventory.Items())
	assert.Equal(t, original.Invoices.Items(), loaded.Invoices.Items())
	assert.Equal(t, original.Employees.Items(), loaded.Employees.Items())
	assert.Equal(t, original.Settings, loaded.Settings)
	assert.Equal(t, "inventory", loaded.CurrentModule)

	want, err := Encode(original)
	require.NoError(t, err)
	got, err := Encode(loaded)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
}

func TestAdapter_Save_PersistedLayout(t *testing.T) {
	slot := NewMemorySlot()
	require.NoError(t, newTestAdapter(slot).Save(context.Background(), domain.InitialState(fixedNow)))

	payload, _, err := slot.Read(context.Background())
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &raw))
	for _, key := range domain.StateKeys {
		assert.Contains(t, raw, key)
	}
	assert.Len(t, raw, len(domain.StateKeys))
	assert.JSONEq(t, "[]", string(raw["employees"]), "empty collections serialize as arrays")
}

func TestAdapter_Load_BackfillsMissingKeys(t *testing.T) {
	slot := NewMemorySlot()
	blob := `{
		"leads": [{"id":"LD-9","name":"Old Co","mobile":"1","location":"Pune","capacity":"3 KW","status":"New","createdAt":"2023-01-01T00:00:00.000Z","updatedAt":"2023-01-01T00:00:00.000Z"}],
		"settings": {"companyName": "Sun Power"},
		"reports": null
	}`
	require.NoError(t, slot.Write(context.Background(), []byte(blob)))

	state, err := newTestAdapter(slot).Load(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, state.Leads.Len())
	lead, ok := state.Leads.Get("LD-9")
	require.True(t, ok)
	assert.Equal(t, "Old Co", lead.Name)

	// Missing collections come from the canonical state
	assert.Equal(t, 7, state.ProductionLineStages.Len())
	assert.Equal(t, 2, state.Inventory.Len())
	assert.Equal(t, 0, state.Reports.Len())
	assert.Equal(t, 0, state.PurchaseOrders.Len())

	// Settings merge field by field
	assert.Equal(t, "Sun Power", state.Settings.CompanyName)
	assert.Equal(t, "INR", state.Settings.Currency)
	assert.Equal(t, 18.0, state.Settings.GSTRate)

	assert.Equal(t, domain.DefaultModule, state.CurrentModule)
}

func TestAdapter_Load_MalformedFallsBackToInitialState(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{"not json", `{"leads": [`},
		{"top level array", `[1, 2, 3]`},
		{"top level null", `null`},
		{"top level string", `"leads"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := NewMemorySlot()
			require.NoError(t, slot.Write(context.Background(), []byte(tt.blob)))

			core, logs := observer.New(zapcore.WarnLevel)
			a := NewAdapter(slot, zap.New(core)).WithClock(func() time.Time { return fixedNow })

			state, err := a.Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 2, state.Leads.Len())
			assert.Equal(t, 7, state.ProductionLineStages.Len())
			assert.Equal(t, 1, logs.FilterMessage("Stored snapshot is malformed, falling back to initial state").Len())
		})
	}
}

func TestAdapter_Load_KeepsGoodRecordsBesideBadOnes(t *testing.T) {
	slot := NewMemorySlot()
	blob := `{
		"leads": [
			{"id":"LD-1","name":"Good Lead","status":"New","createdAt":"2024-05-01T08:00:00.000Z","updatedAt":"2024-05-01T08:00:00.000Z"},
			{"id":"LD-2","name":"Form Date","status":"New","createdAt":"2024-01-15","updatedAt":"sometime"},
			{"id":"LD-3","name":"Bad Score","status":"New","aiScore":"high"}
		],
		"inventory": [
			{"id":"INV-1","name":"Panels","unit":"pcs","totalStock":"12","minStock":5},
			{"id":"INV-2","name":"Cable","unit":"m","totalStock":400,"minStock":50}
		],
		"employees": {"id":"EMP-1"},
		"currentModule": 7
	}`
	require.NoError(t, slot.Write(context.Background(), []byte(blob)))

	core, logs := observer.New(zapcore.WarnLevel)
	a := NewAdapter(slot, zap.New(core)).WithClock(func() time.Time { return fixedNow })

	state, err := a.Load(context.Background())
	require.NoError(t, err)

	require.Equal(t, 3, state.Leads.Len())
	good, ok := state.Leads.Get("LD-1")
	require.True(t, ok)
	assert.Equal(t, "Good Lead", good.Name)

	dated, ok := state.Leads.Get("LD-2")
	require.True(t, ok)
	assert.Equal(t, "2024-01-15T00:00:00.000Z", dated.CreatedAt.String())
	assert.True(t, dated.UpdatedAt.IsZero())

	scored, ok := state.Leads.Get("LD-3")
	require.True(t, ok)
	assert.Equal(t, "Bad Score", scored.Name)
	assert.Zero(t, scored.AIScore)

	require.Equal(t, 2, state.Inventory.Len())
	panels, ok := state.Inventory.Get("INV-1")
	require.True(t, ok)
	assert.Equal(t, "Panels", panels.Name)
	assert.Zero(t, panels.TotalStock)
	cable, ok := state.Inventory.Get("INV-2")
	require.True(t, ok)
	assert.Equal(t, 400, cable.TotalStock)

	// a key of the wrong shape keeps its canonical value
	assert.Equal(t, 0, state.Employees.Len())
	assert.Equal(t, domain.DefaultModule, state.CurrentModule)

	assert.Equal(t, 0, logs.FilterMessage("Stored snapshot is malformed, falling back to initial state").Len())
	repaired := logs.FilterMessage("Repaired stored records while loading snapshot").All()
	require.Len(t, repaired, 1)
	assert.EqualValues(t, 4, repaired[0].ContextMap()["issues"])

	// the next save keeps every surviving record
	require.NoError(t, a.Save(context.Background(), state))
	reloaded, err := a.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Leads.Len())
	assert.Equal(t, 2, reloaded.Inventory.Len())
}

func TestAdapter_Load_AssignsIDsToUnidentifiedRecords(t *testing.T) {
	slot := NewMemorySlot()
	blob := `{"leads": [
		{"name":"First"},
		{"name":"Second"},
		{"id":"","name":"Third"},
		{"id":"LD-7","name":"Fourth"},
		{"id":"LD-7","name":"Fifth"}
	]}`
	require.NoError(t, slot.Write(context.Background(), []byte(blob)))

	core, logs := observer.New(zapcore.WarnLevel)
	a := NewAdapter(slot, zap.New(core)).WithClock(func() time.Time { return fixedNow })

	state, err := a.Load(context.Background())
	require.NoError(t, err)

	leads := state.Leads.Items()
	require.Len(t, leads, 5)
	names := make([]string, 0, len(leads))
	seen := make(map[string]struct{}, len(leads))
	for _, l := range leads {
		names = append(names, l.Name)
		assert.NotEmpty(t, l.ID)
		_, dup := seen[l.ID]
		assert.False(t, dup, "duplicate id %s", l.ID)
		seen[l.ID] = struct{}{}
	}
	assert.Equal(t, []string{"First", "Second", "Third", "Fourth", "Fifth"}, names)
	assert.Regexp(t, `^LD-1718011800000-[0-9a-z]+$`, leads[0].ID)
	assert.Equal(t, "LD-7", leads[3].ID)

	repaired := logs.FilterMessage("Repaired stored records while loading snapshot").All()
	require.Len(t, repaired, 1)
	assert.EqualValues(t, 4, repaired[0].ContextMap()["issues"])
}

func TestDecode_Report(t *testing.T) {
	payload := `{"leads": [{"name":"x"}], "surveys": "oops", "settings": {"gstRate": "high"}}`

	state, report, err := Decode([]byte(payload), fixedNow)
	require.NoError(t, err)

	assert.Equal(t, 1, state.Leads.Len())
	assert.Equal(t, 1, state.Surveys.Len(), "surveys keep the canonical seed")
	assert.Equal(t, domain.DefaultSettings().GSTRate, state.Settings.GSTRate)
	assert.Contains(t, report.Missing, "projects")
	assert.NotContains(t, report.Missing, "surveys")

	keys := make([]string, 0, len(report.Issues))
	for _, issue := range report.Issues {
		keys = append(keys, issue.Key)
	}
	assert.Equal(t, []string{"leads", "surveys", "settings"}, keys)
	assert.Equal(t, -1, report.Issues[1].Index)
	assert.Equal(t, "surveys: not an array, initial value kept", report.Issues[1].String())
}

func TestDecodeReport_Details(t *testing.T) {
	report := DecodeReport{Issues: []Issue{
		{Key: "leads", Index: 0, ID: "LD-1", Reason: "missing id, assigned LD-1"},
		{Key: "surveys", Index: -1, Reason: "not an array, initial value kept"},
		{Key: "leads", Index: 2, ID: "LD-3", Reason: "bad field"},
	}}

	assert.Equal(t, []string{
		"leads[0] LD-1: missing id, assigned LD-1",
		"surveys: not an array, initial value kept",
	}, report.Details(2)[:2])
	assert.Equal(t, "and 1 more", report.Details(2)[2])
	assert.Len(t, report.Details(5), 3)
}

func TestAdapter_TwoWritersOnOneSlot_LastSaveWins(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	first := newTestAdapter(slot)
	second := newTestAdapter(slot)

	firstState, err := first.Load(ctx)
	require.NoError(t, err)
	secondState, err := second.Load(ctx)
	require.NoError(t, err)

	firstState.CurrentModule = "inventory"
	firstState.Employees.Put(domain.Employee{Base: domain.Base{ID: "EMP-1"}, Name: "Asha"})
	secondState.CurrentModule = "finance"
	secondState.Employees.Put(domain.Employee{Base: domain.Base{ID: "EMP-2"}, Name: "Ravi"})

	require.NoError(t, first.Save(ctx, firstState))
	require.NoError(t, second.Save(ctx, secondState))

	loaded, err := newTestAdapter(slot).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "finance", loaded.CurrentModule)
	require.Equal(t, 1, loaded.Employees.Len())
	assert.False(t, loaded.Employees.Has("EMP-1"), "the earlier writer's record is replaced wholesale")
	assert.True(t, loaded.Employees.Has("EMP-2"))
}

func TestAdapter_Load_NormalizesOwnedLists(t *testing.T) {
	slot := NewMemorySlot()
	blob := `{"projects": [{"id":"PRJ-1","customer":"Legacy","status":"Design"}]}`
	require.NoError(t, slot.Write(context.Background(), []byte(blob)))

	state, err := newTestAdapter(slot).Load(context.Background())
	require.NoError(t, err)

	p, ok := state.Projects.Get("PRJ-1")
	require.True(t, ok)
	assert.NotNil(t, p.Documents)
	assert.NotNil(t, p.Timeline)
	assert.NotNil(t, p.Team)
}

type failingSlot struct{ MemorySlot }

func (f *failingSlot) Read(context.Context) ([]byte, bool, error) {
	return nil, false, errors.New("disk unavailable")
}

func TestAdapter_Load_ReadErrorIsReturned(t *testing.T) {
	_, err := newTestAdapter(&failingSlot{}).Load(context.Background())
	assert.ErrorContains(t, err, "disk unavailable")
}
