package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/solaros/solar-os/internal/domain"
	"github.com/solaros/solar-os/internal/persistence"
	"github.com/solaros/solar-os/internal/store"
	"github.com/solaros/solar-os/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

// recordingSnapshotter keeps a copy of every saved state and can be told to fail
type recordingSnapshotter struct {
	mu    sync.Mutex
	saves []*domain.State
	err   error
}

func (r *recordingSnapshotter) Load(context.Context) (*domain.State, error) {
	return domain.InitialState(fixedNow), nil
}

func (r *recordingSnapshotter) Save(_ context.Context, st *domain.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, st.Clone())
	return r.err
}

func (r *recordingSnapshotter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}

func (r *recordingSnapshotter) last() *domain.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saves) == 0 {
		return nil
	}
	return r.saves[len(r.saves)-1]
}

// sequentialIDs hands out PREFIX-1, PREFIX-2, ... in call order
type sequentialIDs struct {
	n int
}

func (g *sequentialIDs) New(prefix string) string {
	g.n++
	return fmt.Sprintf("%s-%d", prefix, g.n)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T, opts ...store.Option) (*store.Store, *recordingSnapshotter) {
	t.Helper()
	snap := &recordingSnapshotter{}
	base := []store.Option{
		store.WithClock(func() time.Time { return fixedNow }),
		store.WithIDGenerator(&sequentialIDs{}),
		store.WithLogger(zap.NewNop()),
	}
	s, err := store.Open(context.Background(), snap, append(base, opts...)...)
	require.NoError(t, err)
	return s, snap
}

func TestOpen_SeedsFromEmptySlot(t *testing.T) {
	adapter := persistence.NewAdapter(persistence.NewMemorySlot(), zap.NewNop()).
		WithClock(func() time.Time { return fixedNow })

	s, err := store.Open(context.Background(), adapter, store.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	assert.Len(t, s.ListLeads(), 2)
	assert.Len(t, s.ListProductionStages(), 7)
	assert.Equal(t, domain.DefaultModule, s.CurrentModule())
}

func TestOpen_LoadError(t *testing.T) {
	_, err := store.Open(context.Background(), failingLoader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load state")
}

type failingLoader struct{}

func (failingLoader) Load(context.Context) (*domain.State, error) {
	return nil, errors.New("disk on fire")
}

func (failingLoader) Save(context.Context, *domain.State) error { return nil }

func TestMutation_PersistsThroughAdapter(t *testing.T) {
	ctx := context.Background()
	slot := persistence.NewMemorySlot()
	adapter := persistence.NewAdapter(slot, zap.NewNop()).WithClock(func() time.Time { return fixedNow })

	s, err := store.Open(ctx, adapter, store.WithClock(func() time.Time { return fixedNow }), store.WithIDGenerator(&sequentialIDs{}))
	require.NoError(t, err)

	created, err := s.CreateLead(ctx, domain.Lead{Name: "Rao Farms", Mobile: "+91 90000 00000", Location: "Nashik", Capacity: "10 KW"})
	require.NoError(t, err)

	reopened, err := store.Open(ctx, adapter)
	require.NoError(t, err)
	got, err := reopened.GetLead(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rao Farms", got.Name)
	assert.Equal(t, domain.LeadStatusNew, got.Status)
}

func TestState_ReturnsIndependentCopy(t *testing.T) {
	s, _ := newTestStore(t)

	snapshot := s.State()
	snapshot.Leads.Delete("LD-001")

	_, err := s.GetLead("LD-001")
	assert.NoError(t, err)
}

func TestMutation_NotFoundLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	s, snap := newTestStore(t)

	var events []store.Event
	s.Subscribe(func(ev store.Event) { events = append(events, ev) })
	before := s.State()

	_, err := s.UpdateLead(ctx, "LD-404", func(l *domain.Lead) { l.Name = "ghost" })
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = s.DeleteEmployee(ctx, "EMP-404")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = s.ApproveQuotation(ctx, "QUO-404")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	assert.Equal(t, before, s.State())
	assert.Zero(t, snap.count())
	assert.Empty(t, events)
}

func TestMutation_SaveFailureKeepsCommit(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.ErrorLevel)
	s, snap := newTestStore(t, store.WithLogger(zap.New(core)))
	snap.err = errors.New("slot unavailable")

	var events []store.Event
	s.Subscribe(func(ev store.Event) { events = append(events, ev) })

	created, err := s.CreateEmployee(ctx, domain.Employee{Name: "Meena", Role: "Technician"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slot unavailable")

	got, getErr := s.GetEmployee(created.ID)
	require.NoError(t, getErr)
	assert.Equal(t, "Meena", got.Name)
	assert.Len(t, events, 1)
	assert.Equal(t, 1, logs.FilterMessage("Failed to save state snapshot").Len())
}

func TestMutation_ContextCancelled(t *testing.T) {
	s, snap := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.CreateLead(ctx, domain.Lead{Name: "late"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, s.ListLeads(), 2)
	assert.Zero(t, snap.count())
}

func TestMutation_SavesFullSnapshot(t *testing.T) {
	ctx := context.Background()
	s, snap := newTestStore(t)

	_, err := s.CreateLead(ctx, domain.Lead{Name: "Iyer Villa"})
	require.NoError(t, err)
	require.Equal(t, 1, snap.count())

	saved := snap.last()
	assert.Equal(t, 3, saved.Leads.Len())
	assert.Equal(t, 7, saved.ProductionLineStages.Len())
	assert.Equal(t, s.State(), saved)
}

func TestSubscribe_FiltersByCollection(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	var all, projects, leads []store.Event
	s.Subscribe(func(ev store.Event) { all = append(all, ev) })
	s.Subscribe(func(ev store.Event) { projects = append(projects, ev) }, "projects")
	unsubscribe := s.Subscribe(func(ev store.Event) { leads = append(leads, ev) }, "leads")

	q, err := s.CreateQuotation(ctx, domain.Quotation{LeadID: "LD-002", Customer: "Patel Textiles", Capacity: "50 KW", Status: domain.QuotationStatusSent, TotalAmount: 1500000})
	require.NoError(t, err)
	_, err = s.ApproveQuotation(ctx, q.ID)
	require.NoError(t, err)

	unsubscribe()
	_, err = s.CreateLead(ctx, domain.Lead{Name: "after unsubscribe"})
	require.NoError(t, err)

	require.Len(t, all, 3)
	require.Len(t, projects, 1)
	assert.Equal(t, "approve_quotation", projects[0].Operation)
	assert.ElementsMatch(t, []string{"quotations", "projects"}, projects[0].Collections)
	assert.Equal(t, q.ID, projects[0].RecordID)
	assert.Equal(t, fixedNow, projects[0].At)
	assert.Empty(t, leads)
}

func TestUpdateSettings_MergesFields(t *testing.T) {
	ctx := context.Background()
	s, snap := newTestStore(t)

	name := "Surya Power"
	gst := 12.0
	live := true
	settings, err := s.UpdateSettings(ctx, store.SettingsPatch{CompanyName: &name, GSTRate: &gst, LiveMonitoring: &live})
	require.NoError(t, err)

	assert.Equal(t, "Surya Power", settings.CompanyName)
	assert.Equal(t, 12.0, settings.GSTRate)
	assert.True(t, settings.LiveMonitoring)
	assert.Equal(t, "INR", settings.Currency)
	assert.Equal(t, 12.0, settings.DefaultMargin)
	assert.Equal(t, settings, s.Settings())
	assert.Equal(t, 1, snap.count())
}

func TestSetCurrentModule(t *testing.T) {
	ctx := context.Background()
	s, snap := newTestStore(t)

	require.NoError(t, s.SetCurrentModule(ctx, "inventory"))
	assert.Equal(t, "inventory", s.CurrentModule())
	assert.Equal(t, 1, snap.count())

	require.NoError(t, s.SetCurrentModule(ctx, "inventory"))
	assert.Equal(t, 1, snap.count())
}

func TestUpdate_RestoresIdentityAndRefreshesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{now: fixedNow}
	s, _ := newTestStore(t, store.WithClock(clock.Now))

	created, err := s.CreateLead(ctx, domain.Lead{Name: "Khan Clinic"})
	require.NoError(t, err)

	clock.Advance(time.Minute)
	updated, err := s.UpdateLead(ctx, created.ID, func(l *domain.Lead) {
		l.ID = "LD-hijacked"
		l.CreatedAt = domain.Timestamp{}
		l.Status = domain.LeadStatusContacted
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "2024-06-01T10:01:00.000Z", updated.UpdatedAt.String())
	assert.Equal(t, domain.LeadStatusContacted, updated.Status)
}

func TestWithValidator_RejectsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	s, snap := newTestStore(t, store.WithValidator(validation.Struct))

	_, err := s.CreateLead(ctx, domain.Lead{Mobile: "+91 90000 00000", Location: "Pune", Capacity: "3 KW"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = s.UpdateLead(ctx, "LD-001", func(l *domain.Lead) { l.Email = "sharma-at-example" })
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	got, _ := s.GetLead("LD-001")
	assert.Equal(t, "sharma@example.com", got.Email)
	assert.Len(t, s.ListLeads(), 2)
	assert.Zero(t, snap.count())

	_, err = s.CreateLead(ctx, domain.Lead{Name: "Joshi", Mobile: "+91 90000 00000", Location: "Pune", Capacity: "3 KW"})
	assert.NoError(t, err)
}
