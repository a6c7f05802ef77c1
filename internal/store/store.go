// Package store owns the application state tree and every operation that changes it.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/solaros/solar-os/internal/domain"
	"github.com/solaros/solar-os/internal/idgen"
	"github.com/solaros/solar-os/internal/logger"
	"github.com/solaros/solar-os/internal/metrics"
	"go.uber.org/zap"
)

// Snapshotter loads and saves the full state
type Snapshotter interface {
	Load(ctx context.Context) (*domain.State, error)
	Save(ctx context.Context, state *domain.State) error
}

// IDGenerator produces prefixed record identifiers
type IDGenerator interface {
	New(prefix string) string
}

// Event describes a committed change
type Event struct {
	Operation string
	// Collections lists the persisted keys the change touched
	Collections []string
	RecordID    string
	At          time.Time
}

// errUnchanged signals a guarded no-op; mutate turns it into a nil result without saving
var errUnchanged = errors.New("unchanged")

// Store is the single owner of the application state. Every write clones the state,
// applies the change, commits, saves the full snapshot and then notifies subscribers.
type Store struct {
	mu      sync.RWMutex
	state   *domain.State
	persist Snapshotter
	ids     IDGenerator
	now     func() time.Time
	logger  *zap.Logger
	metrics metrics.Recorder
	// validate checks records before they are committed; nil skips the check
	validate func(any) error

	subMu   sync.Mutex
	subs    map[int]subscription
	nextSub int
}

type subscription struct {
	fn          func(Event)
	collections map[string]struct{}
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the clock used for timestamps and derived dates
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator overrides the identifier generator
func WithIDGenerator(ids IDGenerator) Option {
	return func(s *Store) {
		s.ids = ids
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithMetrics sets the operation recorder
func WithMetrics(rec metrics.Recorder) Option {
	return func(s *Store) {
		s.metrics = rec
	}
}

// WithValidator checks every created record and every record changed by an update
// before it is committed. A failing check leaves the state unchanged.
func WithValidator(validate func(any) error) Option {
	return func(s *Store) {
		s.validate = validate
	}
}

// New creates a store over an already loaded state
func New(state *domain.State, persist Snapshotter, opts ...Option) *Store {
	s := &Store{
		state:   state,
		persist: persist,
		now:     time.Now,
		logger:  zap.NewNop(),
		metrics: metrics.Noop{},
		subs:    make(map[int]subscription),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = idgen.New(idgen.WithClock(s.now))
	}
	return s
}

// Open loads the persisted state and creates a store over it
func Open(ctx context.Context, persist Snapshotter, opts ...Option) (*Store, error) {
	state, err := persist.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return New(state, persist, opts...), nil
}

// State returns a deep copy of the current state with read-time derived fields refreshed
func (s *Store) State() *domain.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := s.state.Clone()
	refreshCompliance(snapshot, s.now())
	return snapshot
}

// Subscribe registers fn for committed changes. When collections are given, only changes
// to those persisted keys are delivered. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Event), collections ...string) func() {
	sub := subscription{fn: fn}
	if len(collections) > 0 {
		sub.collections = make(map[string]struct{}, len(collections))
		for _, c := range collections {
			sub.collections[c] = struct{}{}
		}
	}

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(ev Event) {
	s.subMu.Lock()
	targets := make([]func(Event), 0, len(s.subs))
	for _, sub := range s.subs {
		if sub.collections != nil && !sub.matches(ev) {
			continue
		}
		targets = append(targets, sub.fn)
	}
	s.subMu.Unlock()

	for _, fn := range targets {
		fn(ev)
	}
}

func (sub subscription) matches(ev Event) bool {
	for _, c := range ev.Collections {
		if _, ok := sub.collections[c]; ok {
			return true
		}
	}
	return false
}

// mutation identifies an operation for logging, metrics and change events
type mutation struct {
	op         string
	collection string
	related    []string
	id         string
}

// mutate runs fn against a clone of the state and commits the clone when fn succeeds.
// fn may set m.id once it knows the record it touched. Returning errUnchanged discards
// the clone without saving. A failed save leaves the change committed in memory.
func (s *Store) mutate(ctx context.Context, m mutation, fn func(st *domain.State, now time.Time, m *mutation) error) (err error) {
	start := time.Now()
	defer func() {
		s.metrics.Observe(ctx, m.op, err == nil, time.Since(start))
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	next := s.state.Clone()
	now := s.now()
	if fnErr := fn(next, now, &m); fnErr != nil {
		s.mu.Unlock()
		if errors.Is(fnErr, errUnchanged) {
			logger.WithOperation(s.logger, m.op, m.id).Debug("Store operation left state unchanged")
			return nil
		}
		return fnErr
	}
	refreshCompliance(next, now)
	s.state = next

	var saveErr error
	if s.persist != nil {
		saveErr = s.persist.Save(ctx, next)
	}
	s.mu.Unlock()

	if saveErr != nil {
		logger.WithOperation(s.logger, m.op, m.id).Error("Failed to save state snapshot", zap.Error(saveErr))
		err = fmt.Errorf("failed to save state after %s: %w", m.op, saveErr)
	} else {
		logger.WithOperation(s.logger, m.op, m.id).Debug("Store operation committed",
			zap.String("collection", m.collection),
		)
	}

	s.notify(Event{
		Operation:   m.op,
		Collections: append([]string{m.collection}, m.related...),
		RecordID:    m.id,
		At:          now,
	})
	return err
}

// read runs fn under the read lock
func (s *Store) read(fn func(st *domain.State)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.state)
}

func (s *Store) check(record any) error {
	if s.validate == nil {
		return nil
	}
	return s.validate(record)
}

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %s", domain.ErrNotFound, kind, id)
}

// ============================================================================
// Generic record helpers
// ============================================================================

// entity is implemented by pointers to records embedding domain.Base
type entity[T any] interface {
	*T
	Meta() domain.Base
	Stamp(id string, ts domain.Timestamp)
	Touch(prev domain.Base, ts domain.Timestamp)
}

// insertRecord stamps rec with a fresh identity, derives its computed fields and appends it
func insertRecord[T domain.Record[T], P entity[T]](c *domain.Collection[T], rec T, id string, now time.Time, derive func(*T)) T {
	P(&rec).Stamp(id, domain.NewTimestamp(now))
	if derive != nil {
		derive(&rec)
	}
	c.Put(rec)
	return rec.Clone()
}

// updateRecord applies mutate to a copy of the stored record, keeps its identity,
// refreshes updatedAt and re-derives computed fields before replacing it
func updateRecord[T domain.Record[T], P entity[T]](c *domain.Collection[T], kind, id string, now time.Time, mutate func(*T), derive func(*T)) (T, error) {
	current, ok := c.Get(id)
	if !ok {
		var zero T
		return zero, notFound(kind, id)
	}
	prev := P(&current).Meta()
	if mutate != nil {
		mutate(&current)
	}
	P(&current).Touch(prev, domain.NewTimestamp(now))
	if derive != nil {
		derive(&current)
	}
	c.Put(current)
	return current.Clone(), nil
}

func getRecord[T domain.Record[T]](c *domain.Collection[T], kind, id string) (T, error) {
	rec, ok := c.Get(id)
	if !ok {
		return rec, notFound(kind, id)
	}
	return rec, nil
}

func refreshCompliance(st *domain.State, now time.Time) {
	for _, rec := range st.ComplianceRecords.Items() {
		status := domain.ComplianceStatusFor(rec, now)
		if status != rec.Status {
			rec.Status = status
			st.ComplianceRecords.Put(rec)
		}
	}
}

// ============================================================================
// Settings and navigation
// ============================================================================

// SettingsPatch carries the settings fields to change; nil fields are left as they are
type SettingsPatch struct {
	CompanyName    *string  `json:"companyName,omitempty"`
	Currency       *string  `json:"currency,omitempty"`
	Timezone       *string  `json:"timezone,omitempty"`
	DefaultMargin  *float64 `json:"defaultMargin,omitempty"`
	GSTRate        *float64 `json:"gstRate,omitempty"`
	LiveMonitoring *bool    `json:"liveMonitoring,omitempty"`
}

// Settings returns the settings singleton
func (s *Store) Settings() domain.AppSettings {
	var out domain.AppSettings
	s.read(func(st *domain.State) { out = st.Settings })
	return out
}

// UpdateSettings merges the non-nil fields of patch into the settings singleton
func (s *Store) UpdateSettings(ctx context.Context, patch SettingsPatch) (domain.AppSettings, error) {
	var out domain.AppSettings
	err := s.mutate(ctx, mutation{op: "update_settings", collection: "settings"}, func(st *domain.State, _ time.Time, _ *mutation) error {
		if patch.CompanyName != nil {
			st.Settings.CompanyName = *patch.CompanyName
		}
		if patch.Currency != nil {
			st.Settings.Currency = *patch.Currency
		}
		if patch.Timezone != nil {
			st.Settings.Timezone = *patch.Timezone
		}
		if patch.DefaultMargin != nil {
			st.Settings.DefaultMargin = *patch.DefaultMargin
		}
		if patch.GSTRate != nil {
			st.Settings.GSTRate = *patch.GSTRate
		}
		if patch.LiveMonitoring != nil {
			st.Settings.LiveMonitoring = *patch.LiveMonitoring
		}
		out = st.Settings
		return nil
	})
	return out, err
}

// CurrentModule returns the selected screen
func (s *Store) CurrentModule() string {
	var out string
	s.read(func(st *domain.State) { out = st.CurrentModule })
	return out
}

// SetCurrentModule records the selected screen
func (s *Store) SetCurrentModule(ctx context.Context, module string) error {
	return s.mutate(ctx, mutation{op: "set_current_module", collection: "currentModule"}, func(st *domain.State, _ time.Time, _ *mutation) error {
		if st.CurrentModule == module {
			return errUnchanged
		}
		st.CurrentModule = module
		return nil
	})
}
