// Package session coordinates destination lookups, the trip store and view
// navigation for one running app.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"wanderlust/internal/model"
	"wanderlust/internal/nav"
	"wanderlust/internal/store"
)

// ErrStaleResult is returned by FinishSearch when a newer search or a
// navigation superseded the lookup. The result is discarded.
var ErrStaleResult = errors.New("stale lookup result")

// Lookup resolves a destination query.
type Lookup interface {
	Lookup(ctx context.Context, query string) (model.DestinationInfo, error)
}

// Recorder receives every query that resolved successfully.
type Recorder interface {
	Record(ctx context.Context, query string) error
}

// Session is the only place views, trips and the loading flag change.
type Session struct {
	mu     sync.Mutex
	store  *store.Store
	nav    *nav.Machine
	lookup Lookup
	log    *slog.Logger

	recorder   Recorder
	loading    bool
	query      string
	generation uint64
	cancel     context.CancelFunc
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithRecorder records successful queries, e.g. into the search history.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// New creates a session on the landing view.
func New(st *store.Store, lookup Lookup, opts ...Option) *Session {
	s := &Session{
		store:  st,
		nav:    nav.New(),
		lookup: lookup,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pending is a lookup that has been started but not run.
type Pending struct {
	generation uint64
	query      string
	ctx        context.Context
	lookup     Lookup
}

// Query returns the trimmed query being looked up.
func (p *Pending) Query() string { return p.query }

// Run performs the lookup. It blocks and is safe to call off the UI goroutine.
func (p *Pending) Run() Result {
	info, err := p.lookup.Lookup(p.ctx, p.query)
	return Result{Generation: p.generation, Query: p.query, Info: info, Err: err}
}

// Result is the outcome of a Pending lookup.
type Result struct {
	Generation uint64
	Query      string
	Info       model.DestinationInfo
	Err        error
}

// StartSearch sets the loading flag and prepares a lookup for query. Blank
// queries are rejected without touching any state. A search already in
// flight is cancelled and its result will be stale.
func (s *Session) StartSearch(ctx context.Context, query string) (*Pending, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidateLocked()
	lookupCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.loading = true
	s.query = query
	s.log.Info("destination lookup started", "query", query, "generation", s.generation)

	return &Pending{generation: s.generation, query: query, ctx: lookupCtx, lookup: s.lookup}, true
}

// FinishSearch applies r. A current success moves to the explorer; a current
// failure leaves the view alone and returns an error wrapping
// model.ErrLookup. Loading is cleared either way. Stale results return
// ErrStaleResult and change nothing.
func (s *Session) FinishSearch(r Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Generation != s.generation || !s.loading {
		s.log.Debug("dropping stale lookup result", "query", r.Query, "generation", r.Generation)
		return ErrStaleResult
	}
	s.loading = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	if r.Err != nil {
		s.log.Warn("destination lookup failed", "query", r.Query, "error", r.Err)
		if errors.Is(r.Err, model.ErrLookup) {
			return r.Err
		}
		return fmt.Errorf("%w: %w", model.ErrLookup, r.Err)
	}

	// The lookup was started from the landing view; anything else would have
	// invalidated it.
	if err := s.nav.Explore(r.Info); err != nil {
		return err
	}
	s.log.Info("destination lookup finished", "query", r.Query, "destination", r.Info.Name)

	if s.recorder != nil {
		if err := s.recorder.Record(context.Background(), r.Query); err != nil {
			s.log.Warn("failed to record search", "query", r.Query, "error", err)
		}
	}
	return nil
}

// Search runs a lookup to completion on the calling goroutine.
func (s *Session) Search(ctx context.Context, query string) error {
	p, ok := s.StartSearch(ctx, query)
	if !ok {
		return nil
	}
	return s.FinishSearch(p.Run())
}

// CancelSearch abandons the lookup in flight, if any.
func (s *Session) CancelSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loading {
		s.log.Info("destination lookup cancelled", "query", s.query)
	}
	s.invalidateLocked()
}

// StartPlanning creates a trip from the destination shown in the explorer
// and opens it in the planner. A failed save still opens the trip; the
// error wraps model.ErrStorage.
func (s *Session) StartPlanning(ctx context.Context) (model.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	explorer, ok := s.nav.Current().(nav.Explorer)
	if !ok {
		return model.Trip{}, fmt.Errorf("%w: start planning outside the explorer", nav.ErrIllegalTransition)
	}

	trip, saveErr := s.store.Create(ctx, explorer.Destination)
	if err := s.nav.Plan(trip.ID, s.store.Exists); err != nil {
		return model.Trip{}, err
	}
	return trip, saveErr
}

// SelectTrip opens an existing trip from the trip list.
func (s *Session) SelectTrip(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidateLocked()
	if !s.store.Exists(id) {
		return fmt.Errorf("trip %q: %w", id, model.ErrNotFound)
	}
	return s.nav.Plan(id, s.store.Exists)
}

// UpdateTrip resubmits an edited trip.
func (s *Session) UpdateTrip(ctx context.Context, trip model.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.Update(ctx, trip)
}

// DeleteTrip removes a trip. The caller must have confirmed with the user.
// If the trip was focused the focus is cleared.
func (s *Session) DeleteTrip(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The store drops the trip from memory even when the save fails.
	err := s.store.Delete(ctx, id)
	s.nav.Forget(id)
	return err
}

// Home navigates to the landing view.
func (s *Session) Home() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidateLocked()
	s.nav.Home()
}

// ShowTrips navigates to the trip list.
func (s *Session) ShowTrips() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidateLocked()
	s.nav.MyTrips()
}

// Back follows the screen back buttons: planner returns to the trip list,
// everything else to landing.
func (s *Session) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidateLocked()
	if _, ok := s.nav.Current().(nav.Planner); ok {
		s.nav.MyTrips()
		return
	}
	s.nav.Home()
}

// View returns the active view.
func (s *Session) View() nav.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.nav.Current()
}

// Focus returns the focused trip id.
func (s *Session) Focus() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.nav.Focus()
}

// ActiveTrip returns the trip shown in the planner. ok is false on any other
// view.
func (s *Session) ActiveTrip() (model.Trip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.nav.Current().(nav.Planner)
	if !ok {
		return model.Trip{}, false
	}
	trip, err := s.store.Get(p.TripID)
	if err != nil {
		return model.Trip{}, false
	}
	return trip, true
}

// Trips returns every trip in insertion order.
func (s *Session) Trips() []model.Trip {
	return s.store.List()
}

// Loading reports whether a lookup is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loading
}

// Query returns the most recent search query.
func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.query
}

// invalidateLocked makes any outstanding lookup stale and cancels it.
func (s *Session) invalidateLocked() {
	s.generation++
	s.loading = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
