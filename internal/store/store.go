// Package store holds the in-memory trip collection and writes it through to
// a Persister after every mutation.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"wanderlust/internal/model"
)

// Persister loads and saves the whole trip collection.
type Persister interface {
	Load(ctx context.Context) ([]model.Trip, error)
	Save(ctx context.Context, trips []model.Trip) error
}

// Store owns every trip. Callers get copies and resubmit edits via Update.
type Store struct {
	mu      sync.Mutex
	trips   []model.Trip
	index   map[string]int
	persist Persister
	newID   func() string
	now     func() time.Time
	log     *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithIDFunc replaces the id generator.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithClock replaces the clock used for default trip dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New creates an empty store backed by p.
func New(p Persister, opts ...Option) *Store {
	s := &Store{
		trips:   []model.Trip{},
		index:   map[string]int{},
		persist: p,
		newID:   uuid.NewString,
		now:     time.Now,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the collection with the persisted one. On failure the store
// is left empty and the error is returned for the caller to report.
// Duplicate ids in the document keep their first occurrence.
func (s *Store) Load(ctx context.Context) error {
	trips, err := s.persist.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.trips = []model.Trip{}
	s.index = map[string]int{}
	if err != nil {
		s.log.Error("trip document unreadable, starting empty", "error", err)
		return fmt.Errorf("failed to load trips: %w", storageErr(err))
	}

	for _, t := range trips {
		if _, dup := s.index[t.ID]; dup || t.ID == "" {
			s.log.Warn("skipping trip with duplicate or empty id", "id", t.ID)
			continue
		}
		t.Normalize()
		s.index[t.ID] = len(s.trips)
		s.trips = append(s.trips, t)
	}
	s.log.Info("trips loaded", "count", len(s.trips))
	return nil
}

// Create turns info into a new trip starting today and ending
// model.DefaultTripLength days later. The trip is kept even if saving fails;
// the returned error then wraps model.ErrStorage.
func (s *Store) Create(ctx context.Context, info model.DestinationInfo) (model.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.uniqueID()
	trip := model.NewTrip(id, info, s.now())
	s.index[id] = len(s.trips)
	s.trips = append(s.trips, trip)
	s.log.Info("trip created", "id", id, "destination", trip.Destination)

	return trip.Clone(), s.saveLocked(ctx)
}

// Update replaces the stored trip with the same id. The trip is stored in
// its normalized form (see model.Trip.Normalize), so Get returns trip.Clone().
func (s *Store) Update(ctx context.Context, trip model.Trip) error {
	if err := trip.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[trip.ID]
	if !ok {
		return fmt.Errorf("trip %q: %w", trip.ID, model.ErrNotFound)
	}
	s.trips[i] = trip.Clone()
	s.log.Debug("trip updated", "id", trip.ID)

	return s.saveLocked(ctx)
}

// Delete removes the trip with the given id. Unknown ids are ignored and
// nothing is written.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return nil
	}
	s.trips = append(s.trips[:i], s.trips[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.trips); j++ {
		s.index[s.trips[j].ID] = j
	}
	s.log.Info("trip deleted", "id", id)

	return s.saveLocked(ctx)
}

// Get returns a copy of the trip with the given id.
func (s *Store) Get(id string) (model.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return model.Trip{}, fmt.Errorf("trip %q: %w", id, model.ErrNotFound)
	}
	return s.trips[i].Clone(), nil
}

// Exists reports whether a trip with the given id is stored.
func (s *Store) Exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.index[id]
	return ok
}

// List returns copies of every trip in insertion order.
func (s *Store) List() []model.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Trip, len(s.trips))
	for i, t := range s.trips {
		out[i] = t.Clone()
	}
	return out
}

// Len returns the number of stored trips.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.trips)
}

func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if _, taken := s.index[id]; !taken && id != "" {
			return id
		}
	}
}

func (s *Store) saveLocked(ctx context.Context) error {
	snapshot := make([]model.Trip, len(s.trips))
	for i, t := range s.trips {
		snapshot[i] = t.Clone()
	}
	if err := s.persist.Save(ctx, snapshot); err != nil {
		s.log.Error("failed to save trips", "error", err)
		return fmt.Errorf("failed to save trips: %w", storageErr(err))
	}
	return nil
}

// storageErr makes sure persister failures match model.ErrStorage.
func storageErr(err error) error {
	if errors.Is(err, model.ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", model.ErrStorage, err)
}
