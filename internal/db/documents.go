package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wanderlust/internal/model"
)

// TripsKey is the document key the trip collection is stored under.
const TripsKey = "wanderlust_trips"

// GetDocument returns the body stored under key. ok is false when the key has
// never been written.
func GetDocument(ctx context.Context, db *sql.DB, key string) (body string, ok bool, err error) {
	err = db.QueryRowContext(ctx, `SELECT body FROM documents WHERE key = ?`, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read document %q: %w", key, err)
	}
	return body, true, nil
}

// PutDocument replaces the body stored under key in a single statement.
func PutDocument(ctx context.Context, db *sql.DB, key, body string) error {
	query := `
		INSERT INTO documents (key, body, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(ctx, query, key, body, time.Now().UTC().Format(timestampLayout)); err != nil {
		return fmt.Errorf("failed to write document %q: %w", key, err)
	}
	return nil
}

// TripDocument persists the whole trip collection as one JSON document.
type TripDocument struct {
	db  *sql.DB
	key string
}

// NewTripDocument returns a TripDocument stored under TripsKey.
func NewTripDocument(database *sql.DB) *TripDocument {
	return &TripDocument{db: database, key: TripsKey}
}

// Load returns the saved trips in their saved order. A missing document is an
// empty collection. A corrupt document also yields an empty collection, along
// with an error wrapping model.ErrStorage.
func (d *TripDocument) Load(ctx context.Context) ([]model.Trip, error) {
	body, ok, err := GetDocument(ctx, d.db, d.key)
	if err != nil {
		return []model.Trip{}, fmt.Errorf("%w: %v", model.ErrStorage, err)
	}
	if !ok {
		return []model.Trip{}, nil
	}

	var trips []model.Trip
	if err := json.Unmarshal([]byte(body), &trips); err != nil {
		return []model.Trip{}, fmt.Errorf("%w: failed to decode trips: %v", model.ErrStorage, err)
	}
	if trips == nil {
		trips = []model.Trip{}
	}
	for i := range trips {
		trips[i].Normalize()
	}
	return trips, nil
}

// Save rewrites the document with the full collection.
func (d *TripDocument) Save(ctx context.Context, trips []model.Trip) error {
	if trips == nil {
		trips = []model.Trip{}
	}
	data, err := json.Marshal(trips)
	if err != nil {
		return fmt.Errorf("%w: failed to encode trips: %v", model.ErrStorage, err)
	}
	if err := PutDocument(ctx, d.db, d.key, string(data)); err != nil {
		return fmt.Errorf("%w: %v", model.ErrStorage, err)
	}
	return nil
}
