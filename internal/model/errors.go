package model

import "errors"

// ErrNotFound is returned when an operation addresses a trip id that is not
// in the store.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when a trip or one of its entries breaks a data
// rule (unknown expense category, negative amount, bad date).
var ErrValidation = errors.New("validation error")

// ErrStorage is returned when the persisted trip document cannot be read or
// written. The in-memory store stays authoritative for the session.
var ErrStorage = errors.New("storage error")

// ErrLookup is returned when a destination lookup cannot be resolved.
var ErrLookup = errors.New("destination lookup failed")
