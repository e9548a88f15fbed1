package model

// Bubble Tea message types

// ErrorMsg represents an error message.
type ErrorMsg struct {
	Err error
}

// InfoMsg carries a transient status line.
type InfoMsg struct {
	Text string
}

// FormCancelledMsg is sent when a form is cancelled.
type FormCancelledMsg struct{}

// TripEditedMsg records one change the planner made to a trip. Before is the
// value the edit started from so it can be undone.
type TripEditedMsg struct {
	Label  string
	Before Trip
	After  Trip
}

// RecentSearchesLoadedMsg is sent when the search history is loaded. Text
// is the input the queries were matched against.
type RecentSearchesLoadedMsg struct {
	Text    string
	Queries []string
}

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNav Mode = iota
	ModeInsert
)
