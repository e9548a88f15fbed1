// Package nav tracks the active screen. Each view carries exactly the data
// it needs, so an explorer without a destination or a planner without a trip
// cannot be represented.
package nav

import (
	"errors"
	"fmt"
	"strings"

	"wanderlust/internal/model"
)

// ErrIllegalTransition is returned when a transition is not allowed from the
// current view or its payload is missing.
var ErrIllegalTransition = errors.New("illegal view transition")

// Name identifies a view.
type Name string

const (
	NameLanding  Name = "landing"
	NameExplorer Name = "explorer"
	NamePlanner  Name = "planner"
	NameMyTrips  Name = "my-trips"
)

// View is one of Landing, Explorer, Planner or MyTrips.
type View interface {
	Name() Name
	isView()
}

// Landing is the initial search screen.
type Landing struct{}

// Explorer shows a looked-up destination.
type Explorer struct {
	Destination model.DestinationInfo
}

// Planner edits one existing trip.
type Planner struct {
	TripID string
}

// MyTrips lists saved trips.
type MyTrips struct{}

func (Landing) Name() Name  { return NameLanding }
func (Explorer) Name() Name { return NameExplorer }
func (Planner) Name() Name  { return NamePlanner }
func (MyTrips) Name() Name  { return NameMyTrips }

func (Landing) isView()  {}
func (Explorer) isView() {}
func (Planner) isView()  {}
func (MyTrips) isView()  {}

// Machine holds the current view and the focused trip id. The focus outlives
// the planner view so returning to a trip list keeps the last selection.
type Machine struct {
	current View
	focus   string
}

// New returns a machine on the landing view.
func New() *Machine {
	return &Machine{current: Landing{}}
}

// Current returns the active view.
func (m *Machine) Current() View {
	return m.current
}

// Focus returns the focused trip id, or "" when nothing is focused.
func (m *Machine) Focus() string {
	return m.focus
}

// Home moves to the landing view. Always legal.
func (m *Machine) Home() {
	m.current = Landing{}
}

// MyTrips moves to the trip list. Always legal.
func (m *Machine) MyTrips() {
	m.current = MyTrips{}
}

// Explore moves from landing to the explorer for info.
func (m *Machine) Explore(info model.DestinationInfo) error {
	if _, ok := m.current.(Landing); !ok {
		return fmt.Errorf("%w: explorer from %s", ErrIllegalTransition, m.current.Name())
	}
	if strings.TrimSpace(info.Name) == "" {
		return fmt.Errorf("%w: explorer needs a destination", ErrIllegalTransition)
	}
	m.current = Explorer{Destination: info.Clone()}
	return nil
}

// Plan focuses tripID and opens the planner. It is legal from the explorer
// (start planning) and from the trip list (select a trip), and only when
// exists reports the trip is present.
func (m *Machine) Plan(tripID string, exists func(string) bool) error {
	switch m.current.(type) {
	case Explorer, MyTrips:
	default:
		return fmt.Errorf("%w: planner from %s", ErrIllegalTransition, m.current.Name())
	}
	if tripID == "" || exists == nil || !exists(tripID) {
		return fmt.Errorf("%w: planner needs an existing trip, got %q", ErrIllegalTransition, tripID)
	}
	m.focus = tripID
	m.current = Planner{TripID: tripID}
	return nil
}

// Forget drops tripID from the focus. If the planner is showing it, the
// machine falls back to the trip list.
func (m *Machine) Forget(tripID string) {
	if m.focus == tripID {
		m.focus = ""
	}
	if p, ok := m.current.(Planner); ok && p.TripID == tripID {
		m.current = MyTrips{}
	}
}
