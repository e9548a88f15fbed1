package ui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderlust/internal/model"
	"wanderlust/internal/nav"
	"wanderlust/internal/session"
	"wanderlust/internal/store"
)

type lookupFunc func(ctx context.Context, query string) (model.DestinationInfo, error)

func (f lookupFunc) Lookup(ctx context.Context, query string) (model.DestinationInfo, error) {
	return f(ctx, query)
}

func echoLookup() lookupFunc {
	return func(_ context.Context, q string) (model.DestinationInfo, error) {
		return model.DestinationInfo{
			Name:                q,
			Country:             "Japan",
			Description:         "Temples and gardens.",
			PopularAttractions:  []string{"Fushimi Inari"},
			EstimatedBudget:     model.Budget{Low: 80, High: 200, Currency: "USD"},
			WeatherInfo:         "Mild spring.",
			SuggestedActivities: []string{"Tea ceremony"},
		}, nil
	}
}

type memPersister struct {
	saved []model.Trip
}

func (p *memPersister) Load(context.Context) ([]model.Trip, error) { return p.saved, nil }
func (p *memPersister) Save(_ context.Context, trips []model.Trip) error {
	p.saved = trips
	return nil
}

type fakeHistory struct {
	recent  []string
	suggest func(text string) []string
}

func (h *fakeHistory) Recent(context.Context, int) ([]string, error) { return h.recent, nil }
func (h *fakeHistory) Suggest(_ context.Context, text string, _ int) ([]string, error) {
	if h.suggest == nil {
		return nil, nil
	}
	return h.suggest(text), nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type harness struct {
	t       *testing.T
	m       Model
	sess    *session.Session
	persist *memPersister
}

func newHarness(t *testing.T, lookup session.Lookup, history SearchHistory) *harness {
	t.Helper()
	p := &memPersister{}
	st := store.New(p, store.WithLogger(quietLogger()))
	sess := session.New(st, lookup, session.WithLogger(quietLogger()))
	m := New(sess, history, WithLogger(quietLogger()))
	h := &harness{t: t, m: m, sess: sess, persist: p}
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	h.send(execCmd(m.Init())...)
	return h
}

// execCmd runs cmd and flattens batches. Commands that block, such as cursor
// blinks and spinner ticks, are dropped.
func execCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, execCmd(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(200 * time.Millisecond):
		return nil
	}
}

// send feeds msgs to the model and keeps running the resulting commands
// until the model settles.
func (h *harness) send(msgs ...tea.Msg) {
	h.t.Helper()
	queue := msgs
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(h.t, steps, 200, "model did not settle")
		msg := queue[0]
		queue = queue[1:]
		if _, ok := msg.(spinner.TickMsg); ok {
			continue
		}
		next, cmd := h.m.Update(msg)
		h.m = next.(Model)
		queue = append(queue, execCmd(cmd)...)
	}
}

func (h *harness) keys(keys ...tea.KeyMsg) {
	h.t.Helper()
	for _, k := range keys {
		h.send(k)
	}
}

func (h *harness) typeText(s string) {
	h.t.Helper()
	h.send(runes(s))
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	ctrlS = tea.KeyMsg{Type: tea.KeyCtrlS}
	ctrlR = tea.KeyMsg{Type: tea.KeyCtrlR}
)

func (h *harness) search(query string) {
	h.t.Helper()
	h.typeText(query)
	h.keys(enter)
}

func (h *harness) planTrip(query string) {
	h.t.Helper()
	h.search(query)
	require.Equal(h.t, nav.NameExplorer, h.sess.View().Name())
	h.keys(runes("p"))
	require.Equal(h.t, nav.NamePlanner, h.sess.View().Name())
}

func (h *harness) activeTrip() model.Trip {
	h.t.Helper()
	trip, ok := h.sess.ActiveTrip()
	require.True(h.t, ok)
	return trip
}

func TestSearch_OpensExplorer(t *testing.T) {
	h := newHarness(t, echoLookup(), nil)

	h.search("Kyoto")

	assert.Equal(t, nav.NameExplorer, h.m.viewName)
	require.NotNil(t, h.m.explorer)
	assert.Equal(t, "Kyoto", h.m.explorer.Destination().Name)
	assert.False(t, h.sess.Loading())
	assert.Contains(t, h.m.View(), "Kyoto")
	assert.Contains(t, h.m.View(), "Press p to start planning")
}

func TestSearch_BlankQueryDoesNothing(t *testing.T) {
	h := newHarness(t, echoLookup(), nil)

	h.typeText("   ")
	h.keys(enter)

	assert.Equal(t, nav.NameLanding, h.m.viewName)
	assert.False(t, h.sess.Loading())
}

func TestSearch_FailureShowsError(t *testing.T) {
	lookup := lookupFunc(func(context.Context, string) (model.DestinationInfo, error) {
		return model.DestinationInfo{}, errors.New("boom")
	})
	h := newHarness(t, lookup, nil)

	h.search("Atlantis")

	assert.Equal(t, nav.NameLanding, h.m.viewName)
	assert.Contains(t, h.m.error, "destination lookup failed")
	assert.False(t, h.sess.Loading())
	assert.Contains(t, h.m.View(), "Error:")
}

func TestSearch_CancelledResultIsIgnored(t *testing.T) {
	h := newHarness(t, echoLookup(), nil)

	next, cmd := h.m.Update(searchRequestedMsg{query: "Kyoto"})
	h.m = next.(Model)
	require.True(t, h.sess.Loading())

	// Navigation is still allowed while loading and abandons the lookup.
	h.keys(runes("t"))
	assert.Equal(t, nav.NameMyTrips, h.m.viewName)
	assert.False(t, h.sess.Loading())

	h.send(execCmd(cmd)...)

	assert.Equal(t, nav.NameMyTrips, h.m.viewName)
	assert.Empty(t, h.m.error)
}

func TestSearch_EscCancelsLoading(t *testing.T) {
	h := newHarness(t, echoLookup(), nil)

	next, cmd := h.m.Update(searchRequestedMsg{query: "Kyoto"})
	h.m = next.(Model)
	assert.Contains(t, h.m.View(), "Looking up")

	h.keys(esc)
	assert.False(t, h.sess.Loading())
	assert.Equal(t, "Search cancelled", h.m.info)

	h.send(execCmd(cmd)...)
	assert.Equal(t, nav.NameLanding, h.m.viewName)
}

func TestSuggestions_FromHistory(t *testing.T) {
	history := &fakeHistory{
		recent:  []string{"Lisbon", "Kyoto"},
		suggest: func(text string) []string { return []string{"Lisbon"} },
	}
	h := newHarness(t, echoLookup(), history)
	assert.Equal(t, []string{"Lisbon", "Kyoto"}, h.m.landing.suggestions)

	h.typeText("Lis")
	assert.Equal(t, []string{"Lisbon"}, h.m.landing.suggestions)

	h.keys(tab, enter)

	assert.Equal(t, nav.NameExplorer, h.m.viewName)
	assert.Equal(t, "Lisbon", h.m.explorer.Destination().Name)
}

func TestPlanning_CreatesTripAndOpensPlanner(t *testing.T) {
	h := newHarness(t, echoLookup(), nil)

	h.planTrip("Kyoto")

	trip := h.activeTrip()
	assert.Equal(t, "Kyoto", trip.Destination)
	assert.Equal(t, 7, trip.Nights())
	require.Len(t, h.persist.saved, 1)
	require.NotNil(t, h.m.planner)
	assert.Equal(t, trip.ID, h.m.planner.Trip().ID)
	assert.Contains(t, h.m.info, "Trip to Kyoto created")
}

func TestPlanner_AddExpenseUndoRedo(t *testing.T) {
	h := newHarness(t, echoLookup(), nil)
	h.planTrip("Kyoto")

	h.keys(runes("2"), runes("a"))
	require.Equal(t, model.ModeInsert, h.m.mode())
	h.keys(tea.KeyMsg{Type: tea.KeyRight})
	h.typeText("1,250.50")
	h.keys(enter)
	h.typeText("Ryokan")
	h.keys(enter)

	require.Equal(t, model.ModeNav, h.m.mode())
	trip := h.activeTrip()
	require.Len(t, trip.Expenses, 1)
	assert.Equal(t, model.CategoryTransport, trip.Expenses[0].Category)
	assert.InDelta(t, 1250.5, trip.Expenses[0].Amount, 0.001)
	assert.Equal(t, "Ryokan", trip.Expenses[0].Description)
	assert.Len(t, h.persist.saved[0].Expenses, 1)
	assert.Contains(t, h.m.View(), "1,250.50 USD")

	h.keys(runes("u"))
	assert.Empty(t, h.activeTrip().Expenses)
	assert.Empty(t, h.m.planner.Trip().Expenses)
	assert.Equal(t, "Undid: expense added", h.m.info)

	h.keys(ctrlR)
	assert.Len(t, h.activeTrip().Expenses, 1)
	assert.Equal(t, "Redid: expense added", h.m.info)
}

func TestPlanner_RapidEditsSaveInOrder(t *testing.T) {
	h := newHarness(t, echoLookup(), nil)
	h.planTrip("Kyoto")

	// Two edits before either command has run, then run the commands in
	// reverse order, as the runtime may.
	next, first := h.m.Update(runes("D"))
	h.m = next.(Model)
	next, second := h.m.Update(runes("D"))
	h.m = next.(Model)
	h.send(execCmd(second)...)
	h.send(execCmd(first)...)

	trip := h.activeTrip()
	require.Len(t, trip.Itinerary, 2)
	assert.Equal(t, []int{1, 2}, []int{trip.Itinerary[0].Day, trip.Itinerary[1].Day})
	assert.Equal(t, trip, h.m.planner.Trip())
	require.Len(t, h.persist.saved, 1)
	assert.Len(t, h.persist.saved[0].Itinerary, 2)
	require.Len(t, h.m.undoStack, 2)

	h.keys(runes("u"))
	assert.Len(t, h.activeTrip().Itinerary, 1)
	h.keys(runes("u"))
	assert.Empty(t, h.activeTrip().Itinerary)
	h.keys(ctrlR, ctrlR)
	assert.Len(t, h.activeTrip().Itinerary, 2)
}

func TestPlanner_NarrowTerminal(t *testing.T) {
	h := newHarness(t, echoLookup(), nil)
	h.planTrip("Kyoto")
	h.keys(runes("D"), runes("a"))
	h.typeText("09:00")
	h.keys(enter)
	h.typeText("Temple walk")
	h.keys(ctrlS)
	require.Len(t, h.activeTrip().Itinerary[0].Activities, 1)

	for _, width := range []int{2, 4, 6} {
		h.send(tea.WindowSizeMsg{Width: width, Height: 10})
		assert.NotPanics(t, func() { _ = h.m.View() }, "width %d", width)
	}
}

func TestPlanner_InvalidExpenseKeepsFormOpen(t *testing.T) {
	h := newHarness(t, echoLookup(), nil)
	h.planTrip("Kyoto")

	h.keys(runes("2"), runes("a"))
	h.typeText("-5")
	h.keys(ctrlS)

	assert.Equal(t, model.ModeInsert, h.m.mode())
	require.NotNil(t, h.m.planner.expenseForm)
	assert.NotEmpty(t, h.m.planner.expenseForm.error)
	assert.Empty(t, h.activeTrip().Expenses)

	h.keys(esc)
	assert.Equal(t, model.ModeNav, h.m.mode())
}

func TestPlanner_AddDayAndActivity(t *testing.T) {
	h := newHarness(t, echoLookup(), nil)
	h.planTrip("Kyoto")

	h.keys(runes("D"), runes("a"))
	h.typeText("09:00")
	h.keys(enter)
	h.typeText("Temple walk")
	h.keys(enter, enter)
	h.typeText("15")
	h.keys(enter)

	trip := h.activeTrip()
	require.Len(t, trip.Itinerary, 1)
	assert.Equal(t, 1, trip.Itinerary[0].Day)
	assert.Equal(t, trip.StartDate, trip.Itinerary[0].Date)
	require.Len(t, trip.Itinerary[0].Activities, 1)
	act := trip.Itinerary[0].Activities[0]
	assert.NotEmpty(t, act.ID)
	assert.Equal(t, "09:00", act.Time)
	assert.Equal(t, "Temple walk", act.Description)
	assert.Nil(t, act.Location)
	require.NotNil(t, act.Cost)
	assert.Equal(t, 15.0, *act.Cost)

	// Cursor is on the day header; move to the activity and remove it.
	h.keys(runes("j"), runes("x"))
	assert.Empty(t, h.activeTrip().Itinerary[0].Activities)
}

func TestPlanner_AddActivityNeedsDay(t *testing.T) {
	h := newHarness(t, echoLookup(), nil)
	h.planTrip("Kyoto")

	h.keys(runes("a"))

	assert.Equal(t, model.ModeNav, h.m.mode())
	assert.Equal(t, "Add a day first with D", h.m.info)
}

func TestPlanner_EditNotes(t *testing.T) {
	h := newHarness(t, echoLookup(), nil)
	h.planTrip("Kyoto")

	h.keys(runes("3"), runes("e"))
	require.Equal(t, model.ModeInsert, h.m.mode())
	h.typeText("Bring adapter")
	h.keys(ctrlS)

	assert.Equal(t, "Bring adapter", h.activeTrip().Notes)
	assert.Equal(t, model.ModeNav, h.m.mode())
}

func TestPlanner_BackGoesToMyTrips(t *testing.T) {
	h := newHarness(t, echoLookup(), nil)
	h.planTrip("Kyoto")
	id := h.activeTrip().ID

	h.keys(runes("b"))

	assert.Equal(t, nav.NameMyTrips, h.m.viewName)
	assert.Equal(t, id, h.sess.Focus())
	selected, ok := h.m.trips.Selected()
	require.True(t, ok)
	assert.Equal(t, id, selected.ID)

	h.keys(enter)
	assert.Equal(t, nav.NamePlanner, h.m.viewName)
}

func TestTrips_DeleteNeedsConfirmation(t *testing.T) {
	h := newHarness(t, echoLookup(), nil)
	h.planTrip("Kyoto")
	h.keys(runes("t"))
	require.Equal(t, nav.NameMyTrips, h.m.viewName)

	h.keys(runes("d"))
	assert.True(t, h.m.trips.Confirming())
	assert.Contains(t, h.m.View(), "Delete trip to Kyoto?")
	h.keys(runes("n"))
	assert.False(t, h.m.trips.Confirming())
	assert.Len(t, h.sess.Trips(), 1)

	// esc cancels the prompt without leaving the list.
	h.keys(runes("d"), esc)
	assert.Equal(t, nav.NameMyTrips, h.m.viewName)
	assert.Len(t, h.sess.Trips(), 1)

	h.keys(runes("d"), runes("y"))
	assert.Empty(t, h.sess.Trips())
	assert.Empty(t, h.persist.saved)
	assert.Equal(t, "", h.sess.Focus())
	assert.Equal(t, "Deleted trip to Kyoto", h.m.info)
	assert.Contains(t, h.m.View(), "No trips yet.")
}

func TestTrips_DeletePurgesUndoHistory(t *testing.T) {
	h := newHarness(t, echoLookup(), nil)
	h.planTrip("Kyoto")
	h.keys(runes("3"), runes("e"))
	h.typeText("notes")
	h.keys(ctrlS)
	require.Len(t, h.m.undoStack, 1)

	h.keys(runes("t"), runes("d"), runes("y"))

	assert.Empty(t, h.m.undoStack)
	h.keys(runes("u"))
	assert.Equal(t, "Nothing to undo", h.m.info)
	assert.Empty(t, h.sess.Trips())
}

func TestHelp_Toggle(t *testing.T) {
	h := newHarness(t, echoLookup(), nil)

	// The search input has focus, so ? is typed.
	h.keys(runes("?"))
	assert.False(t, h.m.showingHelp)

	h.keys(esc)
	h.keys(runes("?"))
	assert.True(t, h.m.showingHelp)
	assert.True(t, strings.Contains(h.m.View(), "Help"))

	h.keys(esc)
	assert.False(t, h.m.showingHelp)
}

func TestHome_FromExplorerFocusesSearch(t *testing.T) {
	h := newHarness(t, echoLookup(), nil)
	h.search("Kyoto")

	h.keys(runes("H"))

	assert.Equal(t, nav.NameLanding, h.m.viewName)
	assert.Equal(t, model.ModeInsert, h.m.mode())
}
