package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wanderlust/internal/model"
	"wanderlust/internal/nav"
	"wanderlust/internal/session"
)

// SearchHistory supplies the recent searches shown on the landing screen.
type SearchHistory interface {
	Recent(ctx context.Context, limit int) ([]string, error)
	Suggest(ctx context.Context, text string, limit int) ([]string, error)
}

type lookupDoneMsg struct {
	result session.Result
}

type planningStartedMsg struct {
	trip model.Trip
	err  error
}

type tripDeletedMsg struct {
	id          string
	destination string
	err         error
}

// Model is the root Bubble Tea model.
type Model struct {
	sess          *session.Session
	history       SearchHistory
	log           *slog.Logger
	lookupEnabled bool
	prefsPath     string
	httpClient    *http.Client

	spinner  spinner.Model
	viewName nav.Name

	width  int
	height int

	error       string
	info        string
	showingHelp bool

	// Screen models
	landing  *LandingModel
	explorer *ExplorerModel
	trips    *TripsModel
	planner  *PlannerModel

	keys      KeyMap
	prefs     UIPreferences
	undoStack []undoAction
	redoStack []undoAction
}

// Option configures the root model.
type Option func(*Model)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Model) { m.log = log }
}

// WithLookupEnabled reports whether destination lookups are configured.
func WithLookupEnabled(enabled bool) Option {
	return func(m *Model) { m.lookupEnabled = enabled }
}

// WithPrefsPath persists table and tab preferences to path.
func WithPrefsPath(path string) Option {
	return func(m *Model) { m.prefsPath = path }
}

// WithHTTPClient sets the client used to download destination images.
func WithHTTPClient(client *http.Client) Option {
	return func(m *Model) { m.httpClient = client }
}

// New creates a new root model. history may be nil.
func New(sess *session.Session, history SearchHistory, opts ...Option) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = WarnStyle

	m := Model{
		sess:          sess,
		history:       history,
		log:           slog.Default(),
		lookupEnabled: true,
		httpClient:    http.DefaultClient,
		spinner:       sp,
		keys:          DefaultKeyMap(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.prefs = loadUIPreferences(m.prefsPath)
	m.landing = NewLandingModel(sess.Query(), m.lookupEnabled)
	m.sync()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return loadSuggestionsCmd(m.history, "")
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case model.ErrorMsg:
		m.error = msg.Err.Error()
		return m, nil

	case model.InfoMsg:
		m.info = msg.Text
		return m, nil

	case spinner.TickMsg:
		if !m.sess.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case searchRequestedMsg:
		return m, m.startSearch(msg.query)

	case lookupDoneMsg:
		err := m.sess.FinishSearch(msg.result)
		if errors.Is(err, session.ErrStaleResult) {
			return m, nil
		}
		if err != nil {
			m.error = err.Error()
			return m, nil
		}
		m.error = ""
		m.sync()
		return m, loadSuggestionsCmd(m.history, "")

	case suggestRequestedMsg:
		return m, loadSuggestionsCmd(m.history, msg.text)

	case model.RecentSearchesLoadedMsg:
		m.landing.SetSuggestions(msg.Text, msg.Queries)
		return m, nil

	case planRequestedMsg:
		return m, startPlanningCmd(m.sess)

	case planningStartedMsg:
		if msg.err != nil && !errors.Is(msg.err, model.ErrStorage) {
			m.error = msg.err.Error()
			return m, nil
		}
		m.error = ""
		if msg.err != nil {
			m.error = msg.err.Error()
		}
		m.info = fmt.Sprintf("Trip to %s created", msg.trip.Destination)
		m.sync()
		return m, nil

	case previewRequestedMsg:
		return m, fetchPreviewCmd(m.httpClient, msg.url, previewWidth, previewHeight)

	case previewLoadedMsg:
		if m.explorer != nil {
			explorer, cmd := m.explorer.Update(msg)
			m.explorer = &explorer
			return m, cmd
		}
		return m, nil

	case openTripMsg:
		if err := m.sess.SelectTrip(msg.id); err != nil {
			m.error = err.Error()
			return m, nil
		}
		m.sync()
		return m, nil

	case deleteTripMsg:
		return m, deleteTripCmd(m.sess, msg.id, msg.destination)

	case tripDeletedMsg:
		m.forgetTripActions(msg.id)
		m.error = ""
		if msg.err != nil {
			m.error = msg.err.Error()
		}
		m.info = fmt.Sprintf("Deleted trip to %s", msg.destination)
		m.sync()
		return m, nil

	case model.FormCancelledMsg, activitySubmittedMsg, expenseSubmittedMsg, detailsSubmittedMsg:
		if m.planner != nil {
			return m, m.updatePlanner(msg)
		}
		return m, nil
	}

	return m, nil
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return RenderFullHelp(m.width, m.height)
	}

	loading := m.sess.Loading()
	mode := m.mode()

	var content string
	var breadcrumbParts []string

	// Header: 1 line, Footer: 1 line, plus one banner line each for error
	// and info.
	contentHeight := m.height - 4
	if m.error != "" {
		contentHeight--
	}
	if m.info != "" {
		contentHeight--
	}

	switch m.viewName {
	case nav.NameLanding:
		breadcrumbParts = []string{"Search"}
		content = m.landing.View(m.width, contentHeight, len(m.sess.Trips()), loading, m.spinner.View(), m.sess.Query())
	case nav.NameExplorer:
		breadcrumbParts = []string{"Search"}
		if m.explorer != nil {
			breadcrumbParts = append(breadcrumbParts, m.explorer.Destination().Name)
			content = m.explorer.View(m.width, contentHeight)
		}
	case nav.NamePlanner:
		breadcrumbParts = []string{"My Trips"}
		if m.planner != nil {
			breadcrumbParts = append(breadcrumbParts, m.planner.Trip().Destination)
			content = m.planner.View(m.width, contentHeight)
		}
	case nav.NameMyTrips:
		breadcrumbParts = []string{"My Trips"}
		if m.trips != nil {
			content = m.trips.View(m.width, contentHeight)
		}
	}

	header := renderHeader(breadcrumbParts, m.width)
	footer := RenderHelp(m.viewName, mode, loading, m.width)

	// Ensure content fills the available height to anchor footer at bottom
	content = lipgloss.NewStyle().
		Width(m.width).
		Height(max(1, contentHeight)).
		Render(content)

	sections := []string{header}
	if m.error != "" {
		sections = append(sections, ErrorStyle.Width(m.width).Render("Error: "+m.error))
	}
	if m.info != "" {
		sections = append(sections, SuccessStyle.Width(m.width).Render(m.info))
	}
	sections = append(sections, content, footer)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderHeader(breadcrumbParts []string, width int) string {
	// Left side: app name + breadcrumb
	title := HeaderStyle.Render("wanderlust")

	var breadcrumb string
	if len(breadcrumbParts) > 0 {
		separator := BreadcrumbStyle.Render(" › ")
		parts := make([]string, len(breadcrumbParts))
		for i, part := range breadcrumbParts {
			if i == len(breadcrumbParts)-1 {
				parts[i] = BreadcrumbActiveStyle.Render(part)
			} else {
				parts[i] = BreadcrumbStyle.Render(part)
			}
		}
		breadcrumb = separator + strings.Join(parts, separator)
	}

	left := "  " + title + breadcrumb

	// Right side: current date
	right := BreadcrumbStyle.Render(time.Now().Format("Mon 02 Jan")) + "  "

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return TitleStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

// mode reports whether the active screen is taking text input.
func (m *Model) mode() model.Mode {
	switch m.viewName {
	case nav.NameLanding:
		if m.landing.Typing() {
			return model.ModeInsert
		}
	case nav.NamePlanner:
		if m.planner != nil && m.planner.Editing() {
			return model.ModeInsert
		}
	}
	return model.ModeNav
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle ctrl+c globally
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showingHelp {
		if msg.String() == "esc" || key.Matches(msg, m.keys.Help) {
			m.showingHelp = false
		}
		return m, nil
	}

	// While a lookup runs only cancelling and leaving the landing view work.
	if m.sess.Loading() {
		switch {
		case key.Matches(msg, m.keys.CancelQuery):
			m.sess.CancelSearch()
			m.info = "Search cancelled"
		case key.Matches(msg, m.keys.Home):
			m.sess.Home()
			m.info = "Search cancelled"
		case key.Matches(msg, m.keys.MyTrips):
			m.sess.ShowTrips()
			m.info = "Search cancelled"
		default:
			return m, nil
		}
		m.sync()
		return m, nil
	}

	m.info = ""

	if m.mode() == model.ModeInsert {
		return m.handleInsertMode(msg)
	}

	// The delete prompt owns y/n/esc.
	if m.viewName == nav.NameMyTrips && m.trips != nil && m.trips.Confirming() {
		return m.handleTripsNav(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showingHelp = true
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Home):
		m.sess.Home()
		m.sync()
		m.landing.FocusInput()
		return m, nil
	case key.Matches(msg, m.keys.MyTrips):
		m.sess.ShowTrips()
		m.sync()
		return m, nil
	case key.Matches(msg, m.keys.Undo):
		m.undo()
		return m, nil
	case key.Matches(msg, m.keys.Redo):
		m.redo()
		return m, nil
	case key.Matches(msg, m.keys.Search) && m.viewName != nav.NameLanding:
		m.sess.Home()
		m.sync()
		m.landing.FocusInput()
		return m, nil
	}

	switch m.viewName {
	case nav.NameLanding:
		return m.handleLandingNav(msg)
	case nav.NameExplorer:
		return m.handleExplorerNav(msg)
	case nav.NamePlanner:
		return m.handlePlannerNav(msg)
	case nav.NameMyTrips:
		return m.handleTripsNav(msg)
	}
	return m, nil
}

// handleInsertMode routes keys to the input that has focus.
func (m Model) handleInsertMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.viewName {
	case nav.NameLanding:
		landing, cmd := m.landing.Update(msg)
		m.landing = &landing
		return m, cmd
	case nav.NamePlanner:
		return m, m.updatePlanner(msg)
	}
	return m, nil
}

func (m Model) handleLandingNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.landing.FocusInput()
		return m, nil
	}
	landing, cmd := m.landing.Update(msg)
	m.landing = &landing
	return m, cmd
}

func (m Model) handleExplorerNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.sess.Back()
		m.sync()
		m.landing.FocusInput()
		return m, nil
	}
	if m.explorer == nil {
		return m, nil
	}
	explorer, cmd := m.explorer.Update(msg)
	m.explorer = &explorer
	return m, cmd
}

func (m Model) handlePlannerNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.sess.Back()
		m.sync()
		return m, nil
	}
	if m.planner == nil {
		return m, nil
	}
	before := m.planner.TabName()
	cmd := m.updatePlanner(msg)
	if tab := m.planner.TabName(); tab != before {
		m.prefs.PlannerTab = tab
		m.persistPrefs()
	}
	return m, cmd
}

func (m Model) handleTripsNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.trips == nil {
		return m, nil
	}
	if !m.trips.Confirming() && key.Matches(msg, m.keys.Back) {
		m.sess.Back()
		m.sync()
		m.landing.FocusInput()
		return m, nil
	}
	before := m.trips.Prefs()
	trips, cmd := m.trips.Update(msg)
	m.trips = &trips
	if after := m.trips.Prefs(); after != before {
		m.prefs.Trips = after
		m.persistPrefs()
	}
	return m, cmd
}

func (m *Model) persistPrefs() {
	if err := saveUIPreferences(m.prefsPath, m.prefs); err != nil {
		m.log.Warn("failed to save ui preferences", "error", err)
	}
}

// sync rebuilds the screen model for the session's current view.
func (m *Model) sync() {
	view := m.sess.View()
	switch v := view.(type) {
	case nav.Explorer:
		if m.explorer == nil || m.viewName != nav.NameExplorer || m.explorer.Destination().Name != v.Destination.Name {
			m.explorer = NewExplorerModel(v.Destination)
		}
	case nav.Planner:
		trip, ok := m.sess.ActiveTrip()
		if !ok {
			break
		}
		if m.planner == nil || m.viewName != nav.NamePlanner || m.planner.Trip().ID != v.TripID {
			m.planner = NewPlannerModel(trip, m.prefs.PlannerTab)
		} else {
			m.planner.SetTrip(trip)
		}
	case nav.MyTrips:
		m.trips = NewTripsModel(m.sess.Trips())
		m.trips.ApplyPrefs(m.prefs.Trips)
		if focus := m.sess.Focus(); focus != "" {
			m.trips.SelectID(focus)
		}
	}
	m.viewName = view.Name()
}

// refreshPlanner reloads the open trip from the session.
// updatePlanner runs msg through the planner and saves the edits it made in
// the order they were made.
func (m *Model) updatePlanner(msg tea.Msg) tea.Cmd {
	planner, cmd := m.planner.Update(msg)
	m.planner = &planner
	for _, edit := range m.planner.TakeEdits() {
		m.saveEdit(edit)
	}
	return cmd
}

func (m *Model) saveEdit(edit model.TripEditedMsg) {
	err := m.sess.UpdateTrip(context.Background(), edit.After)
	// A storage failure keeps the edit in memory, so it is still undoable.
	if err != nil && !errors.Is(err, model.ErrStorage) {
		m.error = err.Error()
		m.refreshPlanner()
		return
	}
	m.pushUndoAction(m.buildTripEditAction(edit))
	m.error = ""
	if err != nil {
		m.error = err.Error()
	}
	m.info = capitalize(edit.Label) + " (u to undo)"
	m.refreshPlanner()
}

func (m *Model) refreshPlanner() {
	if m.planner == nil || m.viewName != nav.NamePlanner {
		return
	}
	if trip, ok := m.sess.ActiveTrip(); ok {
		m.planner.SetTrip(trip)
	}
}

func (m *Model) startSearch(query string) tea.Cmd {
	pending, ok := m.sess.StartSearch(context.Background(), query)
	if !ok {
		return nil
	}
	m.error = ""
	m.info = ""
	return tea.Batch(m.spinner.Tick, runLookupCmd(pending))
}

func runLookupCmd(pending *session.Pending) tea.Cmd {
	return func() tea.Msg {
		return lookupDoneMsg{result: pending.Run()}
	}
}

func startPlanningCmd(sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		trip, err := sess.StartPlanning(context.Background())
		return planningStartedMsg{trip: trip, err: err}
	}
}


func deleteTripCmd(sess *session.Session, id, destination string) tea.Cmd {
	return func() tea.Msg {
		err := sess.DeleteTrip(context.Background(), id)
		return tripDeletedMsg{id: id, destination: destination, err: err}
	}
}

func loadSuggestionsCmd(history SearchHistory, text string) tea.Cmd {
	if history == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		var queries []string
		var err error
		if strings.TrimSpace(text) == "" {
			queries, err = history.Recent(ctx, suggestionLimit)
		} else {
			queries, err = history.Suggest(ctx, text, suggestionLimit)
		}
		if err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to load recent searches: %w", err)}
		}
		return model.RecentSearchesLoadedMsg{Text: text, Queries: queries}
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
