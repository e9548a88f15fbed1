package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wanderlust/internal/model"
	"wanderlust/internal/util"
)

type plannerTab int

const (
	tabItinerary plannerTab = iota
	tabExpenses
	tabNotes
	tabDetails
	tabInsights
)

var plannerTabNames = []string{"itinerary", "expenses", "notes", "details", "insights"}

func (t plannerTab) String() string {
	return plannerTabNames[t]
}

func parsePlannerTab(name string) plannerTab {
	for i, n := range plannerTabNames {
		if n == name {
			return plannerTab(i)
		}
	}
	return tabItinerary
}

// itineraryRow is one line of the flattened itinerary: a day header when
// activityID is empty, otherwise an activity of that day.
type itineraryRow struct {
	day        int
	activityID string
}

// PlannerModel edits one trip. Every change is made on a clone and queued as
// a model.TripEditedMsg until the root model takes it with TakeEdits.
type PlannerModel struct {
	trip  model.Trip
	tab   plannerTab
	keys  KeyMap
	edits []model.TripEditedMsg

	rowCursor     int
	expenseCursor int
	offset        int

	notes        textarea.Model
	editingNotes bool

	activityForm *ActivityForm
	expenseForm  *ExpenseForm
	detailsForm  *DetailsForm
}

// NewPlannerModel creates the planner for trip opened on the named tab.
func NewPlannerModel(trip model.Trip, tab string) *PlannerModel {
	notes := textarea.New()
	notes.Placeholder = "Packing lists, reservations, ideas..."
	notes.ShowLineNumbers = false
	notes.CharLimit = 0

	return &PlannerModel{
		trip:  trip,
		tab:   parsePlannerTab(tab),
		keys:  DefaultKeyMap(),
		notes: notes,
	}
}

// Trip returns the trip as last shown.
func (m *PlannerModel) Trip() model.Trip {
	return m.trip
}

// TabName returns the active tab name.
func (m *PlannerModel) TabName() string {
	return m.tab.String()
}

// SetTrip replaces the shown trip, keeping cursors in range.
func (m *PlannerModel) SetTrip(trip model.Trip) {
	m.trip = trip
	m.clampCursors()
}

// Editing reports whether a form or the notes editor has the keyboard.
func (m *PlannerModel) Editing() bool {
	return m.editingNotes || m.activityForm != nil || m.expenseForm != nil || m.detailsForm != nil
}

func (m *PlannerModel) closeForms() {
	m.activityForm = nil
	m.expenseForm = nil
	m.detailsForm = nil
	m.editingNotes = false
	m.notes.Blur()
}

func (m *PlannerModel) rows() []itineraryRow {
	var rows []itineraryRow
	for _, day := range m.trip.Itinerary {
		rows = append(rows, itineraryRow{day: day.Day})
		for _, a := range day.Activities {
			rows = append(rows, itineraryRow{day: day.Day, activityID: a.ID})
		}
	}
	return rows
}

func (m *PlannerModel) clampCursors() {
	if n := len(m.rows()); m.rowCursor >= n {
		m.rowCursor = max(0, n-1)
	}
	if n := len(m.trip.Expenses); m.expenseCursor >= n {
		m.expenseCursor = max(0, n-1)
	}
}

func (m *PlannerModel) currency() string {
	if m.trip.AIInsights != nil {
		return m.trip.AIInsights.EstimatedBudget.Currency
	}
	return ""
}

// edit applies fn to a clone of the trip and queues the change. The planner
// shows the result right away; the root model persists it.
func (m *PlannerModel) edit(label string, fn func(t *model.Trip) error) tea.Cmd {
	before := m.trip.Clone()
	after := m.trip.Clone()
	if err := fn(&after); err != nil {
		return func() tea.Msg { return model.ErrorMsg{Err: err} }
	}
	m.trip = after
	m.clampCursors()
	m.edits = append(m.edits, model.TripEditedMsg{Label: label, Before: before, After: after.Clone()})
	return nil
}

// TakeEdits returns the queued edits, oldest first, and clears the queue.
func (m *PlannerModel) TakeEdits() []model.TripEditedMsg {
	edits := m.edits
	m.edits = nil
	return edits
}

// Update handles input and the messages sent by the planner forms.
func (m PlannerModel) Update(msg tea.Msg) (PlannerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case model.FormCancelledMsg:
		m.closeForms()
		return m, nil

	case activitySubmittedMsg:
		m.closeForms()
		return m, m.edit("activity added", func(t *model.Trip) error {
			return t.AddActivity(msg.day, msg.activity)
		})

	case expenseSubmittedMsg:
		m.closeForms()
		m.expenseCursor = len(m.trip.Expenses)
		return m, m.edit("expense added", func(t *model.Trip) error {
			return t.AddExpense(msg.expense)
		})

	case detailsSubmittedMsg:
		m.closeForms()
		return m, m.edit("details updated", func(t *model.Trip) error {
			if err := t.SetDates(msg.start, msg.end); err != nil {
				return err
			}
			t.Hotel = msg.hotel
			t.Transport = msg.transport
			return nil
		})

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m PlannerModel) updateKeys(msg tea.KeyMsg) (PlannerModel, tea.Cmd) {
	switch {
	case m.activityForm != nil:
		form, cmd := m.activityForm.Update(msg)
		m.activityForm = &form
		return m, cmd
	case m.expenseForm != nil:
		form, cmd := m.expenseForm.Update(msg)
		m.expenseForm = &form
		return m, cmd
	case m.detailsForm != nil:
		form, cmd := m.detailsForm.Update(msg)
		m.detailsForm = &form
		return m, cmd
	case m.editingNotes:
		return m.updateNotes(msg)
	}

	switch {
	case key.Matches(msg, m.keys.NextTab):
		m.tab = (m.tab + 1) % plannerTab(len(plannerTabNames))
		m.offset = 0
		return m, nil
	case key.Matches(msg, m.keys.PrevTab):
		m.tab = (m.tab + plannerTab(len(plannerTabNames)) - 1) % plannerTab(len(plannerTabNames))
		m.offset = 0
		return m, nil
	}
	if s := msg.String(); len(s) == 1 && s[0] >= '1' && int(s[0]-'1') < len(plannerTabNames) {
		m.tab = plannerTab(s[0] - '1')
		m.offset = 0
		return m, nil
	}

	switch m.tab {
	case tabItinerary:
		return m.updateItinerary(msg)
	case tabExpenses:
		return m.updateExpenses(msg)
	case tabNotes:
		if key.Matches(msg, m.keys.Edit) || key.Matches(msg, m.keys.Select) {
			m.notes.SetValue(m.trip.Notes)
			m.notes.Focus()
			m.editingNotes = true
			return m, nil
		}
	case tabDetails:
		if key.Matches(msg, m.keys.Edit) || key.Matches(msg, m.keys.Select) {
			m.detailsForm = NewDetailsForm(m.trip)
		}
	case tabInsights:
		switch {
		case key.Matches(msg, m.keys.Down):
			m.offset++
		case key.Matches(msg, m.keys.Up):
			if m.offset > 0 {
				m.offset--
			}
		}
	}
	return m, nil
}

func (m PlannerModel) updateNotes(msg tea.KeyMsg) (PlannerModel, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultFormKeyMap().Save):
		text := m.notes.Value()
		m.closeForms()
		if text == m.trip.Notes {
			return m, nil
		}
		return m, m.edit("notes updated", func(t *model.Trip) error {
			t.Notes = text
			return nil
		})
	case key.Matches(msg, DefaultFormKeyMap().Cancel):
		m.closeForms()
		return m, nil
	}
	var cmd tea.Cmd
	m.notes, cmd = m.notes.Update(msg)
	return m, cmd
}

func (m PlannerModel) updateItinerary(msg tea.KeyMsg) (PlannerModel, tea.Cmd) {
	rows := m.rows()
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.rowCursor < len(rows)-1 {
			m.rowCursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.rowCursor > 0 {
			m.rowCursor--
		}
	case key.Matches(msg, m.keys.Top):
		m.rowCursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.rowCursor = max(0, len(rows)-1)
	case key.Matches(msg, m.keys.AddDay):
		cmd := m.edit("day added", func(t *model.Trip) error {
			t.AddDay()
			return nil
		})
		m.rowCursor = len(m.rows()) - 1
		return m, cmd
	case key.Matches(msg, m.keys.Add):
		if len(rows) == 0 {
			return m, func() tea.Msg { return model.InfoMsg{Text: "Add a day first with D"} }
		}
		m.activityForm = NewActivityForm(rows[m.rowCursor].day)
		return m, nil
	case key.Matches(msg, m.keys.Remove):
		if len(rows) == 0 {
			return m, nil
		}
		row := rows[m.rowCursor]
		if row.activityID != "" {
			return m, m.edit("activity removed", func(t *model.Trip) error {
				if !t.RemoveActivity(row.activityID) {
					return fmt.Errorf("activity %q: %w", row.activityID, model.ErrNotFound)
				}
				return nil
			})
		}
		return m, m.edit(fmt.Sprintf("day %d removed", row.day), func(t *model.Trip) error {
			if !t.RemoveDay(row.day) {
				return fmt.Errorf("day %d: %w", row.day, model.ErrNotFound)
			}
			return nil
		})
	}
	return m, nil
}

func (m PlannerModel) updateExpenses(msg tea.KeyMsg) (PlannerModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.expenseCursor < len(m.trip.Expenses)-1 {
			m.expenseCursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.expenseCursor > 0 {
			m.expenseCursor--
		}
	case key.Matches(msg, m.keys.Add):
		m.expenseForm = NewExpenseForm(m.currency())
		return m, nil
	case key.Matches(msg, m.keys.Remove):
		if m.expenseCursor >= len(m.trip.Expenses) {
			return m, nil
		}
		id := m.trip.Expenses[m.expenseCursor].ID
		return m, m.edit("expense removed", func(t *model.Trip) error {
			if !t.RemoveExpense(id) {
				return fmt.Errorf("expense %q: %w", id, model.ErrNotFound)
			}
			return nil
		})
	}
	return m, nil
}

// View renders the planner.
func (m *PlannerModel) View(width, height int) string {
	trip := m.trip
	title := lipgloss.JoinHorizontal(lipgloss.Bottom,
		HeroStyle.Render(trip.Destination),
		"  ",
		HelpDescStyle.Render(trip.Country),
		"  ",
		LabelStyle.Render(util.FormatDateRange(trip.StartDate, trip.EndDate)),
		HelpDescStyle.Render(" · "+util.FormatNights(trip.Nights())),
	)

	var tabs []string
	for i, name := range plannerTabNames {
		label := fmt.Sprintf("%d %s", i+1, strings.ToUpper(name[:1])+name[1:])
		if plannerTab(i) == m.tab {
			tabs = append(tabs, ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, TabStyle.Render(label))
		}
	}
	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	bodyHeight := max(3, height-6)
	var body string
	switch {
	case m.activityForm != nil:
		body = m.activityForm.View(width)
	case m.expenseForm != nil:
		body = m.expenseForm.View(width)
	case m.detailsForm != nil:
		body = m.detailsForm.View(width)
	default:
		switch m.tab {
		case tabItinerary:
			body = m.viewItinerary(width, bodyHeight)
		case tabExpenses:
			body = m.viewExpenses(width, bodyHeight)
		case tabNotes:
			body = m.viewNotes(width, bodyHeight)
		case tabDetails:
			body = m.viewDetails()
		case tabInsights:
			body = m.viewInsights(width, bodyHeight)
		}
	}

	return lipgloss.NewStyle().Padding(0, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", tabBar, "", body),
	)
}

func (m *PlannerModel) viewItinerary(width, height int) string {
	if len(m.trip.Itinerary) == 0 {
		return EmptyStateStyle.Render("No days planned yet. Press D to add the first day.")
	}

	var lines []string
	cursorLine := 0
	i := 0
	for _, day := range m.trip.Itinerary {
		header := fmt.Sprintf("Day %d", day.Day)
		if day.Date != "" {
			header += "  " + util.FormatDateShort(day.Date)
		}
		if i == m.rowCursor {
			cursorLine = len(lines)
			lines = append(lines, SelectedRowStyle.Width(width-6).Render(header))
		} else {
			lines = append(lines, LabelStyle.Render(header))
		}
		i++

		if len(day.Activities) == 0 {
			lines = append(lines, HelpDescStyle.Render("    nothing planned · press a to add"))
		}
		for _, a := range day.Activities {
			text := fmt.Sprintf("    %-6s %s", a.Time, a.Description)
			if a.Location != nil {
				text += "  @ " + *a.Location
			}
			if a.Cost != nil {
				text += "  " + util.FormatMoney(*a.Cost, m.currency())
			}
			text = util.TruncateString(text, width-6)
			if i == m.rowCursor {
				cursorLine = len(lines)
				lines = append(lines, SelectedRowStyle.Width(width-6).Render(text))
			} else {
				lines = append(lines, NormalRowStyle.Render(text))
			}
			i++
		}
	}

	if cursorLine >= m.offset+height {
		m.offset = cursorLine - height + 1
	}
	if cursorLine < m.offset {
		m.offset = cursorLine
	}
	end := min(len(lines), m.offset+height)
	return strings.Join(lines[m.offset:end], "\n")
}

func (m *PlannerModel) viewExpenses(width, height int) string {
	currency := m.currency()
	var lines []string

	if len(m.trip.Expenses) == 0 {
		lines = append(lines, EmptyStateStyle.Render("No expenses yet. Press a to add one."))
	} else {
		widths := []int{16, 16, max(20, width-40)}
		lines = append(lines, renderTableRow([]string{"CATEGORY", "AMOUNT", "DESCRIPTION"}, widths, TableHeaderStyle))
		limit := max(1, height-len(model.ExpenseCategories)-6)
		start := 0
		if m.expenseCursor >= limit {
			start = m.expenseCursor - limit + 1
		}
		for i := start; i < len(m.trip.Expenses) && i < start+limit; i++ {
			e := m.trip.Expenses[i]
			style := NormalRowStyle
			if i == m.expenseCursor {
				style = SelectedRowStyle
			}
			lines = append(lines, renderTableRow([]string{
				string(e.Category),
				util.FormatMoney(e.Amount, currency),
				util.TruncateString(e.Description, widths[2]-2),
			}, widths, style))
		}
	}

	lines = append(lines, "", m.viewTotals(currency))
	return strings.Join(lines, "\n")
}

func (m *PlannerModel) viewTotals(currency string) string {
	totals := m.trip.ExpenseTotals()
	var parts []string
	for _, c := range model.ExpenseCategories {
		parts = append(parts, fmt.Sprintf("%s %s", HelpDescStyle.Render(string(c)), util.FormatMoney(totals[c], currency)))
	}
	spent := m.trip.TotalExpenses()
	lines := []string{
		strings.Join(parts, "   "),
		LabelStyle.Render("Total spent") + "  " + util.FormatMoney(spent, currency),
	}
	if planned := m.trip.ActivityCosts(); planned > 0 {
		lines = append(lines, HelpDescStyle.Render("Planned activity costs  "+util.FormatMoney(planned, currency)))
	}
	if line := m.budgetLine(spent); line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// budgetLine compares spent with the daily budget estimate over the trip nights.
func (m *PlannerModel) budgetLine(spent float64) string {
	insights := m.trip.AIInsights
	nights := m.trip.Nights()
	if insights == nil || nights == 0 || (insights.EstimatedBudget.Low == 0 && insights.EstimatedBudget.High == 0) {
		return ""
	}
	b := insights.EstimatedBudget
	estimate := model.Budget{Low: b.Low * float64(nights), High: b.High * float64(nights), Currency: b.Currency}
	text := fmt.Sprintf("Estimated for %s  %s", util.FormatNights(nights), util.FormatBudget(estimate))
	switch {
	case spent > estimate.High:
		return WarnStyle.Render(text + "  · over budget")
	case spent >= estimate.Low:
		return SuccessStyle.Render(text + "  · within budget")
	default:
		return HelpDescStyle.Render(text)
	}
}

func (m *PlannerModel) viewNotes(width, height int) string {
	if m.editingNotes {
		m.notes.SetWidth(max(20, width-8))
		m.notes.SetHeight(max(3, height-2))
		return ActiveBorderStyle.Render(m.notes.View())
	}
	if strings.TrimSpace(m.trip.Notes) == "" {
		return EmptyStateStyle.Render("No notes yet. Press e to write some.")
	}
	return PanelStyle.Width(max(20, width-6)).Render(m.trip.Notes)
}

func (m *PlannerModel) viewDetails() string {
	trip := m.trip
	row := func(label, value string) string {
		return LabelStyle.Width(14).Render(label) + value
	}
	lines := []string{
		row("Dates", util.FormatDateRange(trip.StartDate, trip.EndDate)),
		row("Nights", fmt.Sprintf("%d", trip.Nights())),
		"",
	}
	if h := trip.Hotel; h != nil {
		lines = append(lines,
			row("Hotel", util.FormatOptional(&h.Name)),
			row("Address", util.FormatOptional(&h.Address)),
			row("Check-in", util.FormatDate(h.CheckIn)),
			row("Check-out", util.FormatDate(h.CheckOut)),
		)
	} else {
		lines = append(lines, row("Hotel", HelpDescStyle.Render("not booked")))
	}
	lines = append(lines, "")
	if tr := trip.Transport; tr != nil {
		lines = append(lines,
			row("Transport", util.FormatOptional(&tr.Type)),
			row("Details", util.FormatOptional(&tr.Details)),
		)
	} else {
		lines = append(lines, row("Transport", HelpDescStyle.Render("not set")))
	}
	lines = append(lines, "", HelpDescStyle.Render("Press e to edit"))
	return strings.Join(lines, "\n")
}

func (m *PlannerModel) viewInsights(width, height int) string {
	info := m.trip.AIInsights
	if info == nil {
		return EmptyStateStyle.Render("No destination insights were saved with this trip.")
	}
	wrap := lipgloss.NewStyle().Width(max(30, width-8))
	lines := []string{
		wrap.Render(info.Description),
		"",
		LabelStyle.Render("Estimated daily budget") + "  " + util.FormatBudget(info.EstimatedBudget),
		"",
		LabelStyle.Render("Weather & best time to visit"),
		wrap.Render(info.WeatherInfo),
		"",
		LabelStyle.Render("Popular attractions"),
	}
	lines = append(lines, bulletList(info.PopularAttractions, width-8)...)
	lines = append(lines, "", LabelStyle.Render("Suggested activities"))
	lines = append(lines, bulletList(info.SuggestedActivities, width-8)...)

	body := strings.Split(strings.Join(lines, "\n"), "\n")
	if m.offset > len(body)-height {
		m.offset = max(0, len(body)-height)
	}
	end := min(len(body), m.offset+height)
	return strings.Join(body[m.offset:end], "\n")
}
