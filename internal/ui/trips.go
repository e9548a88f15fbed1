package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wanderlust/internal/model"
	"wanderlust/internal/util"
)

type openTripMsg struct {
	id string
}

type deleteTripMsg struct {
	id          string
	destination string
}

type tripColumn struct {
	key   string
	label string
	width int
}

// TripsModel represents the saved trips list screen.
type TripsModel struct {
	allRows []model.Trip
	rows    []model.Trip
	cursor  int
	offset  int
	keys    KeyMap

	columns      []tripColumn
	activeColumn int
	sortKey      string
	sortDesc     bool

	confirming *model.Trip
}

// NewTripsModel creates a new trips model. Rows keep insertion order until a
// sort is applied.
func NewTripsModel(trips []model.Trip) *TripsModel {
	return &TripsModel{
		allRows: append([]model.Trip(nil), trips...),
		rows:    append([]model.Trip(nil), trips...),
		keys:    DefaultKeyMap(),
		columns: []tripColumn{
			{key: "destination", label: "destination", width: 22},
			{key: "country", label: "country", width: 16},
			{key: "start", label: "dates", width: 28},
			{key: "nights", label: "nights", width: 10},
			{key: "days", label: "days", width: 8},
			{key: "spent", label: "spent", width: 14},
		},
	}
}

// ApplyPrefs restores the sort and active column.
func (m *TripsModel) ApplyPrefs(prefs TablePrefs) {
	if prefs.SortKey != "" {
		m.sortKey = prefs.SortKey
		m.sortDesc = prefs.SortDesc
	}
	for i, c := range m.columns {
		if c.key == prefs.ActiveColumn {
			m.activeColumn = i
			break
		}
	}
	m.rebuild()
}

// Prefs returns the preferences worth persisting.
func (m *TripsModel) Prefs() TablePrefs {
	return TablePrefs{
		SortKey:      m.sortKey,
		SortDesc:     m.sortDesc,
		ActiveColumn: m.columns[m.activeColumn].key,
	}
}

// SelectID moves the cursor to the trip with id, if listed.
func (m *TripsModel) SelectID(id string) {
	for i, t := range m.rows {
		if t.ID == id {
			m.cursor = i
			return
		}
	}
}

// Confirming reports whether a delete prompt is open.
func (m *TripsModel) Confirming() bool {
	return m.confirming != nil
}

// Selected returns the trip under the cursor.
func (m *TripsModel) Selected() (model.Trip, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return model.Trip{}, false
	}
	return m.rows[m.cursor], true
}

func (m *TripsModel) rebuild() {
	rows := append([]model.Trip(nil), m.allRows...)
	if m.sortKey != "" {
		sort.SliceStable(rows, func(i, j int) bool {
			less := compareTrips(rows[i], rows[j], m.sortKey)
			if m.sortDesc {
				return less > 0
			}
			return less < 0
		})
	}
	m.rows = rows
	m.clampCursor()
}

func compareTrips(a, b model.Trip, key string) int {
	switch key {
	case "nights":
		return a.Nights() - b.Nights()
	case "days":
		return len(a.Itinerary) - len(b.Itinerary)
	case "spent":
		switch ta, tb := a.TotalExpenses(), b.TotalExpenses(); {
		case ta < tb:
			return -1
		case ta > tb:
			return 1
		}
		return 0
	case "country":
		return strings.Compare(strings.ToLower(a.Country), strings.ToLower(b.Country))
	case "start":
		return strings.Compare(a.StartDate, b.StartDate)
	default:
		return strings.Compare(strings.ToLower(a.Destination), strings.ToLower(b.Destination))
	}
}

func (m *TripsModel) clampCursor() {
	if len(m.rows) == 0 {
		m.cursor = 0
		m.offset = 0
		return
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

// Update handles input.
func (m TripsModel) Update(msg tea.KeyMsg) (TripsModel, tea.Cmd) {
	if m.confirming != nil {
		target := *m.confirming
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.confirming = nil
			return m, func() tea.Msg { return deleteTripMsg{id: target.ID, destination: target.Destination} }
		case key.Matches(msg, m.keys.Deny):
			m.confirming = nil
		}
		// Anything else keeps the prompt open.
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Select):
		if trip, ok := m.Selected(); ok {
			id := trip.ID
			return m, func() tea.Msg { return openTripMsg{id: id} }
		}
	case key.Matches(msg, m.keys.Delete):
		if trip, ok := m.Selected(); ok {
			m.confirming = &trip
		}
	case key.Matches(msg, m.keys.Down):
		m.MoveDown()
	case key.Matches(msg, m.keys.Up):
		m.MoveUp()
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		m.offset = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = max(0, len(m.rows)-1)
	case key.Matches(msg, m.keys.NextColumn):
		m.activeColumn = (m.activeColumn + 1) % len(m.columns)
	case key.Matches(msg, m.keys.SortAsc):
		m.sortKey = m.columns[m.activeColumn].key
		m.sortDesc = false
		m.rebuild()
	case key.Matches(msg, m.keys.SortDesc):
		m.sortKey = m.columns[m.activeColumn].key
		m.sortDesc = true
		m.rebuild()
	}
	return m, nil
}

// MoveDown moves the cursor down.
func (m *TripsModel) MoveDown() {
	if m.cursor < len(m.rows)-1 {
		m.cursor++
	}
}

// MoveUp moves the cursor up.
func (m *TripsModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
	}
}

// View renders the trips list.
func (m *TripsModel) View(width, height int) string {
	if len(m.rows) == 0 {
		emptyMsg := `    No trips yet.
    Press  H  to search a destination and start planning.`
		return EmptyStateStyle.
			Width(width).
			Height(height).
			Render(emptyMsg)
	}

	widths := make([]int, 0, len(m.columns))
	headers := make([]string, 0, len(m.columns))
	totalFixed := 0
	for i, col := range m.columns {
		label := strings.ToUpper(col.label)
		if i == m.activeColumn {
			label = "❋ " + label
		}
		if m.sortKey == col.key {
			if m.sortDesc {
				label += " ↓"
			} else {
				label += " ↑"
			}
		}
		cellWidth := max(col.width, lipgloss.Width(label)+2)
		totalFixed += cellWidth
		widths = append(widths, cellWidth)
		headers = append(headers, label)
	}
	if extra := width - totalFixed - 4; extra > 0 {
		widths[0] += extra
	}

	header := renderTableRow(headers, widths, TableHeaderStyle)

	visibleHeight := max(1, height-5)
	if m.cursor >= m.offset+visibleHeight {
		m.offset = m.cursor - visibleHeight + 1
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}

	var rows []string
	for i := m.offset; i < len(m.rows) && i < m.offset+visibleHeight; i++ {
		trip := m.rows[i]
		style := NormalRowStyle
		if i%2 == 1 {
			style = style.Background(ColorStripe)
		}
		if i == m.cursor {
			style = SelectedRowStyle
		}

		currency := ""
		if trip.AIInsights != nil {
			currency = trip.AIInsights.EstimatedBudget.Currency
		}
		cells := []string{
			util.TruncateString(trip.Destination, widths[0]-2),
			util.TruncateString(trip.Country, widths[1]-2),
			util.FormatDateRange(trip.StartDate, trip.EndDate),
			util.FormatNights(trip.Nights()),
			fmt.Sprintf("%d", len(trip.Itinerary)),
			util.FormatMoney(trip.TotalExpenses(), currency),
		}
		rows = append(rows, renderTableRow(cells, widths, style))
	}

	status := StatusBarStyle.Render(fmt.Sprintf("Total trips: %d  ·  %s", len(m.rows), m.tableMeta()))
	if m.confirming != nil {
		status = ErrorStyle.Render(fmt.Sprintf("Delete trip to %s? This cannot be undone. (y/n)", m.confirming.Destination))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		strings.Join(rows, "\n"),
		"",
		status,
	)
}

func (m *TripsModel) tableMeta() string {
	parts := []string{fmt.Sprintf("col %s", strings.ToUpper(m.columns[m.activeColumn].label))}
	if m.sortKey != "" {
		order := "asc"
		if m.sortDesc {
			order = "desc"
		}
		parts = append(parts, fmt.Sprintf("sort %s %s", strings.ToUpper(m.sortKey), order))
	}
	return strings.Join(parts, "  ·  ")
}

// Helper function to render a table row
func renderTableRow(cells []string, widths []int, style lipgloss.Style) string {
	var parts []string
	for i, cell := range cells {
		if i >= len(widths) {
			continue
		}
		parts = append(parts, style.Width(widths[i]).Render(cell))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, parts...)
}
