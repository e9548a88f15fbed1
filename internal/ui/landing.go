package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wanderlust/internal/util"
)

const suggestionLimit = 8

type searchRequestedMsg struct {
	query string
}

type suggestRequestedMsg struct {
	text string
}

// LandingModel is the search screen: one input and the recent searches that
// match what has been typed.
type LandingModel struct {
	input         textinput.Model
	suggestions   []string
	cursor        int
	focusList     bool
	lookupEnabled bool
	keys          KeyMap
}

// NewLandingModel creates the search screen with query prefilled.
func NewLandingModel(query string, lookupEnabled bool) *LandingModel {
	in := textinput.New()
	in.Placeholder = "Where do you want to go? e.g. Kyoto, Lisbon, Patagonia"
	in.Prompt = "⌕ "
	in.CharLimit = 120
	in.SetValue(query)
	in.Focus()

	return &LandingModel{
		input:         in,
		lookupEnabled: lookupEnabled,
		keys:          DefaultKeyMap(),
	}
}

// Typing reports whether keys go to the search input.
func (m *LandingModel) Typing() bool {
	return !m.focusList
}

// Value returns the current input text.
func (m *LandingModel) Value() string {
	return m.input.Value()
}

// SetSuggestions replaces the recent-search list if it was computed for the
// current input.
func (m *LandingModel) SetSuggestions(text string, queries []string) {
	if strings.TrimSpace(text) != strings.TrimSpace(m.input.Value()) {
		return
	}
	m.suggestions = queries
	if m.cursor >= len(m.suggestions) {
		m.cursor = max(0, len(m.suggestions)-1)
	}
}

// FocusInput moves keyboard focus back to the search input.
func (m *LandingModel) FocusInput() {
	m.focusList = false
	m.input.Focus()
}

// Update handles input.
func (m LandingModel) Update(msg tea.KeyMsg) (LandingModel, tea.Cmd) {
	if m.focusList {
		return m.updateList(msg)
	}

	switch msg.String() {
	case "enter":
		query := strings.TrimSpace(m.input.Value())
		if query == "" {
			return m, nil
		}
		return m, func() tea.Msg { return searchRequestedMsg{query: query} }
	case "tab", "down":
		if len(m.suggestions) > 0 {
			m.focusList = true
			m.input.Blur()
		}
		return m, nil
	case "esc":
		// Leaves the input so global keys work.
		m.input.Blur()
		m.focusList = true
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		text := after
		return m, tea.Batch(cmd, func() tea.Msg { return suggestRequestedMsg{text: text} })
	}
	return m, cmd
}

func (m LandingModel) updateList(msg tea.KeyMsg) (LandingModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search), msg.String() == "shift+tab":
		m.FocusInput()
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.suggestions)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			return m, nil
		}
		m.FocusInput()
		return m, nil
	case key.Matches(msg, m.keys.Select):
		if m.cursor < len(m.suggestions) {
			query := m.suggestions[m.cursor]
			m.input.SetValue(query)
			return m, func() tea.Msg { return searchRequestedMsg{query: query} }
		}
		return m, nil
	}
	return m, nil
}

// View renders the search screen.
func (m *LandingModel) View(width, height int, tripCount int, loading bool, spinnerView, query string) string {
	hero := lipgloss.JoinVertical(
		lipgloss.Center,
		HeroStyle.Render("Plan your next adventure"),
		HelpDescStyle.Render("Search a destination for AI travel insights, then turn it into a trip."),
	)

	inputStyle := BorderStyle
	if !m.focusList {
		inputStyle = ActiveBorderStyle
	}
	inputWidth := min(72, max(30, width-12))
	input := inputStyle.Width(inputWidth).Render(m.input.View())

	var status string
	switch {
	case loading:
		status = WarnStyle.Render(fmt.Sprintf("%s Looking up %q...", spinnerView, query))
	case !m.lookupEnabled:
		status = WarnStyle.Render("Destination lookups are disabled. Set GEMINI_API_KEY to enable them.")
	}

	sections := []string{hero, "", input}
	if status != "" {
		sections = append(sections, status)
	}
	sections = append(sections, "", m.renderSuggestions(inputWidth))
	if tripCount > 0 {
		sections = append(sections, "", HelpDescStyle.Render(fmt.Sprintf("%d saved trip(s) · press t outside the input to open My Trips", tripCount)))
	}

	body := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, lipgloss.NewStyle().PaddingTop(2).Render(body))
}

func (m *LandingModel) renderSuggestions(width int) string {
	if len(m.suggestions) == 0 {
		return ""
	}
	title := "Recent searches"
	if strings.TrimSpace(m.input.Value()) != "" {
		title = "Matching searches"
	}
	lines := []string{LabelStyle.Render(title)}
	for i, q := range m.suggestions {
		style := NormalRowStyle
		if m.focusList && i == m.cursor {
			style = SelectedRowStyle
		}
		lines = append(lines, style.Width(width).Render("  "+util.TruncateString(q, width-4)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
