package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wanderlust/internal/model"
	"wanderlust/internal/util"
)

const (
	previewWidth  = 48
	previewHeight = 16
)

type planRequestedMsg struct{}

type previewRequestedMsg struct {
	url string
}

// ExplorerModel shows a looked-up destination before it becomes a trip.
type ExplorerModel struct {
	info   model.DestinationInfo
	offset int
	keys   KeyMap

	showPreview    bool
	loadingPreview bool
	preview        string
	previewErr     string
}

// NewExplorerModel creates the explorer for info.
func NewExplorerModel(info model.DestinationInfo) *ExplorerModel {
	return &ExplorerModel{info: info, keys: DefaultKeyMap()}
}

// Destination returns the destination being shown.
func (m *ExplorerModel) Destination() model.DestinationInfo {
	return m.info
}

// Update handles input.
func (m ExplorerModel) Update(msg tea.Msg) (ExplorerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case previewLoadedMsg:
		if msg.url != m.info.ImageURL {
			return m, nil
		}
		m.loadingPreview = false
		if msg.err != nil {
			m.previewErr = msg.err.Error()
			return m, nil
		}
		m.preview = msg.art
		m.previewErr = ""
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Plan):
			return m, func() tea.Msg { return planRequestedMsg{} }
		case key.Matches(msg, m.keys.Down):
			m.offset++
			return m, nil
		case key.Matches(msg, m.keys.Up):
			if m.offset > 0 {
				m.offset--
			}
			return m, nil
		case key.Matches(msg, m.keys.Top):
			m.offset = 0
			return m, nil
		case key.Matches(msg, m.keys.Preview):
			m.showPreview = !m.showPreview
			if m.showPreview && m.preview == "" && !m.loadingPreview && m.info.ImageURL != "" {
				m.loadingPreview = true
				url := m.info.ImageURL
				return m, func() tea.Msg { return previewRequestedMsg{url: url} }
			}
			return m, nil
		}
	}
	return m, nil
}

// View renders the destination.
func (m *ExplorerModel) View(width, height int) string {
	info := m.info
	title := lipgloss.JoinHorizontal(lipgloss.Bottom,
		HeroStyle.Render(info.Name),
		"  ",
		HelpDescStyle.Render(info.Country),
	)

	textWidth := max(30, width-8)
	if m.showPreview {
		textWidth = max(30, width-previewWidth-12)
	}
	wrap := lipgloss.NewStyle().Width(textWidth)

	lines := []string{
		title,
		"",
		wrap.Render(info.Description),
		"",
		LabelStyle.Render("Estimated daily budget") + "  " + util.FormatBudget(info.EstimatedBudget),
		"",
		LabelStyle.Render("Weather & best time to visit"),
		wrap.Render(info.WeatherInfo),
		"",
		LabelStyle.Render("Popular attractions"),
	}
	lines = append(lines, bulletList(info.PopularAttractions, textWidth)...)
	lines = append(lines, "", LabelStyle.Render("Suggested activities"))
	lines = append(lines, bulletList(info.SuggestedActivities, textWidth)...)
	lines = append(lines, "", SuccessStyle.Render("Press p to start planning a trip to "+info.Name))

	body := strings.Split(lipgloss.JoinVertical(lipgloss.Left, lines...), "\n")
	visibleHeight := max(1, height-2)
	if m.offset > len(body)-visibleHeight {
		m.offset = max(0, len(body)-visibleHeight)
	}
	end := min(len(body), m.offset+visibleHeight)
	text := strings.Join(body[m.offset:end], "\n")

	if !m.showPreview {
		return lipgloss.NewStyle().Padding(1, 2).Render(text)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Padding(1, 2).Render(text),
		m.renderPreview(),
	)
}

func (m *ExplorerModel) renderPreview() string {
	var content string
	switch {
	case m.info.ImageURL == "":
		content = HelpDescStyle.Render("No image available")
	case m.loadingPreview:
		content = HelpDescStyle.Render("Loading image...")
	case m.previewErr != "":
		content = ErrorStyle.Render(m.previewErr)
	default:
		content = m.preview
	}
	return PanelStyle.Width(previewWidth + 4).Render(content)
}

func bulletList(items []string, width int) []string {
	if len(items) == 0 {
		return []string{HelpDescStyle.Render("  —")}
	}
	wrap := lipgloss.NewStyle().Width(width - 4)
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, "  • "+wrap.Render(item))
	}
	return out
}
