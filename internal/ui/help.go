package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"wanderlust/internal/model"
	"wanderlust/internal/nav"
)

// RenderHelp renders context-sensitive help footer.
func RenderHelp(view nav.Name, mode model.Mode, loading bool, width int) string {
	if loading {
		return renderHelpLine([]string{
			helpKey("esc", "cancel search"),
			helpKey("H", "home"),
			helpKey("t", "my trips"),
		}, width)
	}
	if mode == model.ModeInsert {
		if view == nav.NameLanding {
			return renderSearchHelp(width)
		}
		return renderFormHelp(width)
	}

	switch view {
	case nav.NameLanding:
		return renderLandingHelp(width)
	case nav.NameExplorer:
		return renderExplorerHelp(width)
	case nav.NamePlanner:
		return renderPlannerHelp(width)
	case nav.NameMyTrips:
		return renderTripsHelp(width)
	default:
		return renderDefaultHelp(width)
	}
}

func renderSearchHelp(width int) string {
	keys := []string{
		helpKey("enter", "search"),
		helpKey("tab", "recent searches"),
		helpKey("esc", "leave input"),
	}
	return renderHelpLine(keys, width)
}

func renderLandingHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("enter", "search again"),
		helpKey("/", "new search"),
		helpKey("t", "my trips"),
		helpKey("?", "help"),
		helpKey("q", "quit"),
	}
	return renderHelpLine(keys, width)
}

func renderExplorerHelp(width int) string {
	keys := []string{
		helpKey("p", "start planning"),
		helpKey("j/k", "scroll"),
		helpKey("i", "image"),
		helpKey("b/esc", "back"),
		helpKey("t", "my trips"),
	}
	return renderHelpLine(keys, width)
}

func renderPlannerHelp(width int) string {
	keys := []string{
		helpKey("tab", "next tab"),
		helpKey("j/k", "navigate"),
		helpKey("a", "add"),
		helpKey("D", "add day"),
		helpKey("x", "remove"),
		helpKey("e", "edit"),
		helpKey("u/ctrl+r", "undo/redo"),
		helpKey("b", "my trips"),
	}
	return renderHelpLine(keys, width)
}

func renderTripsHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("enter", "open"),
		helpKey("tab", "next col"),
		helpKey("s/S", "sort"),
		helpKey("d", "delete"),
		helpKey("H", "home"),
	}
	return renderHelpLine(keys, width)
}

func renderFormHelp(width int) string {
	keys := []string{
		helpKey("tab", "next field"),
		helpKey("shift+tab", "prev field"),
		helpKey("ctrl+s", "save"),
		helpKey("esc", "cancel"),
	}
	return renderHelpLine(keys, width)
}

func renderDefaultHelp(width int) string {
	keys := []string{
		helpKey("H", "home"),
		helpKey("t", "my trips"),
		helpKey("q", "quit"),
	}
	return renderHelpLine(keys, width)
}

func helpKey(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(keys []string, width int) string {
	line := strings.Join(keys, "  ")
	return FooterStyle.Width(width).Render(line)
}

// RenderFullHelp renders the full help screen.
func RenderFullHelp(width, height int) string {
	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-6).
		Padding(1, 2)

	sections := []string{
		titleSection("Everywhere"),
		helpSection([]helpItem{
			{"H", "Home (search)"},
			{"t", "My trips"},
			{"b / esc", "Back"},
			{"?", "Toggle help"},
			{"q", "Quit (outside inputs)"},
			{"ctrl+c", "Quit"},
		}),
		titleSection("Search"),
		helpSection([]helpItem{
			{"enter", "Look up the destination"},
			{"tab", "Move to recent searches"},
			{"/", "Focus the search input"},
			{"esc", "Cancel a running lookup"},
		}),
		titleSection("Explorer"),
		helpSection([]helpItem{
			{"p / enter", "Start planning a trip here"},
			{"j / k", "Scroll"},
			{"i", "Show destination image"},
		}),
		titleSection("Planner"),
		helpSection([]helpItem{
			{"tab / shift+tab", "Switch tab"},
			{"1-5", "Jump to tab"},
			{"a", "Add activity or expense"},
			{"D", "Add itinerary day"},
			{"x", "Remove selected activity, day or expense"},
			{"e", "Edit notes or trip details"},
			{"u / ctrl+r", "Undo / redo trip edits"},
		}),
		titleSection("My Trips"),
		helpSection([]helpItem{
			{"enter / l", "Open trip"},
			{"tab", "Cycle active column"},
			{"s / S", "Sort active column asc/desc"},
			{"d", "Delete trip (asks to confirm)"},
		}),
		titleSection("Forms"),
		helpSection([]helpItem{
			{"tab", "Next field"},
			{"shift+tab", "Previous field"},
			{"← / →", "Change category"},
			{"ctrl+s", "Save"},
			{"esc", "Cancel"},
		}),
	}

	helpText := content.Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		helpText,
		FooterStyle.Width(width).Render(HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("close help")),
	)
}

type helpItem struct {
	key  string
	desc string
}

func titleSection(title string) string {
	return LabelStyle.Render(title)
}

func helpSection(items []helpItem) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, "  "+HelpKeyStyle.Render(item.key)+" - "+HelpDescStyle.Render(item.desc))
	}
	return strings.Join(lines, "\n")
}
