package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// OnboardingSettings is persisted to onboarding.json in the data directory.
type OnboardingSettings struct {
	Completed     bool `json:"completed"`
	LookupEnabled bool `json:"lookup_enabled"`
}

func onboardingPath(dataDir string) string {
	return filepath.Join(dataDir, "onboarding.json")
}

func loadOnboardingSettings(dataDir string) (OnboardingSettings, error) {
	data, err := os.ReadFile(onboardingPath(dataDir))
	if err != nil {
		if os.IsNotExist(err) {
			return OnboardingSettings{}, nil
		}
		return OnboardingSettings{}, err
	}

	var settings OnboardingSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return OnboardingSettings{}, err
	}
	return settings, nil
}

func saveOnboardingSettings(dataDir string, settings OnboardingSettings) error {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(onboardingPath(dataDir), data, 0644)
}

func secureKeyPath(dataDir string) string {
	return filepath.Join(dataDir, "gemini_api_key")
}

func saveSecureAPIKey(dataDir, key string) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return err
	}
	// Owner read/write only.
	return os.WriteFile(secureKeyPath(dataDir), []byte(strings.TrimSpace(key)+"\n"), 0600)
}

func loadSecureAPIKey(dataDir string) (string, error) {
	data, err := os.ReadFile(secureKeyPath(dataDir))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func shouldRunOnboarding(settings OnboardingSettings) bool {
	if settings.Completed {
		return false
	}
	return isatty.IsTerminal(os.Stdin.Fd())
}

type onboardingStep int

const (
	stepEnable onboardingStep = iota
	stepKey
	stepDone
)

type onboardingModel struct {
	step        onboardingStep
	enable      bool
	existingKey string
	keyInput    textinput.Model
	settings    OnboardingSettings
	capturedKey string
	status      string
	width       int
	height      int
}

var (
	obMuted  = lipgloss.Color("#7A8799")
	obText   = lipgloss.Color("#DCE3EC")
	obAccent = lipgloss.Color("#5FB3B3")
	obDanger = lipgloss.Color("#F28B82")

	obBrand   = lipgloss.NewStyle().Foreground(obAccent).Bold(true)
	obDim     = lipgloss.NewStyle().Foreground(obMuted)
	obStrong  = lipgloss.NewStyle().Foreground(obText).Bold(true)
	obChosen  = lipgloss.NewStyle().Foreground(obAccent).Bold(true)
	obWarning = lipgloss.NewStyle().Foreground(obDanger)

	obCard = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(obAccent).
		Padding(1, 3)

	obKeyBox = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(obMuted).
			Padding(0, 1)
)

func newOnboardingModel(existingKey string) onboardingModel {
	in := textinput.New()
	in.Placeholder = "Paste Gemini API key here"
	in.CharLimit = 200
	in.Prompt = "key> "
	in.EchoMode = textinput.EchoPassword
	in.TextStyle = lipgloss.NewStyle().Foreground(obText)
	in.PlaceholderStyle = obDim
	in.Cursor.Style = lipgloss.NewStyle().Foreground(obText).Background(obAccent)
	in.Focus()

	return onboardingModel{
		step:        stepEnable,
		enable:      true,
		existingKey: strings.TrimSpace(existingKey),
		keyInput:    in,
		settings: OnboardingSettings{
			Completed:     true,
			LookupEnabled: true,
		},
	}
}

func (m onboardingModel) Init() tea.Cmd { return textinput.Blink }

func (m onboardingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch m.step {
		case stepEnable:
			switch msg.String() {
			case "y", "Y":
				m.enable = true
				return m.nextStep()
			case "n", "N":
				m.enable = false
				return m.nextStep()
			case "up", "k", "left", "h":
				m.enable = true
				return m, nil
			case "down", "j", "right", "l":
				m.enable = false
				return m, nil
			case "enter":
				return m.nextStep()
			case "ctrl+c", "q":
				return m.finish(false, "Setup canceled. Destination lookups disabled.")
			default:
				return m, nil
			}
		case stepKey:
			switch msg.String() {
			case "enter":
				key := strings.TrimSpace(m.keyInput.Value())
				if key == "" {
					return m.finish(false, "No key entered. Destination lookups disabled.")
				}
				m.capturedKey = key
				return m.finish(true, "Gemini API key saved.")
			case "esc":
				return m.finish(false, "Skipped key setup. Destination lookups disabled.")
			case "ctrl+c":
				return m.finish(false, "Setup canceled. Destination lookups disabled.")
			}
			var cmd tea.Cmd
			m.keyInput, cmd = m.keyInput.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m onboardingModel) finish(enabled bool, status string) (tea.Model, tea.Cmd) {
	m.settings.LookupEnabled = enabled
	m.status = status
	m.step = stepDone
	return m, tea.Quit
}

func (m onboardingModel) nextStep() (tea.Model, tea.Cmd) {
	if !m.enable {
		return m.finish(false, "Destination lookups disabled.")
	}
	if m.existingKey != "" {
		m.capturedKey = m.existingKey
		return m.finish(true, "Using existing GEMINI_API_KEY from environment/flags.")
	}
	m.step = stepKey
	return m, nil
}

func (m onboardingModel) View() string {
	width, height := m.width, m.height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}

	cardWidth := min(72, width-4)
	card := obCard.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left,
		obBrand.Render("wanderlust")+obDim.Render("  first-run setup"),
		m.progress(),
		"",
		m.body(cardWidth-8),
		"",
		obDim.Render(m.hints()),
	))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (m onboardingModel) progress() string {
	switch m.step {
	case stepEnable:
		return obDim.Render("step 1 of 2 · destination lookups")
	case stepKey:
		return obDim.Render("step 2 of 2 · API key")
	}
	return obDim.Render("done")
}

func (m onboardingModel) hints() string {
	switch m.step {
	case stepEnable:
		return "j/k choose · enter confirm · y/n answer · q skip"
	case stepKey:
		return "enter save · esc skip · ctrl+c cancel"
	}
	return ""
}

func (m onboardingModel) body(width int) string {
	switch m.step {
	case stepEnable:
		choices := []string{
			"Yes, look up destinations with Gemini",
			"No, I'll plan trips without AI insights",
		}
		lines := []string{obStrong.Render("Enable AI destination lookups?"), ""}
		for i, c := range choices {
			if (i == 0) == m.enable {
				lines = append(lines, obChosen.Render("▸ "+c))
			} else {
				lines = append(lines, "  "+c)
			}
		}
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	case stepKey:
		return lipgloss.JoinVertical(lipgloss.Left,
			obStrong.Render("Paste your Gemini API key"),
			obDim.Render("Create one at https://aistudio.google.com/app/apikey"),
			"",
			obKeyBox.Width(max(24, width)).Render(m.keyInput.View()),
			obDim.Render("Stored owner-only in the data directory."),
		)
	}
	if strings.Contains(m.status, "disabled") {
		return obWarning.Render(m.status)
	}
	return obChosen.Render(m.status)
}

func runOnboarding(dataDir string, existingKey string) (OnboardingSettings, error) {
	prog := tea.NewProgram(newOnboardingModel(existingKey), tea.WithAltScreen())
	finalModel, err := prog.Run()
	if err != nil {
		return OnboardingSettings{}, fmt.Errorf("onboarding tui failed: %w", err)
	}
	m, ok := finalModel.(onboardingModel)
	if !ok {
		return OnboardingSettings{}, fmt.Errorf("unexpected onboarding model type")
	}
	if strings.TrimSpace(m.capturedKey) != "" {
		if err := saveSecureAPIKey(dataDir, m.capturedKey); err != nil {
			return OnboardingSettings{}, err
		}
	}
	if err := saveOnboardingSettings(dataDir, m.settings); err != nil {
		return OnboardingSettings{}, err
	}
	return m.settings, nil
}
