package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"wanderlust/internal/model"
	"wanderlust/internal/util"
)

type activitySubmittedMsg struct {
	day      int
	activity model.Activity
}

type expenseSubmittedMsg struct {
	expense model.Expense
}

type detailsSubmittedMsg struct {
	start     string
	end       string
	hotel     *model.Hotel
	transport *model.Transport
}

// fieldSet is the focus ring shared by the planner forms.
type fieldSet struct {
	inputs  []textinput.Model
	focused int
	keys    FormKeyMap
}

func newFieldSet(placeholders []string, limits []int) fieldSet {
	inputs := make([]textinput.Model, len(placeholders))
	for i, p := range placeholders {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = p
		inputs[i].CharLimit = limits[i]
	}
	inputs[0].Focus()
	return fieldSet{inputs: inputs, keys: DefaultFormKeyMap()}
}

func (f *fieldSet) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f *fieldSet) nextField() {
	f.inputs[f.focused].Blur()
	f.focused = (f.focused + 1) % len(f.inputs)
	f.inputs[f.focused].Focus()
}

func (f *fieldSet) prevField() {
	f.inputs[f.focused].Blur()
	f.focused--
	if f.focused < 0 {
		f.focused = len(f.inputs) - 1
	}
	f.inputs[f.focused].Focus()
}

// update moves focus, saves, cancels, or forwards msg to the focused input.
func (f *fieldSet) update(msg tea.KeyMsg, save func() tea.Cmd) tea.Cmd {
	switch {
	case key.Matches(msg, f.keys.Cancel):
		return func() tea.Msg { return model.FormCancelledMsg{} }
	case key.Matches(msg, f.keys.Save):
		return save()
	case key.Matches(msg, f.keys.NextField):
		f.nextField()
		return nil
	case key.Matches(msg, f.keys.PrevField):
		f.prevField()
		return nil
	case msg.String() == "enter":
		if f.focused == len(f.inputs)-1 {
			return save()
		}
		f.nextField()
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	return cmd
}

// ActivityForm adds an activity to one itinerary day.
type ActivityForm struct {
	fields fieldSet
	day    int
	error  string
}

// NewActivityForm creates a form for day.
func NewActivityForm(day int) *ActivityForm {
	return &ActivityForm{
		day: day,
		fields: newFieldSet(
			[]string{"09:00", "Visit the old town", "Address or area (optional)", "0 (optional)"},
			[]int{16, 200, 120, 16},
		),
	}
}

// Update handles input.
func (m ActivityForm) Update(msg tea.KeyMsg) (ActivityForm, tea.Cmd) {
	cmd := m.fields.update(msg, m.submit)
	return m, cmd
}

func (m *ActivityForm) submit() tea.Cmd {
	description := m.fields.value(1)
	if description == "" {
		m.error = "description is required"
		return nil
	}
	activity := model.Activity{
		ID:          uuid.NewString(),
		Time:        m.fields.value(0),
		Description: description,
	}
	if loc := m.fields.value(2); loc != "" {
		activity.Location = &loc
	}
	if raw := m.fields.value(3); raw != "" {
		cost, err := util.ParseAmount(raw)
		if err != nil {
			m.error = err.Error()
			return nil
		}
		activity.Cost = &cost
	}
	m.error = ""
	day := m.day
	return func() tea.Msg { return activitySubmittedMsg{day: day, activity: activity} }
}

// View renders the form.
func (m *ActivityForm) View(width int) string {
	f := &m.fields
	fields := []string{
		TitleStyle.Render(fmt.Sprintf("New activity · Day %d", m.day)),
		renderFormField("Time", f.inputs[0], f.focused == 0),
		renderFormField("Description *", f.inputs[1], f.focused == 1),
		renderFormField("Location", f.inputs[2], f.focused == 2),
		renderFormField("Cost", f.inputs[3], f.focused == 3),
	}
	return renderForm(fields, m.error, width)
}

// ExpenseForm adds an expense.
type ExpenseForm struct {
	fields   fieldSet
	category int
	currency string
	error    string
}

// NewExpenseForm creates an expense form. currency labels the amount field.
func NewExpenseForm(currency string) *ExpenseForm {
	return &ExpenseForm{
		currency: currency,
		fields: newFieldSet(
			[]string{"0.00", "Dinner at the market (optional)"},
			[]int{16, 200},
		),
	}
}

// Category returns the selected category.
func (m *ExpenseForm) Category() model.ExpenseCategory {
	return model.ExpenseCategories[m.category]
}

// Update handles input.
func (m ExpenseForm) Update(msg tea.KeyMsg) (ExpenseForm, tea.Cmd) {
	switch msg.String() {
	case "left":
		m.category = (m.category + len(model.ExpenseCategories) - 1) % len(model.ExpenseCategories)
		return m, nil
	case "right":
		m.category = (m.category + 1) % len(model.ExpenseCategories)
		return m, nil
	}
	cmd := m.fields.update(msg, m.submit)
	return m, cmd
}

func (m *ExpenseForm) submit() tea.Cmd {
	raw := m.fields.value(0)
	if raw == "" {
		m.error = "amount is required"
		return nil
	}
	amount, err := util.ParseAmount(raw)
	if err != nil {
		m.error = err.Error()
		return nil
	}
	expense := model.Expense{
		ID:          uuid.NewString(),
		Category:    m.Category(),
		Amount:      amount,
		Description: m.fields.value(1),
	}
	if err := expense.Validate(); err != nil {
		m.error = err.Error()
		return nil
	}
	m.error = ""
	return func() tea.Msg { return expenseSubmittedMsg{expense: expense} }
}

// View renders the form.
func (m *ExpenseForm) View(width int) string {
	var cats []string
	for i, c := range model.ExpenseCategories {
		if i == m.category {
			cats = append(cats, ActiveTabStyle.Render(string(c)))
		} else {
			cats = append(cats, TabStyle.Render(string(c)))
		}
	}
	category := BorderStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		LabelStyle.Render("Category  ← →"),
		lipgloss.JoinHorizontal(lipgloss.Top, cats...),
	))

	amountLabel := "Amount *"
	if m.currency != "" {
		amountLabel = fmt.Sprintf("Amount (%s) *", m.currency)
	}
	f := &m.fields
	fields := []string{
		TitleStyle.Render("New expense"),
		category,
		renderFormField(amountLabel, f.inputs[0], f.focused == 0),
		renderFormField("Description", f.inputs[1], f.focused == 1),
	}
	return renderForm(fields, m.error, width)
}

const (
	detailStart = iota
	detailEnd
	detailHotelName
	detailHotelAddress
	detailCheckIn
	detailCheckOut
	detailTransportType
	detailTransportDetails
)

// DetailsForm edits the trip dates, hotel and transport.
type DetailsForm struct {
	fields fieldSet
	error  string
}

// NewDetailsForm creates a form prefilled from trip.
func NewDetailsForm(trip model.Trip) *DetailsForm {
	m := &DetailsForm{
		fields: newFieldSet(
			[]string{
				"YYYY-MM-DD", "YYYY-MM-DD",
				"Hotel name (optional)", "Address (optional)", "YYYY-MM-DD", "YYYY-MM-DD",
				"Flight, train, car... (optional)", "Booking reference, times (optional)",
			},
			[]int{32, 32, 120, 200, 32, 32, 60, 200},
		),
	}
	in := m.fields.inputs
	in[detailStart].SetValue(trip.StartDate)
	in[detailEnd].SetValue(trip.EndDate)
	if h := trip.Hotel; h != nil {
		in[detailHotelName].SetValue(h.Name)
		in[detailHotelAddress].SetValue(h.Address)
		in[detailCheckIn].SetValue(h.CheckIn)
		in[detailCheckOut].SetValue(h.CheckOut)
	}
	if tr := trip.Transport; tr != nil {
		in[detailTransportType].SetValue(tr.Type)
		in[detailTransportDetails].SetValue(tr.Details)
	}
	return m
}

// Update handles input.
func (m DetailsForm) Update(msg tea.KeyMsg) (DetailsForm, tea.Cmd) {
	cmd := m.fields.update(msg, m.submit)
	return m, cmd
}

func (m *DetailsForm) submit() tea.Cmd {
	f := &m.fields
	start, err := util.ParseDateInput(f.value(detailStart))
	if err != nil || start == "" {
		m.error = "start date is required (YYYY-MM-DD)"
		return nil
	}
	end, err := util.ParseDateInput(f.value(detailEnd))
	if err != nil || end == "" {
		m.error = "end date is required (YYYY-MM-DD)"
		return nil
	}
	// Check the range on a scratch trip before anything is submitted.
	scratch := model.Trip{}
	if err := scratch.SetDates(start, end); err != nil {
		m.error = "end date must not be before start date"
		return nil
	}

	checkIn, err := util.ParseDateInput(f.value(detailCheckIn))
	if err != nil {
		m.error = "invalid check-in date"
		return nil
	}
	checkOut, err := util.ParseDateInput(f.value(detailCheckOut))
	if err != nil {
		m.error = "invalid check-out date"
		return nil
	}

	var hotel *model.Hotel
	if f.value(detailHotelName) != "" || f.value(detailHotelAddress) != "" || checkIn != "" || checkOut != "" {
		hotel = &model.Hotel{
			Name:     f.value(detailHotelName),
			Address:  f.value(detailHotelAddress),
			CheckIn:  checkIn,
			CheckOut: checkOut,
		}
	}
	var transport *model.Transport
	if f.value(detailTransportType) != "" || f.value(detailTransportDetails) != "" {
		transport = &model.Transport{
			Type:    f.value(detailTransportType),
			Details: f.value(detailTransportDetails),
		}
	}

	m.error = ""
	msg := detailsSubmittedMsg{start: start, end: end, hotel: hotel, transport: transport}
	return func() tea.Msg { return msg }
}

// View renders the form.
func (m *DetailsForm) View(width int) string {
	f := &m.fields
	field := func(label string, i int) string {
		return renderFormField(label, f.inputs[i], f.focused == i)
	}
	fields := []string{
		TitleStyle.Render("Trip details"),
		lipgloss.JoinHorizontal(lipgloss.Top, field("Start date *", detailStart), " ", field("End date *", detailEnd)),
		LabelStyle.Render("Hotel"),
		field("Name", detailHotelName),
		field("Address", detailHotelAddress),
		lipgloss.JoinHorizontal(lipgloss.Top, field("Check-in", detailCheckIn), " ", field("Check-out", detailCheckOut)),
		LabelStyle.Render("Transport"),
		field("Type", detailTransportType),
		field("Details", detailTransportDetails),
	}
	return renderForm(fields, m.error, width)
}

func renderForm(fields []string, errText string, width int) string {
	if errText != "" {
		fields = append(fields, ErrorStyle.Render(errText))
	}
	return PanelStyle.Width(max(40, width-4)).Render(strings.Join(fields, "\n"))
}

func renderFormField(label string, input textinput.Model, focused bool) string {
	style := BorderStyle
	if focused {
		style = ActiveBorderStyle
	}

	field := lipgloss.JoinVertical(
		lipgloss.Left,
		LabelStyle.Render(label),
		input.View(),
	)

	return style.Render(field)
}
