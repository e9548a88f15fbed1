package model

import (
	"fmt"
	"math"
	"time"
)

// DefaultTripLength is the number of days between the default start and end
// dates of a newly created trip.
const DefaultTripLength = 7

// NewTrip builds a trip for info starting on today's calendar date.
// The insights snapshot is a deep copy, so later lookups never reach it.
func NewTrip(id string, info DestinationInfo, today time.Time) Trip {
	start := today.UTC()
	snapshot := info.Clone()
	return Trip{
		ID:          id,
		Destination: info.Name,
		Country:     info.Country,
		StartDate:   start.Format(DateLayout),
		EndDate:     start.AddDate(0, 0, DefaultTripLength).Format(DateLayout),
		Itinerary:   []DayPlan{},
		Expenses:    []Expense{},
		Notes:       "",
		AIInsights:  &snapshot,
	}
}

// Clone returns a deep copy of info.
func (d DestinationInfo) Clone() DestinationInfo {
	out := d
	if d.PopularAttractions != nil {
		out.PopularAttractions = append([]string(nil), d.PopularAttractions...)
	}
	if d.SuggestedActivities != nil {
		out.SuggestedActivities = append([]string(nil), d.SuggestedActivities...)
	}
	return out
}

// Clone returns a deep copy of t. Callers edit a clone and resubmit it.
// Nil sequences come back empty, as Normalize leaves them.
func (t Trip) Clone() Trip {
	out := t
	out.Itinerary = make([]DayPlan, len(t.Itinerary))
	for i, day := range t.Itinerary {
		out.Itinerary[i] = day
		out.Itinerary[i].Activities = make([]Activity, len(day.Activities))
		for j, a := range day.Activities {
			out.Itinerary[i].Activities[j] = a.clone()
		}
	}
	out.Expenses = append(make([]Expense, 0, len(t.Expenses)), t.Expenses...)
	if t.Hotel != nil {
		h := *t.Hotel
		out.Hotel = &h
	}
	if t.Transport != nil {
		tr := *t.Transport
		out.Transport = &tr
	}
	if t.AIInsights != nil {
		info := t.AIInsights.Clone()
		out.AIInsights = &info
	}
	return out
}

func (a Activity) clone() Activity {
	out := a
	if a.Location != nil {
		loc := *a.Location
		out.Location = &loc
	}
	if a.Cost != nil {
		cost := *a.Cost
		out.Cost = &cost
	}
	return out
}

// Normalize replaces nil sequences with empty ones so a trip compares equal
// to its decoded JSON form.
func (t *Trip) Normalize() {
	if t.Itinerary == nil {
		t.Itinerary = []DayPlan{}
	}
	for i := range t.Itinerary {
		if t.Itinerary[i].Activities == nil {
			t.Itinerary[i].Activities = []Activity{}
		}
	}
	if t.Expenses == nil {
		t.Expenses = []Expense{}
	}
}

// Validate checks the data rules every stored trip must satisfy.
func (t Trip) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: trip id is required", ErrValidation)
	}
	for _, date := range []string{t.StartDate, t.EndDate} {
		if date == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, date); err != nil {
			return fmt.Errorf("%w: invalid date %q", ErrValidation, date)
		}
	}
	for _, e := range t.Expenses {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	for _, day := range t.Itinerary {
		for _, a := range day.Activities {
			if a.Cost != nil && !validAmount(*a.Cost) {
				return fmt.Errorf("%w: activity %q has invalid cost", ErrValidation, a.Description)
			}
		}
	}
	return nil
}

// Validate checks the expense category and amount.
func (e Expense) Validate() error {
	if !e.Category.Valid() {
		return fmt.Errorf("%w: unknown expense category %q", ErrValidation, e.Category)
	}
	if !validAmount(e.Amount) {
		return fmt.Errorf("%w: expense amount must be non-negative", ErrValidation)
	}
	return nil
}

func validAmount(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Nights returns the number of nights between the start and end dates, or 0
// if either date is missing or unparseable.
func (t Trip) Nights() int {
	start, err := time.Parse(DateLayout, t.StartDate)
	if err != nil {
		return 0
	}
	end, err := time.Parse(DateLayout, t.EndDate)
	if err != nil {
		return 0
	}
	nights := int(end.Sub(start).Hours() / 24)
	if nights < 0 {
		return 0
	}
	return nights
}

// SetDates changes the trip dates and re-dates the itinerary days.
func (t *Trip) SetDates(start, end string) error {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return fmt.Errorf("%w: invalid start date %q", ErrValidation, start)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return fmt.Errorf("%w: invalid end date %q", ErrValidation, end)
	}
	if e.Before(s) {
		return fmt.Errorf("%w: end date is before start date", ErrValidation)
	}
	t.StartDate = start
	t.EndDate = end
	for i := range t.Itinerary {
		t.Itinerary[i].Date = s.AddDate(0, 0, t.Itinerary[i].Day-1).Format(DateLayout)
	}
	return nil
}

// AddDay appends the next day to the itinerary and returns it.
func (t *Trip) AddDay() DayPlan {
	next := 1
	if n := len(t.Itinerary); n > 0 {
		next = t.Itinerary[n-1].Day + 1
	}
	day := DayPlan{Day: next, Activities: []Activity{}}
	if start, err := time.Parse(DateLayout, t.StartDate); err == nil {
		day.Date = start.AddDate(0, 0, next-1).Format(DateLayout)
	}
	t.Itinerary = append(t.Itinerary, day)
	return day
}

// RemoveDay drops a day from the itinerary. Later days keep their numbers.
func (t *Trip) RemoveDay(day int) bool {
	for i, d := range t.Itinerary {
		if d.Day == day {
			t.Itinerary = append(t.Itinerary[:i], t.Itinerary[i+1:]...)
			return true
		}
	}
	return false
}

// AddActivity appends a to the given day.
func (t *Trip) AddActivity(day int, a Activity) error {
	if a.Cost != nil && !validAmount(*a.Cost) {
		return fmt.Errorf("%w: activity cost must be non-negative", ErrValidation)
	}
	for i := range t.Itinerary {
		if t.Itinerary[i].Day == day {
			t.Itinerary[i].Activities = append(t.Itinerary[i].Activities, a)
			return nil
		}
	}
	return fmt.Errorf("%w: day %d", ErrNotFound, day)
}

// RemoveActivity removes the activity with the given id from any day.
func (t *Trip) RemoveActivity(id string) bool {
	for i := range t.Itinerary {
		acts := t.Itinerary[i].Activities
		for j := range acts {
			if acts[j].ID == id {
				t.Itinerary[i].Activities = append(acts[:j], acts[j+1:]...)
				return true
			}
		}
	}
	return false
}

// AddExpense validates and appends e.
func (t *Trip) AddExpense(e Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	t.Expenses = append(t.Expenses, e)
	return nil
}

// RemoveExpense removes the expense with the given id.
func (t *Trip) RemoveExpense(id string) bool {
	for i := range t.Expenses {
		if t.Expenses[i].ID == id {
			t.Expenses = append(t.Expenses[:i], t.Expenses[i+1:]...)
			return true
		}
	}
	return false
}

// TotalExpenses sums every expense amount.
func (t Trip) TotalExpenses() float64 {
	var total float64
	for _, e := range t.Expenses {
		total += e.Amount
	}
	return total
}

// ExpenseTotals sums expenses per category.
func (t Trip) ExpenseTotals() map[ExpenseCategory]float64 {
	totals := make(map[ExpenseCategory]float64, len(ExpenseCategories))
	for _, e := range t.Expenses {
		totals[e.Category] += e.Amount
	}
	return totals
}

// ActivityCosts sums the costs of every scheduled activity.
func (t Trip) ActivityCosts() float64 {
	var total float64
	for _, d := range t.Itinerary {
		for _, a := range d.Activities {
			if a.Cost != nil {
				total += *a.Cost
			}
		}
	}
	return total
}
