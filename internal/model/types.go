package model

// DateLayout is the calendar date format used for trip and day dates.
const DateLayout = "2006-01-02"

// ExpenseCategory is the closed set of expense categories.
type ExpenseCategory string

const (
	CategoryFood          ExpenseCategory = "Food"
	CategoryTransport     ExpenseCategory = "Transport"
	CategoryAccommodation ExpenseCategory = "Accommodation"
	CategoryLeisure       ExpenseCategory = "Leisure"
	CategoryOther         ExpenseCategory = "Other"
)

// ExpenseCategories lists every category in display order.
var ExpenseCategories = []ExpenseCategory{
	CategoryFood,
	CategoryTransport,
	CategoryAccommodation,
	CategoryLeisure,
	CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c ExpenseCategory) Valid() bool {
	for _, known := range ExpenseCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Activity is a single scheduled item within a day.
type Activity struct {
	ID          string   `json:"id"`
	Time        string   `json:"time"`
	Description string   `json:"description"`
	Location    *string  `json:"location,omitempty"`
	Cost        *float64 `json:"cost,omitempty"`
}

// DayPlan is one day of a trip itinerary. Day is 1-based.
type DayPlan struct {
	Day        int        `json:"day"`
	Date       string     `json:"date"` // ISO 8601 date (YYYY-MM-DD)
	Activities []Activity `json:"activities"`
}

// Expense is a single cost entry attributed to a trip.
type Expense struct {
	ID          string          `json:"id"`
	Category    ExpenseCategory `json:"category"`
	Amount      float64         `json:"amount"`
	Description string          `json:"description"`
}

// Hotel holds the accommodation booked for a trip.
type Hotel struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
}

// Transport holds how the traveller gets to the destination.
type Transport struct {
	Type    string `json:"type"`
	Details string `json:"details"`
}

// Budget is an estimated daily spend range.
type Budget struct {
	Low      float64 `json:"low"`
	High     float64 `json:"high"`
	Currency string  `json:"currency"`
}

// DestinationInfo is the result of a destination lookup.
type DestinationInfo struct {
	Name                string   `json:"name"`
	Country             string   `json:"country"`
	Description         string   `json:"description"`
	PopularAttractions  []string `json:"popularAttractions"`
	EstimatedBudget     Budget   `json:"estimatedBudget"`
	WeatherInfo         string   `json:"weatherInfo"`
	SuggestedActivities []string `json:"suggestedActivities"`
	ImageURL            string   `json:"imageUrl,omitempty"`
}

// Trip is a saved travel plan for one destination and date range.
type Trip struct {
	ID          string           `json:"id"`
	Destination string           `json:"destination"`
	Country     string           `json:"country"`
	StartDate   string           `json:"startDate"` // ISO 8601 date (YYYY-MM-DD)
	EndDate     string           `json:"endDate"`   // ISO 8601 date (YYYY-MM-DD)
	Itinerary   []DayPlan        `json:"itinerary"`
	Expenses    []Expense        `json:"expenses"`
	Hotel       *Hotel           `json:"hotel,omitempty"`
	Transport   *Transport       `json:"transport,omitempty"`
	Notes       string           `json:"notes"`
	AIInsights  *DestinationInfo `json:"aiInsights,omitempty"`
}
