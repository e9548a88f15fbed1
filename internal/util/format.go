package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"wanderlust/internal/model"
)

// FormatDate formats a date string (YYYY-MM-DD) for display.
func FormatDate(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return "Unknown"
	}
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Jan 02, 2006")
}

// FormatDateShort formats a date as "Mon Jan 02" for itinerary headings.
func FormatDateShort(date string) string {
	t, err := time.Parse(model.DateLayout, strings.TrimSpace(date))
	if err != nil {
		return date
	}
	return t.Format("Mon Jan 02")
}

// FormatDateRange renders "Jan 02 – Jan 09, 2025", collapsing the first year
// when both dates share it.
func FormatDateRange(start, end string) string {
	s, errS := time.Parse(model.DateLayout, strings.TrimSpace(start))
	e, errE := time.Parse(model.DateLayout, strings.TrimSpace(end))
	if errS != nil || errE != nil {
		return FormatDate(start) + " – " + FormatDate(end)
	}
	if s.Year() == e.Year() {
		return s.Format("Jan 02") + " – " + e.Format("Jan 02, 2006")
	}
	return s.Format("Jan 02, 2006") + " – " + e.Format("Jan 02, 2006")
}

// FormatNights renders a night count, "1 night" or "7 nights".
func FormatNights(n int) string {
	if n == 1 {
		return "1 night"
	}
	return fmt.Sprintf("%d nights", n)
}

// FormatMoney formats an amount with thousands separators and the currency
// code, e.g. "1,250.50 USD". Whole amounts drop the decimals.
func FormatMoney(amount float64, currency string) string {
	var s string
	if amount == math.Trunc(amount) {
		s = humanize.FormatFloat("#,###.", amount)
	} else {
		s = humanize.FormatFloat("#,###.##", amount)
	}
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return s
	}
	return s + " " + currency
}

// FormatBudget renders a budget range such as "80 – 200 EUR".
func FormatBudget(b model.Budget) string {
	if b.Low == 0 && b.High == 0 {
		return "—"
	}
	return FormatMoney(b.Low, "") + " – " + FormatMoney(b.High, b.Currency)
}

// FormatOptional returns "—" for nil or blank values.
func FormatOptional(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "—"
	}
	return *s
}

// TodayISO returns today's date in ISO 8601 format (YYYY-MM-DD).
func TodayISO() string {
	return time.Now().Format(model.DateLayout)
}

// ParseDateInput parses flexible user input and normalizes to ISO (YYYY-MM-DD).
// Empty input is allowed and returns "".
func ParseDateInput(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", nil
	}

	layouts := []string{
		model.DateLayout,
		"January 2, 2006",
		"Jan 2, 2006",
		"1/2/2006",
		"01/02/2006",
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(model.DateLayout), nil
		}
	}

	return "", fmt.Errorf("invalid date format")
}

// ParseAmount parses a non-negative money amount, accepting thousands
// separators.
func ParseAmount(input string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(input), ",", "")
	if s == "" {
		return 0, fmt.Errorf("amount is required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", input)
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("amount must be a non-negative number")
	}
	return v, nil
}

// TruncateString truncates a string to maxLen and adds "..." if needed.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
