package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderlust/internal/model"
)

func TestExpenseForm_CategoryCycles(t *testing.T) {
	form := *NewExpenseForm("EUR")
	assert.Equal(t, model.CategoryFood, form.Category())

	form, _ = form.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, model.CategoryOther, form.Category())

	form, _ = form.Update(tea.KeyMsg{Type: tea.KeyRight})
	form, _ = form.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, model.CategoryTransport, form.Category())
	assert.Contains(t, form.View(80), "Amount (EUR) *")
}

func TestExpenseForm_Submit(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr string
		want    float64
	}{
		{name: "plain", amount: "42", want: 42},
		{name: "thousands", amount: "1,200.75", want: 1200.75},
		{name: "zero", amount: "0", want: 0},
		{name: "missing", amount: "", wantErr: "amount is required"},
		{name: "negative", amount: "-1", wantErr: "non-negative"},
		{name: "garbage", amount: "12abc", wantErr: "invalid amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := NewExpenseForm("")
			form.fields.inputs[0].SetValue(tt.amount)

			cmd := form.submit()

			if tt.wantErr != "" {
				assert.Nil(t, cmd)
				assert.Contains(t, form.error, tt.wantErr)
				return
			}
			require.NotNil(t, cmd)
			msg, ok := cmd().(expenseSubmittedMsg)
			require.True(t, ok)
			assert.NotEmpty(t, msg.expense.ID)
			assert.Equal(t, model.CategoryFood, msg.expense.Category)
			assert.InDelta(t, tt.want, msg.expense.Amount, 0.001)
		})
	}
}

func TestActivityForm_RequiresDescription(t *testing.T) {
	form := NewActivityForm(2)
	assert.Nil(t, form.submit())
	assert.Equal(t, "description is required", form.error)

	form.fields.inputs[1].SetValue("Museum")
	form.fields.inputs[2].SetValue("  Old town ")
	msg, ok := form.submit()().(activitySubmittedMsg)
	require.True(t, ok)
	assert.Equal(t, 2, msg.day)
	require.NotNil(t, msg.activity.Location)
	assert.Equal(t, "Old town", *msg.activity.Location)
	assert.Nil(t, msg.activity.Cost)
}

func TestActivityForm_CancelAndFocus(t *testing.T) {
	form := *NewActivityForm(1)
	form, _ = form.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, form.fields.focused)
	form, _ = form.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	form, _ = form.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 3, form.fields.focused)

	_, cmd := form.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, model.FormCancelledMsg{}, cmd())
}

func TestDetailsForm(t *testing.T) {
	trip := model.Trip{
		ID:        "t1",
		StartDate: "2025-05-01",
		EndDate:   "2025-05-08",
		Hotel:     &model.Hotel{Name: "Ryokan"},
	}

	t.Run("prefilled", func(t *testing.T) {
		form := NewDetailsForm(trip)
		assert.Equal(t, "2025-05-01", form.fields.inputs[detailStart].Value())
		assert.Equal(t, "Ryokan", form.fields.inputs[detailHotelName].Value())
		assert.Equal(t, "", form.fields.inputs[detailTransportType].Value())
	})

	t.Run("submit", func(t *testing.T) {
		form := NewDetailsForm(trip)
		form.fields.inputs[detailEnd].SetValue("May 10, 2025")
		form.fields.inputs[detailTransportType].SetValue("Train")

		msg, ok := form.submit()().(detailsSubmittedMsg)
		require.True(t, ok)
		assert.Equal(t, "2025-05-01", msg.start)
		assert.Equal(t, "2025-05-10", msg.end)
		require.NotNil(t, msg.hotel)
		assert.Equal(t, "Ryokan", msg.hotel.Name)
		require.NotNil(t, msg.transport)
		assert.Equal(t, "Train", msg.transport.Type)
	})

	t.Run("clearing hotel drops it", func(t *testing.T) {
		form := NewDetailsForm(trip)
		form.fields.inputs[detailHotelName].SetValue("")

		msg, ok := form.submit()().(detailsSubmittedMsg)
		require.True(t, ok)
		assert.Nil(t, msg.hotel)
		assert.Nil(t, msg.transport)
	})

	t.Run("end before start", func(t *testing.T) {
		form := NewDetailsForm(trip)
		form.fields.inputs[detailEnd].SetValue("2025-04-30")

		assert.Nil(t, form.submit())
		assert.Equal(t, "end date must not be before start date", form.error)
	})

	t.Run("missing start", func(t *testing.T) {
		form := NewDetailsForm(trip)
		form.fields.inputs[detailStart].SetValue("")

		assert.Nil(t, form.submit())
		assert.Contains(t, form.error, "start date is required")
	})

	t.Run("bad check-in", func(t *testing.T) {
		form := NewDetailsForm(trip)
		form.fields.inputs[detailCheckIn].SetValue("soon")

		assert.Nil(t, form.submit())
		assert.Equal(t, "invalid check-in date", form.error)
	})
}
