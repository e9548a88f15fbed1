package db_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderlust/internal/db"
	"wanderlust/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "wanderlust.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func sampleTrips() []model.Trip {
	loc := "Fushimi"
	cost := 0.0
	kyoto := model.NewTrip("t1", model.DestinationInfo{
		Name:                "Kyoto",
		Country:             "Japan",
		PopularAttractions:  []string{"Fushimi Inari"},
		EstimatedBudget:     model.Budget{Low: 80, High: 200, Currency: "USD"},
		SuggestedActivities: []string{"Tea ceremony"},
		ImageURL:            "https://example.com/kyoto.jpg",
	}, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	kyoto.AddDay()
	kyoto.Itinerary[0].Activities = append(kyoto.Itinerary[0].Activities, model.Activity{
		ID: "a1", Time: "08:00", Description: "Shrine hike", Location: &loc, Cost: &cost,
	})
	kyoto.Expenses = append(kyoto.Expenses, model.Expense{ID: "e1", Category: model.CategoryFood, Amount: 14.5, Description: "Ramen"})
	kyoto.Hotel = &model.Hotel{Name: "Ryokan", Address: "Gion", CheckIn: "2026-04-01", CheckOut: "2026-04-08"}
	kyoto.Transport = &model.Transport{Type: "Flight", Details: "KIX"}
	kyoto.Notes = "JR pass"

	lisbon := model.NewTrip("t2", model.DestinationInfo{Name: "Lisbon", Country: "Portugal"}, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	return []model.Trip{kyoto, lisbon}
}

func TestTripDocument_LoadMissingIsEmpty(t *testing.T) {
	doc := db.NewTripDocument(openTestDB(t))

	trips, err := doc.Load(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, trips)
	assert.Empty(t, trips)
}

func TestTripDocument_RoundTrip(t *testing.T) {
	doc := db.NewTripDocument(openTestDB(t))
	ctx := context.Background()
	want := sampleTrips()

	require.NoError(t, doc.Save(ctx, want))
	got, err := doc.Load(ctx)

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTripDocument_SaveReplaces(t *testing.T) {
	doc := db.NewTripDocument(openTestDB(t))
	ctx := context.Background()
	trips := sampleTrips()

	require.NoError(t, doc.Save(ctx, trips))
	require.NoError(t, doc.Save(ctx, trips[1:]))
	got, err := doc.Load(ctx)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "t2", got[0].ID)
}

func TestTripDocument_SaveEmpty(t *testing.T) {
	doc := db.NewTripDocument(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, doc.Save(ctx, nil))
	got, err := doc.Load(ctx)

	require.NoError(t, err)
	assert.Equal(t, []model.Trip{}, got)
}

func TestTripDocument_CorruptFailsClosed(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.PutDocument(ctx, database, db.TripsKey, `[{"id": "t1", "itinerary": `))

	trips, err := db.NewTripDocument(database).Load(ctx)

	assert.ErrorIs(t, err, model.ErrStorage)
	assert.Empty(t, trips)
}

func TestTripDocument_StoredUnderFixedKey(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.NewTripDocument(database).Save(ctx, sampleTrips()))

	body, ok, err := db.GetDocument(ctx, database, "wanderlust_trips")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, body, `"destination":"Kyoto"`)
	assert.Contains(t, body, `"aiInsights"`)
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wanderlust.db")
	ctx := context.Background()

	first, err := db.Open(path)
	require.NoError(t, err)
	require.NoError(t, db.NewTripDocument(first).Save(ctx, sampleTrips()))
	require.NoError(t, first.Close())

	second, err := db.Open(path)
	require.NoError(t, err)
	defer second.Close()
	got, err := db.NewTripDocument(second).Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSearchHistory_RecentNewestFirst(t *testing.T) {
	h := db.NewSearchHistory(openTestDB(t))
	ctx := context.Background()

	for _, q := range []string{"Kyoto", "Lisbon", "Quito"} {
		require.NoError(t, h.Record(ctx, q))
		time.Sleep(2 * time.Millisecond)
	}
	require.NoError(t, h.Record(ctx, "kyoto"))
	require.NoError(t, h.Record(ctx, "   "))

	got, err := h.Recent(ctx, 10)

	require.NoError(t, err)
	assert.Equal(t, []string{"Kyoto", "Quito", "Lisbon"}, got)
}

func TestSearchHistory_Suggest(t *testing.T) {
	h := db.NewSearchHistory(openTestDB(t))
	ctx := context.Background()
	for _, q := range []string{"Kyoto", "Kyiv", "Lisbon", "Reykjavik"} {
		require.NoError(t, h.Record(ctx, q))
	}

	got, err := h.Suggest(ctx, "ky", 5)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Kyoto", "Kyiv"}, got)

	// One typo away from the start of "Lisbon".
	got, err = h.Suggest(ctx, "lisbin", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lisbon"}, got)

	got, err = h.Suggest(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSearchHistory_SuggestCountsRunes(t *testing.T) {
	h := db.NewSearchHistory(openTestDB(t))
	ctx := context.Background()
	for _, q := range []string{"Ñuñoa", "Nunoa"} {
		require.NoError(t, h.Record(ctx, q))
	}

	// Five letters allow a single edit; "Nunoa" is two away.
	got, err := h.Suggest(ctx, "ñuñoa", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ñuñoa"}, got)
}
