package nav_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderlust/internal/model"
	"wanderlust/internal/nav"
)

func existsIn(ids ...string) func(string) bool {
	set := map[string]bool{}
	for _, id := range ids {
		set[id] = true
	}
	return func(id string) bool { return set[id] }
}

func TestMachine_StartsOnLanding(t *testing.T) {
	m := nav.New()

	assert.Equal(t, nav.Landing{}, m.Current())
	assert.Equal(t, "", m.Focus())
}

func TestMachine_ExploreThenPlan(t *testing.T) {
	m := nav.New()

	require.NoError(t, m.Explore(model.DestinationInfo{Name: "Kyoto"}))
	explorer, ok := m.Current().(nav.Explorer)
	require.True(t, ok)
	assert.Equal(t, "Kyoto", explorer.Destination.Name)

	require.NoError(t, m.Plan("t1", existsIn("t1")))
	assert.Equal(t, nav.Planner{TripID: "t1"}, m.Current())
	assert.Equal(t, "t1", m.Focus())
}

func TestMachine_ExploreGuards(t *testing.T) {
	m := nav.New()

	assert.ErrorIs(t, m.Explore(model.DestinationInfo{}), nav.ErrIllegalTransition)
	assert.Equal(t, nav.NameLanding, m.Current().Name())

	m.MyTrips()
	assert.ErrorIs(t, m.Explore(model.DestinationInfo{Name: "Kyoto"}), nav.ErrIllegalTransition)
	assert.Equal(t, nav.NameMyTrips, m.Current().Name())
}

func TestMachine_PlanGuards(t *testing.T) {
	m := nav.New()

	// Not from landing.
	assert.ErrorIs(t, m.Plan("t1", existsIn("t1")), nav.ErrIllegalTransition)

	// Not for a missing trip.
	m.MyTrips()
	assert.ErrorIs(t, m.Plan("ghost", existsIn("t1")), nav.ErrIllegalTransition)
	assert.ErrorIs(t, m.Plan("", existsIn("t1")), nav.ErrIllegalTransition)
	assert.Equal(t, nav.NameMyTrips, m.Current().Name())
	assert.Equal(t, "", m.Focus())

	require.NoError(t, m.Plan("t1", existsIn("t1")))
	assert.Equal(t, nav.NamePlanner, m.Current().Name())
}

func TestMachine_HomeAndMyTripsAlwaysLegal(t *testing.T) {
	m := nav.New()
	require.NoError(t, m.Explore(model.DestinationInfo{Name: "Kyoto"}))
	m.MyTrips()
	assert.Equal(t, nav.MyTrips{}, m.Current())
	require.NoError(t, m.Plan("t1", existsIn("t1")))
	m.Home()
	assert.Equal(t, nav.Landing{}, m.Current())
	assert.Equal(t, "t1", m.Focus(), "focus survives leaving the planner")
}

func TestMachine_Forget(t *testing.T) {
	m := nav.New()
	m.MyTrips()
	require.NoError(t, m.Plan("t1", existsIn("t1")))

	m.Forget("other")
	assert.Equal(t, nav.Planner{TripID: "t1"}, m.Current())

	m.Forget("t1")
	assert.Equal(t, "", m.Focus())
	assert.Equal(t, nav.MyTrips{}, m.Current())
}

func TestMachine_ExplorerCopiesDestination(t *testing.T) {
	m := nav.New()
	info := model.DestinationInfo{Name: "Kyoto", PopularAttractions: []string{"Gion"}}
	require.NoError(t, m.Explore(info))

	info.PopularAttractions[0] = "changed"

	assert.Equal(t, "Gion", m.Current().(nav.Explorer).Destination.PopularAttractions[0])
}

// TestMachine_RandomWalkNeverInvalid drives random transitions and checks
// that every reachable view carries valid context.
func TestMachine_RandomWalkNeverInvalid(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	trips := map[string]bool{}
	exists := func(id string) bool { return trips[id] }
	names := []string{"", "Kyoto", "Lisbon"}
	ids := []string{"", "t1", "t2", "t3"}

	m := nav.New()
	for step := 0; step < 5000; step++ {
		switch rng.Intn(6) {
		case 0:
			m.Home()
		case 1:
			m.MyTrips()
		case 2:
			_ = m.Explore(model.DestinationInfo{Name: names[rng.Intn(len(names))]})
		case 3:
			id := ids[rng.Intn(len(ids))]
			if id != "" && rng.Intn(2) == 0 {
				trips[id] = true
			}
			_ = m.Plan(id, exists)
		case 4:
			id := ids[rng.Intn(len(ids))]
			delete(trips, id)
			m.Forget(id)
		case 5:
			_ = m.Plan(ids[rng.Intn(len(ids))], exists)
		}

		switch v := m.Current().(type) {
		case nav.Explorer:
			require.NotEmpty(t, v.Destination.Name, "step %d", step)
		case nav.Planner:
			require.True(t, trips[v.TripID], "step %d: planner on missing trip %q", step, v.TripID)
		}
	}
}
