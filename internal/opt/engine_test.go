package opt

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetroute/internal/model"
)

func testStops() []model.Stop {
	return []model.Stop{
		{Index: 0, Lat: 0, Lng: 0, Name: "Depot"},
		{Index: 1, Lat: 0, Lng: 1, Demand: 5},
		{Index: 2, Lat: 1, Lng: 0, Demand: 5},
		{Index: 3, Lat: 1, Lng: 1, Demand: 5},
	}
}

func solve(t *testing.T, stops []model.Stop, fleet []model.Vehicle, opts Options) (*model.Solution, error) {
	t.Helper()
	return NewEngine(nil).Solve(context.Background(), stops, fleet, opts)
}

func TestSolveSingleVehicleVisitsAll(t *testing.T) {
	// depot plus three customers, one vehicle with exactly enough capacity
	sol, err := solve(t, testStops(), []model.Vehicle{{ID: 1, Capacity: 15}}, Options{Strategy: StrategySearch})
	require.NoError(t, err)
	require.Len(t, sol.Routes, 1)

	r := sol.Routes[0]
	assert.Equal(t, 15, r.Load)
	assert.Equal(t, 0, r.Stops[0])
	assert.Equal(t, 0, r.Stops[len(r.Stops)-1])
	assert.ElementsMatch(t, []int{1, 2, 3}, r.Stops[1:len(r.Stops)-1])
	assert.Greater(t, r.DistM, 0.0)
	assert.Equal(t, r.DistM, sol.TotalDistM)
}

func TestSolveNoSolutionWhenDemandExceedsCapacity(t *testing.T) {
	_, err := solve(t, testStops(), []model.Vehicle{{ID: 1, Capacity: 10}}, Options{Strategy: StrategySearch})
	var noSol *NoSolutionError
	require.ErrorAs(t, err, &noSol)
	assert.Equal(t, 15, noSol.TotalDemand)
	assert.Equal(t, 10, noSol.TotalCapacity)
}

func TestSolveValidation(t *testing.T) {
	fleet := []model.Vehicle{{ID: 1, Capacity: 10}}
	cases := []struct {
		name  string
		stops []model.Stop
		fleet []model.Vehicle
	}{
		{"no stops", nil, fleet},
		{"depot with demand", []model.Stop{{Index: 0, Demand: 3}}, fleet},
		{"negative demand", []model.Stop{{Index: 0}, {Index: 1, Demand: -1}}, fleet},
		{"empty fleet", testStops(), nil},
		{"zero capacity", testStops(), []model.Vehicle{{ID: 1, Capacity: 0}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := solve(t, tc.stops, tc.fleet, Options{})
			var invalid *model.InvalidInputError
			require.ErrorAs(t, err, &invalid)
		})
	}
}

func TestSolveUnknownStrategy(t *testing.T) {
	_, err := solve(t, testStops(), []model.Vehicle{{ID: 1, Capacity: 20}}, Options{Strategy: "annealing"})
	var invalid *model.InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestSolveNonFiniteCoordinate(t *testing.T) {
	stops := testStops()
	stops[2].Lat = math.Inf(1)
	_, err := solve(t, stops, []model.Vehicle{{ID: 1, Capacity: 20}}, Options{})
	var invalid *model.InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestSolveDeterminism(t *testing.T) {
	stops := clusterStops(12)
	fleet := []model.Vehicle{{ID: 1, Capacity: 40}, {ID: 2, Capacity: 40}, {ID: 3, Capacity: 40}}

	for _, strategy := range []Strategy{StrategySearch, StrategySweep} {
		opts := Options{Strategy: strategy, TimeBudget: 5 * time.Second}
		first, err := solve(t, stops, fleet, opts)
		require.NoError(t, err, strategy)
		for i := 0; i < 3; i++ {
			again, err := solve(t, stops, fleet, opts)
			require.NoError(t, err, strategy)
			assert.Equal(t, first, again, "strategy %s run %d differs", strategy, i)
		}
	}
}

func TestSolveCoverageAndClosure(t *testing.T) {
	stops := clusterStops(15)
	fleet := []model.Vehicle{{ID: 1, Capacity: 60}, {ID: 2, Capacity: 60}}

	for _, strategy := range []Strategy{StrategySearch, StrategySweep} {
		sol, err := solve(t, stops, fleet, Options{Strategy: strategy})
		require.NoError(t, err, strategy)
		assertCoverage(t, sol, len(stops))
	}
}

// assertCoverage checks that every customer appears exactly once across
// all routes and that every route opens and closes at the depot.
func assertCoverage(t *testing.T, sol *model.Solution, n int) {
	t.Helper()
	seen := map[int]int{}
	for _, r := range sol.Routes {
		require.GreaterOrEqual(t, len(r.Stops), 3)
		assert.Equal(t, 0, r.Stops[0])
		assert.Equal(t, 0, r.Stops[len(r.Stops)-1])
		for _, s := range r.Stops[1 : len(r.Stops)-1] {
			assert.NotEqual(t, 0, s, "depot must not appear as an interior stop")
			seen[s]++
		}
	}
	for c := 1; c < n; c++ {
		assert.Equal(t, 1, seen[c], "customer %d coverage", c)
	}
	assert.Len(t, seen, n-1)
}

// clusterStops lays customers out on a small deterministic grid around
// the depot with varied demands.
func clusterStops(customers int) []model.Stop {
	stops := []model.Stop{{Index: 0, Lat: 52.0, Lng: 13.0, Name: "Depot"}}
	for i := 1; i <= customers; i++ {
		stops = append(stops, model.Stop{
			Index:  i,
			Lat:    52.0 + float64(i%5)*0.01,
			Lng:    13.0 + float64(i%7)*0.015,
			Demand: 1 + i%4,
		})
	}
	return stops
}
