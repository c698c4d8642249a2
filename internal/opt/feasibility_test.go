package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetroute/internal/model"
)

// routeWith builds a closed route with n interior stops and the given
// distance; stop indices are irrelevant to the analyzer.
func routeWith(vehicleID, n int, distM float64) model.Route {
	stops := make([]int, 0, n+2)
	stops = append(stops, 0)
	for i := 1; i <= n; i++ {
		stops = append(stops, i)
	}
	stops = append(stops, 0)
	return model.Route{VehicleID: vehicleID, Stops: stops, DistM: distM}
}

func TestAnalyzeHighRisk(t *testing.T) {
	// 20 stops at 10 min each in a 4h shift leaves 0.67h of drive time;
	// 50 km then needs ~75 km/h
	sol := &model.Solution{Routes: []model.Route{routeWith(1, 20, 50_000)}}
	rep := Analyze(sol, ShiftParams{ShiftHours: 4, ServiceMinutes: 10})

	require.Len(t, rep.Routes, 1)
	rf := rep.Routes[0]
	assert.Equal(t, 20, rf.StopCount)
	assert.InDelta(t, 75.0, rf.RequiredSpeedKph, 0.5)
	assert.Equal(t, model.StatusHighRisk, rf.Status)
	assert.Equal(t, model.StatusHighRisk, rep.Overall)
}

func TestAnalyzeImpossible(t *testing.T) {
	// 30 stops at 10 min each is 5h of service in a 4h shift: impossible
	// regardless of distance
	sol := &model.Solution{Routes: []model.Route{routeWith(1, 30, 1)}}
	rep := Analyze(sol, ShiftParams{ShiftHours: 4, ServiceMinutes: 10})

	rf := rep.Routes[0]
	assert.Equal(t, model.StatusImpossible, rf.Status)
	assert.Equal(t, 0.0, rf.RequiredSpeedKph)
	assert.Equal(t, model.StatusImpossible, rep.Overall)
}

func TestAnalyzeBoundaries(t *testing.T) {
	// one hour of drive time, zero service: distance in km equals the
	// required speed exactly
	cases := []struct {
		distKm float64
		want   model.RouteStatus
	}{
		{29.9, model.StatusEasy},
		{30, model.StatusEasy}, // inclusive lower class
		{30.1, model.StatusOptimal},
		{60, model.StatusOptimal}, // inclusive lower class
		{60.1, model.StatusHighRisk},
	}
	for _, tc := range cases {
		sol := &model.Solution{Routes: []model.Route{routeWith(1, 5, tc.distKm * 1000)}}
		rep := Analyze(sol, ShiftParams{ShiftHours: 1, ServiceMinutes: 0})
		assert.Equal(t, tc.want, rep.Routes[0].Status, "distance %v km", tc.distKm)
	}
}

func TestAnalyzeAggregate(t *testing.T) {
	easy := routeWith(1, 2, 10_000)
	impossible := routeWith(2, 30, 10_000)
	risky := routeWith(3, 2, 400_000)

	p := ShiftParams{ShiftHours: 4, ServiceMinutes: 10}

	rep := Analyze(&model.Solution{Routes: []model.Route{easy}}, p)
	assert.Equal(t, model.StatusFeasible, rep.Overall)

	rep = Analyze(&model.Solution{Routes: []model.Route{easy, risky}}, p)
	assert.Equal(t, model.StatusHighRisk, rep.Overall)

	// impossible dominates high risk
	rep = Analyze(&model.Solution{Routes: []model.Route{easy, risky, impossible}}, p)
	assert.Equal(t, model.StatusImpossible, rep.Overall)
}

func TestAnalyzeEmptySolution(t *testing.T) {
	rep := Analyze(&model.Solution{}, ShiftParams{ShiftHours: 8, ServiceMinutes: 10})
	assert.Empty(t, rep.Routes)
	assert.Equal(t, model.StatusFeasible, rep.Overall)
}
