package opt

import "fleetroute/internal/model"

// ShiftParams describes the operating shift a solution must fit into.
type ShiftParams struct {
	ShiftHours     float64
	ServiceMinutes float64
}

// Speed thresholds in km/h. Both bounds are inclusive on the lower class:
// exactly 30 is easy, exactly 60 is optimal.
const (
	speedEasyMaxKph    = 30.0
	speedOptimalMaxKph = 60.0
)

// Analyze classifies each route's operational risk: subtract the time
// spent serving stops from the shift, then ask how fast the vehicle would
// have to drive to cover the route distance in what remains. A route
// whose service time alone eats the shift is impossible regardless of
// distance. The fleet aggregate is the worst route status, collapsing to
// feasible when nothing is impossible or high-risk.
func Analyze(sol *model.Solution, p ShiftParams) model.FeasibilityReport {
	rep := model.FeasibilityReport{Overall: model.StatusFeasible}
	anyImpossible, anyHighRisk := false, false
	for _, r := range sol.Routes {
		stopCount := len(r.Stops) - 2 // interior stops only
		if stopCount < 0 {
			stopCount = 0
		}
		rf := model.RouteFeasibility{
			VehicleID:  r.VehicleID,
			StopCount:  stopCount,
			DistanceKm: r.DistM / 1000,
		}
		stopTimeHours := float64(stopCount) * p.ServiceMinutes / 60
		driveAvail := p.ShiftHours - stopTimeHours
		if driveAvail <= 0 {
			rf.Status = model.StatusImpossible
			anyImpossible = true
		} else {
			rf.RequiredSpeedKph = rf.DistanceKm / driveAvail
			switch {
			case rf.RequiredSpeedKph > speedOptimalMaxKph:
				rf.Status = model.StatusHighRisk
				anyHighRisk = true
			case rf.RequiredSpeedKph > speedEasyMaxKph:
				rf.Status = model.StatusOptimal
			default:
				rf.Status = model.StatusEasy
			}
		}
		rep.Routes = append(rep.Routes, rf)
	}
	switch {
	case anyImpossible:
		rep.Overall = model.StatusImpossible
	case anyHighRisk:
		rep.Overall = model.StatusHighRisk
	}
	return rep
}
