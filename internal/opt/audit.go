package opt

import "fleetroute/internal/model"

// CapacityAudit reports every route whose load exceeds its vehicle's
// declared capacity. The search strategy cannot produce violations; the
// sweep strategy partitions purely by count and can, so callers running
// sweep should audit before acting on a solution.
func CapacityAudit(sol *model.Solution, fleet []model.Vehicle) []model.CapacityViolation {
	caps := make(map[int]int, len(fleet))
	for _, v := range fleet {
		caps[v.ID] = v.Capacity
	}
	var out []model.CapacityViolation
	for _, r := range sol.Routes {
		if c, ok := caps[r.VehicleID]; ok && r.Load > c {
			out = append(out, model.CapacityViolation{VehicleID: r.VehicleID, Load: r.Load, Capacity: c})
		}
	}
	return out
}
