package opt

import (
	"context"
	"math"
	"slices"
	"time"

	"golang.org/x/time/rate"

	"fleetroute/internal/geo"
	"fleetroute/internal/metrics"
	"fleetroute/internal/model"
)

const eps = 1e-9

// searchState is the mutable working set of one search run: per-vehicle
// interior tours (no depot sentinels) and their accumulated loads. The
// load accumulator is the capacity dimension: it must stay within
// [0, capacity] for every vehicle at every step.
type searchState struct {
	tours [][]int
	loads []int
}

// solveSearch models assignment and sequencing jointly: a cheapest-append
// construction seeds the solution, then a deterministic local search
// (2-opt, relocate, cross-exchange) improves it until it reaches a local
// optimum or runs out of iterations or time. The search never blocks past
// its budget; running out of budget without a feasible seed is a
// NoSolutionError, not proof of infeasibility.
func (e *Engine) solveSearch(ctx context.Context, stops []model.Stop, fleet []model.Vehicle, m *geo.Matrix, opts Options) (*model.Solution, error) {
	totalDemand := 0
	for _, s := range stops[1:] {
		totalDemand += s.Demand
	}
	totalCap, maxCap := 0, 0
	for _, v := range fleet {
		totalCap += v.Capacity
		if v.Capacity > maxCap {
			maxCap = v.Capacity
		}
	}
	if totalDemand > totalCap {
		return nil, &NoSolutionError{
			Reason:        "total demand exceeds fleet capacity",
			TotalDemand:   totalDemand,
			TotalCapacity: totalCap,
		}
	}
	for i := 1; i < len(stops); i++ {
		if stops[i].Demand > maxCap {
			return nil, &NoSolutionError{
				Reason:        "stop is structurally unassignable",
				TotalDemand:   totalDemand,
				TotalCapacity: totalCap,
				Cause:         &CapacityExceededError{StopIndex: i, Demand: stops[i].Demand, MaxCapacity: maxCap},
			}
		}
	}

	budget := opts.TimeBudget
	if budget <= 0 {
		budget = DefaultTimeBudget
	}
	deadline := time.Now().Add(budget)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	st, ok := cheapestAppendSeed(stops, fleet, m)
	if !ok {
		return nil, &NoSolutionError{
			Reason:        "no feasible assignment found within budget",
			TotalDemand:   totalDemand,
			TotalCapacity: totalCap,
		}
	}
	iters := e.improve(ctx, st, stops, fleet, m, deadline, opts.MaxIterations)
	metrics.SearchIterations.Observe(float64(iters))

	routes := make([]model.Route, len(fleet))
	for vi, tour := range st.tours {
		if len(tour) == 0 {
			continue
		}
		order := make([]int, 0, len(tour)+2)
		order = append(order, depotIndex)
		order = append(order, tour...)
		order = append(order, depotIndex)
		routes[vi] = buildRoute(stops, fleet[vi], m, order)
	}
	return buildSolution(StrategySearch, routes), nil
}

// cheapestAppendSeed builds the starting solution: vehicles take turns
// appending the unassigned stop cheapest to reach from their current tour
// tail, subject to the capacity accumulator. Candidates are scanned in
// ascending index order with a strict less-than, so equidistant stops
// resolve to the lowest index. Returns false when unassigned stops remain
// and no vehicle can take any of them.
func cheapestAppendSeed(stops []model.Stop, fleet []model.Vehicle, m *geo.Matrix) (*searchState, bool) {
	st := &searchState{
		tours: make([][]int, len(fleet)),
		loads: make([]int, len(fleet)),
	}
	assigned := make([]bool, len(stops))
	left := len(stops) - 1
	for left > 0 {
		progress := false
		for vi := range fleet {
			tail := depotIndex
			if t := st.tours[vi]; len(t) > 0 {
				tail = t[len(t)-1]
			}
			best := -1
			bestDist := math.MaxFloat64
			for s := 1; s < len(stops); s++ {
				if assigned[s] || st.loads[vi]+stops[s].Demand > fleet[vi].Capacity {
					continue
				}
				if d := m.Dist(tail, s); d < bestDist {
					bestDist = d
					best = s
				}
			}
			if best < 0 {
				continue
			}
			st.tours[vi] = append(st.tours[vi], best)
			st.loads[vi] += stops[best].Demand
			assigned[best] = true
			left--
			progress = true
			if left == 0 {
				break
			}
		}
		if !progress {
			return nil, false
		}
	}
	return st, true
}

// improve runs deterministic improvement passes until no pass finds a
// better neighbor, or the budget expires. Returns the iteration count.
func (e *Engine) improve(ctx context.Context, st *searchState, stops []model.Stop, fleet []model.Vehicle, m *geo.Matrix, deadline time.Time, maxIter int) int {
	progress := rate.NewLimiter(rate.Every(500*time.Millisecond), 1)
	iter := 0
	for {
		if ctx.Err() != nil || !time.Now().Before(deadline) {
			return iter
		}
		iter++
		if maxIter > 0 && iter > maxIter {
			return iter
		}
		improved := false
		if twoOptPass(st, m, deadline) {
			improved = true
		}
		if relocatePass(st, stops, fleet, m, deadline) {
			improved = true
		}
		if swapPass(st, stops, fleet, m, deadline) {
			improved = true
		}
		if progress.Allow() {
			e.log.Debug("search progress", "iteration", iter, "total_dist_m", st.totalDist(m))
		}
		if !improved {
			return iter
		}
	}
}

// twoOptPass reverses intra-route segments when the two replaced edges
// are longer than their replacements. The matrix is symmetric, so the
// reversed interior edges cancel out of the delta.
func twoOptPass(st *searchState, m *geo.Matrix, deadline time.Time) bool {
	improved := false
	for vi := range st.tours {
		a := st.tours[vi]
		for i := 0; i < len(a)-1; i++ {
			if !time.Now().Before(deadline) {
				return improved
			}
			for k := i + 1; k < len(a); k++ {
				p := depotIndex
				if i > 0 {
					p = a[i-1]
				}
				n := depotIndex
				if k+1 < len(a) {
					n = a[k+1]
				}
				delta := m.Dist(p, a[k]) + m.Dist(a[i], n) - m.Dist(p, a[i]) - m.Dist(a[k], n)
				if delta < -eps {
					slices.Reverse(a[i : k+1])
					improved = true
				}
			}
		}
	}
	return improved
}

// relocatePass moves single stops to a cheaper position, within the same
// tour or onto another vehicle when its capacity accumulator allows.
func relocatePass(st *searchState, stops []model.Stop, fleet []model.Vehicle, m *geo.Matrix, deadline time.Time) bool {
	improved := false
	for va := range st.tours {
		i := 0
		for i < len(st.tours[va]) {
			if !time.Now().Before(deadline) {
				return improved
			}
			s := st.tours[va][i]
			without := slices.Delete(slices.Clone(st.tours[va]), i, i+1)
			before := tourDist(st.tours[va], m)
			moved := false
			for vb := range st.tours {
				dest := st.tours[vb]
				if vb == va {
					dest = without
				} else if st.loads[vb]+stops[s].Demand > fleet[vb].Capacity {
					continue
				}
				destBefore := tourDist(st.tours[vb], m)
				for j := 0; j <= len(dest); j++ {
					if vb == va && j == i {
						continue
					}
					cand := insertAt(dest, j, s)
					var delta float64
					if vb == va {
						delta = tourDist(cand, m) - before
					} else {
						delta = tourDist(without, m) + tourDist(cand, m) - before - destBefore
					}
					if delta < -eps {
						st.tours[va] = without
						st.tours[vb] = cand
						st.loads[va] -= stops[s].Demand
						st.loads[vb] += stops[s].Demand
						moved = true
						improved = true
						break
					}
				}
				if moved {
					break
				}
			}
			if !moved {
				i++
			}
		}
	}
	return improved
}

// swapPass exchanges one stop between two vehicles when both capacity
// accumulators stay in range and total distance drops.
func swapPass(st *searchState, stops []model.Stop, fleet []model.Vehicle, m *geo.Matrix, deadline time.Time) bool {
	improved := false
	for va := 0; va < len(st.tours); va++ {
		for vb := va + 1; vb < len(st.tours); vb++ {
			for i := 0; i < len(st.tours[va]); i++ {
				if !time.Now().Before(deadline) {
					return improved
				}
				for j := 0; j < len(st.tours[vb]); j++ {
					sa, sb := st.tours[va][i], st.tours[vb][j]
					loadA := st.loads[va] - stops[sa].Demand + stops[sb].Demand
					loadB := st.loads[vb] - stops[sb].Demand + stops[sa].Demand
					if loadA > fleet[va].Capacity || loadB > fleet[vb].Capacity {
						continue
					}
					ca := slices.Clone(st.tours[va])
					cb := slices.Clone(st.tours[vb])
					ca[i], cb[j] = sb, sa
					before := tourDist(st.tours[va], m) + tourDist(st.tours[vb], m)
					after := tourDist(ca, m) + tourDist(cb, m)
					if after+eps < before {
						st.tours[va], st.tours[vb] = ca, cb
						st.loads[va], st.loads[vb] = loadA, loadB
						improved = true
					}
				}
			}
		}
	}
	return improved
}

func (st *searchState) totalDist(m *geo.Matrix) float64 {
	total := 0.0
	for _, tour := range st.tours {
		total += tourDist(tour, m)
	}
	return total
}

// tourDist closes the interior tour over the depot on both ends.
func tourDist(tour []int, m *geo.Matrix) float64 {
	if len(tour) == 0 {
		return 0
	}
	d := m.Dist(depotIndex, tour[0])
	for i := 0; i+1 < len(tour); i++ {
		d += m.Dist(tour[i], tour[i+1])
	}
	return d + m.Dist(tour[len(tour)-1], depotIndex)
}

func insertAt(tour []int, pos, s int) []int {
	out := make([]int, 0, len(tour)+1)
	out = append(out, tour[:pos]...)
	out = append(out, s)
	return append(out, tour[pos:]...)
}
