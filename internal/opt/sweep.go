package opt

import (
	"context"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	"fleetroute/internal/geo"
	"fleetroute/internal/model"
)

// solveSweep partitions customers into longitude bands and sequences each
// band nearest-neighbor. Vehicles are independent once the bands are cut,
// so sequencing runs concurrently: each goroutine owns its own visited
// set and tail, sharing only the read-only matrix.
//
// This strategy never fails with NoSolutionError, but its routes may
// exceed vehicle capacity. That is a documented trade for deterministic
// O(N log N) behavior; overloads are surfaced by CapacityAudit and the
// feasibility report, never hidden.
func (e *Engine) solveSweep(ctx context.Context, stops []model.Stop, fleet []model.Vehicle, m *geo.Matrix) (*model.Solution, error) {
	chunks := sweepAssign(stops, fleet)
	routes := make([]model.Route, len(fleet))

	g, ctx := errgroup.WithContext(ctx)
	for vi := range chunks {
		if len(chunks[vi]) == 0 {
			continue
		}
		vi := vi
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			order := nearestNeighborOrder(m, chunks[vi])
			routes[vi] = buildRoute(stops, fleet[vi], m, order)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return buildSolution(StrategySweep, routes), nil
}

// sweepAssign orders customer stops by longitude (a one-dimensional
// angular sweep approximating geographic clustering) and slices the
// ordered list into ceil((N-1)/fleet)-sized contiguous chunks, one per
// vehicle in fleet order. Pure partition by count; capacity is not
// consulted here.
func sweepAssign(stops []model.Stop, fleet []model.Vehicle) [][]int {
	customers := make([]int, 0, len(stops)-1)
	for i := 1; i < len(stops); i++ {
		customers = append(customers, i)
	}
	slices.SortFunc(customers, func(a, b int) int {
		if stops[a].Lng < stops[b].Lng {
			return -1
		}
		if stops[a].Lng > stops[b].Lng {
			return 1
		}
		return a - b // stable tie-break on stop index
	})

	chunkSize := (len(customers) + len(fleet) - 1) / len(fleet)
	chunks := make([][]int, len(fleet))
	for vi := range fleet {
		lo := vi * chunkSize
		if lo >= len(customers) {
			break
		}
		hi := min(lo+chunkSize, len(customers))
		chunks[vi] = customers[lo:hi]
	}
	return chunks
}

// nearestNeighborOrder sequences the assigned stops into a tour anchored
// at the depot: repeatedly take the unvisited stop closest to the current
// tail, ties to the lowest stop index. Greedy, non-optimal, O(k²), and
// fully deterministic.
func nearestNeighborOrder(m *geo.Matrix, assigned []int) []int {
	remaining := slices.Clone(assigned)
	slices.Sort(remaining) // ascending scan + strict < picks the lowest index on ties

	order := make([]int, 0, len(assigned)+2)
	order = append(order, depotIndex)
	cur := depotIndex
	for len(remaining) > 0 {
		bestPos := -1
		bestDist := math.MaxFloat64
		for pos, s := range remaining {
			if d := m.Dist(cur, s); d < bestDist {
				bestDist = d
				bestPos = pos
			}
		}
		cur = remaining[bestPos]
		order = append(order, cur)
		remaining = slices.Delete(remaining, bestPos, bestPos+1)
	}
	return append(order, depotIndex)
}
