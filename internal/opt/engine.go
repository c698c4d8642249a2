package opt

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fleetroute/internal/geo"
	"fleetroute/internal/metrics"
	"fleetroute/internal/model"
)

// Strategy selects the assignment+sequencing pair used by Solve.
type Strategy string

const (
	// StrategySearch solves assignment and sequencing jointly as a
	// budgeted, capacity-constrained search. It guarantees capacity but
	// may return NoSolutionError.
	StrategySearch Strategy = "search"
	// StrategySweep partitions customers by longitude into equal
	// contiguous chunks and sequences each chunk nearest-neighbor.
	// Deterministic O(N log N); does NOT enforce capacity.
	StrategySweep Strategy = "sweep"
)

const depotIndex = 0

// DefaultTimeBudget bounds the search strategy when the caller does not
// supply a budget of its own.
const DefaultTimeBudget = 2 * time.Second

// Options configures one Solve call. TimeBudget and MaxIterations apply
// to the search strategy only.
type Options struct {
	Strategy      Strategy
	Mode          geo.Mode
	TimeBudget    time.Duration
	MaxIterations int
}

// Engine is the strategy-selectable entry point. It holds no state across
// calls; everything derived during a solve (matrix, tour buffers) dies
// with the call.
type Engine struct {
	log *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{log: logger.With("component", "routing_engine")}
}

// Solve assigns every customer stop to a vehicle and sequences each
// vehicle's tour from the depot back to the depot. Input invariants are
// checked up front and fail fast with *model.InvalidInputError; the
// search strategy may instead return *NoSolutionError.
func (e *Engine) Solve(ctx context.Context, stops []model.Stop, fleet []model.Vehicle, opts Options) (*model.Solution, error) {
	start := time.Now()
	if opts.Strategy == "" {
		opts.Strategy = StrategySearch
	}
	if opts.Mode == "" {
		opts.Mode = geo.ModeGeodesic
	}

	sol, err := e.solve(ctx, stops, fleet, opts)

	outcome := "solved"
	var noSol *NoSolutionError
	var invalid *model.InvalidInputError
	switch {
	case errors.As(err, &noSol):
		outcome = "no_solution"
	case errors.As(err, &invalid):
		outcome = "invalid_input"
	case err != nil:
		outcome = "error"
	}
	metrics.SolveTotal.WithLabelValues(string(opts.Strategy), outcome).Inc()
	metrics.SolveDuration.WithLabelValues(string(opts.Strategy)).Observe(time.Since(start).Seconds())

	if err != nil {
		e.log.Info("solve finished", "strategy", opts.Strategy, "outcome", outcome,
			"duration_ms", time.Since(start).Milliseconds(), "error", err)
		return nil, err
	}
	e.log.Info("solve finished", "strategy", opts.Strategy, "outcome", outcome,
		"routes", len(sol.Routes), "total_dist_m", sol.TotalDistM,
		"duration_ms", time.Since(start).Milliseconds())
	return sol, nil
}

func (e *Engine) solve(ctx context.Context, stops []model.Stop, fleet []model.Vehicle, opts Options) (*model.Solution, error) {
	if err := validateInput(stops, fleet); err != nil {
		return nil, err
	}
	coords := make([]geo.Coordinate, len(stops))
	for i, s := range stops {
		coords[i] = geo.Coordinate{Lat: s.Lat, Lng: s.Lng}
	}
	m, err := geo.NewMatrix(coords, opts.Mode)
	if err != nil {
		return nil, err
	}

	switch opts.Strategy {
	case StrategySweep:
		return e.solveSweep(ctx, stops, fleet, m)
	case StrategySearch:
		return e.solveSearch(ctx, stops, fleet, m, opts)
	default:
		return nil, model.Invalidf("unknown strategy %q", opts.Strategy)
	}
}

func validateInput(stops []model.Stop, fleet []model.Vehicle) error {
	if len(stops) < 1 {
		return model.Invalidf("at least one stop is required")
	}
	if stops[depotIndex].Demand != 0 {
		return model.Invalidf("depot (stop 0) must have zero demand, got %d", stops[depotIndex].Demand)
	}
	for i, s := range stops {
		if s.Demand < 0 {
			return model.Invalidf("stop %d has negative demand %d", i, s.Demand)
		}
	}
	if len(fleet) == 0 {
		return model.Invalidf("fleet must not be empty")
	}
	for i, v := range fleet {
		if v.Capacity <= 0 {
			return model.Invalidf("vehicle %d must have positive capacity, got %d", i, v.Capacity)
		}
	}
	return nil
}

// buildSolution aggregates per-vehicle routes in fleet order, dropping
// vehicles that received no stops. Total distance is the exact sum of the
// route distances, never re-derived.
func buildSolution(strategy Strategy, routes []model.Route) *model.Solution {
	sol := &model.Solution{Strategy: string(strategy)}
	for _, r := range routes {
		if len(r.Stops) <= 2 { // depot-to-depot only, vehicle unused
			continue
		}
		sol.Routes = append(sol.Routes, r)
		sol.TotalDistM += r.DistM
	}
	return sol
}

// buildRoute closes the tour over the matrix and accumulates the load of
// the interior stops.
func buildRoute(stops []model.Stop, v model.Vehicle, m *geo.Matrix, order []int) model.Route {
	r := model.Route{VehicleID: v.ID, Stops: order}
	for i := 0; i+1 < len(order); i++ {
		r.DistM += m.Dist(order[i], order[i+1])
	}
	for _, s := range order {
		if s != depotIndex {
			r.Load += stops[s].Demand
		}
	}
	return r
}
