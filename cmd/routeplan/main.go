package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/common/expfmt"

	"fleetroute/internal/buildinfo"
	"fleetroute/internal/config"
	"fleetroute/internal/geo"
	"fleetroute/internal/ingest"
	"fleetroute/internal/metrics"
	"fleetroute/internal/model"
	"fleetroute/internal/opt"
)

// Exit codes: 1 = no feasible solution, 2 = invalid input/config.
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(2)
	}

	input := flag.String("input", "", "path to delivery CSV (required)")
	vehicles := flag.Int("vehicles", cfg.Vehicles, "number of vehicles")
	capacity := flag.Int("capacity", cfg.Capacity, "uniform vehicle capacity in demand units")
	strategy := flag.String("strategy", cfg.Strategy, "routing strategy: search or sweep")
	mode := flag.String("mode", cfg.DistanceMode, "distance mode: geodesic or planar")
	budget := flag.Duration("budget", cfg.TimeBudget, "search time budget")
	maxIter := flag.Int("max-iterations", cfg.MaxIterations, "search iteration cap (0 = budget only)")
	shift := flag.Float64("shift", cfg.ShiftHours, "shift duration in hours")
	service := flag.Float64("service", cfg.ServiceMinutes, "per-stop service time in minutes")
	jsonOut := flag.Bool("json", false, "emit JSON instead of a table")
	dumpMetrics := flag.Bool("metrics", false, "dump Prometheus metrics to stderr after the run")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger = logger.With("request_id", uuid.NewString())
	logger.Info("starting routeplan", "version", buildinfo.Version,
		"strategy", *strategy, "vehicles", *vehicles, "capacity", *capacity)

	if *input == "" {
		logger.Error("-input is required")
		flag.Usage()
		os.Exit(2)
	}

	metrics.RegisterDefault()

	f, err := os.Open(*input)
	if err != nil {
		logger.Error("failed to open input", "error", err)
		os.Exit(2)
	}
	res, err := ingest.NewReader(logger).ReadStops(f)
	f.Close()
	if err != nil {
		logger.Error("failed to ingest stops", "error", err)
		os.Exit(2)
	}

	fleet := make([]model.Vehicle, *vehicles)
	for i := range fleet {
		fleet[i] = model.Vehicle{ID: i + 1, Capacity: *capacity}
	}

	engine := opt.NewEngine(logger)
	sol, err := engine.Solve(context.Background(), res.Stops, fleet, opt.Options{
		Strategy:      opt.Strategy(*strategy),
		Mode:          geo.Mode(*mode),
		TimeBudget:    *budget,
		MaxIterations: *maxIter,
	})
	if err != nil {
		exitOnSolveError(logger, err)
	}

	report := opt.Analyze(sol, opt.ShiftParams{ShiftHours: *shift, ServiceMinutes: *service})
	violations := opt.CapacityAudit(sol, fleet)

	if *jsonOut {
		printJSON(sol, report, violations)
	} else {
		printTable(sol, report, violations, fleet)
	}
	if *dumpMetrics {
		dumpRegistry()
	}
}

func exitOnSolveError(logger *slog.Logger, err error) {
	var invalid *model.InvalidInputError
	if errors.As(err, &invalid) {
		logger.Error("invalid input", "error", err)
		os.Exit(2)
	}
	var noSol *opt.NoSolutionError
	if errors.As(err, &noSol) {
		var capEx *opt.CapacityExceededError
		if errors.As(err, &capEx) {
			logger.Error("no solution: a single stop cannot fit any vehicle",
				"stop", capEx.StopIndex, "demand", capEx.Demand, "max_capacity", capEx.MaxCapacity)
		} else {
			logger.Error("no solution found; try raising vehicle capacity or adding vehicles",
				"total_demand", noSol.TotalDemand, "fleet_capacity", noSol.TotalCapacity)
		}
		os.Exit(1)
	}
	logger.Error("solve failed", "error", err)
	os.Exit(1)
}

func printJSON(sol *model.Solution, report model.FeasibilityReport, violations []model.CapacityViolation) {
	out := struct {
		Solution    *model.Solution           `json:"solution"`
		Feasibility model.FeasibilityReport   `json:"feasibility"`
		Violations  []model.CapacityViolation `json:"capacityViolations,omitempty"`
	}{sol, report, violations}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

func printTable(sol *model.Solution, report model.FeasibilityReport, violations []model.CapacityViolation, fleet []model.Vehicle) {
	caps := make(map[int]int, len(fleet))
	for _, v := range fleet {
		caps[v.ID] = v.Capacity
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VEHICLE\tSTOPS\tLOAD/CAP\tDIST KM\tREQ KM/H\tSTATUS")
	for i, r := range sol.Routes {
		rf := report.Routes[i]
		speed := "-"
		if rf.Status != model.StatusImpossible {
			speed = fmt.Sprintf("%.1f", rf.RequiredSpeedKph)
		}
		fmt.Fprintf(w, "%d\t%d\t%d/%d\t%.2f\t%s\t%s\n",
			r.VehicleID, rf.StopCount, r.Load, caps[r.VehicleID], rf.DistanceKm, speed, rf.Status)
	}
	w.Flush()
	fmt.Printf("\ntotal distance: %.2f km across %d route(s), fleet status: %s\n",
		sol.TotalDistM/1000, len(sol.Routes), report.Overall)
	for _, v := range violations {
		fmt.Printf("warning: vehicle %d is loaded to %d over capacity %d\n", v.VehicleID, v.Load, v.Capacity)
	}
}

func dumpRegistry() {
	mfs, err := metrics.Registry.Gather()
	if err != nil {
		slog.Error("failed to gather metrics", "error", err)
		return
	}
	enc := expfmt.NewEncoder(os.Stderr, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		_ = enc.Encode(mf)
	}
}
