package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"fleetroute/internal/model"
)

// Reader cleans a raw stop list before it reaches the routing engine:
// rows with non-numeric or non-finite coordinates, or unparseable or
// negative demand, are dropped and counted rather than failing the whole
// file. The first surviving row is the depot.
type Reader struct {
	logger *slog.Logger
}

func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger.With("component", "csv_ingest")}
}

// Result is one ingested stop list plus how many rows were dropped.
type Result struct {
	Stops   []model.Stop
	Skipped int
}

// Required and optional column headers, matched case-insensitively.
const (
	colLat    = "lat"
	colLng    = "lon"
	colDemand = "demand"
	colName   = "location_name"
)

// ReadStops parses a delivery CSV (Location_Name, Address, lat, lon,
// demand — extra columns are ignored) into a stop list with sequential
// indices. Fails if the header is missing a required column or no usable
// rows survive cleaning.
func (r *Reader) ReadStops(src io.Reader) (*Result, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{colLat, colLng, colDemand} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	res := &Result{}
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		stop, ok := r.parseRow(rec, cols, line)
		if !ok {
			res.Skipped++
			continue
		}
		stop.Index = len(res.Stops)
		res.Stops = append(res.Stops, stop)
	}
	if len(res.Stops) == 0 {
		return nil, fmt.Errorf("no usable rows (skipped %d)", res.Skipped)
	}
	r.logger.Info("ingested stops", "count", len(res.Stops), "skipped", res.Skipped)
	return res, nil
}

func (r *Reader) parseRow(rec []string, cols map[string]int, line int) (model.Stop, bool) {
	field := func(name string) (string, bool) {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return "", false
		}
		return strings.TrimSpace(rec[i]), true
	}

	latS, ok1 := field(colLat)
	lngS, ok2 := field(colLng)
	demS, ok3 := field(colDemand)
	if !ok1 || !ok2 || !ok3 {
		r.logger.Debug("dropping short row", "line", line)
		return model.Stop{}, false
	}
	lat, err1 := strconv.ParseFloat(latS, 64)
	lng, err2 := strconv.ParseFloat(lngS, 64)
	if err1 != nil || err2 != nil || !finite(lat) || !finite(lng) {
		r.logger.Debug("dropping row with bad coordinates", "line", line, "lat", latS, "lon", lngS)
		return model.Stop{}, false
	}
	demand, err := strconv.Atoi(demS)
	if err != nil || demand < 0 {
		r.logger.Debug("dropping row with bad demand", "line", line, "demand", demS)
		return model.Stop{}, false
	}
	name, _ := field(colName)
	return model.Stop{Lat: lat, Lng: lng, Demand: demand, Name: name}, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
