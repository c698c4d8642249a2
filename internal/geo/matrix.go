package geo

import (
	"math"

	"fleetroute/internal/model"
)

// Matrix is the precomputed stop-to-stop distance table for one solve
// request. It is built once, read-only afterwards, and safe for concurrent
// reads. The diagonal is always zero and the table is symmetric because
// the underlying metric is.
type Matrix struct {
	n int
	d [][]float64
}

// NewMatrix computes the full N×N table from the supplied coordinates.
// It rejects empty input and non-finite coordinates.
func NewMatrix(coords []Coordinate, mode Mode) (*Matrix, error) {
	if len(coords) < 1 {
		return nil, model.Invalidf("at least one stop is required")
	}
	for i, c := range coords {
		if !finite(c.Lat) || !finite(c.Lng) {
			return nil, model.Invalidf("stop %d has a non-finite coordinate (%v, %v)", i, c.Lat, c.Lng)
		}
	}
	d := make([][]float64, len(coords))
	for i := range coords {
		d[i] = make([]float64, len(coords))
		for j := range coords {
			if i == j {
				continue
			}
			d[i][j] = Distance(coords[i], coords[j], mode)
		}
	}
	return &Matrix{n: len(coords), d: d}, nil
}

// Len returns the number of stops in the table.
func (m *Matrix) Len() int { return m.n }

// Dist returns the distance between stops i and j.
func (m *Matrix) Dist(i, j int) float64 { return m.d[i][j] }

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
