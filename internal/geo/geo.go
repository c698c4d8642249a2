package geo

import "math"

// Mode selects the distance metric. The two modes are not numerically
// comparable: geodesic yields meters, planar yields raw degree distance.
// Callers must pick one explicitly and stick with it for a whole request.
type Mode string

const (
	// ModeGeodesic is great-circle distance via the haversine formula,
	// rounded to whole meters.
	ModeGeodesic Mode = "geodesic"
	// ModePlanar is Euclidean distance on raw (lat, lng) treated as a
	// flat plane. Cheap, rough, useful only as an approximation.
	ModePlanar Mode = "planar"
)

const earthRadiusM = 6371000.0

// Coordinate is a (latitude, longitude) pair in floating degrees.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Distance is a pure function of its two inputs: symmetric, non-negative,
// and exactly zero when a == b.
func Distance(a, b Coordinate, mode Mode) float64 {
	if mode == ModePlanar {
		return math.Hypot(a.Lat-b.Lat, a.Lng-b.Lng)
	}
	return haversineM(a.Lat, a.Lng, b.Lat, b.Lng)
}

func haversineM(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return math.Round(earthRadiusM * c)
}
