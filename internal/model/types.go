package model

// Core domain types for the routing engine. All of these are plain data:
// they are built once per solve request and treated as immutable afterwards.

// Stop is a single point on the delivery plan. The stop at index 0 is the
// depot and must carry zero demand; every other stop is a customer.
type Stop struct {
	Index  int     `json:"index"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Demand int     `json:"demand"`
	Name   string  `json:"name,omitempty"`
}

// Vehicle is one member of the fleet.
type Vehicle struct {
	ID       int `json:"id"`
	Capacity int `json:"capacity"`
}

// Route is one vehicle's tour. Stops starts and ends with the depot index;
// Load is the summed demand of the interior stops.
type Route struct {
	VehicleID int     `json:"vehicleId"`
	Stops     []int   `json:"stops"`
	DistM     float64 `json:"distM"`
	Load      int     `json:"load"`
}

// Solution is the output of one solve call. Vehicles that received no
// stops are omitted from Routes.
type Solution struct {
	Strategy   string  `json:"strategy"`
	Routes     []Route `json:"routes"`
	TotalDistM float64 `json:"totalDistM"`
}

// RouteStatus classifies a route's operational risk for a shift.
type RouteStatus string

const (
	StatusEasy       RouteStatus = "easy"
	StatusOptimal    RouteStatus = "optimal"
	StatusHighRisk   RouteStatus = "high_risk"
	StatusImpossible RouteStatus = "impossible"

	// StatusFeasible is the fleet-level aggregate when no route is
	// impossible or high-risk. It never appears on an individual route.
	StatusFeasible RouteStatus = "feasible"
)

// RouteFeasibility is the per-route slice of a FeasibilityReport.
// RequiredSpeedKph is zero when the route is impossible (no drive time
// remains after service stops).
type RouteFeasibility struct {
	VehicleID        int         `json:"vehicleId"`
	StopCount        int         `json:"stopCount"`
	DistanceKm       float64     `json:"distanceKm"`
	RequiredSpeedKph float64     `json:"requiredSpeedKph"`
	Status           RouteStatus `json:"status"`
}

// FeasibilityReport aggregates per-route risk into a fleet-level verdict.
type FeasibilityReport struct {
	Routes  []RouteFeasibility `json:"routes"`
	Overall RouteStatus        `json:"overall"`
}

// CapacityViolation flags a route whose load exceeds its vehicle's
// capacity. Only the sweep strategy can produce these.
type CapacityViolation struct {
	VehicleID int `json:"vehicleId"`
	Load      int `json:"load"`
	Capacity  int `json:"capacity"`
}
