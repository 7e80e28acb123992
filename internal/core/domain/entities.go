package domain

// CoordScale is the fixed-point scale for coordinates: degrees × 1e7.
const CoordScale = 1e7

// Point is a location encoded as fixed-point latitude/longitude.
// It is comparable, so it can be used directly as a map key.
type Point struct {
	Latitude  int32 `json:"latitude"`
	Longitude int32 `json:"longitude"`
}

// LatDegrees decodes the latitude to floating-point degrees.
func (p Point) LatDegrees() float64 { return float64(p.Latitude) / CoordScale }

// LonDegrees decodes the longitude to floating-point degrees.
func (p Point) LonDegrees() float64 { return float64(p.Longitude) / CoordScale }

// Rectangle is a bounding box between two corner points. Callers may pass
// the corners in any order; Normalized puts the geometric minimum in Lo.
type Rectangle struct {
	Lo Point `json:"lo"`
	Hi Point `json:"hi"`
}

// Feature is a named location. An empty Name means "no feature here";
// that is a valid result, not an error.
type Feature struct {
	Name     string `json:"name"`
	Location Point  `json:"location"`
}

// RouteNote is a message left at a location.
type RouteNote struct {
	Location Point  `json:"location"`
	Message  string `json:"message"`
}

// RouteSummary aggregates one recorded route: how many points were sent,
// how many matched a known feature, the traversed distance in meters, and
// the wall-clock duration of the stream in whole seconds.
type RouteSummary struct {
	PointCount   int32 `json:"point_count"`
	FeatureCount int32 `json:"feature_count"`
	Distance     int32 `json:"distance"`
	ElapsedTime  int32 `json:"elapsed_time"`
}
