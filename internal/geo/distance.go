package geo

import "math"

// EarthRadiusKM is the IUGG mean Earth radius.
const EarthRadiusKM = 6371.0088

// Point is a WGS 84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether p is within latitude/longitude ranges.
func (p Point) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lon) &&
		p.Lat >= -90 && p.Lat <= 90 &&
		p.Lon >= -180 && p.Lon <= 180
}

// PointFrom builds a point from nullable columns; nil when either is missing.
func PointFrom(lat, lon *float64) *Point {
	if lat == nil || lon == nil {
		return nil
	}
	p := Point{Lat: *lat, Lon: *lon}
	if !p.Valid() {
		return nil
	}
	return &p
}

// DistanceKM is the haversine great-circle distance between a and b.
func DistanceKM(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// clamp rounding drift for antipodal points
	h = math.Min(1, math.Max(0, h))
	return 2 * EarthRadiusKM * math.Asin(math.Sqrt(h))
}

// DistanceBetween returns nil unless both points are known.
func DistanceBetween(viewer, target *Point) *float64 {
	if viewer == nil || target == nil {
		return nil
	}
	d := DistanceKM(*viewer, *target)
	return &d
}

// Offset returns the point reached by travelling distanceKM from p along the
// initial bearing (degrees clockwise from north).
func Offset(p Point, distanceKM, bearingDeg float64) Point {
	delta := distanceKM / EarthRadiusKM
	theta := bearingDeg * math.Pi / 180
	lat1 := p.Lat * math.Pi / 180
	lon1 := p.Lon * math.Pi / 180

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(theta))
	lon2 := lon1 + math.Atan2(math.Sin(theta)*math.Sin(delta)*math.Cos(lat1), math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2))

	lon := math.Mod(lon2*180/math.Pi+540, 360) - 180
	return Point{Lat: lat2 * 180 / math.Pi, Lon: lon}
}
