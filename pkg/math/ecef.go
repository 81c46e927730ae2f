package math

import "math"

// WGS84 ellipsoid parameters.
const (
	WGS84SemiMajorAxis = 6378137.0
	WGS84Flattening    = 1 / 298.257223563
)

var wgs84E2 = WGS84Flattening * (2 - WGS84Flattening)

// LLHToECEF converts geodetic longitude and latitude in degrees and
// ellipsoidal height in metres to Earth-centred Earth-fixed coordinates.
func LLHToECEF(lon, lat, height float64) Vec3 {
	lonRad := lon * math.Pi / 180
	latRad := lat * math.Pi / 180
	sinLat, cosLat := math.Sincos(latRad)
	sinLon, cosLon := math.Sincos(lonRad)

	// Prime vertical radius of curvature
	n := WGS84SemiMajorAxis / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	return Vec3{
		X: (n + height) * cosLat * cosLon,
		Y: (n + height) * cosLat * sinLon,
		Z: (n*(1-wgs84E2) + height) * sinLat,
	}
}
