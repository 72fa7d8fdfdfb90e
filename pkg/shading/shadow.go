package shading

import (
	"math"

	"github.com/chrissnell/roofsolar/pkg/solar"
)

// DefaultHalfAngle is the shadow cone half-angle used when an obstacle's width
// is unknown, degrees
const DefaultHalfAngle = 5.0

// RoofPoint is a point in polar form around the reference point an obstacle's
// Distance is measured from (for a roof, where the obstacle's bearing leaves
// the roof edge). Azimuth is degrees clockwise from north.
type RoofPoint struct {
	Distance float64 `json:"distance"`
	Azimuth  float64 `json:"azimuth"`
}

// ShadowLength is how far the shadow of an obstacle of the given height reaches
// along the ground for a sun at elevation degrees. It is +Inf when the sun is
// at or below the horizon.
func ShadowLength(height, elevation float64) float64 {
	if elevation <= 0 {
		return math.Inf(1)
	}
	return height / math.Tan(elevation*math.Pi/180.0)
}

// HalfAngle is the half-width of an obstacle's shadow cone in degrees, derived
// from its width and distance, or DefaultHalfAngle when the width is unknown.
func HalfAngle(o Obstacle) float64 {
	if o.Width <= 0 {
		return DefaultHalfAngle
	}
	return math.Atan2(o.Width/2, o.Distance) * 180.0 / math.Pi
}

// IsPointInShadow reports whether p lies in o's shadow with the sun at sun.
// With the sun at or below the horizon every point is in shadow. Otherwise the
// point must lie inside the cone that starts at the obstacle and opens away from
// the sun, no farther from the obstacle than the shadow length, and not on the
// sunward side of the obstacle.
func IsPointInShadow(p RoofPoint, o Obstacle, sun solar.Position) bool {
	if sun.Elevation <= 0 {
		return true
	}

	length := ShadowLength(o.Height, sun.Elevation)
	shadowAz := solar.NormalizeAzimuth(sun.Azimuth + 180)

	// x east, y north
	px, py := polarToXY(p.Distance, p.Azimuth)
	ox, oy := polarToXY(o.Distance, o.bearing())
	vx, vy := px-ox, py-oy

	reach := math.Hypot(vx, vy)
	if reach == 0 {
		return true
	}
	if reach > length {
		return false
	}

	sx, sy := polarToXY(1, shadowAz)
	if vx*sx+vy*sy < 0 {
		return false
	}

	bearing := solar.NormalizeAzimuth(math.Atan2(vx, vy) * 180.0 / math.Pi)
	return solar.AngularDistance(bearing, shadowAz) <= HalfAngle(o)
}

func polarToXY(distance, azimuth float64) (x, y float64) {
	rad := azimuth * math.Pi / 180.0
	return distance * math.Sin(rad), distance * math.Cos(rad)
}
