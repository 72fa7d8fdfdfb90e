// Package solar computes where the sun is for a given place and time, estimates
// optimal panel tilt, and synthesizes an hourly irradiance curve from a daily total.
// The position model is a single-pass low-precision approximation (mean longitude,
// mean anomaly, two-term equation of center) which is good to a fraction of a
// degree and is all a roof shading estimate needs.
package solar

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

const (
	j2000        = 2451545.0 // Julian day of 2000-01-01 12:00 TT
	obliquityDeg = 23.439    // obliquity of the ecliptic, degrees
)

// Position is the apparent position of the sun for an observer. Zenith is always
// exactly 90 - Elevation and Azimuth is always within [0, 360), clockwise from
// true north. An Elevation <= 0 means the sun is at or below the horizon.
type Position struct {
	Elevation   float64 `json:"elevation"`
	Azimuth     float64 `json:"azimuth"`
	Zenith      float64 `json:"zenith"`
	HourAngle   float64 `json:"hour_angle"`
	Declination float64 `json:"declination"`
}

// AboveHorizon reports whether there is any direct sun
func (p Position) AboveHorizon() bool {
	return p.Elevation > 0
}

// CalculatePosition returns the sun's position at the given latitude and longitude
// (decimal degrees) for timestamp t. tzOffsetHours selects the local clock used to
// read the calendar date and hour (0 for UTC).
func CalculatePosition(latitude, longitude float64, t time.Time, tzOffsetHours float64) (Position, error) {
	if err := CheckLocation(latitude, longitude); err != nil {
		return Position{}, err
	}
	if err := CheckRange("timezone", tzOffsetHours, -12, 14); err != nil {
		return Position{}, err
	}
	if t.IsZero() {
		return Position{}, &InputError{Field: "timestamp", Constraint: "must be set"}
	}

	clock := ClockTime(t, tzOffsetHours)
	decl, eot := sunCoordinates(julianDay(clock) - j2000)

	// Local apparent solar time, hours. 4 minutes of time per degree of longitude
	// away from the zone's standard meridian, plus the equation of time.
	clockHours := float64(clock.Hour()) + float64(clock.Minute())/60.0 + float64(clock.Second())/3600.0
	solarTime := clockHours + (4*(longitude-tzOffsetHours*15)+eot)/60.0

	hourAngle := 15.0 * (solarTime - 12.0)

	latRad := degToRad(latitude)
	haRad := degToRad(hourAngle)

	sinEl := math.Sin(decl)*math.Sin(latRad) + math.Cos(decl)*math.Cos(latRad)*math.Cos(haRad)
	elevation := radToDeg(math.Asin(clampUnit(sinEl)))

	// atan2 gives the bearing from south, shift by 180 so north is 0
	az := math.Atan2(math.Sin(haRad), math.Cos(haRad)*math.Sin(latRad)-math.Tan(decl)*math.Cos(latRad))
	azimuth := NormalizeAzimuth(radToDeg(az) + 180.0)

	return Position{
		Elevation:   elevation,
		Azimuth:     azimuth,
		Zenith:      90.0 - elevation,
		HourAngle:   hourAngle,
		Declination: radToDeg(decl),
	}, nil
}

// ClockTime expresses t on a fixed-offset local clock
func ClockTime(t time.Time, tzOffsetHours float64) time.Time {
	return t.In(FixedZone(tzOffsetHours))
}

// FixedZone returns an unnamed location offset from UTC by the given hours
func FixedZone(tzOffsetHours float64) *time.Location {
	return time.FixedZone("", int(math.Round(tzOffsetHours*3600)))
}

// LongitudeTimezone is the nominal zone offset of a meridian, round(longitude/15)
// hours. It stands in for a clock when the caller gives none.
func LongitudeTimezone(longitude float64) float64 {
	return math.Round(longitude / 15)
}

// ParseDate reads a YYYY-MM-DD calendar day as midnight on the clock tz hours
// from UTC, so the day keeps its date once converted to that clock
func ParseDate(s string, tz float64) (time.Time, error) {
	if err := CheckRange("timezone", tz, -12, 14); err != nil {
		return time.Time{}, err
	}
	d, err := time.ParseInLocation(time.DateOnly, s, FixedZone(tz))
	if err != nil {
		return time.Time{}, &InputError{Field: "date", Constraint: "must be YYYY-MM-DD"}
	}
	return d, nil
}

// julianDay returns the Julian day at 0h of the clock's calendar date
func julianDay(clock time.Time) float64 {
	return julian.CalendarGregorianToJD(clock.Year(), int(clock.Month()), float64(clock.Day()))
}

// sunCoordinates returns the solar declination (radians) and the equation of
// time (minutes) for n days from J2000.
func sunCoordinates(n float64) (declRad, eotMinutes float64) {
	L := NormalizeAzimuth(280.460 + 0.9856474*n)            // mean longitude
	g := degToRad(NormalizeAzimuth(357.528 + 0.9856003*n)) // mean anomaly
	lambda := degToRad(L + 1.915*math.Sin(g) + 0.020*math.Sin(2*g))
	eps := degToRad(obliquityDeg)

	declRad = math.Asin(math.Sin(eps) * math.Sin(lambda))

	// Right ascension in the same quadrant as the ecliptic longitude
	ra := NormalizeAzimuth(radToDeg(math.Atan2(math.Cos(eps)*math.Sin(lambda), math.Cos(lambda))))
	eotMinutes = 4.0 * wrap180(L-ra)

	return declRad, eotMinutes
}

// NormalizeAzimuth wraps an angle into [0, 360)
func NormalizeAzimuth(angle float64) float64 {
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

// AngularDistance is the smallest absolute difference between two bearings, [0, 180]
func AngularDistance(a, b float64) float64 {
	return math.Abs(wrap180(a - b))
}

// wrap180 wraps an angle into [-180, 180)
func wrap180(angle float64) float64 {
	return NormalizeAzimuth(angle+180) - 180
}

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}

func radToDeg(rad float64) float64 {
	return rad * (180.0 / math.Pi)
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
