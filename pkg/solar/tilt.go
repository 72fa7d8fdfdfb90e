package solar

import "math"

// SeasonalTiltSwing is the amplitude of the monthly tilt correction, degrees
const SeasonalTiltSwing = 15.0

// OptimalTilt returns the annual optimum tilt for a fixed panel, which this
// heuristic takes to be the absolute latitude.
func OptimalTilt(latitude float64) (float64, error) {
	if err := CheckRange("latitude", latitude, -90, 90); err != nil {
		return 0, err
	}
	return math.Abs(latitude), nil
}

// OptimalTiltForMonth adds a coarse cosine correction to the annual optimum:
// +15° in January falling to -15° in July. It is a rule of thumb rather than an
// optimization; the result is not clamped and can be negative near the equator.
func OptimalTiltForMonth(latitude float64, month int) (float64, error) {
	base, err := OptimalTilt(latitude)
	if err != nil {
		return 0, err
	}
	if month < 1 || month > 12 {
		return 0, &InputError{Field: "month", Value: float64(month), Constraint: "must be within [1, 12]"}
	}
	return base + SeasonalTiltSwing*math.Cos(degToRad(float64(month-1)*30)), nil
}

// OptimalAzimuth is the panel bearing facing the equator: south in the northern
// hemisphere and on the equator, north in the southern hemisphere.
func OptimalAzimuth(latitude float64) (float64, error) {
	if err := CheckRange("latitude", latitude, -90, 90); err != nil {
		return 0, err
	}
	if latitude < 0 {
		return 0, nil
	}
	return 180, nil
}
