package solar

import (
	"fmt"
	"math"
	"time"
)

// DaylightWindow holds sunrise, solar noon and sunset as decimal clock hours on
// the requested timezone offset. Sunrise and Sunset are -1 when the sun does not
// cross the horizon that day (PolarDay or PolarNight).
type DaylightWindow struct {
	Sunrise    float64 `json:"sunrise"`
	SolarNoon  float64 `json:"solar_noon"`
	Sunset     float64 `json:"sunset"`
	DayLength  float64 `json:"day_length"`
	PolarDay   bool    `json:"polar_day"`
	PolarNight bool    `json:"polar_night"`
}

// Daylight returns the daylight window for the calendar date of date on the
// given clock, using the same declination and equation of time as CalculatePosition.
func Daylight(latitude, longitude float64, date time.Time, tzOffsetHours float64) (DaylightWindow, error) {
	if err := CheckLocation(latitude, longitude); err != nil {
		return DaylightWindow{}, err
	}
	if err := CheckRange("timezone", tzOffsetHours, -12, 14); err != nil {
		return DaylightWindow{}, err
	}
	if date.IsZero() {
		return DaylightWindow{}, &InputError{Field: "date", Constraint: "must be set"}
	}

	clock := ClockTime(date, tzOffsetHours)
	decl, eot := sunCoordinates(julianDay(clock) - j2000)

	// Clock hour at which the hour angle is zero
	noon := 12.0 - (4*(longitude-tzOffsetHours*15)+eot)/60.0
	w := DaylightWindow{
		Sunrise:   -1,
		Sunset:    -1,
		SolarNoon: wrapHours(noon),
	}

	// Hour angle at which the sun's center crosses the horizon:
	// cos(H) = -tan(lat) * tan(declination)
	cosH := -math.Tan(degToRad(latitude)) * math.Tan(decl)
	switch {
	case cosH < -1.0:
		w.PolarDay = true
		w.DayLength = 24
		return w, nil
	case cosH > 1.0:
		w.PolarNight = true
		return w, nil
	}

	halfDay := radToDeg(math.Acos(cosH)) / 15.0
	w.Sunrise = wrapHours(noon - halfDay)
	w.Sunset = wrapHours(noon + halfDay)
	w.DayLength = 2 * halfDay

	return w, nil
}

// FormatClockHours renders decimal clock hours as HH:MM, or "" for the -1 sentinel
func FormatClockHours(hours float64) string {
	if hours < 0 {
		return ""
	}
	minutes := int(math.Round(hours*60)) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func wrapHours(h float64) float64 {
	h = math.Mod(h, 24)
	if h < 0 {
		h += 24
	}
	return h
}
