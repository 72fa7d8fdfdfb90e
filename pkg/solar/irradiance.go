package solar

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// HoursPerDay is the length of a synthesized intraday curve
const HoursPerDay = 24

// Fixed split of global irradiance into beam and diffuse parts. This is a
// declared simplification, not a radiative-transfer model.
const (
	DirectFraction  = 0.8
	DiffuseFraction = 0.2
)

// HourlyIrradiance is one hour of a representative day. Irradiance values are W/m²
// averaged over the hour; Temperature is °C.
type HourlyIrradiance struct {
	Hour         int     `json:"hour"`
	GHI          float64 `json:"ghi"`
	DNI          float64 `json:"dni"`
	DHI          float64 `json:"dhi"`
	Temperature  float64 `json:"temperature"`
	SunElevation float64 `json:"sun_elevation"`
}

// SynthesisParams controls the intraday curve
type SynthesisParams struct {
	// TimezoneOffset is the clock (hours from UTC) on which hours 0..23 are read
	TimezoneOffset float64

	// AverageTemperature is the daily mean the temperature curve oscillates around, °C
	AverageTemperature float64

	// MinTemperatureHour is the clock hour of the coldest point of the day
	MinTemperatureHour float64

	// TemperatureAmplitude is the half swing of the day/night curve, °C
	TemperatureAmplitude float64
}

// DefaultSynthesisParams returns a UTC clock, coldest at 06:00 and a ±8 °C swing
func DefaultSynthesisParams() SynthesisParams {
	return SynthesisParams{
		TimezoneOffset:       0,
		AverageTemperature:   0,
		MinTemperatureHour:   6,
		TemperatureAmplitude: 8,
	}
}

func (p SynthesisParams) validate() error {
	if err := CheckRange("timezone", p.TimezoneOffset, -12, 14); err != nil {
		return err
	}
	if err := CheckFinite("average_temperature", p.AverageTemperature); err != nil {
		return err
	}
	if err := CheckRange("min_temperature_hour", p.MinTemperatureHour, 0, 24); err != nil {
		return err
	}
	return CheckRange("temperature_amplitude", p.TemperatureAmplitude, 0, 50)
}

// SynthesizeHourlyIrradiance spreads dailyTotal (kWh/m²/day) over the 24 hours of
// date in proportion to a clear-sky shape, so that the hourly GHI values summed
// and divided by 1000 give back dailyTotal. Each hour is represented by the sun
// position at its half-hour mark. When the sun never rises the result is an
// all-zero curve, not an error.
func SynthesizeHourlyIrradiance(latitude, longitude float64, date time.Time, dailyTotal float64, params SynthesisParams) ([HoursPerDay]HourlyIrradiance, error) {
	var hours [HoursPerDay]HourlyIrradiance

	if err := CheckLocation(latitude, longitude); err != nil {
		return hours, err
	}
	if err := CheckFinite("daily_total", dailyTotal); err != nil {
		return hours, err
	}
	if dailyTotal < 0 {
		return hours, &InputError{Field: "daily_total", Value: dailyTotal, Constraint: "must be >= 0"}
	}
	if err := params.validate(); err != nil {
		return hours, err
	}
	if date.IsZero() {
		return hours, &InputError{Field: "date", Constraint: "must be set"}
	}

	zone := FixedZone(params.TimezoneOffset)
	y, m, d := date.In(zone).Date()

	var relative [HoursPerDay]float64
	for h := 0; h < HoursPerDay; h++ {
		mid := time.Date(y, m, d, h, 30, 0, 0, zone)
		pos, err := CalculatePosition(latitude, longitude, mid, params.TimezoneOffset)
		if err != nil {
			return hours, err
		}

		hours[h].Hour = h
		hours[h].SunElevation = pos.Elevation
		hours[h].Temperature = hourlyTemperature(float64(h), params)
		relative[h] = relativeIrradiance(pos.Elevation)
	}

	total := floats.Sum(relative[:])
	scale := 0.0
	if total > 0 {
		scale = dailyTotal * 1000.0 / total
	}
	floats.Scale(scale, relative[:])

	for h := range hours {
		hours[h].GHI = relative[h]
		hours[h].DNI = DirectFraction * relative[h]
		hours[h].DHI = DiffuseFraction * relative[h]
	}

	return hours, nil
}

// relativeIrradiance is an un-normalized clear-sky horizontal intensity for a sun
// at the given elevation (degrees).
func relativeIrradiance(elevation float64) float64 {
	if elevation <= 0 {
		return 0
	}
	sinEl := math.Sin(degToRad(elevation))
	airMass := 1.0 / sinEl
	clearSky := 1000.0 * math.Pow(0.7, math.Pow(airMass, 0.678))
	return clearSky * sinEl
}

// hourlyTemperature follows a cosine with its minimum at MinTemperatureHour
func hourlyTemperature(hour float64, p SynthesisParams) float64 {
	phase := 2 * math.Pi * (hour - p.MinTemperatureHour) / HoursPerDay
	return p.AverageTemperature - p.TemperatureAmplitude*math.Cos(phase)
}

// DailyTotal converts an hourly curve back to kWh/m²/day
func DailyTotal(hours [HoursPerDay]HourlyIrradiance) float64 {
	ghi := make([]float64, len(hours))
	for i, h := range hours {
		ghi[i] = h.GHI
	}
	return floats.Sum(ghi) / 1000.0
}
