package solar

import (
	"fmt"
	"sort"
	"time"
)

// MonthlyIrradianceRecord is one month of the upstream solar database series
type MonthlyIrradianceRecord struct {
	Month       int     `json:"month" yaml:"month"`
	Irradiance  float64 `json:"irradiance" yaml:"irradiance"`   // average daily total, kWh/m²/day
	Temperature float64 `json:"temperature" yaml:"temperature"` // average, °C
}

// Validate checks the record against its documented ranges
func (r MonthlyIrradianceRecord) Validate() error {
	if r.Month < 1 || r.Month > 12 {
		return &InputError{Field: "month", Value: float64(r.Month), Constraint: "must be within [1, 12]"}
	}
	if err := CheckFinite("irradiance", r.Irradiance); err != nil {
		return err
	}
	if r.Irradiance < 0 {
		return &InputError{Field: "irradiance", Value: r.Irradiance, Constraint: "must be >= 0"}
	}
	return CheckFinite("temperature", r.Temperature)
}

// PVPotential is the optional yearly PV-system record from the solar database
type PVPotential struct {
	YearlyOutput     float64   `json:"yearly_output" yaml:"yearly_output"`   // kWh/kWp
	MonthlyOutput    []float64 `json:"monthly_output" yaml:"monthly_output"` // kWh/kWp, January first
	PerformanceRatio float64   `json:"performance_ratio" yaml:"performance_ratio"`
	OptimalTilt      float64   `json:"optimal_tilt" yaml:"optimal_tilt"`
	OptimalAzimuth   float64   `json:"optimal_azimuth" yaml:"optimal_azimuth"`
}

// Validate checks the record against its documented ranges
func (p PVPotential) Validate() error {
	if err := CheckFinite("yearly_output", p.YearlyOutput); err != nil {
		return err
	}
	if p.YearlyOutput < 0 {
		return &InputError{Field: "yearly_output", Value: p.YearlyOutput, Constraint: "must be >= 0"}
	}
	if len(p.MonthlyOutput) != 0 && len(p.MonthlyOutput) != 12 {
		return &InputError{Field: "monthly_output", Value: float64(len(p.MonthlyOutput)), Constraint: "must hold 12 months"}
	}
	for _, v := range p.MonthlyOutput {
		if err := CheckFinite("monthly_output", v); err != nil {
			return err
		}
	}
	return CheckRange("performance_ratio", p.PerformanceRatio, 0, 1)
}

// MonthlyProfile is the synthesized representative day for one calendar month
type MonthlyProfile struct {
	Month    int                           `json:"month"`
	Date     time.Time                     `json:"date"`
	Daylight DaylightWindow                `json:"daylight"`
	Hours    [HoursPerDay]HourlyIrradiance `json:"hours"`
}

// MonthlyHourlyIrradiance synthesizes the 15th of each supplied month of year,
// taking the daily total and mean temperature from the record. The output is
// ordered by month; duplicate months are rejected.
func MonthlyHourlyIrradiance(latitude, longitude float64, year int, records []MonthlyIrradianceRecord, params SynthesisParams) ([]MonthlyProfile, error) {
	sorted := make([]MonthlyIrradianceRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Month < sorted[j].Month })

	profiles := make([]MonthlyProfile, 0, len(sorted))
	for i, rec := range sorted {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("month record %d: %w", rec.Month, err)
		}
		if i > 0 && sorted[i-1].Month == rec.Month {
			return nil, &InputError{Field: "month", Value: float64(rec.Month), Constraint: "duplicate month"}
		}

		p := params
		p.AverageTemperature = rec.Temperature

		date := time.Date(year, time.Month(rec.Month), 15, 12, 0, 0, 0, FixedZone(p.TimezoneOffset))

		hours, err := SynthesizeHourlyIrradiance(latitude, longitude, date, rec.Irradiance, p)
		if err != nil {
			return nil, err
		}
		daylight, err := Daylight(latitude, longitude, date, p.TimezoneOffset)
		if err != nil {
			return nil, err
		}

		profiles = append(profiles, MonthlyProfile{
			Month:    rec.Month,
			Date:     date,
			Daylight: daylight,
			Hours:    hours,
		})
	}

	return profiles, nil
}
