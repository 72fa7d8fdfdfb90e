package shading

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/chrissnell/roofsolar/pkg/solar"
)

// Season names a quarter of the year
type Season string

const (
	Winter Season = "winter"
	Spring Season = "spring"
	Summer Season = "summer"
	Autumn Season = "autumn"
)

// Seasons lists the seasons in report order
var Seasons = []Season{Winter, Spring, Summer, Autumn}

var northernSeasonMonths = map[Season][3]time.Month{
	Winter: {time.December, time.January, time.February},
	Spring: {time.March, time.April, time.May},
	Summer: {time.June, time.July, time.August},
	Autumn: {time.September, time.October, time.November},
}

// SeasonMonths returns the three months of a season. South of the equator the
// seasons are shifted by six months.
func SeasonMonths(latitude float64, s Season) [3]time.Month {
	months := northernSeasonMonths[s]
	if latitude < 0 {
		for i, m := range months {
			months[i] = (m+5)%12 + 1
		}
	}
	return months
}

// SeasonOf returns the season a calendar month belongs to at the given latitude
func SeasonOf(latitude float64, month time.Month) Season {
	for _, s := range Seasons {
		for _, m := range SeasonMonths(latitude, s) {
			if m == month {
				return s
			}
		}
	}
	return ""
}

// AnalysisParams holds every tunable constant of the annual analysis
type AnalysisParams struct {
	// CellSize is the roof grid resolution, meters
	CellSize float64

	// MinElevation excludes samples with the sun this low or lower, degrees
	MinElevation float64

	// SampleDay is the day of each month that is sampled
	SampleDay int

	// SampleHours are the clock hours sampled on each SampleDay
	SampleHours []int

	// Year is the calendar year the samples are taken in
	Year int

	// TimezoneOffset is the clock (hours from UTC) SampleHours are read on. Nil
	// reads them on the site's nominal zone, solar.LongitudeTimezone(longitude).
	TimezoneOffset *float64

	// CriticalLoss marks a sample as a critical period above this shading percentage
	CriticalLoss float64

	// CauseSector is how far (degrees) an obstacle's bearing may be from the sun's
	// bearing and still be blamed for a critical period
	CauseSector float64

	// HighAnnualLoss triggers the relocate/remove recommendation, percent
	HighAnnualLoss float64

	// WinterSummerRatio triggers the steeper-tilt recommendation
	WinterSummerRatio float64

	// TallTreeHeight triggers the pruning recommendation, meters
	TallTreeHeight float64

	// BuildingProximityFactor triggers elevated mounting when a building is closer
	// than this many times its own height
	BuildingProximityFactor float64

	// ExcellentSiteLoss reports the site as excellent below this annual loss, percent
	ExcellentSiteLoss float64
}

// DefaultAnalysisParams samples the 15th of every month at 09:00, 12:00 and
// 15:00 on the site's nominal clock and a 2 m grid, ignoring sun elevations of 10° or less
func DefaultAnalysisParams() AnalysisParams {
	return AnalysisParams{
		CellSize:                2.0,
		MinElevation:            10.0,
		SampleDay:               15,
		SampleHours:             []int{9, 12, 15},
		Year:                    2024,
		CriticalLoss:            30.0,
		CauseSector:             90.0,
		HighAnnualLoss:          20.0,
		WinterSummerRatio:       2.0,
		TallTreeHeight:          10.0,
		BuildingProximityFactor: 2.0,
		ExcellentSiteLoss:       5.0,
	}
}

// Clock is the offset SampleHours are read on for a site at longitude
func (p AnalysisParams) Clock(longitude float64) float64 {
	if p.TimezoneOffset != nil {
		return *p.TimezoneOffset
	}
	return solar.LongitudeTimezone(longitude)
}

// Validate checks that the parameters describe a usable sample plan
func (p AnalysisParams) Validate() error {
	if err := solar.CheckPositive("cell_size", p.CellSize); err != nil {
		return err
	}
	if err := solar.CheckRange("min_elevation", p.MinElevation, -90, 90); err != nil {
		return err
	}
	if p.SampleDay < 1 || p.SampleDay > 28 {
		return &solar.InputError{Field: "sample_day", Value: float64(p.SampleDay), Constraint: "must be within [1, 28]"}
	}
	if len(p.SampleHours) == 0 {
		return &solar.InputError{Field: "sample_hours", Constraint: "must not be empty"}
	}
	for _, h := range p.SampleHours {
		if h < 0 || h > 23 {
			return &solar.InputError{Field: "sample_hours", Value: float64(h), Constraint: "must be within [0, 23]"}
		}
	}
	if p.TimezoneOffset != nil {
		if err := solar.CheckRange("timezone", *p.TimezoneOffset, -12, 14); err != nil {
			return err
		}
	}
	if err := solar.CheckRange("critical_loss", p.CriticalLoss, 0, 100); err != nil {
		return err
	}
	return solar.CheckRange("cause_sector", p.CauseSector, 0, 180)
}

// CriticalPeriod is a sampled moment with more shading than AnalysisParams.CriticalLoss
type CriticalPeriod struct {
	Time         string  `json:"time"`
	Month        int     `json:"month"`
	Season       Season  `json:"season"`
	Loss         float64 `json:"loss"`
	Cause        string  `json:"cause"`
	SunElevation float64 `json:"sun_elevation"`
	SunAzimuth   float64 `json:"sun_azimuth"`
}

// Analysis is the annual shading report for one roof
type Analysis struct {
	Latitude        float64            `json:"latitude"`
	Longitude       float64            `json:"longitude"`
	AnnualLoss      float64            `json:"annual_shading_loss"`
	SeasonalLosses  map[Season]float64 `json:"seasonal_losses"`
	CriticalPeriods []CriticalPeriod   `json:"critical_periods"`
	Recommendations []string           `json:"recommendations"`
	Samples         int                `json:"samples"`
	UsableSamples   int                `json:"usable_samples"`
	GridCells       int                `json:"grid_cells"`

	// NotAssessed is set when no sample had the sun high enough to count, so
	// the losses say nothing about the roof
	NotAssessed bool `json:"not_assessed,omitempty"`
}

// AnalyzeAnnualShading samples the sun through the year and reports which share
// of the roof the obstacles shade. Each season is sampled on SampleDay of its
// three months at each of SampleHours; samples with the sun at or below
// MinElevation are skipped. Losses are means over the usable samples and are 0
// for a season without any.
func AnalyzeAnnualShading(latitude, longitude float64, obstacles []Obstacle, roof Footprint, params AnalysisParams) (*Analysis, error) {
	if err := solar.CheckLocation(latitude, longitude); err != nil {
		return nil, err
	}
	if err := roof.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateObstacles(obstacles); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	grid := newRoofGrid(roof, params.CellSize, obstacles)
	tz := params.Clock(longitude)
	zone := solar.FixedZone(tz)

	a := &Analysis{
		Latitude:        latitude,
		Longitude:       longitude,
		SeasonalLosses:  make(map[Season]float64, len(Seasons)),
		CriticalPeriods: []CriticalPeriod{},
		GridCells:       grid.cells,
	}

	var all []float64
	for _, season := range Seasons {
		var seasonal []float64

		for _, month := range SeasonMonths(latitude, season) {
			for _, hour := range params.SampleHours {
				a.Samples++

				ts := time.Date(params.Year, month, params.SampleDay, hour, 0, 0, 0, zone)
				sun, err := solar.CalculatePosition(latitude, longitude, ts, tz)
				if err != nil {
					return nil, fmt.Errorf("sun position for %s: %w", ts.Format(time.RFC3339), err)
				}
				if sun.Elevation <= params.MinElevation {
					continue
				}

				loss := grid.shadedPercent(obstacles, sun)
				seasonal = append(seasonal, loss)

				if loss > params.CriticalLoss {
					a.CriticalPeriods = append(a.CriticalPeriods, CriticalPeriod{
						Time:         fmt.Sprintf("%02d:00", hour),
						Month:        int(month),
						Season:       season,
						Loss:         loss,
						Cause:        probableCause(obstacles, sun, params.CauseSector),
						SunElevation: sun.Elevation,
						SunAzimuth:   sun.Azimuth,
					})
				}
			}
		}

		a.SeasonalLosses[season] = mean(seasonal)
		all = append(all, seasonal...)
	}

	a.UsableSamples = len(all)
	a.NotAssessed = a.UsableSamples == 0
	a.AnnualLoss = mean(all)
	a.Recommendations = Recommend(a, obstacles, params)

	return a, nil
}

// probableCause names the obstacle on the sun's side of the roof that subtends
// the steepest angle (largest height/distance)
func probableCause(obstacles []Obstacle, sun solar.Position, sector float64) string {
	best := -1
	bestRatio := 0.0
	for i, o := range obstacles {
		if solar.AngularDistance(o.Azimuth, sun.Azimuth) > sector {
			continue
		}
		if ratio := o.Height / o.Distance; best < 0 || ratio > bestRatio {
			best, bestRatio = i, ratio
		}
	}
	if best < 0 {
		return "unidentified obstacle"
	}
	return obstacles[best].Label()
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}
