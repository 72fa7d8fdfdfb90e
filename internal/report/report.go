// Package report assembles the full solar and shading picture for a configured site.
package report

import (
	"fmt"
	"time"

	"github.com/chrissnell/roofsolar/pkg/config"
	"github.com/chrissnell/roofsolar/pkg/shading"
	"github.com/chrissnell/roofsolar/pkg/solar"
)

// TiltAdvice is the recommended fixed orientation plus the monthly optimum
type TiltAdvice struct {
	Annual  float64     `json:"annual"`
	Azimuth float64     `json:"azimuth"`
	Monthly [12]float64 `json:"monthly"`
}

// SunNow is the sun as seen from the site at report time
type SunNow struct {
	Time     time.Time            `json:"time"`
	Position solar.Position       `json:"position"`
	ClearSky solar.ClearSky       `json:"clear_sky"`
	Daylight solar.DaylightWindow `json:"daylight"`
	Sunrise  string               `json:"sunrise,omitempty"`
	Sunset   string               `json:"sunset,omitempty"`
}

// SiteReport is everything the engine can say about one roof
type SiteReport struct {
	Site               string                 `json:"site"`
	Latitude           float64                `json:"latitude"`
	Longitude          float64                `json:"longitude"`
	Sun                SunNow                 `json:"sun"`
	Tilt               TiltAdvice             `json:"tilt"`
	ObstaclesEstimated bool                   `json:"obstacles_estimated"`
	Obstacles          []shading.Obstacle     `json:"obstacles"`
	Shading            *shading.Analysis      `json:"shading"`
	MonthlyProfiles    []solar.MonthlyProfile `json:"monthly_profiles,omitempty"`
	ShadedYield        *shading.ShadedYield   `json:"shaded_yield,omitempty"`
}

// SiteObstacles returns the surveyed obstacles, or an estimate from the site's
// classification when none were surveyed
func SiteObstacles(site config.SiteData) ([]shading.Obstacle, bool, error) {
	if len(site.Obstacles) > 0 {
		return site.Obstacles, false, nil
	}

	class, err := shading.ParseClassification(site.Classification)
	if err != nil {
		return nil, false, err
	}
	obstacles, err := shading.EstimateObstacles(class, site.BuildingHeight)
	if err != nil {
		return nil, false, err
	}
	return obstacles, true, nil
}

// siteClock is the site's own timezone, then the configured one, then the
// nominal zone of the site's longitude
func siteClock(site config.SiteData, ad config.AnalysisData) float64 {
	if site.TimezoneOffset == nil && ad.TimezoneOffset != nil {
		return *ad.TimezoneOffset
	}
	return site.Timezone()
}

// Build runs every calculation for site at time now. Analysis overrides come
// from ad; the site's own timezone replaces the configured one.
func Build(site config.SiteData, ad config.AnalysisData, now time.Time) (*SiteReport, error) {
	if err := site.Validate(); err != nil {
		return nil, err
	}

	r := &SiteReport{
		Site:      site.Name,
		Latitude:  site.Latitude,
		Longitude: site.Longitude,
	}

	tz := siteClock(site, ad)
	if err := r.fillSun(site, now, tz); err != nil {
		return nil, err
	}
	if err := r.fillTilt(site); err != nil {
		return nil, err
	}

	obstacles, estimated, err := SiteObstacles(site)
	if err != nil {
		return nil, err
	}
	r.Obstacles = obstacles
	r.ObstaclesEstimated = estimated

	params := ad.AnalysisParams()
	params.TimezoneOffset = &tz
	r.Shading, err = shading.AnalyzeAnnualShading(site.Latitude, site.Longitude, obstacles, site.Footprint(), params)
	if err != nil {
		return nil, fmt.Errorf("shading analysis: %w", err)
	}

	if len(site.MonthlyIrradiance) > 0 {
		synth := ad.SynthesisParams(site.Longitude)
		synth.TimezoneOffset = tz
		r.MonthlyProfiles, err = solar.MonthlyHourlyIrradiance(site.Latitude, site.Longitude, now.Year(), site.MonthlyIrradiance, synth)
		if err != nil {
			return nil, fmt.Errorf("monthly profiles: %w", err)
		}
	}

	if site.PVPotential != nil {
		y, err := shading.AdjustYield(*site.PVPotential, r.Shading)
		if err != nil {
			return nil, fmt.Errorf("shaded yield: %w", err)
		}
		r.ShadedYield = &y
	}

	return r, nil
}

func (r *SiteReport) fillSun(site config.SiteData, now time.Time, tz float64) error {
	pos, err := solar.CalculatePosition(site.Latitude, site.Longitude, now, tz)
	if err != nil {
		return err
	}
	day, err := solar.Daylight(site.Latitude, site.Longitude, now, tz)
	if err != nil {
		return err
	}

	r.Sun = SunNow{
		Time:     solar.ClockTime(now, tz),
		Position: pos,
		ClearSky: solar.ClearSkyIrradiance(pos, now, site.Altitude),
		Daylight: day,
		Sunrise:  solar.FormatClockHours(day.Sunrise),
		Sunset:   solar.FormatClockHours(day.Sunset),
	}
	return nil
}

func (r *SiteReport) fillTilt(site config.SiteData) error {
	var err error
	if r.Tilt.Annual, err = solar.OptimalTilt(site.Latitude); err != nil {
		return err
	}
	if r.Tilt.Azimuth, err = solar.OptimalAzimuth(site.Latitude); err != nil {
		return err
	}
	for m := 1; m <= 12; m++ {
		if r.Tilt.Monthly[m-1], err = solar.OptimalTiltForMonth(site.Latitude, m); err != nil {
			return err
		}
	}
	return nil
}
