package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/roofsolar/pkg/config"
	"github.com/chrissnell/roofsolar/pkg/shading"
	"github.com/chrissnell/roofsolar/pkg/solar"
)

var reportTime = time.Date(2024, time.June, 21, 10, 0, 0, 0, time.UTC)

func ptr(v float64) *float64 { return &v }

func surveyedSite() config.SiteData {
	monthly := make([]float64, 12)
	for i := range monthly {
		monthly[i] = 80
	}
	return config.SiteData{
		Name:           "villa",
		Latitude:       55.6,
		Longitude:      12.6,
		TimezoneOffset: ptr(2.0),
		RoofWidth:      12,
		RoofDepth:      8,
		Obstacles: []shading.Obstacle{
			{Category: shading.CategoryBuilding, Height: 15, Distance: 10, Azimuth: 180, Width: 12},
		},
		MonthlyIrradiance: []solar.MonthlyIrradianceRecord{
			{Month: 6, Irradiance: 5.4, Temperature: 16.5},
			{Month: 12, Irradiance: 0.4, Temperature: 1.5},
		},
		PVPotential: &solar.PVPotential{YearlyOutput: 960, MonthlyOutput: monthly, PerformanceRatio: 0.8},
	}
}

func TestBuildSurveyedSite(t *testing.T) {
	r, err := Build(surveyedSite(), config.AnalysisData{}, reportTime)
	require.NoError(t, err)

	assert.Equal(t, "villa", r.Site)
	assert.False(t, r.ObstaclesEstimated)
	assert.Len(t, r.Obstacles, 1)

	assert.True(t, r.Sun.Position.AboveHorizon())
	assert.Greater(t, r.Sun.ClearSky.GHI, 0.0)
	assert.NotEmpty(t, r.Sun.Sunrise)
	assert.NotEmpty(t, r.Sun.Sunset)

	assert.InDelta(t, 55.6, r.Tilt.Annual, 1e-9)
	assert.Equal(t, 180.0, r.Tilt.Azimuth)
	assert.Greater(t, r.Tilt.Monthly[11], r.Tilt.Monthly[5], "December tilt should be steeper than June")

	require.NotNil(t, r.Shading)
	assert.Equal(t, 36, r.Shading.Samples)

	require.Len(t, r.MonthlyProfiles, 2)
	assert.Equal(t, 6, r.MonthlyProfiles[0].Month)
	assert.InDelta(t, 5.4, solar.DailyTotal(r.MonthlyProfiles[0].Hours), 1e-6)

	require.NotNil(t, r.ShadedYield)
	assert.LessOrEqual(t, r.ShadedYield.YearlyOutput, 960.0)
	assert.InDelta(t, 960.0, r.ShadedYield.YearlyOutput+r.ShadedYield.YearlyLoss, 1e-9)
}

func TestBuildEstimatesObstacles(t *testing.T) {
	site := config.SiteData{
		Name:           "farm",
		Latitude:       56.2,
		Longitude:      9.5,
		RoofWidth:      20,
		RoofDepth:      10,
		Classification: "rural",
	}

	r, err := Build(site, config.AnalysisData{}, reportTime)
	require.NoError(t, err)

	assert.True(t, r.ObstaclesEstimated)
	assert.Len(t, r.Obstacles, 3)
	assert.Empty(t, r.MonthlyProfiles)
	assert.Nil(t, r.ShadedYield)
}

func TestBuildDefaultsToLongitudeClock(t *testing.T) {
	site := config.SiteData{
		Name:      "harbour",
		Latitude:  -33.87,
		Longitude: 151.21,
		RoofWidth: 20,
		RoofDepth: 20,
		Obstacles: []shading.Obstacle{
			{Category: shading.CategoryBuilding, Height: 30, Distance: 3, Azimuth: 0, Width: 30},
		},
	}

	r, err := Build(site, config.AnalysisData{}, reportTime)
	require.NoError(t, err)

	_, offset := r.Sun.Time.Zone()
	assert.Equal(t, 10*3600, offset)
	assert.Equal(t, 36, r.Shading.UsableSamples)
	assert.False(t, r.Shading.NotAssessed)
	assert.Greater(t, r.Shading.AnnualLoss, 20.0)

	// a configured timezone applies to sites without their own
	r, err = Build(site, config.AnalysisData{TimezoneOffset: ptr(0)}, reportTime)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Shading.UsableSamples)
	assert.True(t, r.Shading.NotAssessed)
}

func TestBuildAppliesAnalysisOverrides(t *testing.T) {
	cell := 4.0
	r, err := Build(surveyedSite(), config.AnalysisData{CellSize: &cell}, reportTime)
	require.NoError(t, err)
	assert.Equal(t, 6, r.Shading.GridCells) // 3 x 2 cells of 4 m on a 12 x 8 roof
}

func TestBuildRejectsInvalidSite(t *testing.T) {
	site := surveyedSite()
	site.RoofDepth = 0

	_, err := Build(site, config.AnalysisData{}, reportTime)
	assert.ErrorIs(t, err, solar.ErrInvalidInput)
}
