package shading

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/roofsolar/pkg/solar"
)

const (
	copenhagenLat = 55.6
	copenhagenLng = 12.6
)

var squareRoof = Footprint{Width: 20, Depth: 20}

func containsRecommendation(recs []string, fragment string) bool {
	for _, r := range recs {
		if strings.Contains(r, fragment) {
			return true
		}
	}
	return false
}

func TestAnalyzeAnnualShadingNoObstacles(t *testing.T) {
	a, err := AnalyzeAnnualShading(copenhagenLat, copenhagenLng, nil, squareRoof, DefaultAnalysisParams())
	require.NoError(t, err)

	assert.Equal(t, 0.0, a.AnnualLoss)
	assert.Empty(t, a.CriticalPeriods)
	for _, s := range Seasons {
		assert.Equal(t, 0.0, a.SeasonalLosses[s], "season %s", s)
	}
	assert.Equal(t, 36, a.Samples)
	assert.Equal(t, 100, a.GridCells)
	assert.Greater(t, a.UsableSamples, 0)
	assert.True(t, containsRecommendation(a.Recommendations, "excellent site"), "recommendations: %v", a.Recommendations)
}

func TestAnalyzeAnnualShadingSouthBuilding(t *testing.T) {
	obstacles := []Obstacle{southBuilding(15)}

	a, err := AnalyzeAnnualShading(copenhagenLat, copenhagenLng, obstacles, squareRoof, DefaultAnalysisParams())
	require.NoError(t, err)

	winter, summer := a.SeasonalLosses[Winter], a.SeasonalLosses[Summer]
	assert.Greater(t, winter, 0.0)
	assert.Greater(t, winter, summer, "low winter sun should lengthen the shadow of a south-side building")
	assert.Greater(t, a.AnnualLoss, 0.0)
	assert.LessOrEqual(t, a.AnnualLoss, 100.0)

	assert.True(t, containsRecommendation(a.Recommendations, "steeper panel tilt"), "recommendations: %v", a.Recommendations)
	assert.True(t, containsRecommendation(a.Recommendations, "elevated mounting"), "recommendations: %v", a.Recommendations)
}

func TestAnalyzeAnnualShadingSouthernHemisphere(t *testing.T) {
	// Mirror of the Copenhagen case: the building stands to the north
	obstacles := []Obstacle{{Category: CategoryBuilding, Height: 15, Distance: 10, Azimuth: 0}}

	a, err := AnalyzeAnnualShading(-copenhagenLat, copenhagenLng, obstacles, squareRoof, DefaultAnalysisParams())
	require.NoError(t, err)

	assert.Greater(t, a.SeasonalLosses[Winter], a.SeasonalLosses[Summer])
}

func TestAnalyzeAnnualShadingCriticalPeriods(t *testing.T) {
	wide := Obstacle{
		Category:    CategoryBuilding,
		Height:      15,
		Distance:    10,
		Azimuth:     180,
		Width:       20,
		Description: "office block",
	}

	a, err := AnalyzeAnnualShading(copenhagenLat, copenhagenLng, []Obstacle{wide}, squareRoof, DefaultAnalysisParams())
	require.NoError(t, err)

	require.NotEmpty(t, a.CriticalPeriods)
	for _, cp := range a.CriticalPeriods {
		assert.Greater(t, cp.Loss, 30.0)
		assert.Equal(t, "office block", cp.Cause)
		assert.Contains(t, []string{"09:00", "12:00", "15:00"}, cp.Time)
		assert.Equal(t, SeasonOf(copenhagenLat, time.Month(cp.Month)), cp.Season)
	}

	assert.Greater(t, a.AnnualLoss, 20.0)
	assert.True(t, containsRecommendation(a.Recommendations, "less shaded part of the roof"), "recommendations: %v", a.Recommendations)
	assert.False(t, containsRecommendation(a.Recommendations, "excellent site"))
}

func TestAnalyzeAnnualShadingLossBounds(t *testing.T) {
	for _, class := range []Classification{Urban, Suburban, Rural} {
		for _, height := range []float64{0, 4, 40} {
			obstacles, err := EstimateObstacles(class, height)
			require.NoError(t, err)

			a, err := AnalyzeAnnualShading(copenhagenLat, copenhagenLng, obstacles, squareRoof, DefaultAnalysisParams())
			require.NoError(t, err)

			assert.GreaterOrEqual(t, a.AnnualLoss, 0.0, "%s/%v", class, height)
			assert.LessOrEqual(t, a.AnnualLoss, 100.0, "%s/%v", class, height)
			for s, loss := range a.SeasonalLosses {
				assert.GreaterOrEqual(t, loss, 0.0, "%s/%v %s", class, height, s)
				assert.LessOrEqual(t, loss, 100.0, "%s/%v %s", class, height, s)
			}
		}
	}
}

func TestAnalyzeAnnualShadingDefaultsToLongitudeClock(t *testing.T) {
	// a tall block just north of a Sydney roof
	obstacles := []Obstacle{{Category: CategoryBuilding, Height: 30, Distance: 3, Azimuth: 0, Width: 30, Description: "tower"}}

	a, err := AnalyzeAnnualShading(-33.87, 151.21, obstacles, squareRoof, DefaultAnalysisParams())
	require.NoError(t, err)
	assert.Equal(t, 36, a.UsableSamples)
	assert.False(t, a.NotAssessed)
	assert.Greater(t, a.AnnualLoss, 20.0)
	assert.False(t, containsRecommendation(a.Recommendations, "excellent site"), "recommendations: %v", a.Recommendations)

	explicit := DefaultAnalysisParams()
	tz := 10.0
	explicit.TimezoneOffset = &tz
	b, err := AnalyzeAnnualShading(-33.87, 151.21, obstacles, squareRoof, explicit)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAnalyzeAnnualShadingNoUsableSamples(t *testing.T) {
	// Sydney at 09:00, 12:00 and 15:00 UTC is night, so nothing is sampled
	obstacles := []Obstacle{{Category: CategoryBuilding, Height: 30, Distance: 3, Azimuth: 0, Width: 30}}
	params := DefaultAnalysisParams()
	utc := 0.0
	params.TimezoneOffset = &utc

	a, err := AnalyzeAnnualShading(-33.87, 151.21, obstacles, squareRoof, params)
	require.NoError(t, err)
	assert.Equal(t, 0, a.UsableSamples)
	assert.Equal(t, 0.0, a.AnnualLoss)
	assert.True(t, a.NotAssessed)
	assert.False(t, containsRecommendation(a.Recommendations, "excellent site"), "recommendations: %v", a.Recommendations)
	assert.True(t, containsRecommendation(a.Recommendations, "could not be assessed"), "recommendations: %v", a.Recommendations)
	// obstacle rules still apply
	assert.True(t, containsRecommendation(a.Recommendations, "elevated mounting"), "recommendations: %v", a.Recommendations)
}

func TestAnalyzeAnnualShadingAzimuth360IsNorth(t *testing.T) {
	north := Obstacle{Category: CategoryBuilding, Height: 12, Distance: 4, Azimuth: 0, Width: 10, Description: "north block"}
	wrapped := north
	wrapped.Azimuth = 360

	require.NoError(t, wrapped.Validate())

	lat, lng := -33.87, 151.21
	a, err := AnalyzeAnnualShading(lat, lng, []Obstacle{north}, squareRoof, DefaultAnalysisParams())
	require.NoError(t, err)
	b, err := AnalyzeAnnualShading(lat, lng, []Obstacle{wrapped}, squareRoof, DefaultAnalysisParams())
	require.NoError(t, err)
	assert.Equal(t, a.AnnualLoss, b.AnnualLoss)
	assert.Equal(t, a.SeasonalLosses, b.SeasonalLosses)
	assert.Greater(t, a.AnnualLoss, 0.0)
}

func TestAnalyzeAnnualShadingRecommendsPruning(t *testing.T) {
	tree := Obstacle{Category: CategoryTree, Height: 14, Distance: 6, Azimuth: 200, Width: 6, Description: "old oak"}

	a, err := AnalyzeAnnualShading(copenhagenLat, copenhagenLng, []Obstacle{tree}, squareRoof, DefaultAnalysisParams())
	require.NoError(t, err)
	assert.True(t, containsRecommendation(a.Recommendations, "Consider pruning old oak"), "recommendations: %v", a.Recommendations)
}

func TestAnalyzeAnnualShadingInvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		latitude  float64
		obstacles []Obstacle
		roof      Footprint
	}{
		{
			name:      "obstacle at zero distance",
			latitude:  copenhagenLat,
			obstacles: []Obstacle{{Category: CategoryBuilding, Height: 10, Distance: 0, Azimuth: 180}},
			roof:      squareRoof,
		},
		{
			name:      "obstacle with negative height",
			latitude:  copenhagenLat,
			obstacles: []Obstacle{{Category: CategoryTree, Height: -2, Distance: 5, Azimuth: 180}},
			roof:      squareRoof,
		},
		{
			name:      "unknown category",
			latitude:  copenhagenLat,
			obstacles: []Obstacle{{Category: "billboard", Height: 2, Distance: 5, Azimuth: 180}},
			roof:      squareRoof,
		},
		{
			name:      "azimuth above 360",
			latitude:  copenhagenLat,
			obstacles: []Obstacle{{Category: CategoryTree, Height: 2, Distance: 5, Azimuth: 360.5}},
			roof:      squareRoof,
		},
		{
			name:     "roof without depth",
			latitude: copenhagenLat,
			roof:     Footprint{Width: 10},
		},
		{
			name:     "latitude out of range",
			latitude: 95,
			roof:     squareRoof,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AnalyzeAnnualShading(tt.latitude, copenhagenLng, tt.obstacles, tt.roof, DefaultAnalysisParams())
			assert.ErrorIs(t, err, solar.ErrInvalidInput)
		})
	}
}

func TestSeasonMonths(t *testing.T) {
	assert.Equal(t, [3]time.Month{time.December, time.January, time.February}, SeasonMonths(55.6, Winter))
	assert.Equal(t, [3]time.Month{time.June, time.July, time.August}, SeasonMonths(-33.9, Winter))
	assert.Equal(t, [3]time.Month{time.December, time.January, time.February}, SeasonMonths(-33.9, Summer))
	assert.Equal(t, Autumn, SeasonOf(-33.9, time.April))
	assert.Equal(t, Spring, SeasonOf(55.6, time.April))
}
