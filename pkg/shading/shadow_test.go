package shading

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chrissnell/roofsolar/pkg/solar"
)

func southBuilding(height float64) Obstacle {
	return Obstacle{Category: CategoryBuilding, Height: height, Distance: 10, Azimuth: 180}
}

func TestShadowLengthGrowsWithHeight(t *testing.T) {
	for _, elevation := range []float64{1, 10, 25, 45, 70, 89} {
		prev := 0.0
		for h := 0.5; h <= 50; h += 0.5 {
			l := ShadowLength(h, elevation)
			assert.Greater(t, l, prev, "elevation %.0f°, height %.1f m", elevation, h)
			prev = l
		}
	}
}

func TestShadowLengthAtHorizon(t *testing.T) {
	assert.Greater(t, ShadowLength(10, 1e-4), 1e6, "a grazing sun casts an enormous shadow")
	assert.True(t, math.IsInf(ShadowLength(10, 0), 1))
	assert.True(t, math.IsInf(ShadowLength(10, -12), 1))
	assert.InDelta(t, 10.0, ShadowLength(10, 45), 1e-9)
}

func TestIsPointInShadowAtNight(t *testing.T) {
	far := RoofPoint{Distance: 500, Azimuth: 37}
	for _, elevation := range []float64{0, -0.1, -45, -90} {
		sun := solar.Position{Elevation: elevation, Azimuth: 200, Zenith: 90 - elevation}
		assert.True(t, IsPointInShadow(far, southBuilding(1), sun), "elevation %.1f°", elevation)
	}
}

func TestIsPointInShadow(t *testing.T) {
	noonSun := solar.Position{Elevation: 30, Azimuth: 180, Zenith: 60}

	tests := []struct {
		name     string
		point    RoofPoint
		obstacle Obstacle
		sun      solar.Position
		expected bool
	}{
		{
			name:     "point behind a tall obstacle",
			point:    RoofPoint{Distance: 0, Azimuth: 0},
			obstacle: southBuilding(15), // shadow reaches 26 m
			sun:      noonSun,
			expected: true,
		},
		{
			name:     "shadow too short to reach",
			point:    RoofPoint{Distance: 0, Azimuth: 0},
			obstacle: southBuilding(3), // shadow reaches 5.2 m
			sun:      noonSun,
			expected: false,
		},
		{
			name:     "point on the sunward side of the obstacle",
			point:    RoofPoint{Distance: 15, Azimuth: 180},
			obstacle: southBuilding(15),
			sun:      noonSun,
			expected: false,
		},
		{
			name:     "point outside a narrow cone",
			point:    RoofPoint{Distance: 5, Azimuth: 90},
			obstacle: southBuilding(15),
			sun:      noonSun,
			expected: false,
		},
		{
			name:  "same point inside a wide obstacle's cone",
			point: RoofPoint{Distance: 5, Azimuth: 90},
			obstacle: Obstacle{
				Category: CategoryBuilding, Height: 15, Distance: 10, Azimuth: 180, Width: 30,
			},
			sun:      noonSun,
			expected: true,
		},
		{
			name:     "sun behind the roof puts the shadow elsewhere",
			point:    RoofPoint{Distance: 0, Azimuth: 0},
			obstacle: southBuilding(15),
			sun:      solar.Position{Elevation: 30, Azimuth: 0, Zenith: 60},
			expected: false,
		},
		{
			name:     "low sun stretches a short obstacle's shadow",
			point:    RoofPoint{Distance: 0, Azimuth: 0},
			obstacle: southBuilding(3),
			sun:      solar.Position{Elevation: 5, Azimuth: 180, Zenith: 85},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsPointInShadow(tt.point, tt.obstacle, tt.sun))
		})
	}
}

func TestHalfAngle(t *testing.T) {
	assert.Equal(t, DefaultHalfAngle, HalfAngle(southBuilding(10)))

	wide := Obstacle{Category: CategoryBuilding, Height: 10, Distance: 10, Azimuth: 180, Width: 20}
	assert.InDelta(t, 45.0, HalfAngle(wide), 1e-9)
}
