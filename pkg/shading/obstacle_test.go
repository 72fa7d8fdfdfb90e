package shading

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/roofsolar/pkg/solar"
)

func TestObstacleValidate(t *testing.T) {
	valid := Obstacle{Category: CategoryTree, Height: 8, Distance: 5, Azimuth: 200, Width: 4}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(o *Obstacle)
		field  string
	}{
		{"zero height", func(o *Obstacle) { o.Height = 0 }, "height"},
		{"NaN height", func(o *Obstacle) { o.Height = math.NaN() }, "height"},
		{"negative distance", func(o *Obstacle) { o.Distance = -3 }, "distance"},
		{"infinite distance", func(o *Obstacle) { o.Distance = math.Inf(1) }, "distance"},
		{"negative azimuth", func(o *Obstacle) { o.Azimuth = -1 }, "azimuth"},
		{"azimuth of a full turn", func(o *Obstacle) { o.Azimuth = 360 }, "azimuth"},
		{"negative width", func(o *Obstacle) { o.Width = -0.5 }, "width"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valid
			tt.mutate(&o)

			err := o.Validate()
			require.ErrorIs(t, err, solar.ErrInvalidInput)

			var ie *solar.InputError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.field, ie.Field)
		})
	}
}

func TestValidateObstaclesReportsIndex(t *testing.T) {
	obstacles := []Obstacle{
		{Category: CategoryBuilding, Height: 10, Distance: 10, Azimuth: 180},
		{Category: CategoryTree, Height: 10, Distance: 0, Azimuth: 180},
	}

	err := ValidateObstacles(obstacles)
	require.ErrorIs(t, err, solar.ErrInvalidInput)
	assert.Contains(t, err.Error(), "obstacle 1")
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("TERRAIN")
	require.NoError(t, err)
	assert.Equal(t, CategoryTerrain, c)

	_, err = ParseCategory("cloud")
	assert.ErrorIs(t, err, solar.ErrInvalidInput)
}

func TestObstacleLabel(t *testing.T) {
	o := Obstacle{Category: CategoryBuilding, Height: 12, Distance: 8, Azimuth: 170}
	assert.Equal(t, "building (12 m high, 8 m away at 170°)", o.Label())

	o.Description = "church tower"
	assert.Equal(t, "church tower", o.Label())
}
