// Package shading estimates how nearby obstacles reduce a roof's usable sun.
//
// Obstacles are modelled as single shadow cones: the shadow of an obstacle of
// height h starts at the obstacle, points directly away from the sun and is
// h/tan(elevation) long. A roof point is either inside a cone or not; there is
// no penumbra and no partial shading of a point.
package shading

import (
	"fmt"
	"strings"

	"github.com/chrissnell/roofsolar/pkg/solar"
)

// Category classifies an obstacle for reporting and recommendations
type Category string

const (
	CategoryBuilding  Category = "building"
	CategoryTree      Category = "tree"
	CategoryTerrain   Category = "terrain"
	CategoryStructure Category = "structure"
)

// ParseCategory accepts a category name in any letter case
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryBuilding, CategoryTree, CategoryTerrain, CategoryStructure:
		return c, nil
	default:
		return "", fmt.Errorf("unknown obstacle category %q: %w", s, solar.ErrInvalidInput)
	}
}

// Obstacle is something near the roof that can cast a shadow on it.
// Distance is measured from the roof edge along Azimuth (degrees from north,
// 0 to 360 inclusive; 360 is north like 0).
// Width is the obstacle's extent across the line of sight; 0 means unknown.
type Obstacle struct {
	Category    Category `json:"category" yaml:"category"`
	Height      float64  `json:"height" yaml:"height"`
	Distance    float64  `json:"distance" yaml:"distance"`
	Azimuth     float64  `json:"azimuth" yaml:"azimuth"`
	Width       float64  `json:"width,omitempty" yaml:"width,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// Validate rejects obstacles that cannot be modelled. Nothing is clamped.
func (o Obstacle) Validate() error {
	if _, err := ParseCategory(string(o.Category)); err != nil {
		return err
	}
	if err := solar.CheckPositive("height", o.Height); err != nil {
		return err
	}
	if err := solar.CheckPositive("distance", o.Distance); err != nil {
		return err
	}
	if err := solar.CheckFinite("azimuth", o.Azimuth); err != nil {
		return err
	}
	if err := solar.CheckRange("azimuth", o.Azimuth, 0, 360); err != nil {
		return err
	}
	if err := solar.CheckFinite("width", o.Width); err != nil {
		return err
	}
	if o.Width < 0 {
		return &solar.InputError{Field: "width", Value: o.Width, Constraint: "must be >= 0"}
	}
	return nil
}

// bearing is Azimuth folded into [0, 360)
func (o Obstacle) bearing() float64 {
	return solar.NormalizeAzimuth(o.Azimuth)
}

// Label is the description if one was given, otherwise a generated one
func (o Obstacle) Label() string {
	if o.Description != "" {
		return o.Description
	}
	return fmt.Sprintf("%s (%.0f m high, %.0f m away at %.0f°)", o.Category, o.Height, o.Distance, o.Azimuth)
}

// ValidateObstacles validates every obstacle and reports the index of the first bad one
func ValidateObstacles(obstacles []Obstacle) error {
	for i, o := range obstacles {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("obstacle %d: %w", i, err)
		}
	}
	return nil
}
