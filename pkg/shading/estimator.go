package shading

import (
	"fmt"
	"strings"

	"github.com/chrissnell/roofsolar/pkg/solar"
)

// Classification is the coarse surroundings of a site as reported by geocoding
type Classification string

const (
	Urban    Classification = "urban"
	Suburban Classification = "suburban"
	Rural    Classification = "rural"
)

// ParseClassification accepts a classification name in any letter case
func ParseClassification(s string) (Classification, error) {
	switch c := Classification(strings.ToLower(strings.TrimSpace(s))); c {
	case Urban, Suburban, Rural:
		return c, nil
	default:
		return "", fmt.Errorf("unknown location classification %q: %w", s, solar.ErrInvalidInput)
	}
}

// obstacleTemplate heights are given for the classification's reference
// building height and scale linearly with the caller's estimate
type obstacleTemplate struct {
	category    Category
	height      float64
	distance    float64
	azimuth     float64
	width       float64
	description string
}

var referenceBuildingHeight = map[Classification]float64{
	Urban:    15,
	Suburban: 8,
	Rural:    6,
}

var obstacleTemplates = map[Classification][]obstacleTemplate{
	Urban: {
		{CategoryBuilding, 15, 12, 180, 20, "apartment block to the south"},
		{CategoryBuilding, 12, 10, 100, 15, "neighbouring building to the east"},
		{CategoryBuilding, 12, 10, 260, 15, "neighbouring building to the west"},
		{CategoryTree, 9, 6, 200, 5, "street tree"},
		{CategoryStructure, 3, 4, 150, 1, "chimney stack"},
	},
	Suburban: {
		{CategoryBuilding, 8, 10, 170, 12, "neighbouring house"},
		{CategoryTree, 12, 8, 210, 6, "garden tree"},
		{CategoryBuilding, 7, 8, 90, 10, "house to the east"},
		{CategoryStructure, 3, 5, 240, 4, "garage"},
	},
	Rural: {
		{CategoryTree, 15, 20, 180, 30, "tree line"},
		{CategoryBuilding, 6, 25, 240, 15, "farm building"},
		{CategoryTerrain, 40, 400, 160, 800, "ridge on the horizon"},
	},
}

// EstimateObstacles returns a canned, deterministic obstacle set for sites
// without a survey. buildingHeight is the typical nearby building height in
// meters; 0 uses the classification's reference height. The result is a
// fallback, not a measurement.
func EstimateObstacles(class Classification, buildingHeight float64) ([]Obstacle, error) {
	templates, ok := obstacleTemplates[class]
	if !ok {
		return nil, fmt.Errorf("unknown location classification %q: %w", class, solar.ErrInvalidInput)
	}
	if err := solar.CheckFinite("building_height", buildingHeight); err != nil {
		return nil, err
	}
	if buildingHeight < 0 {
		return nil, &solar.InputError{Field: "building_height", Value: buildingHeight, Constraint: "must be >= 0"}
	}

	reference := referenceBuildingHeight[class]
	scale := 1.0
	if buildingHeight > 0 {
		scale = buildingHeight / reference
	}

	obstacles := make([]Obstacle, len(templates))
	for i, t := range templates {
		obstacles[i] = Obstacle{
			Category:    t.category,
			Height:      t.height * scale,
			Distance:    t.distance,
			Azimuth:     t.azimuth,
			Width:       t.width,
			Description: fmt.Sprintf("estimated %s", t.description),
		}
	}
	return obstacles, nil
}
