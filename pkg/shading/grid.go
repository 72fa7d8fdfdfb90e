package shading

import (
	"math"

	"github.com/chrissnell/roofsolar/pkg/solar"
)

// Footprint is a rectangular roof outline centred on the reference point, Width
// running east-west and Depth north-south, in meters
type Footprint struct {
	Width float64 `json:"width" yaml:"width"`
	Depth float64 `json:"depth" yaml:"depth"`
}

// Validate rejects non-positive or non-finite dimensions
func (f Footprint) Validate() error {
	if err := solar.CheckPositive("roof_width", f.Width); err != nil {
		return err
	}
	return solar.CheckPositive("roof_depth", f.Depth)
}

// edgeDistance is the distance from the roof centre to its edge along azimuth
func (f Footprint) edgeDistance(azimuth float64) float64 {
	ux, uy := polarToXY(1, azimuth)
	edge := math.Inf(1)
	if math.Abs(ux) > 1e-12 {
		edge = math.Min(edge, (f.Width/2)/math.Abs(ux))
	}
	if math.Abs(uy) > 1e-12 {
		edge = math.Min(edge, (f.Depth/2)/math.Abs(uy))
	}
	return edge
}

// roofGrid holds cell centres and, for every obstacle, the same cells expressed
// relative to that obstacle's edge anchor. Both live in flat slices so one
// analysis allocates them once.
type roofGrid struct {
	xs, ys   []float64   // cell centres, roof-centred, x east / y north
	relative []RoofPoint // len(obstacles) * cells, obstacle-major
	cells    int
}

func newRoofGrid(f Footprint, cellSize float64, obstacles []Obstacle) *roofGrid {
	nx := int(math.Max(1, math.Ceil(f.Width/cellSize-1e-9)))
	ny := int(math.Max(1, math.Ceil(f.Depth/cellSize-1e-9)))
	dx, dy := f.Width/float64(nx), f.Depth/float64(ny)

	g := &roofGrid{
		cells: nx * ny,
		xs:    make([]float64, nx*ny),
		ys:    make([]float64, nx*ny),
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			c := j*nx + i
			g.xs[c] = -f.Width/2 + (float64(i)+0.5)*dx
			g.ys[c] = -f.Depth/2 + (float64(j)+0.5)*dy
		}
	}

	g.relative = make([]RoofPoint, len(obstacles)*g.cells)
	for k, o := range obstacles {
		ax, ay := polarToXY(f.edgeDistance(o.bearing()), o.bearing())
		base := k * g.cells
		for c := 0; c < g.cells; c++ {
			vx, vy := g.xs[c]-ax, g.ys[c]-ay
			g.relative[base+c] = RoofPoint{
				Distance: math.Hypot(vx, vy),
				Azimuth:  solar.NormalizeAzimuth(math.Atan2(vx, vy) * 180.0 / math.Pi),
			}
		}
	}

	return g
}

// shadedPercent is the share of cells shadowed by any obstacle, 0..100
func (g *roofGrid) shadedPercent(obstacles []Obstacle, sun solar.Position) float64 {
	if len(obstacles) == 0 {
		return 0
	}

	shaded := 0
	for c := 0; c < g.cells; c++ {
		for k, o := range obstacles {
			if IsPointInShadow(g.relative[k*g.cells+c], o, sun) {
				shaded++
				break
			}
		}
	}
	return 100.0 * float64(shaded) / float64(g.cells)
}
