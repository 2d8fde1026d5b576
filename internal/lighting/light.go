// Package lighting computes per-voxel ambient light for a chunk with a
// vertical pass followed by a flood fill. Propagation stays inside the chunk.
package lighting

import (
	"voxelmesh/internal/profiling"
	"voxelmesh/internal/registry"
	"voxelmesh/internal/world"
)

const (
	// MaxLight is the light of a voxel with an unobstructed view of the sky.
	MaxLight float32 = 1
	// DefaultFalloff is the light lost per flood-fill step.
	DefaultFalloff float32 = 0.08
)

// Grid holds one light value in [0,1] per voxel, laid out like world.Grid.
type Grid struct {
	width, height int
	values        []float32
}

// NewGrid creates an all-dark grid.
func NewGrid(width, height int) *Grid {
	return &Grid{width: width, height: height, values: make([]float32, width*height*width)}
}

// Width returns the extent along X and Z.
func (g *Grid) Width() int { return g.width }

// Height returns the extent along Y.
func (g *Grid) Height() int { return g.height }

func (g *Grid) inBounds(x, y, z int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height && z >= 0 && z < g.width
}

func (g *Grid) index(x, y, z int) int {
	return (y*g.width+z)*g.width + x
}

// At returns the light of a voxel. Positions outside the grid are fully lit.
func (g *Grid) At(x, y, z int) float32 {
	if !g.inBounds(x, y, z) {
		return MaxLight
	}
	return g.values[g.index(x, y, z)]
}

type cell struct {
	x, y, z int
}

var neighbors = [6]cell{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}

// Compute lights a chunk grid. Each column is lit from the top with a ray
// that drops to the transparency of every block it passes; every voxel left
// brighter than falloff then seeds a breadth-first spread that loses falloff
// per step.
func Compute(grid *world.Grid, catalog *registry.Catalog, falloff float32) *Grid {
	defer profiling.Track("lighting.Compute")()
	if falloff <= 0 {
		falloff = DefaultFalloff
	}
	w, h := grid.Width(), grid.Height()
	light := NewGrid(w, h)
	queue := make([]cell, 0, w*w*4)

	for z := 0; z < w; z++ {
		for x := 0; x < w; x++ {
			ray := MaxLight
			for y := h - 1; y >= 0; y-- {
				if t := catalog.Transparency(grid.Get(x, y, z)); t < ray {
					ray = t
				}
				light.values[light.index(x, y, z)] = ray
				if ray > falloff {
					queue = append(queue, cell{x, y, z})
				}
			}
		}
	}

	for head := 0; head < len(queue); head++ {
		c := queue[head]
		spread := light.values[light.index(c.x, c.y, c.z)] - falloff
		for _, d := range neighbors {
			n := cell{c.x + d.x, c.y + d.y, c.z + d.z}
			if !light.inBounds(n.x, n.y, n.z) {
				continue
			}
			i := light.index(n.x, n.y, n.z)
			if light.values[i] < spread {
				light.values[i] = spread
				if spread > falloff {
					queue = append(queue, n)
				}
			}
		}
	}
	return light
}
