package world

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"voxelmesh/internal/profiling"
)

const (
	// Default chunk dimensions
	DefaultChunkWidth  = 16
	DefaultChunkHeight = 128
)

// ErrOutOfBounds is returned for voxel writes outside a grid.
var ErrOutOfBounds = errors.New("voxel out of bounds")

// Grid is the dense block storage of one chunk: width×height×width voxels.
// It has no locking of its own; Chunk guards it.
type Grid struct {
	width, height int
	blocks        []BlockType
}

// NewGrid creates an all-air grid.
func NewGrid(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		blocks: make([]BlockType, width*height*width),
	}
}

// Width returns the extent along X and Z.
func (g *Grid) Width() int { return g.width }

// Height returns the extent along Y.
func (g *Grid) Height() int { return g.height }

// Dims returns the X, Y, Z extents.
func (g *Grid) Dims() [3]int {
	return [3]int{g.width, g.height, g.width}
}

// Volume returns the number of voxels.
func (g *Grid) Volume() int {
	return len(g.blocks)
}

// InBounds reports whether local coordinates address a voxel of the grid.
func (g *Grid) InBounds(x, y, z int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height && z >= 0 && z < g.width
}

// Index converts local coordinates to a flat index. Coordinates must be in bounds.
func (g *Grid) Index(x, y, z int) int {
	return (y*g.width+z)*g.width + x
}

// Get returns the block at local coordinates, or air outside the grid.
func (g *Grid) Get(x, y, z int) BlockType {
	if !g.InBounds(x, y, z) {
		return BlockAir
	}
	return g.blocks[g.Index(x, y, z)]
}

// Set writes a block at local coordinates.
func (g *Grid) Set(x, y, z int, b BlockType) error {
	if !g.InBounds(x, y, z) {
		return fmt.Errorf("set (%d,%d,%d) in %dx%dx%d grid: %w", x, y, z, g.width, g.height, g.width, ErrOutOfBounds)
	}
	g.blocks[g.Index(x, y, z)] = b
	return nil
}

// Fill sets every voxel of a box [x0,x1)×[y0,y1)×[z0,z1), clipped to the grid.
func (g *Grid) Fill(x0, y0, z0, x1, y1, z1 int, b BlockType) {
	x0, x1 = max(x0, 0), min(x1, g.width)
	y0, y1 = max(y0, 0), min(y1, g.height)
	z0, z1 = max(z0, 0), min(z1, g.width)
	for y := y0; y < y1; y++ {
		for z := z0; z < z1; z++ {
			for x := x0; x < x1; x++ {
				g.blocks[g.Index(x, y, z)] = b
			}
		}
	}
}

// Count returns how many voxels hold b.
func (g *Grid) Count(b BlockType) int {
	n := 0
	for _, v := range g.blocks {
		if v == b {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	c := &Grid{width: g.width, height: g.height, blocks: make([]BlockType, len(g.blocks))}
	copy(c.blocks, g.blocks)
	return c
}

// Chunk is a column of voxels at a horizontal chunk coordinate.
// The grid has a single writer (Populate / Update) and many readers.
type Chunk struct {
	Coord ChunkCoord

	mu        sync.RWMutex
	grid      *Grid
	populated atomic.Bool
}

// NewChunk creates an unpopulated chunk.
func NewChunk(coord ChunkCoord, width, height int) *Chunk {
	return &Chunk{
		Coord: coord,
		grid:  NewGrid(width, height),
	}
}

// Origin returns the world X/Z of local voxel (0, *, 0).
func (c *Chunk) Origin() (int, int) {
	w := c.grid.width
	return c.Coord.X * w, c.Coord.Z * w
}

// Width returns the chunk width.
func (c *Chunk) Width() int { return c.grid.width }

// Height returns the chunk height.
func (c *Chunk) Height() int { return c.grid.height }

// IsPopulated reports whether generation has completed.
func (c *Chunk) IsPopulated() bool {
	return c.populated.Load()
}

// Populate fills the grid from gen and publishes the chunk as populated.
func (c *Chunk) Populate(gen TerrainGenerator) {
	defer profiling.Track("world.Populate")()
	c.fill(gen)
	c.populated.Store(true)
}

func (c *Chunk) fill(gen TerrainGenerator) {
	ox, oz := c.Origin()
	c.mu.Lock()
	defer c.mu.Unlock()
	g := c.grid
	if cg, ok := gen.(ColumnGenerator); ok {
		column := make([]BlockType, g.height)
		for z := 0; z < g.width; z++ {
			for x := 0; x < g.width; x++ {
				cg.GenerateColumn(ox+x, oz+z, column)
				for y, b := range column {
					g.blocks[g.Index(x, y, z)] = b
				}
			}
		}
		return
	}
	for y := 0; y < g.height; y++ {
		for z := 0; z < g.width; z++ {
			for x := 0; x < g.width; x++ {
				g.blocks[g.Index(x, y, z)] = gen.GenerateVoxel(ox+x, y, oz+z)
			}
		}
	}
}

// MarkPopulated publishes a chunk whose grid was filled through Update.
func (c *Chunk) MarkPopulated() {
	c.populated.Store(true)
}

// View runs fn with the grid under the read lock. fn must not retain g.
func (c *Chunk) View(fn func(g *Grid)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn(c.grid)
}

// Update runs fn with the grid under the write lock.
func (c *Chunk) Update(fn func(g *Grid) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.grid)
}

// BlockAt returns the block at local coordinates and whether the chunk is
// populated. Unpopulated chunks answer BlockUnknown.
func (c *Chunk) BlockAt(x, y, z int) (BlockType, bool) {
	if !c.populated.Load() {
		return BlockUnknown, false
	}
	c.mu.RLock()
	b := c.grid.Get(x, y, z)
	c.mu.RUnlock()
	return b, true
}
