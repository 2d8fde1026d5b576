package world

import (
	"math"
)

// TerrainGenerator is a deterministic function of world position.
type TerrainGenerator interface {
	// HeightAt returns the surface Y at a world column.
	HeightAt(worldX, worldZ int) int
	// GenerateVoxel returns the block at a world position.
	GenerateVoxel(worldX, y, worldZ int) BlockType
}

// ColumnGenerator is implemented by generators that can fill a whole column
// at once. dst has one entry per Y level and must match GenerateVoxel.
type ColumnGenerator interface {
	GenerateColumn(worldX, worldZ int, dst []BlockType)
}

// Generator handles terrain generation logic.
type Generator struct {
	seed        int64
	worldHeight int
	scale       float64
	baseHeight  int
	amp         float64
	dirtDepth   int
	seaLevel    int
	oreScale    float64
	oreCutoff   float64

	terrain *octaveNoise
	ore     *octaveNoise
}

// NewGenerator creates a simplex heightmap generator for a world of the given height.
func NewGenerator(seed int64, worldHeight int) *Generator {
	return &Generator{
		seed:        seed,
		worldHeight: worldHeight,
		scale:       1.0 / 64.0,
		baseHeight:  worldHeight * 3 / 8,
		amp:         float64(worldHeight) / 8,
		dirtDepth:   4,
		seaLevel:    worldHeight*3/8 - 4,
		oreScale:    1.0 / 6.0,
		oreCutoff:   0.55,
		terrain:     newOctaveNoise(seed, 4, 0.5, 2.0),
		ore:         newOctaveNoise(seed+7919, 1, 0.5, 2.0),
	}
}

// Seed returns the generator seed.
func (g *Generator) Seed() int64 { return g.seed }

// SeaLevel returns the Y of the water surface.
func (g *Generator) SeaLevel() int { return g.seaLevel }

// HeightAt computes world surface height (block Y) at world X,Z.
func (g *Generator) HeightAt(worldX, worldZ int) int {
	n := g.terrain.eval2(float64(worldX)*g.scale, float64(worldZ)*g.scale)
	h := int(math.Floor(float64(g.baseHeight) + n*g.amp))
	return min(max(h, 1), g.worldHeight-2)
}

// GenerateVoxel implements TerrainGenerator.
func (g *Generator) GenerateVoxel(worldX, y, worldZ int) BlockType {
	return g.voxel(worldX, y, worldZ, g.HeightAt(worldX, worldZ))
}

// GenerateColumn implements ColumnGenerator.
func (g *Generator) GenerateColumn(worldX, worldZ int, dst []BlockType) {
	h := g.HeightAt(worldX, worldZ)
	for y := range dst {
		dst[y] = g.voxel(worldX, y, worldZ, h)
	}
}

func (g *Generator) voxel(worldX, y, worldZ, surface int) BlockType {
	beach := surface <= g.seaLevel+1
	switch {
	case y < 0 || y >= g.worldHeight:
		return BlockAir
	case y == 0:
		return BlockBedrock
	case y < surface-g.dirtDepth:
		n := g.ore.eval3(float64(worldX)*g.oreScale, float64(y)*g.oreScale, float64(worldZ)*g.oreScale)
		if n > g.oreCutoff {
			return BlockCoalOre
		}
		return BlockStone
	case y < surface:
		if beach {
			return BlockSand
		}
		return BlockDirt
	case y == surface:
		if beach {
			return BlockSand
		}
		return BlockGrass
	case y <= g.seaLevel:
		return BlockWater
	default:
		return BlockAir
	}
}

// FlatGenerator produces a flat world of a fixed surface height.
type FlatGenerator struct {
	height int
}

// NewFlatGenerator creates a flat generator with the grass layer at height.
func NewFlatGenerator(height int) *FlatGenerator {
	return &FlatGenerator{height: height}
}

// HeightAt implements TerrainGenerator.
func (g *FlatGenerator) HeightAt(worldX, worldZ int) int {
	return g.height
}

// GenerateVoxel implements TerrainGenerator.
func (g *FlatGenerator) GenerateVoxel(worldX, y, worldZ int) BlockType {
	switch {
	case y < 0 || y > g.height:
		return BlockAir
	case y == 0:
		return BlockBedrock
	case y < g.height:
		return BlockDirt
	default:
		return BlockGrass
	}
}
