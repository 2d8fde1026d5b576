package world

// DensityGenerator generates 3D terrain using density fields instead of heightmaps.
// This enables overhangs, floating formations, and underground voids.
type DensityGenerator struct {
	seed             int64
	worldHeight      int
	scale            float64 // noise frequency (default: 1/64)
	baseHeight       int     // target surface level
	gradientStrength float64 // altitude density gradient
	noise            *octaveNoise
}

// densityStepY is the vertical spacing of density samples; voxels between
// samples are interpolated.
const densityStepY = 8

// NewDensityGenerator creates a 3D density-based terrain generator.
func NewDensityGenerator(seed int64, worldHeight int) *DensityGenerator {
	return &DensityGenerator{
		seed:             seed,
		worldHeight:      worldHeight,
		scale:            1.0 / 64.0,
		baseHeight:       worldHeight / 2,
		gradientStrength: float64(worldHeight) / 4,
		noise:            newOctaveNoise(seed, 4, 0.5, 2.0),
	}
}

// computeDensity calculates the density value at a world coordinate.
// Positive density = solid block, negative/zero = air.
func (g *DensityGenerator) computeDensity(worldX, worldY, worldZ int) float64 {
	n := g.noise.eval3(float64(worldX)*g.scale, float64(worldY)*g.scale, float64(worldZ)*g.scale)

	// Higher altitude = more negative
	heightGradient := (float64(g.baseHeight) - float64(worldY)) / g.gradientStrength
	return n + heightGradient
}

// densityAt interpolates between the samples bracketing y.
func (g *DensityGenerator) densityAt(worldX, y, worldZ int) float64 {
	y0 := y - y%densityStepY
	d0 := g.computeDensity(worldX, y0, worldZ)
	if y == y0 {
		return d0
	}
	d1 := g.computeDensity(worldX, y0+densityStepY, worldZ)
	return lerp(d0, d1, float64(y-y0)/densityStepY)
}

// HeightAt returns the maximum terrain height. Density terrain can exist
// anywhere below baseHeight + gradientStrength, where the gradient outweighs
// any noise value.
func (g *DensityGenerator) HeightAt(worldX, worldZ int) int {
	return min(g.baseHeight+int(g.gradientStrength), g.worldHeight-1)
}

// GenerateVoxel implements TerrainGenerator.
func (g *DensityGenerator) GenerateVoxel(worldX, y, worldZ int) BlockType {
	if y < 0 || y >= g.worldHeight {
		return BlockAir
	}
	if y == 0 {
		return BlockBedrock
	}
	if g.densityAt(worldX, y, worldZ) <= 0 {
		return BlockAir
	}
	if y+1 < g.worldHeight && g.densityAt(worldX, y+1, worldZ) <= 0 {
		return BlockGrass
	}
	return BlockStone
}

// GenerateColumn implements ColumnGenerator. Each density sample is computed
// once per column.
func (g *DensityGenerator) GenerateColumn(worldX, worldZ int, dst []BlockType) {
	n := len(dst)
	samples := make([]float64, n/densityStepY+2)
	for i := range samples {
		samples[i] = g.computeDensity(worldX, i*densityStepY, worldZ)
	}
	density := func(y int) float64 {
		i := y / densityStepY
		r := y % densityStepY
		if r == 0 {
			return samples[i]
		}
		return lerp(samples[i], samples[i+1], float64(r)/densityStepY)
	}

	for y := range dst {
		switch {
		case y >= g.worldHeight:
			dst[y] = BlockAir
		case y == 0:
			dst[y] = BlockBedrock
		case density(y) <= 0:
			dst[y] = BlockAir
		case y+1 < min(n, g.worldHeight) && density(y+1) <= 0:
			dst[y] = BlockGrass
		default:
			dst[y] = BlockStone
		}
	}
}
