package world

import "math"

// VoxelMod is a block placement in world coordinates produced after a chunk
// is generated.
type VoxelMod struct {
	X, Y, Z int
	Block   BlockType
	// OnlyAir leaves any non-air block in place.
	OnlyAir bool
}

// TreePlacer plants oak trees on grass. The world is split into square cells
// of columns and each cell holds at most one tree at a hashed position, so a
// tree depends only on the seed and the terrain under it, never on which
// chunks happen to be loaded.
type TreePlacer struct {
	seed        int64
	gen         TerrainGenerator
	width       int
	worldHeight int

	cellSize     int
	minTrunk     int
	maxTrunk     int
	canopyRadius int
	zoneScale    float64
	zoneCutoff   float64
	chance       uint64 // out of 0xFFFF

	zone  *octaveNoise
	trunk *octaveNoise
}

// NewTreePlacer creates a tree placer over gen for chunks of the given width
// in a world of the given height.
func NewTreePlacer(seed int64, gen TerrainGenerator, width, worldHeight int) *TreePlacer {
	return &TreePlacer{
		seed:         seed,
		gen:          gen,
		width:        width,
		worldHeight:  worldHeight,
		cellSize:     5,
		minTrunk:     4,
		maxTrunk:     6,
		canopyRadius: 2,
		zoneScale:    1.0 / 80.0,
		zoneCutoff:   -0.1,
		chance:       0xFFFF * 6 / 10,
		zone:         newOctaveNoise(seed^0x5f17, 2, 0.5, 2.0),
		trunk:        newOctaveNoise(seed^0x92b7, 1, 0.5, 2.0),
	}
}

// Trees returns the blocks of every tree rooted in coord, trunks first. The
// canopy of a tree near the border spills into neighbouring chunks.
func (p *TreePlacer) Trees(coord ChunkCoord) []VoxelMod {
	ox, oz := coord.X*p.width, coord.Z*p.width
	var mods []VoxelMod
	for cx := floorDiv(ox, p.cellSize); cx <= floorDiv(ox+p.width-1, p.cellSize); cx++ {
		for cz := floorDiv(oz, p.cellSize); cz <= floorDiv(oz+p.width-1, p.cellSize); cz++ {
			x, z, ok := p.candidate(cx, cz)
			if !ok || x < ox || x >= ox+p.width || z < oz || z >= oz+p.width {
				continue
			}
			y, ok := p.surface(x, z)
			if !ok {
				continue
			}
			mods = p.appendTree(mods, x, y, z)
		}
	}
	return mods
}

// Decorate returns the tree blocks landing in coord, whichever chunk the
// tree is rooted in.
func (p *TreePlacer) Decorate(coord ChunkCoord) []VoxelMod {
	ox, oz := coord.X*p.width, coord.Z*p.width
	var out []VoxelMod
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			for _, mod := range p.Trees(ChunkCoord{X: coord.X + dx, Z: coord.Z + dz}) {
				if mod.X >= ox && mod.X < ox+p.width && mod.Z >= oz && mod.Z < oz+p.width {
					out = append(out, mod)
				}
			}
		}
	}
	return out
}

// candidate picks the tree position of a cell and decides whether it grows.
func (p *TreePlacer) candidate(cellX, cellZ int) (x, z int, ok bool) {
	h := hash3(cellX, cellZ, p.seed)
	x = cellX*p.cellSize + int(h%uint64(p.cellSize))
	z = cellZ*p.cellSize + int((h>>8)%uint64(p.cellSize))
	if (h>>16)&0xFFFF > p.chance {
		return x, z, false
	}
	if p.zone.eval2(float64(x)*p.zoneScale, float64(z)*p.zoneScale) < p.zoneCutoff {
		return x, z, false
	}
	return x, z, true
}

// surface returns the Y of the topmost solid block of a column when that
// block is grass with room above it for a tree.
func (p *TreePlacer) surface(x, z int) (int, bool) {
	top := min(p.gen.HeightAt(x, z), p.worldHeight-1)
	for y := top; y > 0; y-- {
		switch p.gen.GenerateVoxel(x, y, z) {
		case BlockAir:
			continue
		case BlockGrass:
			return y, y+p.maxTrunk+2 < p.worldHeight
		default:
			return y, false
		}
	}
	return 0, false
}

func (p *TreePlacer) appendTree(mods []VoxelMod, x, y, z int) []VoxelMod {
	n := (p.trunk.eval2(float64(x)*0.37, float64(z)*0.37) + 1) / 2
	height := p.minTrunk + int(n*float64(p.maxTrunk-p.minTrunk+1))
	height = min(max(height, p.minTrunk), p.maxTrunk)

	for i := 1; i <= height; i++ {
		mods = append(mods, VoxelMod{X: x, Y: y + i, Z: z, Block: BlockOakLog})
	}

	top := y + height
	r := p.canopyRadius
	for dy := -2; dy <= 1; dy++ {
		ty := top + dy
		if ty < 0 || ty >= p.worldHeight {
			continue
		}
		for dx := -r; dx <= r; dx++ {
			for dz := -r; dz <= r; dz++ {
				if dx == 0 && dz == 0 && dy <= 0 {
					continue
				}
				dist := math.Sqrt(float64(dx*dx + dz*dz))
				bias := 0.0
				if dy > 0 {
					bias = float64(dy) * 1.2
				}
				if dist+bias > float64(r)+0.5 {
					continue
				}
				mods = append(mods, VoxelMod{X: x + dx, Y: ty, Z: z + dz, Block: BlockOakLeaves, OnlyAir: true})
			}
		}
	}
	return mods
}

// hash3 mixes two cell coordinates and a seed (splitmix64 finalizer).
func hash3(a, b int, seed int64) uint64 {
	h := uint64(seed) ^ uint64(int64(a))*0x9E3779B97F4A7C15 ^ uint64(int64(b))*0xC2B2AE3D27D4EB4F
	h ^= h >> 30
	h *= 0xBF58476D1CE4E5B9
	h ^= h >> 27
	h *= 0x94D049BB133111EB
	h ^= h >> 31
	return h
}
