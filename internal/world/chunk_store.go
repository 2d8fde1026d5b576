package world

import (
	"sync"

	"voxelmesh/internal/profiling"
)

// ChunkCoord locates a chunk in the infinite horizontal grid. Y is not chunked.
type ChunkCoord struct {
	X, Z int
}

// Neighbor returns the coordinate of the adjacent chunk across a horizontal face.
func (c ChunkCoord) Neighbor(f Face) ChunkCoord {
	dx, _, dz := f.Offset()
	return ChunkCoord{X: c.X + dx, Z: c.Z + dz}
}

// HorizontalFaces are the four faces that cross chunk boundaries.
var HorizontalFaces = [4]Face{FaceWest, FaceEast, FaceNorth, FaceSouth}

// NeighborResolver answers voxel queries in world coordinates. It must return
// BlockUnknown for voxels whose chunk is absent or not populated, and must be
// safe for concurrent use by meshing workers.
type NeighborResolver interface {
	BlockAt(worldX, y, worldZ int) BlockType
}

// ChunkStore manages the storage and retrieval of chunks.
type ChunkStore struct {
	width, height int

	chunks   map[ChunkCoord]*Chunk
	mu       sync.RWMutex
	modCount uint64 // Increases on any chunk add/remove
}

// NewChunkStore creates a store for chunks of the given dimensions.
func NewChunkStore(width, height int) *ChunkStore {
	return &ChunkStore{
		width:  width,
		height: height,
		chunks: make(map[ChunkCoord]*Chunk),
	}
}

// ChunkWidth returns the width of chunks held by the store.
func (cs *ChunkStore) ChunkWidth() int { return cs.width }

// ChunkHeight returns the height of chunks held by the store.
func (cs *ChunkStore) ChunkHeight() int { return cs.height }

// GetChunk returns the chunk at coord, or nil.
func (cs *ChunkStore) GetChunk(coord ChunkCoord) *Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.chunks[coord]
}

// GetOrCreate returns the chunk at coord, creating an unpopulated one if missing.
// The boolean reports whether the chunk was created by this call.
func (cs *ChunkStore) GetOrCreate(coord ChunkCoord) (*Chunk, bool) {
	cs.mu.RLock()
	chunk, exists := cs.chunks[coord]
	cs.mu.RUnlock()
	if exists {
		return chunk, false
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	// Double-check locking: another goroutine might have created it while we were waiting for the lock
	if existing, ok := cs.chunks[coord]; ok {
		return existing, false
	}
	chunk = NewChunk(coord, cs.width, cs.height)
	cs.chunks[coord] = chunk
	cs.modCount++
	return chunk, true
}

// RemoveChunk drops a chunk from the store.
func (cs *ChunkStore) RemoveChunk(coord ChunkCoord) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, ok := cs.chunks[coord]; !ok {
		return false
	}
	delete(cs.chunks, coord)
	cs.modCount++
	return true
}

// HasChunk checks if a chunk exists without creating it.
func (cs *ChunkStore) HasChunk(coord ChunkCoord) bool {
	cs.mu.RLock()
	_, exists := cs.chunks[coord]
	cs.mu.RUnlock()
	return exists
}

// Len returns the number of stored chunks.
func (cs *ChunkStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

// GetModCount returns the current modification count of the chunk map.
func (cs *ChunkStore) GetModCount() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.modCount
}

// CoordOf returns the chunk coordinate containing a world X/Z.
func (cs *ChunkStore) CoordOf(worldX, worldZ int) ChunkCoord {
	return ChunkCoord{X: floorDiv(worldX, cs.width), Z: floorDiv(worldZ, cs.width)}
}

// ToLocal splits world X/Z into chunk coordinate and local X/Z.
func (cs *ChunkStore) ToLocal(worldX, worldZ int) (ChunkCoord, int, int) {
	return cs.CoordOf(worldX, worldZ), mod(worldX, cs.width), mod(worldZ, cs.width)
}

// BlockAt implements NeighborResolver. Voxels above or below the world are
// air; voxels of missing or unpopulated chunks are BlockUnknown.
func (cs *ChunkStore) BlockAt(worldX, y, worldZ int) BlockType {
	if y < 0 || y >= cs.height {
		return BlockAir
	}
	coord, lx, lz := cs.ToLocal(worldX, worldZ)
	chunk := cs.GetChunk(coord)
	if chunk == nil {
		return BlockUnknown
	}
	b, _ := chunk.BlockAt(lx, y, lz)
	return b
}

// AppendChunksInRadius appends loaded chunks within radius (in chunks) of
// (cx, cz) to dst.
func (cs *ChunkStore) AppendChunksInRadius(cx, cz, radius int, dst []*Chunk) []*Chunk {
	defer profiling.Track("world.AppendChunksInRadius")()
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			if dx*dx+dz*dz > radius*radius {
				continue
			}
			if ch, ok := cs.chunks[ChunkCoord{X: cx + dx, Z: cz + dz}]; ok {
				dst = append(dst, ch)
			}
		}
	}
	return dst
}

// FarChunks returns the coordinates of chunks farther than radius from (cx, cz).
func (cs *ChunkStore) FarChunks(cx, cz, radius int) []ChunkCoord {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	var far []ChunkCoord
	for coord := range cs.chunks {
		dx := coord.X - cx
		dz := coord.Z - cz
		if dx*dx+dz*dz > radius*radius {
			far = append(far, coord)
		}
	}
	return far
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
