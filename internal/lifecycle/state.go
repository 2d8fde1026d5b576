package lifecycle

import (
	"voxelmesh/internal/lighting"
	"voxelmesh/internal/meshing"
	"voxelmesh/internal/world"
)

// State is the lifecycle stage of a loaded chunk.
type State int32

const (
	StateUnpopulated State = iota // loaded, waiting for generation
	StatePopulating               // generation running
	StateClean                    // mesh matches the grid
	StateDirty                    // needs a rebuild
	StateRebuilding               // rebuild running on the mesh pool
	StateUnloaded                 // removed; late results are dropped
)

func (s State) String() string {
	switch s {
	case StateUnpopulated:
		return "unpopulated"
	case StatePopulating:
		return "populating"
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	case StateRebuilding:
		return "rebuilding"
	case StateUnloaded:
		return "unloaded"
	default:
		return "invalid"
	}
}

// Edit is a pending block change in world coordinates.
type Edit struct {
	X, Y, Z int
	Block   world.BlockType
	// OnlyAir drops the edit when the voxel is not air at apply time.
	OnlyAir bool
}

// entry is the manager's bookkeeping for one loaded chunk. All fields are
// guarded by Manager.mu.
type entry struct {
	id    uint64
	coord world.ChunkCoord
	chunk *world.Chunk
	state State

	queued  bool // sitting in the dirty queue
	rerun   bool // marked dirty while rebuilding
	pending []Edit

	mesh       *meshing.MeshBuffer
	light      *lighting.Grid
	buildLight *lighting.Grid // light of the build in flight
	suppressed world.SideMask
	builds     uint64
}

// editable reports whether the chunk is populated and not mid-rebuild.
func (e *entry) editable() bool {
	return e.state == StateClean || e.state == StateDirty
}

// markDirtyLocked flags e for a rebuild. Chunks still being generated are
// marked dirty when population finishes, and running builds pick the flag
// up when their result lands.
func (m *Manager) markDirtyLocked(e *entry) {
	switch e.state {
	case StateClean, StateDirty:
		e.state = StateDirty
		if !e.queued {
			e.queued = true
			m.queuedCount++
			m.dirtyQueue = append(m.dirtyQueue, e.coord)
		}
	case StateRebuilding:
		e.rerun = true
	}
}

// dequeueLocked clears the queued flag of an entry leaving the dirty queue.
func (m *Manager) dequeueLocked(e *entry) {
	if e.queued {
		e.queued = false
		m.queuedCount--
	}
}
