package lifecycle

import (
	"math"

	"voxelmesh/internal/profiling"
	"voxelmesh/internal/world"

	"go.uber.org/zap"
)

func (m *Manager) genWorker() {
	defer m.wg.Done()
	for {
		select {
		case coord := <-m.genJobs:
			m.populate(coord)
		case <-m.ctx.Done():
			return
		}
	}
}

// streamMark remembers the last StreamAround pass so a repeat from the same
// chunk with an unchanged store can return early.
type streamMark struct {
	center   world.ChunkCoord
	mod      uint64
	complete bool
}

// populate generates a chunk, queues its decorations, marks it dirty and
// re-dirties neighbours whose last mesh withheld faces on the shared side. A
// chunk whose generation fails is dropped so the next stream pass retries it.
func (m *Manager) populate(coord world.ChunkCoord) {
	m.mu.Lock()
	e, ok := m.entries[coord]
	if !ok || e.state != StateUnpopulated {
		m.genPending--
		m.idle.Broadcast()
		m.mu.Unlock()
		return
	}
	e.state = StatePopulating
	m.mu.Unlock()

	err := generate(e.chunk, m.gen)
	var mods []world.VoxelMod
	if err == nil && m.opts.Decorator != nil {
		mods, err = decorate(m.opts.Decorator, coord)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.idle.Broadcast()
	m.genPending--

	if e.state == StateUnloaded {
		return
	}
	if err != nil {
		m.genFailures++
		m.dropLocked(e)
		m.log.Error("chunk generation failed",
			zap.Int("x", coord.X), zap.Int("z", coord.Z), zap.Error(err))
		return
	}

	for _, mod := range mods {
		if m.store.CoordOf(mod.X, mod.Z) != coord || mod.Y < 0 || mod.Y >= m.store.ChunkHeight() {
			continue
		}
		e.pending = append(e.pending, Edit{X: mod.X, Y: mod.Y, Z: mod.Z, Block: mod.Block, OnlyAir: mod.OnlyAir})
	}
	e.state = StateClean
	m.markDirtyLocked(e)
	for _, f := range world.HorizontalFaces {
		n, ok := m.entries[coord.Neighbor(f)]
		if ok && n.chunk.IsPopulated() && n.suppressed.Has(f.Opposite()) {
			m.markDirtyLocked(n)
		}
	}
	m.wake()
}

// generate populates c, turning a generator panic into an error.
func generate(c *world.Chunk, gen world.TerrainGenerator) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	c.Populate(gen)
	return nil
}

func decorate(d Decorator, coord world.ChunkCoord) (mods []world.VoxelMod, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return d.Decorate(coord), nil
}

// StreamAround loads every chunk within the load radius of world position
// (x, z), nearest rings first, and unloads chunks beyond the evict radius.
// It returns the number of chunks queued and unloaded. A pass from the same
// chunk as the last complete one is skipped while the store is unchanged.
func (m *Manager) StreamAround(x, z float32) (loaded, unloaded int) {
	defer profiling.Track("lifecycle.StreamAround")()
	center := m.store.CoordOf(int(math.Floor(float64(x))), int(math.Floor(float64(z))))
	cx, cz := center.X, center.Z

	m.mu.Lock()
	last := m.lastStream
	m.mu.Unlock()
	if last.complete && last.center == center && last.mod == m.store.GetModCount() {
		return 0, 0
	}

	radius := m.opts.LoadRadius
	want := 0
	try := func(xk, zk int) {
		dx, dz := xk-cx, zk-cz
		if dx*dx+dz*dz > radius*radius {
			return
		}
		want++
		if m.Load(world.ChunkCoord{X: xk, Z: zk}) {
			loaded++
		}
	}

	for r := 0; r <= radius; r++ {
		if r == 0 {
			try(cx, cz)
			continue
		}

		x0 := cx - r
		x1 := cx + r
		z0 := cz - r
		z1 := cz + r

		for xk := x0; xk <= x1; xk++ {
			try(xk, z0)
		}
		for zk := z0 + 1; zk <= z1-1; zk++ {
			try(x1, zk)
		}
		for xk := x1; xk >= x0; xk-- {
			try(xk, z1)
		}
		for zk := z1 - 1; zk >= z0+1; zk-- {
			try(x0, zk)
		}
	}

	if m.opts.EvictRadius > 0 {
		for _, coord := range m.store.FarChunks(cx, cz, m.opts.EvictRadius) {
			if m.Unload(coord) {
				unloaded++
			}
		}
	}

	mod := m.store.GetModCount()
	have := m.store.AppendChunksInRadius(cx, cz, radius, make([]*world.Chunk, 0, want))
	m.mu.Lock()
	m.lastStream = streamMark{center: center, mod: mod, complete: len(have) == want}
	m.mu.Unlock()

	if loaded > 0 || unloaded > 0 {
		m.log.Debug("streamed",
			zap.Int("cx", cx), zap.Int("cz", cz),
			zap.Int("loaded", loaded), zap.Int("unloaded", unloaded))
	}
	return loaded, unloaded
}
