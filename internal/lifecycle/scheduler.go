package lifecycle

import (
	"fmt"
	"time"

	"voxelmesh/internal/config"
	"voxelmesh/internal/lighting"
	"voxelmesh/internal/meshing"
	"voxelmesh/internal/world"

	"go.uber.org/zap"
)

// schedule is the only goroutine that submits rebuilds and applies their
// results. It never blocks on the pool, so workers always drain.
func (m *Manager) schedule() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.opts.Tick)
	defer ticker.Stop()

	for {
		select {
		case r := <-m.results:
			m.apply(r)
		case <-m.wakeCh:
		case <-ticker.C:
		case <-m.ctx.Done():
			return
		}
		m.submitDirty()
	}
}

// submitDirty hands queued chunks to the mesh pool until it is full.
func (m *Manager) submitDirty() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.dirtyQueue) > 0 {
		e, ok := m.entries[m.dirtyQueue[0]]
		if !ok || e.state != StateDirty || !e.queued {
			m.dirtyQueue = m.dirtyQueue[1:]
			continue
		}
		if !m.pool.SubmitJob(m.job(e)) {
			return
		}
		m.dirtyQueue = m.dirtyQueue[1:]
		m.dequeueLocked(e)
		e.state = StateRebuilding
		e.rerun = false
		m.inflight++
	}
	m.dirtyQueue = nil
}

func (m *Manager) job(e *entry) meshing.MeshJob {
	return meshing.MeshJob{
		Coord:      e.coord,
		Tag:        e.id,
		Build:      func() (*meshing.MeshBuffer, error) { return m.rebuild(e) },
		ResultChan: m.results,
	}
}

// rebuild runs on a mesh worker: it applies pending edits, relights and
// remeshes the chunk.
func (m *Manager) rebuild(e *entry) (*meshing.MeshBuffer, error) {
	m.mu.Lock()
	edits := e.pending
	e.pending = nil
	m.mu.Unlock()

	if len(edits) > 0 {
		border, err := applyEdits(e.chunk, edits)
		if err != nil {
			// Nothing was written; keep the batch ahead of newer edits.
			m.mu.Lock()
			e.pending = append(edits, e.pending...)
			m.mu.Unlock()
			return nil, err
		}
		if border != 0 {
			m.mu.Lock()
			for _, f := range world.HorizontalFaces {
				if !border.Has(f) {
					continue
				}
				if n, ok := m.entries[e.coord.Neighbor(f)]; ok {
					m.markDirtyLocked(n)
				}
			}
			m.mu.Unlock()
			m.wake()
		}
	}

	var (
		light *lighting.Grid
		mesh  *meshing.MeshBuffer
		err   error
	)
	e.chunk.View(func(g *world.Grid) {
		if m.opts.Lighting {
			light = lighting.Compute(g, m.catalog, m.opts.Falloff)
		}
		if m.opts.Mesher == config.MesherNaive {
			mesh, err = meshing.BuildNaive(g, e.coord, m.catalog, m.store, meshing.NaiveOptions{
				Light:             light,
				TransparencyAware: m.opts.TransparencyAware,
			})
			return
		}
		mesh, err = meshing.BuildGreedy(g, e.coord, m.catalog, m.store)
	})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	e.buildLight = light
	m.mu.Unlock()
	return mesh, nil
}

// applyEdits writes edits into the chunk grid under its write lock and
// returns the chunk sides whose voxels changed. The batch is checked first,
// so on error the grid is untouched.
func applyEdits(c *world.Chunk, edits []Edit) (world.SideMask, error) {
	ox, oz := c.Origin()
	last := c.Width() - 1
	var border world.SideMask
	err := c.Update(func(g *world.Grid) error {
		for _, ed := range edits {
			if !g.InBounds(ed.X-ox, ed.Y, ed.Z-oz) {
				return fmt.Errorf("edit at (%d, %d, %d) in chunk (%d, %d): %w",
					ed.X, ed.Y, ed.Z, c.Coord.X, c.Coord.Z, world.ErrOutOfBounds)
			}
		}
		for _, ed := range edits {
			x, z := ed.X-ox, ed.Z-oz
			prev := g.Get(x, ed.Y, z)
			if prev == ed.Block || (ed.OnlyAir && prev != world.BlockAir) {
				continue
			}
			if err := g.Set(x, ed.Y, z, ed.Block); err != nil {
				return err
			}
			if x == 0 {
				border = border.With(world.FaceWest)
			}
			if x == last {
				border = border.With(world.FaceEast)
			}
			if z == 0 {
				border = border.With(world.FaceNorth)
			}
			if z == last {
				border = border.With(world.FaceSouth)
			}
		}
		return nil
	})
	return border, err
}

// apply records a finished build. Failed builds keep the previous mesh.
func (m *Manager) apply(r meshing.MeshResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.idle.Broadcast()
	m.inflight--

	e, ok := m.entries[r.Coord]
	if !ok || e.id != r.Tag || e.state != StateRebuilding {
		m.log.Debug("dropping result for unloaded chunk", zap.Int("x", r.Coord.X), zap.Int("z", r.Coord.Z))
		return
	}
	light := e.buildLight
	e.buildLight = nil
	e.state = StateClean

	if r.Err != nil {
		m.failures++
		m.log.Error("chunk rebuild failed",
			zap.Int("x", r.Coord.X), zap.Int("z", r.Coord.Z), zap.Error(r.Err))
	} else {
		m.builds++
		e.builds++
		e.mesh = r.Mesh
		e.light = light
		e.suppressed = r.Mesh.Suppressed
		m.ready = append(m.ready, ReadyMesh{Coord: e.coord, Mesh: r.Mesh, Light: light, Build: e.builds, entryID: e.id})

		// A neighbour that populated while this build ran was read as unknown.
		for _, f := range world.HorizontalFaces {
			if !e.suppressed.Has(f) {
				continue
			}
			if n, ok := m.entries[e.coord.Neighbor(f)]; ok && n.chunk.IsPopulated() {
				e.rerun = true
			}
		}
		m.log.Debug("chunk meshed",
			zap.Int("x", r.Coord.X), zap.Int("z", r.Coord.Z),
			zap.Int("quads", r.Mesh.Quads()))
	}

	if e.rerun {
		e.rerun = false
		m.markDirtyLocked(e)
	}
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
