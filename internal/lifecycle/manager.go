// Package lifecycle keeps chunk meshes in sync with a streaming world. It
// owns generation workers, the meshing pool and a single scheduler goroutine
// that moves chunks between states and publishes finished meshes.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"voxelmesh/internal/config"
	"voxelmesh/internal/lighting"
	"voxelmesh/internal/meshing"
	"voxelmesh/internal/registry"
	"voxelmesh/internal/world"

	"go.uber.org/zap"
)

var (
	// ErrChunkNotLoaded is returned for edits to chunks that are not loaded.
	ErrChunkNotLoaded = errors.New("chunk not loaded")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("lifecycle manager closed")
)

// Options configures a Manager.
type Options struct {
	Mesher            string // config.MesherGreedy or config.MesherNaive
	TransparencyAware bool
	Lighting          bool
	Falloff           float32

	MeshWorkers int
	QueueSize   int
	GenWorkers  int
	MaxPending  int

	LoadRadius  int
	EvictRadius int

	// Decorator, when set, adds blocks to every generated chunk.
	Decorator Decorator

	// Tick is how often the scheduler retries a full mesh queue.
	Tick   time.Duration
	Logger *zap.Logger
}

// Decorator returns the blocks to place in a freshly generated chunk, such as
// tree canopies rooted in a neighbour. It must be deterministic per chunk and
// safe for concurrent use.
type Decorator interface {
	Decorate(coord world.ChunkCoord) []world.VoxelMod
}

// OptionsFromConfig maps engine configuration onto manager options.
func OptionsFromConfig(cfg *config.Config, log *zap.Logger) Options {
	return Options{
		Mesher:            cfg.Meshing.Mode,
		TransparencyAware: cfg.Meshing.TransparencyAware,
		Lighting:          cfg.Lighting.Enabled,
		Falloff:           cfg.Lighting.Falloff,
		MeshWorkers:       cfg.Meshing.MeshWorkers(),
		QueueSize:         cfg.Meshing.QueueSize,
		GenWorkers:        cfg.World.Workers(),
		MaxPending:        cfg.Streaming.MaxPending,
		LoadRadius:        cfg.Streaming.LoadRadius,
		EvictRadius:       cfg.Streaming.EvictRadiusOrDefault(),
		Logger:            log,
	}
}

// ReadyMesh is a finished build waiting for upload.
type ReadyMesh struct {
	Coord world.ChunkCoord
	Mesh  *meshing.MeshBuffer
	// Light is the light grid the mesh was built with, nil when lighting is off.
	Light *lighting.Grid
	// Build counts successful builds of the chunk, starting at 1.
	Build uint64

	entryID uint64
}

// Stats is a snapshot of manager counters.
type Stats struct {
	Loaded     int
	Clean      int
	Dirty      int
	Rebuilding int
	Populating int
	GenPending int
	// Queued counts rebuilds accepted by the mesh pool but not started.
	Queued      int
	Inflight    int
	Ready       int
	Builds      uint64
	Failures    uint64
	GenFailures uint64
}

// Manager drives chunks through generation, rebuild and publication.
type Manager struct {
	store   *world.ChunkStore
	gen     world.TerrainGenerator
	catalog *registry.Catalog
	opts    Options
	log     *zap.Logger

	pool    *meshing.WorkerPool
	results chan meshing.MeshResult
	genJobs chan world.ChunkCoord
	wakeCh  chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	idle        *sync.Cond
	closed      bool
	nextID      uint64
	entries     map[world.ChunkCoord]*entry
	dirtyQueue  []world.ChunkCoord
	queuedCount int
	ready       []ReadyMesh
	genPending  int
	inflight    int
	builds      uint64
	failures    uint64
	genFailures uint64
	lastStream  streamMark
}

// New starts a manager over store. Chunks are generated with gen and meshed
// with the block definitions in catalog.
func New(store *world.ChunkStore, gen world.TerrainGenerator, catalog *registry.Catalog, opts Options) *Manager {
	if opts.Mesher == "" {
		opts.Mesher = config.MesherGreedy
	}
	if opts.Falloff <= 0 {
		opts.Falloff = lighting.DefaultFalloff
	}
	opts.MeshWorkers = max(opts.MeshWorkers, 1)
	opts.GenWorkers = max(opts.GenWorkers, 1)
	opts.QueueSize = max(opts.QueueSize, 1)
	if opts.Tick <= 0 {
		opts.Tick = 10 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		store:   store,
		gen:     gen,
		catalog: catalog,
		opts:    opts,
		log:     opts.Logger.Named("lifecycle"),
		pool:    meshing.NewWorkerPool(opts.MeshWorkers, opts.QueueSize),
		results: make(chan meshing.MeshResult, opts.QueueSize+opts.MeshWorkers),
		genJobs: make(chan world.ChunkCoord, max(opts.MaxPending, 64)),
		wakeCh:  make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[world.ChunkCoord]*entry),
	}
	m.idle = sync.NewCond(&m.mu)

	for i := 0; i < opts.GenWorkers; i++ {
		m.wg.Add(1)
		go m.genWorker()
	}
	m.wg.Add(1)
	go m.schedule()

	m.log.Debug("started",
		zap.String("mesher", opts.Mesher),
		zap.Bool("lighting", opts.Lighting),
		zap.Int("mesh_workers", opts.MeshWorkers),
		zap.Int("gen_workers", opts.GenWorkers))
	return m
}

// Close stops all workers. Builds in flight are abandoned.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.idle.Broadcast()
	m.mu.Unlock()

	m.cancel()
	m.pool.Shutdown()
	m.wg.Wait()
	m.log.Debug("closed")
}

// Store returns the chunk store the manager writes to.
func (m *Manager) Store() *world.ChunkStore {
	return m.store
}

// Catalog returns the block catalog used for meshing.
func (m *Manager) Catalog() *registry.Catalog {
	return m.catalog
}

// Load starts tracking coord and queues it for generation. It returns false
// when the chunk is already loaded, the generation queue is full or the
// manager is closed.
func (m *Manager) Load(coord world.ChunkCoord) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	if _, ok := m.entries[coord]; ok {
		return false
	}
	if m.opts.MaxPending > 0 && m.genPending >= m.opts.MaxPending {
		return false
	}

	select {
	case m.genJobs <- coord:
	default:
		return false
	}

	chunk, _ := m.store.GetOrCreate(coord)
	m.nextID++
	m.entries[coord] = &entry{
		id:    m.nextID,
		coord: coord,
		chunk: chunk,
		state: StateUnpopulated,
	}
	m.genPending++
	return true
}

// Unload stops tracking coord and drops its chunk from the store. A build in
// flight for it is discarded when it completes.
func (m *Manager) Unload(coord world.ChunkCoord) bool {
	m.mu.Lock()
	e, ok := m.entries[coord]
	if !ok {
		m.mu.Unlock()
		return false
	}
	m.dropLocked(e)
	m.mu.Unlock()

	m.log.Debug("chunk unloaded", zap.Int("x", coord.X), zap.Int("z", coord.Z))
	return true
}

// dropLocked forgets e and removes its chunk from the store. The store write
// happens under m.mu so a concurrent Load cannot pick up the old chunk.
func (m *Manager) dropLocked(e *entry) {
	e.state = StateUnloaded
	m.dequeueLocked(e)
	delete(m.entries, e.coord)
	m.store.RemoveChunk(e.coord)
	m.idle.Broadcast()
}

// Edit queues a block change at world coordinates. The change is applied by
// the chunk's next rebuild.
func (m *Manager) Edit(worldX, y, worldZ int, b world.BlockType) error {
	return m.ApplyEdits([]Edit{{X: worldX, Y: y, Z: worldZ, Block: b}})
}

// ApplyEdits validates and queues a batch of edits. Either every edit is
// queued or none is; edits to one chunk land in the same rebuild.
func (m *Manager) ApplyEdits(edits []Edit) error {
	coords := make([]world.ChunkCoord, len(edits))
	for i, ed := range edits {
		if err := m.validate(ed); err != nil {
			return err
		}
		coords[i] = m.store.CoordOf(ed.X, ed.Z)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	for i, ed := range edits {
		if _, ok := m.entries[coords[i]]; !ok {
			m.mu.Unlock()
			return fmt.Errorf("edit at (%d, %d, %d): chunk (%d, %d): %w",
				ed.X, ed.Y, ed.Z, coords[i].X, coords[i].Z, ErrChunkNotLoaded)
		}
	}
	for i, ed := range edits {
		e := m.entries[coords[i]]
		e.pending = append(e.pending, ed)
		m.markDirtyLocked(e)
	}
	m.mu.Unlock()

	m.wake()
	return nil
}

func (m *Manager) validate(ed Edit) error {
	if ed.Y < 0 || ed.Y >= m.store.ChunkHeight() {
		return fmt.Errorf("edit at (%d, %d, %d): %w", ed.X, ed.Y, ed.Z, world.ErrOutOfBounds)
	}
	if ed.Block == world.BlockUnknown || !m.catalog.Has(ed.Block) {
		return fmt.Errorf("edit at (%d, %d, %d): block %d: %w", ed.X, ed.Y, ed.Z, ed.Block, registry.ErrUnknownBlock)
	}
	return nil
}

// State returns the lifecycle state of coord, StateUnloaded if it is not loaded.
func (m *Manager) State(coord world.ChunkCoord) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[coord]; ok {
		return e.state
	}
	return StateUnloaded
}

// Mesh returns the last published mesh of coord.
func (m *Manager) Mesh(coord world.ChunkCoord) (*meshing.MeshBuffer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[coord]
	if !ok || e.mesh == nil {
		return nil, false
	}
	return e.mesh, true
}

// Light returns the light grid of the last published mesh of coord.
func (m *Manager) Light(coord world.ChunkCoord) (*lighting.Grid, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[coord]
	if !ok || e.light == nil {
		return nil, false
	}
	return e.light, true
}

// Loaded returns the coordinates of every loaded chunk.
func (m *Manager) Loaded() []world.ChunkCoord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]world.ChunkCoord, 0, len(m.entries))
	for coord := range m.entries {
		out = append(out, coord)
	}
	return out
}

// Stats returns a snapshot of the manager counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Stats{
		Loaded:      len(m.entries),
		GenPending:  m.genPending,
		Queued:      m.pool.GetQueueLength(),
		Inflight:    m.inflight,
		Ready:       len(m.ready),
		Builds:      m.builds,
		Failures:    m.failures,
		GenFailures: m.genFailures,
	}
	for _, e := range m.entries {
		switch e.state {
		case StateClean:
			s.Clean++
		case StateDirty:
			s.Dirty++
		case StateRebuilding:
			s.Rebuilding++
		case StateUnpopulated, StatePopulating:
			s.Populating++
		}
	}
	return s
}

// WaitIdle blocks until no generation or rebuild is pending or running.
func (m *Manager) WaitIdle(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		m.mu.Lock()
		m.idle.Broadcast()
		m.mu.Unlock()
	})
	defer stop()

	m.mu.Lock()
	defer m.mu.Unlock()
	for m.busyLocked() {
		if m.closed {
			return ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		m.idle.Wait()
	}
	return nil
}

func (m *Manager) busyLocked() bool {
	return m.genPending > 0 || m.inflight > 0 || m.queuedCount > 0
}

// wake nudges the scheduler without blocking.
func (m *Manager) wake() {
	select {
	case m.wakeCh <- struct{}{}:
	default:
	}
}
