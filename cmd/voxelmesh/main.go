// Command voxelmesh streams chunks around a moving viewer, meshes them and
// reports what a renderer would upload.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"voxelmesh/internal/config"
	"voxelmesh/internal/debugdump"
	"voxelmesh/internal/lifecycle"
	"voxelmesh/internal/logger"
	"voxelmesh/internal/profiling"
	"voxelmesh/internal/world"

	"github.com/xlab/closer"
	"go.uber.org/zap"
)

var (
	flagX       = flag.Float64("x", 0, "Viewer start X")
	flagZ       = flag.Float64("z", 0, "Viewer start Z")
	flagSteps   = flag.Int("steps", 1, "Number of chunk-sized steps the viewer walks along +X")
	flagTimeout = flag.Duration("timeout", 30*time.Second, "Maximum wait for meshing per step")
)

func main() {
	cfgFlags := config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := config.Load(cfgFlags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging)

	catalog, err := setupCatalog(cfg)
	if err != nil {
		logger.Log.Fatal("loading block catalog", zap.Error(err))
	}
	gen, err := setupGenerator(cfg)
	if err != nil {
		logger.Log.Fatal("creating generator", zap.Error(err))
	}

	store := world.NewChunkStore(cfg.World.ChunkWidth, cfg.World.ChunkHeight)
	opts := lifecycle.OptionsFromConfig(cfg, logger.Log)
	if cfg.World.Trees {
		opts.Decorator = world.NewTreePlacer(cfg.World.Seed, gen, cfg.World.ChunkWidth, cfg.World.ChunkHeight)
	}
	mgr := lifecycle.New(store, gen, catalog, opts)

	closer.Bind(func() {
		mgr.Close()
		logger.Log.Info("profile", zap.String("top", profiling.TopN(6)))
		logger.Sync()
	})
	defer closer.Close()

	logger.Log.Info("voxelmesh starting",
		zap.String("mesher", cfg.Meshing.Mode),
		zap.String("generator", cfg.World.Generator),
		zap.Int64("seed", cfg.World.Seed),
		zap.Bool("trees", cfg.World.Trees),
		zap.Int("radius", cfg.Streaming.LoadRadius),
		zap.Int("blocks", len(catalog.Definitions())),
		zap.Int("textures", len(catalog.TextureNames())))

	x, z := float32(*flagX), float32(*flagZ)
	for step := 0; step < max(*flagSteps, 1); step++ {
		if err := runStep(mgr, x, z, cfg.Debug.DumpDir, *flagTimeout); err != nil {
			logger.Log.Error("step failed", zap.Int("step", step), zap.Error(err))
			closer.Exit(1)
		}
		x += float32(cfg.World.ChunkWidth)
	}
}

// runStep streams around (x, z), waits for every rebuild to land and drains
// the ready queue like a render loop would.
func runStep(mgr *lifecycle.Manager, x, z float32, dumpDir string, timeout time.Duration) error {
	start := time.Now()
	loaded, unloaded := mgr.StreamAround(x, z)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := mgr.WaitIdle(ctx); err != nil {
		return fmt.Errorf("waiting for meshes: %w", err)
	}

	var quads, vertexBytes, indexBytes int
	ready := mgr.DrainReady()
	for _, r := range ready {
		quads += r.Mesh.Quads()
		vertexBytes += len(r.Mesh.Bytes())
		indexBytes += len(r.Mesh.IndexBytes()) + len(r.Mesh.TransparentIndexBytes())
		logger.Log.Debug("mesh ready",
			zap.Int("x", r.Coord.X), zap.Int("z", r.Coord.Z),
			zap.Uint64("build", r.Build),
			zap.Int("quads", r.Mesh.Quads()),
			zap.Int("vertices", len(r.Mesh.Vertices)))

		if dumpDir != "" {
			if err := dump(mgr, r, dumpDir); err != nil {
				return err
			}
		}
	}

	s := mgr.Stats()
	logger.Log.Info("step done",
		zap.Float32("x", x), zap.Float32("z", z),
		zap.Int("loaded", loaded), zap.Int("unloaded", unloaded),
		zap.Int("meshes", len(ready)), zap.Int("quads", quads),
		zap.Int("vertex_bytes", vertexBytes), zap.Int("index_bytes", indexBytes),
		zap.Int("chunks", s.Loaded), zap.Int("queued", s.Queued),
		zap.Uint64("failures", s.Failures), zap.Uint64("gen_failures", s.GenFailures),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func dump(mgr *lifecycle.Manager, r lifecycle.ReadyMesh, dir string) error {
	c := mgr.Store().GetChunk(r.Coord)
	if c == nil {
		return nil
	}
	ox, oz := c.Origin()
	sliceY := min(surfaceY(mgr, ox+c.Width()/2, oz+c.Width()/2)+1, c.Height()-1)
	files, err := debugdump.DumpChunk(dir, c, r.Light, mgr.Catalog(), sliceY)
	if err != nil {
		return fmt.Errorf("dumping chunk %v: %w", r.Coord, err)
	}
	logger.Log.Debug("dumped", zap.Strings("files", files))
	return nil
}

// surfaceY returns the highest solid block of a column, or 0.
func surfaceY(mgr *lifecycle.Manager, worldX, worldZ int) int {
	store := mgr.Store()
	for y := store.ChunkHeight() - 1; y > 0; y-- {
		if mgr.Catalog().IsSolid(store.BlockAt(worldX, y, worldZ)) {
			return y
		}
	}
	return 0
}
