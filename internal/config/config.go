// Package config handles engine configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap/zapcore"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid config")

// Mesher names.
const (
	MesherGreedy = "greedy"
	MesherNaive  = "naive"
)

// Generator names.
const (
	GeneratorNoise   = "noise"
	GeneratorFlat    = "flat"
	GeneratorDensity = "density"
)

// MaxLoadRadius bounds the streaming radius in chunks.
const MaxLoadRadius = 32

// Config holds all engine settings.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Meshing   MeshingConfig   `yaml:"meshing"`
	Lighting  LightingConfig  `yaml:"lighting"`
	Streaming StreamingConfig `yaml:"streaming"`
	Logging   LoggingConfig   `yaml:"logging"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Debug     DebugConfig     `yaml:"debug"`
}

// WorldConfig holds chunk dimensions and terrain generation settings.
type WorldConfig struct {
	ChunkWidth  int    `yaml:"chunk_width"`
	ChunkHeight int    `yaml:"chunk_height"`
	Seed        int64  `yaml:"seed"`
	Generator   string `yaml:"generator"`   // noise, flat or density
	FlatHeight  int    `yaml:"flat_height"` // surface height of the flat generator
	GenWorkers  int    `yaml:"gen_workers"` // 0 = one per CPU
	Trees       bool   `yaml:"trees"`       // plant trees on grass after generation
}

// MeshingConfig holds mesher selection and worker pool sizing.
type MeshingConfig struct {
	Mode              string `yaml:"mode"`    // greedy or naive
	Workers           int    `yaml:"workers"` // 0 = one per CPU
	QueueSize         int    `yaml:"queue_size"`
	TransparencyAware bool   `yaml:"transparency_aware"`
}

// LightingConfig holds light propagation settings.
type LightingConfig struct {
	Enabled bool    `yaml:"enabled"`
	Falloff float32 `yaml:"falloff"`
}

// StreamingConfig holds chunk streaming radii, in chunks.
type StreamingConfig struct {
	LoadRadius  int `yaml:"load_radius"`
	EvictRadius int `yaml:"evict_radius"` // 0 = twice the load radius
	MaxPending  int `yaml:"max_pending"`
}

// LoggingConfig holds logging settings. The rotation fields apply to LogFile.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// CatalogConfig points at a block catalog file. Empty uses the built-in table.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// DebugConfig holds debug output settings.
type DebugConfig struct {
	DumpDir string `yaml:"dump_dir"` // PNG light and height maps; empty disables
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		World: WorldConfig{
			ChunkWidth:  16,
			ChunkHeight: 128,
			Seed:        1337,
			Generator:   GeneratorNoise,
			FlatHeight:  32,
			Trees:       true,
		},
		Meshing: MeshingConfig{
			Mode:      MesherGreedy,
			QueueSize: 256,
		},
		Lighting: LightingConfig{
			Enabled: true,
			Falloff: 0.08,
		},
		Streaming: StreamingConfig{
			LoadRadius: 4,
			MaxPending: 4096,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

// Validate reports the first setting that is out of range.
func (c *Config) Validate() error {
	w := c.World
	switch {
	case w.ChunkWidth < 1:
		return fmt.Errorf("%w: world.chunk_width %d must be positive", ErrInvalid, w.ChunkWidth)
	case w.ChunkHeight < 1:
		return fmt.Errorf("%w: world.chunk_height %d must be positive", ErrInvalid, w.ChunkHeight)
	case w.Generator != GeneratorNoise && w.Generator != GeneratorFlat && w.Generator != GeneratorDensity:
		return fmt.Errorf("%w: world.generator %q", ErrInvalid, w.Generator)
	case w.Generator == GeneratorFlat && (w.FlatHeight < 1 || w.FlatHeight >= w.ChunkHeight):
		return fmt.Errorf("%w: world.flat_height %d outside [1, %d)", ErrInvalid, w.FlatHeight, w.ChunkHeight)
	case w.GenWorkers < 0:
		return fmt.Errorf("%w: world.gen_workers %d", ErrInvalid, w.GenWorkers)
	}

	m := c.Meshing
	switch {
	case m.Mode != MesherGreedy && m.Mode != MesherNaive:
		return fmt.Errorf("%w: meshing.mode %q", ErrInvalid, m.Mode)
	case m.Workers < 0:
		return fmt.Errorf("%w: meshing.workers %d", ErrInvalid, m.Workers)
	case m.QueueSize < 1:
		return fmt.Errorf("%w: meshing.queue_size %d must be positive", ErrInvalid, m.QueueSize)
	}

	if c.Lighting.Falloff <= 0 || c.Lighting.Falloff > 1 {
		return fmt.Errorf("%w: lighting.falloff %v outside (0, 1]", ErrInvalid, c.Lighting.Falloff)
	}

	s := c.Streaming
	switch {
	case s.LoadRadius < 0:
		return fmt.Errorf("%w: streaming.load_radius %d", ErrInvalid, s.LoadRadius)
	case s.EvictRadius != 0 && s.EvictRadius <= s.LoadRadius:
		return fmt.Errorf("%w: streaming.evict_radius %d must exceed load_radius %d", ErrInvalid, s.EvictRadius, s.LoadRadius)
	case s.MaxPending < 0:
		return fmt.Errorf("%w: streaming.max_pending %d", ErrInvalid, s.MaxPending)
	}

	l := c.Logging
	if _, err := zapcore.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", ErrInvalid, err)
	}
	if l.MaxSizeMB < 0 || l.MaxBackups < 0 || l.MaxAgeDays < 0 {
		return fmt.Errorf("%w: logging rotation settings must not be negative", ErrInvalid)
	}
	return nil
}

// ClampLoadRadius sets the load radius, clamped to [0, MaxLoadRadius].
func (c *Config) ClampLoadRadius(radius int) {
	c.Streaming.LoadRadius = min(max(radius, 0), MaxLoadRadius)
}

// EvictRadiusOrDefault returns the radius beyond which chunks are unloaded
// (larger than the load radius).
func (s StreamingConfig) EvictRadiusOrDefault() int {
	if s.EvictRadius > 0 {
		return s.EvictRadius
	}
	return s.LoadRadius*2 + 1
}

// MeshWorkers returns the meshing pool size.
func (m MeshingConfig) MeshWorkers() int {
	if m.Workers > 0 {
		return m.Workers
	}
	return max(runtime.NumCPU(), 1)
}

// Workers returns the generation worker count.
func (w WorldConfig) Workers() int {
	if w.GenWorkers > 0 {
		return w.GenWorkers
	}
	return max(runtime.NumCPU(), 1)
}
