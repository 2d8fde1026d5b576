package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.World.ChunkWidth != 16 || cfg.World.ChunkHeight != 128 {
		t.Errorf("expected 16x128 chunks, got %dx%d", cfg.World.ChunkWidth, cfg.World.ChunkHeight)
	}
	if cfg.World.Generator != GeneratorNoise {
		t.Errorf("expected generator %q, got %q", GeneratorNoise, cfg.World.Generator)
	}
	if cfg.Meshing.Mode != MesherGreedy {
		t.Errorf("expected mesher %q, got %q", MesherGreedy, cfg.Meshing.Mode)
	}
	if !cfg.Lighting.Enabled {
		t.Error("expected lighting to be enabled by default")
	}
	if cfg.Lighting.Falloff != 0.08 {
		t.Errorf("expected falloff 0.08, got %f", cfg.Lighting.Falloff)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Catalog.Path != "" {
		t.Errorf("expected built-in catalog, got %s", cfg.Catalog.Path)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "voxelmesh.yaml")

	yamlContent := `
world:
  chunk_width: 32
  seed: 99
  generator: flat
  flat_height: 10

meshing:
  mode: naive
  workers: 3
  transparency_aware: true

lighting:
  enabled: false

streaming:
  load_radius: 6
  evict_radius: 9

logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.World.ChunkWidth != 32 {
		t.Errorf("expected chunk width 32, got %d", cfg.World.ChunkWidth)
	}
	// Unset keys keep their defaults.
	if cfg.World.ChunkHeight != 128 {
		t.Errorf("expected chunk height 128, got %d", cfg.World.ChunkHeight)
	}
	if cfg.World.Seed != 99 || cfg.World.Generator != GeneratorFlat || cfg.World.FlatHeight != 10 {
		t.Errorf("unexpected world section: %+v", cfg.World)
	}
	if cfg.Meshing.Mode != MesherNaive || cfg.Meshing.MeshWorkers() != 3 || !cfg.Meshing.TransparencyAware {
		t.Errorf("unexpected meshing section: %+v", cfg.Meshing)
	}
	if cfg.Lighting.Enabled {
		t.Error("expected lighting disabled")
	}
	if cfg.Lighting.Falloff != 0.08 {
		t.Errorf("expected default falloff, got %f", cfg.Lighting.Falloff)
	}
	if cfg.Streaming.LoadRadius != 6 || cfg.Streaming.EvictRadiusOrDefault() != 9 {
		t.Errorf("unexpected streaming section: %+v", cfg.Streaming)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.World.ChunkWidth = 0 }},
		{"unknown generator", func(c *Config) { c.World.Generator = "perlin" }},
		{"flat above top", func(c *Config) { c.World.Generator = GeneratorFlat; c.World.FlatHeight = 128 }},
		{"unknown mesher", func(c *Config) { c.Meshing.Mode = "marching" }},
		{"empty queue", func(c *Config) { c.Meshing.QueueSize = 0 }},
		{"zero falloff", func(c *Config) { c.Lighting.Falloff = 0 }},
		{"evict inside load", func(c *Config) { c.Streaming.LoadRadius = 4; c.Streaming.EvictRadius = 4 }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"negative log backups", func(c *Config) { c.Logging.MaxBackups = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestValidateGenerators(t *testing.T) {
	for _, name := range []string{GeneratorNoise, GeneratorFlat, GeneratorDensity} {
		cfg := Default()
		cfg.World.Generator = name
		if err := cfg.Validate(); err != nil {
			t.Errorf("generator %q: %v", name, err)
		}
	}
}

func TestClampLoadRadius(t *testing.T) {
	cfg := Default()
	cfg.ClampLoadRadius(-3)
	if cfg.Streaming.LoadRadius != 0 {
		t.Errorf("expected 0, got %d", cfg.Streaming.LoadRadius)
	}
	cfg.ClampLoadRadius(1000)
	if cfg.Streaming.LoadRadius != MaxLoadRadius {
		t.Errorf("expected %d, got %d", MaxLoadRadius, cfg.Streaming.LoadRadius)
	}
	if got := cfg.Streaming.EvictRadiusOrDefault(); got <= cfg.Streaming.LoadRadius {
		t.Errorf("evict radius %d not beyond load radius %d", got, cfg.Streaming.LoadRadius)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.World.Seed = 424242
	cfg.Meshing.Mode = MesherNaive
	cfg.Debug.DumpDir = "/tmp/dumps"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("reloaded config differs:\n got  %+v\n want %+v", *loaded, *cfg)
	}
}

func TestLoadAppliesFlagsOverFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "voxelmesh.yaml")
	data := []byte("world:\n  seed: 7\n  generator: flat\nmeshing:\n  mode: naive\n")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		t.Fatal(err)
	}

	fs := flag.NewFlagSet("voxelmesh", flag.ContinueOnError)
	f := RegisterFlags(fs)
	args := []string{"-config", configPath, "-seed", "42", "-radius", "100", "-lighting=false", "-trees=false", "-generator", "density"}
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.World.Seed != 42 {
		t.Errorf("flag should override file seed, got %d", cfg.World.Seed)
	}
	if cfg.World.Generator != GeneratorDensity {
		t.Errorf("expected generator %q, got %q", GeneratorDensity, cfg.World.Generator)
	}
	if cfg.Meshing.Mode != MesherNaive {
		t.Errorf("file mesher lost: %q", cfg.Meshing.Mode)
	}
	if cfg.Streaming.LoadRadius != MaxLoadRadius {
		t.Errorf("expected radius clamped to %d, got %d", MaxLoadRadius, cfg.Streaming.LoadRadius)
	}
	if cfg.Lighting.Enabled || cfg.World.Trees {
		t.Error("boolean flags not applied")
	}
}

func TestLoadUnsetFlagsKeepFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "voxelmesh.yaml")
	if err := os.WriteFile(configPath, []byte("lighting:\n  enabled: false\n"), 0644); err != nil {
		t.Fatal(err)
	}

	fs := flag.NewFlagSet("voxelmesh", flag.ContinueOnError)
	f := RegisterFlags(fs)
	if err := fs.Parse([]string{"-config", configPath}); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Lighting.Enabled {
		t.Error("unset -lighting flag overrode the file")
	}
	if cfg.Streaming.LoadRadius != Default().Streaming.LoadRadius {
		t.Errorf("unset -radius flag changed the radius to %d", cfg.Streaming.LoadRadius)
	}
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "voxelmesh.yaml")
	if err := os.WriteFile(configPath, []byte("meshing:\n  mdoe: naive\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(configPath); err == nil {
		t.Fatal("expected an error for an unknown key")
	}
}

func TestLoadFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "voxelmesh.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("empty file: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("empty file changed defaults: %+v", cfg)
	}
}
