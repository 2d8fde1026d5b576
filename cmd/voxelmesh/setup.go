package main

import (
	"fmt"

	"voxelmesh/internal/config"
	"voxelmesh/internal/registry"
	"voxelmesh/internal/world"
)

// setupCatalog loads the configured block catalog or the built-in one.
func setupCatalog(cfg *config.Config) (*registry.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return registry.Default(), nil
	}
	return registry.LoadFile(cfg.Catalog.Path)
}

// setupGenerator picks the terrain generator named in the config.
func setupGenerator(cfg *config.Config) (world.TerrainGenerator, error) {
	switch cfg.World.Generator {
	case config.GeneratorNoise:
		return world.NewGenerator(cfg.World.Seed, cfg.World.ChunkHeight), nil
	case config.GeneratorFlat:
		return world.NewFlatGenerator(cfg.World.FlatHeight), nil
	case config.GeneratorDensity:
		return world.NewDensityGenerator(cfg.World.Seed, cfg.World.ChunkHeight), nil
	default:
		return nil, fmt.Errorf("unknown generator %q", cfg.World.Generator)
	}
}
