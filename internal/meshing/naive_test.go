package meshing

import (
	"testing"

	"voxelmesh/internal/lighting"
	"voxelmesh/internal/registry"
	"voxelmesh/internal/world"
)

func TestNaiveSingleVoxel(t *testing.T) {
	g := world.NewGrid(8, 8)
	_ = g.Set(1, 1, 1, world.BlockStone)
	mesh, err := BuildNaive(g, world.ChunkCoord{}, registry.Default(), nil, NaiveOptions{})
	if err != nil {
		t.Fatalf("BuildNaive: %v", err)
	}
	if got := mesh.Quads(); got != 6 {
		t.Fatalf("quads: got %d, want 6", got)
	}
	if mesh.Light != nil {
		t.Fatalf("light: got %d values without a light grid", len(mesh.Light))
	}
}

func TestNaiveDoesNotMerge(t *testing.T) {
	mesh, err := BuildNaive(solidCube(4, 4, world.BlockStone), world.ChunkCoord{}, registry.Default(), nil, NaiveOptions{})
	if err != nil {
		t.Fatalf("BuildNaive: %v", err)
	}
	if got := mesh.Quads(); got != 6*16 {
		t.Fatalf("quads: got %d, want %d", got, 6*16)
	}
}

func TestNaiveTransparencyAware(t *testing.T) {
	catalog := registry.Default()
	g := world.NewGrid(8, 8)
	_ = g.Set(2, 2, 2, world.BlockStone)
	_ = g.Set(3, 2, 2, world.BlockGlass)

	plain, err := BuildNaive(g, world.ChunkCoord{}, catalog, nil, NaiveOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got := plain.Quads(); got != 10 {
		t.Fatalf("plain: got %d quads, want 10", got)
	}

	aware, err := BuildNaive(g, world.ChunkCoord{}, catalog, nil, NaiveOptions{TransparencyAware: true})
	if err != nil {
		t.Fatal(err)
	}
	// The stone face behind the glass is drawn; glass does not render
	// against opaque stone.
	if got := aware.Quads(); got != 11 {
		t.Fatalf("transparency aware: got %d quads, want 11", got)
	}
}

func TestNaiveLight(t *testing.T) {
	catalog := registry.Default()
	g := world.NewGrid(4, 8)
	g.Fill(0, 0, 0, 3, 1, 3, world.BlockStone)
	light := lighting.Compute(g, catalog, lighting.DefaultFalloff)

	mesh, err := BuildNaive(g, world.ChunkCoord{}, catalog, nil, NaiveOptions{Light: light})
	if err != nil {
		t.Fatalf("BuildNaive: %v", err)
	}
	if len(mesh.Light) != len(mesh.Vertices) {
		t.Fatalf("light: got %d values, want one per vertex (%d)", len(mesh.Light), len(mesh.Vertices))
	}
	for i, v := range mesh.Vertices {
		if v.Face == world.FaceTop && mesh.Light[i] != lighting.MaxLight {
			t.Fatalf("vertex %d: top face light %v, want %v", i, mesh.Light[i], lighting.MaxLight)
		}
		if v.Face == world.FaceBottom && v.Position.Y() == 0 && mesh.Light[i] != lighting.MaxLight {
			// Below the grid counts as lit.
			t.Fatalf("vertex %d: floor light %v, want %v", i, mesh.Light[i], lighting.MaxLight)
		}
	}
}
