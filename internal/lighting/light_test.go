package lighting

import (
	"testing"

	"voxelmesh/internal/registry"
	"voxelmesh/internal/world"
)

func TestComputeOpenSky(t *testing.T) {
	grid := world.NewGrid(4, 8)
	light := Compute(grid, registry.Default(), DefaultFalloff)

	for y := 0; y < 8; y++ {
		for z := 0; z < 4; z++ {
			for x := 0; x < 4; x++ {
				if l := light.At(x, y, z); l != MaxLight {
					t.Fatalf("(%d,%d,%d) = %v, want %v", x, y, z, l, MaxLight)
				}
			}
		}
	}
}

// TestComputeFloodUnderRoof lights a room whose roof is open only along x=7.
func TestComputeFloodUnderRoof(t *testing.T) {
	grid := world.NewGrid(8, 3)
	grid.Fill(0, 2, 0, 7, 3, 8, world.BlockStone)

	light := Compute(grid, registry.Default(), 0.25)

	want := map[int]float32{7: 1, 6: 0.75, 5: 0.5, 4: 0.25, 3: 0, 0: 0}
	for x, l := range want {
		for _, y := range []int{0, 1} {
			if got := light.At(x, y, 3); got != l {
				t.Errorf("light at x=%d y=%d = %v, want %v", x, y, got, l)
			}
		}
	}
}

func TestComputeTransparencyAttenuatesRay(t *testing.T) {
	grid := world.NewGrid(1, 4)
	if err := grid.Set(0, 3, 0, world.BlockGlass); err != nil {
		t.Fatal(err)
	}
	catalog := registry.Default()
	light := Compute(grid, catalog, DefaultFalloff)

	glass := catalog.Transparency(world.BlockGlass)
	for y := 0; y < 4; y++ {
		if l := light.At(0, y, 0); l != glass {
			t.Errorf("y=%d: light %v, want %v", y, l, glass)
		}
	}
}

func TestComputeDefaultsFalloff(t *testing.T) {
	grid := world.NewGrid(4, 2)
	grid.Fill(0, 1, 0, 3, 2, 4, world.BlockStone)

	a := Compute(grid, registry.Default(), 0)
	b := Compute(grid, registry.Default(), DefaultFalloff)
	for x := 0; x < 4; x++ {
		if a.At(x, 0, 0) != b.At(x, 0, 0) {
			t.Errorf("x=%d: %v != %v", x, a.At(x, 0, 0), b.At(x, 0, 0))
		}
	}
}

func TestGridAtOutside(t *testing.T) {
	g := NewGrid(2, 2)
	if g.Width() != 2 || g.Height() != 2 {
		t.Fatalf("dims = %dx%d", g.Width(), g.Height())
	}
	if l := g.At(0, 0, 0); l != 0 {
		t.Errorf("new grid should be dark, got %v", l)
	}
	for _, p := range [][3]int{{-1, 0, 0}, {2, 0, 0}, {0, -1, 0}, {0, 2, 0}, {0, 0, 5}} {
		if l := g.At(p[0], p[1], p[2]); l != MaxLight {
			t.Errorf("At%v = %v, want %v", p, l, MaxLight)
		}
	}
}
