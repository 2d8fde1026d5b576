package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"voxelmesh/internal/world"
)

func TestNewCatalogBuiltins(t *testing.T) {
	c := NewCatalog()
	for _, b := range []world.BlockType{world.BlockAir, world.BlockUnknown} {
		if !c.Has(b) {
			t.Errorf("expected %d registered", b)
		}
		if c.IsSolid(b) {
			t.Errorf("expected %d not solid", b)
		}
		if c.Transparency(b) != 1 {
			t.Errorf("expected %d fully transparent", b)
		}
	}
	if c.Has(world.BlockStone) {
		t.Error("empty catalog should not know stone")
	}
	if len(c.Definitions()) != 0 {
		t.Errorf("expected no user definitions, got %d", len(c.Definitions()))
	}
}

func TestRegisterRules(t *testing.T) {
	tests := []struct {
		name string
		def  BlockDefinition
	}{
		{"reserved unknown", BlockDefinition{ID: world.BlockUnknown, Name: "x"}},
		{"solid air", BlockDefinition{ID: world.BlockAir, Name: "air", Solid: true}},
		{"negative transparency", BlockDefinition{ID: 20, Name: "x", Transparency: -0.1}},
		{"transparency above one", BlockDefinition{ID: 20, Name: "x", Transparency: 1.5}},
		{"missing name", BlockDefinition{ID: 20}},
		{"duplicate name", BlockDefinition{ID: 21, Name: "stone"}},
		{"duplicate code", BlockDefinition{ID: world.BlockStone, Name: "granite"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCatalog()
			if err := c.Register(BlockDefinition{ID: world.BlockStone, Name: "stone", Solid: true}); err != nil {
				t.Fatal(err)
			}
			if err := c.Register(tt.def); !errors.Is(err, ErrInvalidDefinition) {
				t.Errorf("expected ErrInvalidDefinition, got %v", err)
			}
		})
	}
}

func TestRegisterReplacesAir(t *testing.T) {
	c := NewCatalog()
	if err := c.Register(BlockDefinition{ID: world.BlockAir, Name: "void", Transparency: 1}); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.ByName("air"); ok {
		t.Error("old air name should be dropped")
	}
	if b, ok := c.ByName("void"); !ok || b != world.BlockAir {
		t.Errorf("ByName(void) = %d, %v", b, ok)
	}
}

func TestFaceTexturesResolve(t *testing.T) {
	tex := FaceTextures{All: "all", Top: "top", Side: "side", North: "north"}
	want := map[world.Face]string{
		world.FaceTop:    "top",
		world.FaceBottom: "all",
		world.FaceWest:   "side",
		world.FaceEast:   "side",
		world.FaceNorth:  "north",
		world.FaceSouth:  "side",
	}
	for face, name := range want {
		if got := tex.Resolve(face); got != name {
			t.Errorf("Resolve(%v) = %q, want %q", face, got, name)
		}
	}
	if got := (FaceTextures{}).Resolve(world.FaceTop); got != "" {
		t.Errorf("empty textures resolved to %q", got)
	}
}

func TestMaterialAssignment(t *testing.T) {
	c := Default()

	// Textures get layers in first-seen order.
	grassTop := c.Material(world.BlockGrass, world.FaceTop)
	grassBottom := c.Material(world.BlockGrass, world.FaceBottom)
	grassSide := c.Material(world.BlockGrass, world.FaceNorth)
	dirt := c.Material(world.BlockDirt, world.FaceTop)

	if grassBottom != dirt {
		t.Errorf("grass bottom %d should share the dirt layer %d", grassBottom, dirt)
	}
	if grassTop == grassSide || grassTop == dirt {
		t.Errorf("grass top %d should have its own layer", grassTop)
	}
	for _, face := range world.AllFaces {
		if got := c.Material(world.BlockStone, face); got != c.Material(world.BlockStone, world.FaceTop) {
			t.Errorf("stone %v uses layer %d", face, got)
		}
	}

	if name, ok := c.TextureName(grassTop); !ok || name != "grass_top.png" {
		t.Errorf("TextureName(%d) = %q, %v", grassTop, name, ok)
	}
	if name, ok := c.TextureName(grassSide); !ok || name != "grass_side.png" {
		t.Errorf("TextureName(%d) = %q, %v", grassSide, name, ok)
	}
	if c.Material(world.BlockType(200), world.FaceTop) != NoTexture {
		t.Error("unregistered block should use NoTexture")
	}
}

func TestUntexturedFacesDoNotShareTheFirstLayer(t *testing.T) {
	c := NewCatalog()
	if err := c.Register(BlockDefinition{ID: world.BlockBedrock, Name: "bedrock", Solid: true, Textures: FaceTextures{All: "bedrock.png"}}); err != nil {
		t.Fatal(err)
	}
	if err := c.Register(BlockDefinition{ID: world.BlockStone, Name: "stone", Solid: true, Textures: FaceTextures{Top: "stone_top.png"}}); err != nil {
		t.Fatal(err)
	}

	bedrock := c.Material(world.BlockBedrock, world.FaceTop)
	if bedrock != 1 {
		t.Errorf("first texture layer: got %d, want 1", bedrock)
	}
	if got := c.Material(world.BlockStone, world.FaceNorth); got != NoTexture {
		t.Errorf("untextured face: got layer %d, want %d", got, NoTexture)
	}
	if got := c.Material(world.BlockStone, world.FaceTop); got != 2 {
		t.Errorf("stone top: got layer %d, want 2", got)
	}
	if _, ok := c.TextureName(NoTexture); ok {
		t.Error("NoTexture should have no name")
	}
	if _, ok := c.TextureName(3); ok {
		t.Error("layer past the last texture should have no name")
	}
	if got := c.TextureNames(); len(got) != 2 || got[0] != "bedrock.png" || got[1] != "stone_top.png" {
		t.Errorf("TextureNames() = %q", got)
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	tests := []struct {
		block          world.BlockType
		solid          bool
		renderAgainst  bool
		opaqueForLight bool
	}{
		{world.BlockStone, true, false, true},
		{world.BlockGrass, true, false, true},
		{world.BlockGlass, true, true, false},
		{world.BlockOakLeaves, true, true, false},
		{world.BlockWater, false, false, false},
		{world.BlockAir, false, false, false},
	}
	for _, tt := range tests {
		if got := c.IsSolid(tt.block); got != tt.solid {
			t.Errorf("IsSolid(%d) = %v, want %v", tt.block, got, tt.solid)
		}
		if got := c.RendersAgainst(tt.block); got != tt.renderAgainst {
			t.Errorf("RendersAgainst(%d) = %v, want %v", tt.block, got, tt.renderAgainst)
		}
		if got := c.Transparency(tt.block) == 0; got != tt.opaqueForLight {
			t.Errorf("Transparency(%d) = %v", tt.block, c.Transparency(tt.block))
		}
	}
	if b, ok := c.ByName("coal_ore"); !ok || b != world.BlockCoalOre {
		t.Errorf("ByName(coal_ore) = %d, %v", b, ok)
	}
	if !c.IsTransparent(world.BlockType(200)) || c.IsSolid(world.BlockType(200)) {
		t.Error("unregistered codes should behave like air")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	c := Default()
	data, err := c.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}

	want := c.Definitions()
	got := back.Definitions()
	if len(got) != len(want) {
		t.Fatalf("expected %d definitions, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("definition %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]byte("blocks: [")); err == nil {
		t.Error("expected YAML error")
	}
	bad := []byte("blocks:\n  - id: 255\n    name: nope\n")
	if _, err := Parse(bad); !errors.Is(err, ErrInvalidDefinition) {
		t.Errorf("expected ErrInvalidDefinition, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.yaml")
	data := []byte(`blocks:
  - id: 2
    name: stone
    solid: true
    textures:
      all: stone.png
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !c.IsSolid(world.BlockStone) {
		t.Error("expected stone to be solid")
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}
