package registry

import (
	"errors"
	"fmt"

	"voxelmesh/internal/world"
)

// NoTexture is the material layer of faces without a texture. Real textures
// start at layer 1.
const NoTexture int32 = 0

var (
	// ErrUnknownBlock is returned for block codes with no definition.
	ErrUnknownBlock = errors.New("unknown block type")
	// ErrInvalidDefinition is returned when a definition breaks catalog rules.
	ErrInvalidDefinition = errors.New("invalid block definition")
)

// FaceTextures names the texture of each face. The most specific field wins:
// West/East/North/South over Side, Top/Bottom over All.
type FaceTextures struct {
	All    string `yaml:"all,omitempty"`
	Top    string `yaml:"top,omitempty"`
	Bottom string `yaml:"bottom,omitempty"`
	Side   string `yaml:"side,omitempty"`
	West   string `yaml:"west,omitempty"`
	East   string `yaml:"east,omitempty"`
	North  string `yaml:"north,omitempty"`
	South  string `yaml:"south,omitempty"`
}

// Resolve returns the texture name of a face.
func (t FaceTextures) Resolve(face world.Face) string {
	pick := func(names ...string) string {
		for _, n := range names {
			if n != "" {
				return n
			}
		}
		return ""
	}
	switch face {
	case world.FaceTop:
		return pick(t.Top, t.All)
	case world.FaceBottom:
		return pick(t.Bottom, t.All)
	case world.FaceWest:
		return pick(t.West, t.Side, t.All)
	case world.FaceEast:
		return pick(t.East, t.Side, t.All)
	case world.FaceNorth:
		return pick(t.North, t.Side, t.All)
	default:
		return pick(t.South, t.Side, t.All)
	}
}

// BlockDefinition defines the properties of a block type
type BlockDefinition struct {
	ID          world.BlockType `yaml:"id"`
	Name        string          `yaml:"name"`
	Solid       bool            `yaml:"solid"`
	Transparent bool            `yaml:"transparent"`
	// Transparency is the fraction of light passing through: 0 is opaque, 1 is clear.
	Transparency float32 `yaml:"transparency"`
	// RenderAgainst makes neighbours emit their faces against this block.
	RenderAgainst bool         `yaml:"render_against"`
	Textures      FaceTextures `yaml:"textures"`

	// Materials holds the texture layer of each face, filled on registration.
	Materials [world.NumFaces]int32 `yaml:"-"`
}

// Catalog maps block codes to definitions. It is read-only once built and
// safe for concurrent readers.
type Catalog struct {
	defs         [256]*BlockDefinition
	names        map[string]world.BlockType
	textureNames []string
	textureIndex map[string]int32
}

// NewCatalog returns a catalog holding only air and the unknown marker.
func NewCatalog() *Catalog {
	c := &Catalog{
		names:        make(map[string]world.BlockType),
		textureIndex: make(map[string]int32),
	}
	c.defs[world.BlockAir] = &BlockDefinition{ID: world.BlockAir, Name: "air", Transparent: true, Transparency: 1}
	c.names["air"] = world.BlockAir
	c.defs[world.BlockUnknown] = &BlockDefinition{ID: world.BlockUnknown, Name: "unknown", Transparent: true, Transparency: 1}
	c.names["unknown"] = world.BlockUnknown
	return c
}

// Register adds a definition and assigns material ids to its faces.
func (c *Catalog) Register(def BlockDefinition) error {
	switch {
	case def.ID == world.BlockUnknown:
		return fmt.Errorf("block %q: code %d is reserved: %w", def.Name, def.ID, ErrInvalidDefinition)
	case def.ID == world.BlockAir && def.Solid:
		return fmt.Errorf("block %q: air must not be solid: %w", def.Name, ErrInvalidDefinition)
	case def.Transparency < 0 || def.Transparency > 1:
		return fmt.Errorf("block %q: transparency %v outside [0,1]: %w", def.Name, def.Transparency, ErrInvalidDefinition)
	case def.Name == "":
		return fmt.Errorf("block %d: missing name: %w", def.ID, ErrInvalidDefinition)
	}
	if prev, ok := c.names[def.Name]; ok && prev != def.ID {
		return fmt.Errorf("block %q: name already used by %d: %w", def.Name, prev, ErrInvalidDefinition)
	}
	if existing := c.defs[def.ID]; existing != nil && def.ID != world.BlockAir {
		return fmt.Errorf("block %q: code %d already registered as %q: %w", def.Name, def.ID, existing.Name, ErrInvalidDefinition)
	}

	for _, face := range world.AllFaces {
		def.Materials[face] = c.registerTexture(def.Textures.Resolve(face))
	}
	if old := c.defs[def.ID]; old != nil {
		delete(c.names, old.Name)
	}
	d := def
	c.defs[def.ID] = &d
	c.names[def.Name] = def.ID
	return nil
}

// registerTexture returns the layer of a texture, adding it on first sight.
func (c *Catalog) registerTexture(name string) int32 {
	if name == "" {
		return NoTexture
	}
	if idx, ok := c.textureIndex[name]; ok {
		return idx
	}
	idx := int32(len(c.textureNames)) + 1
	c.textureIndex[name] = idx
	c.textureNames = append(c.textureNames, name)
	return idx
}

// Lookup returns the definition of b, or nil if b is not registered.
func (c *Catalog) Lookup(b world.BlockType) *BlockDefinition {
	return c.defs[b]
}

// Has reports whether b is registered.
func (c *Catalog) Has(b world.BlockType) bool {
	return c.defs[b] != nil
}

// ByName returns the code of a named block.
func (c *Catalog) ByName(name string) (world.BlockType, bool) {
	b, ok := c.names[name]
	return b, ok
}

// IsSolid reports whether b occludes faces. Unregistered codes are not solid.
func (c *Catalog) IsSolid(b world.BlockType) bool {
	d := c.defs[b]
	return d != nil && d.Solid
}

// IsTransparent reports whether b can be seen through.
func (c *Catalog) IsTransparent(b world.BlockType) bool {
	d := c.defs[b]
	return d == nil || d.Transparent
}

// RendersAgainst reports whether faces are drawn against a neighbouring b.
func (c *Catalog) RendersAgainst(b world.BlockType) bool {
	d := c.defs[b]
	return d != nil && d.RenderAgainst
}

// Transparency returns the light transmission factor of b. Unregistered
// codes behave like air.
func (c *Catalog) Transparency(b world.BlockType) float32 {
	d := c.defs[b]
	if d == nil {
		return 1
	}
	return d.Transparency
}

// Material returns the texture layer for a face of b.
func (c *Catalog) Material(b world.BlockType, face world.Face) int32 {
	d := c.defs[b]
	if d == nil {
		return NoTexture
	}
	return d.Materials[face]
}

// TextureName returns the texture of a material layer.
func (c *Catalog) TextureName(layer int32) (string, bool) {
	if layer <= NoTexture || int(layer) > len(c.textureNames) {
		return "", false
	}
	return c.textureNames[layer-1], true
}

// TextureNames returns texture names in layer order, starting at layer 1.
func (c *Catalog) TextureNames() []string {
	out := make([]string, len(c.textureNames))
	copy(out, c.textureNames)
	return out
}

// Definitions returns registered definitions in code order, without the
// built-in air and unknown entries.
func (c *Catalog) Definitions() []BlockDefinition {
	var out []BlockDefinition
	for code, d := range c.defs {
		b := world.BlockType(code)
		if d == nil || b == world.BlockAir || b == world.BlockUnknown {
			continue
		}
		out = append(out, *d)
	}
	return out
}
