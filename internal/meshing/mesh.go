package meshing

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"voxelmesh/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexSize is the packed size of a Vertex in bytes:
// position 3×f32, material i32, uv 2×f32, face i32.
const VertexSize = 28

// MaxVertices is the vertex capacity of a 16-bit index buffer.
const MaxVertices = math.MaxUint16 + 1

// UVInset is trimmed from the top of the [0,1] texture range so neighbouring
// texture layers do not bleed into the edges of a face.
const UVInset = 0.01

// ErrIndexOverflow is returned when a mesh needs more vertices than 16-bit
// indices can address.
var ErrIndexOverflow = errors.New("mesh exceeds 16-bit index capacity")

// Vertex is one corner of a quad in chunk-local space.
type Vertex struct {
	Position mgl32.Vec3
	Material int32
	UV       mgl32.Vec2
	Face     world.Face
}

// MeshBuffer is the output of a mesher: indexed quads ready for upload.
// Opaque and transparent quads share the vertex list but are indexed
// separately so they can be drawn in two passes.
type MeshBuffer struct {
	Vertices           []Vertex
	Indices            []uint16
	TransparentIndices []uint16
	// Light has one value per vertex when the mesh was built with a light grid.
	Light []float32
	// Suppressed lists chunk sides where faces were withheld because the
	// neighbouring chunk was not ready.
	Suppressed world.SideMask
}

// NewMeshBuffer returns an empty buffer with room for quads quads.
func NewMeshBuffer(quads int) *MeshBuffer {
	return &MeshBuffer{
		Vertices: make([]Vertex, 0, quads*4),
		Indices:  make([]uint16, 0, quads*6),
	}
}

// Quads returns the number of quads in the buffer.
func (m *MeshBuffer) Quads() int {
	return len(m.Vertices) / 4
}

// Empty reports whether the buffer holds no geometry.
func (m *MeshBuffer) Empty() bool {
	return len(m.Vertices) == 0
}

// AddQuad appends four corners and two counter-clockwise triangles
// (0,1,2) (0,2,3) to the opaque or transparent index list. The corners must
// wind counter-clockwise seen from the side the face points to.
func (m *MeshBuffer) AddQuad(corners [4]mgl32.Vec3, uvs [4]mgl32.Vec2, material int32, face world.Face, transparent bool) error {
	base := len(m.Vertices)
	if base+4 > MaxVertices {
		return fmt.Errorf("adding quad %d: %w", base/4, ErrIndexOverflow)
	}
	for i := range corners {
		m.Vertices = append(m.Vertices, Vertex{
			Position: corners[i],
			Material: material,
			UV:       uvs[i],
			Face:     face,
		})
	}
	i := uint16(base)
	if transparent {
		m.TransparentIndices = append(m.TransparentIndices, i, i+1, i+2, i, i+2, i+3)
	} else {
		m.Indices = append(m.Indices, i, i+1, i+2, i, i+2, i+3)
	}
	return nil
}

// addLight records per-vertex light for the last quad.
func (m *MeshBuffer) addLight(values [4]float32) {
	m.Light = append(m.Light, values[:]...)
}

// Bytes packs the vertices little-endian in Vertex field order.
func (m *MeshBuffer) Bytes() []byte {
	out := make([]byte, 0, len(m.Vertices)*VertexSize)
	for _, v := range m.Vertices {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v.Position[0]))
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v.Position[1]))
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v.Position[2]))
		out = binary.LittleEndian.AppendUint32(out, uint32(v.Material))
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v.UV[0]))
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v.UV[1]))
		out = binary.LittleEndian.AppendUint32(out, uint32(v.Face))
	}
	return out
}

// IndexBytes packs the opaque indices little-endian.
func (m *MeshBuffer) IndexBytes() []byte {
	return packIndices(m.Indices)
}

// TransparentIndexBytes packs the transparent indices little-endian.
func (m *MeshBuffer) TransparentIndexBytes() []byte {
	return packIndices(m.TransparentIndices)
}

func packIndices(indices []uint16) []byte {
	out := make([]byte, 0, len(indices)*2)
	for _, i := range indices {
		out = binary.LittleEndian.AppendUint16(out, i)
	}
	return out
}

// quadUVs returns corner UVs for a quad spanning du×dv texture tiles, in the
// corner order v1 (origin), v2 (+du), v3 (+du+dv), v4 (+dv).
func quadUVs(du, dv int) [4]mgl32.Vec2 {
	m := float32(1 - UVInset)
	u := m * float32(du)
	v := m * float32(dv)
	return [4]mgl32.Vec2{
		{0, u},
		{0, 0},
		{v, 0},
		{v, u},
	}
}
