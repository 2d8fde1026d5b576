package world

import (
	"github.com/go-gl/mathgl/mgl32"
)

// BlockType is the per-voxel block code stored in a Grid.
type BlockType uint8

const (
	BlockAir BlockType = iota
	BlockBedrock
	BlockStone
	BlockDirt
	BlockGrass
	BlockSand
	BlockCoalOre
	BlockOakLog
	BlockOakLeaves
	BlockGlass
	BlockWater

	// BlockUnknown is answered for voxels whose owning chunk is absent or
	// not yet populated. Meshers never emit a face against it.
	BlockUnknown BlockType = 255
)

// Face identifies one of the six axis-aligned directions a quad can face.
// The numbering is part of the vertex layout handed to renderers.
type Face int32

const (
	FaceTop    Face = iota // +Y
	FaceBottom             // -Y
	FaceWest               // -X
	FaceEast               // +X
	FaceNorth              // -Z
	FaceSouth              // +Z
)

// NumFaces is the number of face directions.
const NumFaces = 6

// AllFaces lists faces in code order.
var AllFaces = [NumFaces]Face{FaceTop, FaceBottom, FaceWest, FaceEast, FaceNorth, FaceSouth}

var faceOffsets = [NumFaces][3]int{
	FaceTop:    {0, 1, 0},
	FaceBottom: {0, -1, 0},
	FaceWest:   {-1, 0, 0},
	FaceEast:   {1, 0, 0},
	FaceNorth:  {0, 0, -1},
	FaceSouth:  {0, 0, 1},
}

// Offset returns the unit step along the face normal.
func (f Face) Offset() (dx, dy, dz int) {
	o := faceOffsets[f]
	return o[0], o[1], o[2]
}

// Normal returns the outward unit normal of the face.
func (f Face) Normal() mgl32.Vec3 {
	o := faceOffsets[f]
	return mgl32.Vec3{float32(o[0]), float32(o[1]), float32(o[2])}
}

// Opposite returns the face pointing the other way.
func (f Face) Opposite() Face {
	return f ^ 1
}

func (f Face) String() string {
	switch f {
	case FaceTop:
		return "top"
	case FaceBottom:
		return "bottom"
	case FaceWest:
		return "west"
	case FaceEast:
		return "east"
	case FaceNorth:
		return "north"
	case FaceSouth:
		return "south"
	default:
		return "invalid"
	}
}

// ParseFace maps a face name (as used in catalog files) to a Face.
func ParseFace(name string) (Face, bool) {
	for _, f := range AllFaces {
		if f.String() == name {
			return f, true
		}
	}
	return 0, false
}

// FaceFromNormal resolves the face whose normal is closest to n.
// n must be axis aligned; the dominant component wins.
func FaceFromNormal(n mgl32.Vec3) Face {
	ax, ay, az := abs32(n[0]), abs32(n[1]), abs32(n[2])
	switch {
	case ay >= ax && ay >= az:
		if n[1] >= 0 {
			return FaceTop
		}
		return FaceBottom
	case ax >= az:
		if n[0] >= 0 {
			return FaceEast
		}
		return FaceWest
	default:
		if n[2] >= 0 {
			return FaceSouth
		}
		return FaceNorth
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// SideMask is a set of faces, one bit per Face.
type SideMask uint8

// Has reports whether f is in the set.
func (m SideMask) Has(f Face) bool {
	return m&(1<<uint(f)) != 0
}

// With returns the set with f added.
func (m SideMask) With(f Face) SideMask {
	return m | 1<<uint(f)
}
