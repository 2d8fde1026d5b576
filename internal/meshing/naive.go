package meshing

import (
	"voxelmesh/internal/lighting"
	"voxelmesh/internal/profiling"
	"voxelmesh/internal/registry"
	"voxelmesh/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// faceCorners holds the unit-quad corners of each face relative to the voxel
// origin, in the same order the greedy mesher emits them.
var faceCorners = [world.NumFaces][4]mgl32.Vec3{
	world.FaceTop:    {{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}},
	world.FaceBottom: {{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
	world.FaceWest:   {{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}},
	world.FaceEast:   {{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}},
	world.FaceNorth:  {{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}},
	world.FaceSouth:  {{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
}

// NaiveOptions tunes BuildNaive.
type NaiveOptions struct {
	// Light, when set, adds one light value per vertex sampled from the
	// voxel the face looks into.
	Light *lighting.Grid
	// TransparencyAware also emits faces against solid neighbours whose
	// definition asks to be rendered against (glass, leaves).
	TransparencyAware bool
}

// BuildNaive emits one quad per visible voxel face without merging.
func BuildNaive(grid *world.Grid, coord world.ChunkCoord, catalog *registry.Catalog, neighbors world.NeighborResolver, opts NaiveOptions) (*MeshBuffer, error) {
	defer profiling.Track("meshing.BuildNaive")()

	s := newSampler(grid, coord, neighbors)
	w, h := grid.Width(), grid.Height()
	mesh := NewMeshBuffer(256)
	uvs := quadUVs(1, 1)

	for y := 0; y < h; y++ {
		for z := 0; z < w; z++ {
			for x := 0; x < w; x++ {
				block := grid.Get(x, y, z)
				if !catalog.IsSolid(block) {
					continue
				}
				origin := vec(x, y, z)
				for _, face := range world.AllFaces {
					dx, dy, dz := face.Offset()
					nx, ny, nz := x+dx, y+dy, z+dz
					next := s.at(nx, ny, nz)
					if next == world.BlockUnknown {
						mesh.Suppressed = mesh.Suppressed.With(face)
						continue
					}
					if catalog.IsSolid(next) && !(opts.TransparencyAware && catalog.RendersAgainst(next)) {
						continue
					}

					var corners [4]mgl32.Vec3
					for i, c := range faceCorners[face] {
						corners[i] = origin.Add(c)
					}
					if err := mesh.AddQuad(corners, uvs, catalog.Material(block, face), face, catalog.IsTransparent(block)); err != nil {
						return nil, err
					}
					if opts.Light != nil {
						l := opts.Light.At(nx, ny, nz)
						mesh.addLight([4]float32{l, l, l, l})
					}
				}
			}
		}
	}
	return mesh, nil
}
