package meshing

import (
	"voxelmesh/internal/profiling"
	"voxelmesh/internal/registry"
	"voxelmesh/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// axisFaces maps a sweep axis to the faces pointing along +axis and -axis.
var axisFaces = [3][2]world.Face{
	{world.FaceEast, world.FaceWest},
	{world.FaceTop, world.FaceBottom},
	{world.FaceSouth, world.FaceNorth},
}

// sampler reads voxels in chunk-local coordinates, falling back to the
// neighbour resolver past the horizontal edges of the grid.
type sampler struct {
	grid      *world.Grid
	neighbors world.NeighborResolver
	ox, oz    int
}

func newSampler(grid *world.Grid, coord world.ChunkCoord, neighbors world.NeighborResolver) *sampler {
	return &sampler{
		grid:      grid,
		neighbors: neighbors,
		ox:        coord.X * grid.Width(),
		oz:        coord.Z * grid.Width(),
	}
}

func (s *sampler) at(x, y, z int) world.BlockType {
	if s.grid.InBounds(x, y, z) {
		return s.grid.Get(x, y, z)
	}
	if y < 0 || y >= s.grid.Height() || s.neighbors == nil {
		return world.BlockAir
	}
	return s.neighbors.BlockAt(s.ox+x, y, s.oz+z)
}

// BuildGreedyMeshForChunk meshes a populated chunk under its read lock.
func BuildGreedyMeshForChunk(c *world.Chunk, catalog *registry.Catalog, neighbors world.NeighborResolver) (mesh *MeshBuffer, err error) {
	c.View(func(g *world.Grid) {
		mesh, err = BuildGreedy(g, c.Coord, catalog, neighbors)
	})
	return mesh, err
}

// BuildGreedy sweeps the grid along each axis and merges coplanar faces of
// the same block type into maximal rectangles.
//
// For each slice boundary a mask over the two free axes records which faces
// are visible: +code when the solid block sits on the near side, -code when
// it sits on the far side, 0 for no face. Faces whose solid block lies in a
// neighbouring chunk are left to that chunk. Faces against a neighbour that
// is not ready are withheld and noted in MeshBuffer.Suppressed.
func BuildGreedy(grid *world.Grid, coord world.ChunkCoord, catalog *registry.Catalog, neighbors world.NeighborResolver) (*MeshBuffer, error) {
	defer profiling.Track("meshing.BuildGreedy")()

	s := newSampler(grid, coord, neighbors)
	dims := grid.Dims()
	mesh := NewMeshBuffer(64)

	for d := 0; d < 3; d++ {
		u := (d + 1) % 3
		v := (d + 2) % 3

		var x, q [3]int
		q[d] = 1
		mask := make([]int32, dims[u]*dims[v])

		for x[d] = -1; x[d] < dims[d]; {
			// Compute the mask
			nearInside := x[d] >= 0
			farInside := x[d]+1 < dims[d]
			n := 0
			for x[v] = 0; x[v] < dims[v]; x[v]++ {
				for x[u] = 0; x[u] < dims[u]; x[u]++ {
					a := s.at(x[0], x[1], x[2])
					b := s.at(x[0]+q[0], x[1]+q[1], x[2]+q[2])
					mask[n] = 0
					n++

					if a == world.BlockUnknown || b == world.BlockUnknown {
						if nearInside && catalog.IsSolid(a) {
							mesh.Suppressed = mesh.Suppressed.With(axisFaces[d][0])
						}
						if farInside && catalog.IsSolid(b) {
							mesh.Suppressed = mesh.Suppressed.With(axisFaces[d][1])
						}
						continue
					}

					solidA, solidB := catalog.IsSolid(a), catalog.IsSolid(b)
					switch {
					case solidA == solidB:
					case solidA && nearInside:
						mask[n-1] = int32(a)
					case solidB && farInside:
						mask[n-1] = -int32(b)
					}
				}
			}

			x[d]++

			if err := emitMask(mesh, catalog, mask, dims, d, u, v, x); err != nil {
				return nil, err
			}
		}
	}
	return mesh, nil
}

// emitMask turns the mask of one slice into quads, growing each run along u
// first and then along v. x[d] holds the plane coordinate.
func emitMask(mesh *MeshBuffer, catalog *registry.Catalog, mask []int32, dims [3]int, d, u, v int, x [3]int) error {
	n := 0
	for j := 0; j < dims[v]; j++ {
		for i := 0; i < dims[u]; {
			code := mask[n]
			if code == 0 {
				i++
				n++
				continue
			}

			// compute width
			w := 1
			for i+w < dims[u] && mask[n+w] == code {
				w++
			}

			// compute height
			h := 1
		grow:
			for ; j+h < dims[v]; h++ {
				for k := 0; k < w; k++ {
					if mask[n+k+h*dims[u]] != code {
						break grow
					}
				}
			}

			x[u], x[v] = i, j
			var du, dv [3]int
			if code > 0 {
				du[u] = w
				dv[v] = h
			} else {
				du[v] = h
				dv[u] = w
			}
			if err := emitQuad(mesh, catalog, code, x, du, dv); err != nil {
				return err
			}

			// zero-out mask region
			for l := 0; l < h; l++ {
				for k := 0; k < w; k++ {
					idx := n + k + l*dims[u]
					if mask[idx] != code {
						panic("meshing: greedy mask cell consumed twice")
					}
					mask[idx] = 0
				}
			}

			i += w
			n += w
		}
	}
	return nil
}

// emitQuad appends the quad with corners x, x+du, x+du+dv, x+dv. The face
// direction follows from the winding of the edge vectors.
func emitQuad(mesh *MeshBuffer, catalog *registry.Catalog, code int32, x, du, dv [3]int) error {
	p1 := vec(x[0], x[1], x[2])
	p2 := vec(x[0]+du[0], x[1]+du[1], x[2]+du[2])
	p3 := vec(x[0]+du[0]+dv[0], x[1]+du[1]+dv[1], x[2]+du[2]+dv[2])
	p4 := vec(x[0]+dv[0], x[1]+dv[1], x[2]+dv[2])

	face := world.FaceFromNormal(p2.Sub(p1).Cross(p4.Sub(p1)))

	block := world.BlockType(code)
	if code < 0 {
		block = world.BlockType(-code)
	}

	uvs := quadUVs(maxComponent(du), maxComponent(dv))
	return mesh.AddQuad([4]mgl32.Vec3{p1, p2, p3, p4}, uvs, catalog.Material(block, face), face, catalog.IsTransparent(block))
}

func vec(x, y, z int) mgl32.Vec3 {
	return mgl32.Vec3{float32(x), float32(y), float32(z)}
}

func maxComponent(v [3]int) int {
	return max(v[0], v[1], v[2])
}
