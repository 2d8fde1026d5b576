// Package debugdump renders chunk light maps and height maps as PNG files.
package debugdump

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"voxelmesh/internal/lighting"
	"voxelmesh/internal/registry"
	"voxelmesh/internal/world"

	"golang.org/x/image/draw"
)

// DefaultScale is the pixel size of one voxel column in dumped images.
const DefaultScale = 8

// LightSlice renders the horizontal light layer at y, one gray pixel per
// voxel, upscaled by scale. X runs right and Z runs down.
func LightSlice(light *lighting.Grid, y, scale int) *image.Gray {
	w := light.Width()
	img := image.NewGray(image.Rect(0, 0, w, w))
	for z := 0; z < w; z++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, z, color.Gray{Y: uint8(light.At(x, y, z)*255 + 0.5)})
		}
	}
	return upscale(img, scale)
}

// HeightMap renders the top solid voxel of every column, brighter for higher
// columns. Columns with no solid voxel stay black.
func HeightMap(grid *world.Grid, catalog *registry.Catalog, scale int) *image.Gray {
	w, h := grid.Width(), grid.Height()
	img := image.NewGray(image.Rect(0, 0, w, w))
	for z := 0; z < w; z++ {
		for x := 0; x < w; x++ {
			for y := h - 1; y >= 0; y-- {
				if catalog.IsSolid(grid.Get(x, y, z)) {
					img.SetGray(x, z, color.Gray{Y: uint8(1 + (y*254)/max(h-1, 1))})
					break
				}
			}
		}
	}
	return upscale(img, scale)
}

func upscale(src *image.Gray, scale int) *image.Gray {
	if scale <= 1 {
		return src
	}
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// WritePNG encodes img to path, creating parent directories.
func WritePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// DumpChunk writes the height map of a chunk and, when light is not nil, the
// light layer at sliceY into dir. It returns the files written.
func DumpChunk(dir string, c *world.Chunk, light *lighting.Grid, catalog *registry.Catalog, sliceY int) ([]string, error) {
	var heights *image.Gray
	c.View(func(g *world.Grid) {
		heights = HeightMap(g, catalog, DefaultScale)
	})

	name := fmt.Sprintf("chunk_%d_%d", c.Coord.X, c.Coord.Z)
	path := filepath.Join(dir, name+"_height.png")
	if err := WritePNG(path, heights); err != nil {
		return nil, err
	}
	written := []string{path}

	if light != nil {
		path = filepath.Join(dir, fmt.Sprintf("%s_light_y%d.png", name, sliceY))
		if err := WritePNG(path, LightSlice(light, sliceY, DefaultScale)); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
