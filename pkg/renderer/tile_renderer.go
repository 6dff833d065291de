package renderer

import (
	"image"
	"image/color"
	"time"

	"github.com/df07/go-octree-pathtracer/pkg/containers"
	"github.com/df07/go-octree-pathtracer/pkg/core"
	"github.com/df07/go-octree-pathtracer/pkg/material"
)

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID     int             // Row-major index in the grid
	X, Y   int             // Grid coordinates
	Bounds image.Rectangle // Pixel bounds, clipped to the image
}

// NewTileGrid covers the image with tiles and returns them in rendering
// order: by distance of the grid coordinate from the grid center, ties
// broken by ID.
func NewTileGrid(width, height, tileWidth, tileHeight int) []*Tile {
	if width <= 0 || height <= 0 || tileWidth <= 0 || tileHeight <= 0 {
		return nil
	}
	tilesX := (width + tileWidth - 1) / tileWidth
	tilesY := (height + tileHeight - 1) / tileHeight
	count := tilesX * tilesY

	// distances are kept in doubled grid units so the center is integral
	queue := containers.NewBinomialHeap[*Tile, int]()
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x0 := tx * tileWidth
			y0 := ty * tileHeight
			tile := &Tile{
				ID:     ty*tilesX + tx,
				X:      tx,
				Y:      ty,
				Bounds: image.Rect(x0, y0, min(x0+tileWidth, width), min(y0+tileHeight, height)),
			}
			dx := 2*tx - (tilesX - 1)
			dy := 2*ty - (tilesY - 1)
			queue.Push(tile, (dx*dx+dy*dy)*count+tile.ID)
		}
	}

	tiles := make([]*Tile, 0, count)
	for !queue.IsEmpty() {
		tile, _, _ := queue.PopMin()
		tiles = append(tiles, tile)
	}
	return tiles
}

// tileRenderer traces the pixels of one tile at a time for a worker
type tileRenderer struct {
	camera   *Camera
	shading  *material.Context
	depth    int
	samples  int
	interval time.Duration
}

// renderTile traces a tile row by row into a fresh buffer. After every
// scanline it checks whether the render was stopped and whether a report is
// due. Reports carry the rows finished since the previous report, which the
// worker never writes again. It returns false if the tile was abandoned.
func (tr *tileRenderer) renderTile(tile *Tile, stopped func() bool, report func(pixels *image.RGBA64, samples int, done bool)) bool {
	bounds := tile.Bounds
	buf := image.NewRGBA64(bounds)
	lastReport := time.Now()
	reported := bounds.Min.Y
	rowSamples := bounds.Dx() * tr.samples

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := tr.samplePixel(x, y).ToRGBA64()
			buf.SetRGBA64(x, y, color.RGBA64{R: c.R, G: c.G, B: c.B, A: c.A})
		}

		if stopped() {
			return false
		}
		if y+1 < bounds.Max.Y && time.Since(lastReport) >= tr.interval {
			rows := image.Rect(bounds.Min.X, reported, bounds.Max.X, y+1)
			report(buf.SubImage(rows).(*image.RGBA64), rows.Dy()*rowSamples, false)
			reported = y + 1
			lastReport = time.Now()
		}
	}

	rows := image.Rect(bounds.Min.X, reported, bounds.Max.X, bounds.Max.Y)
	report(buf.SubImage(rows).(*image.RGBA64), rows.Dy()*rowSamples, true)
	return true
}

// samplePixel averages the camera samples of one pixel. Pixels are opaque.
func (tr *tileRenderer) samplePixel(x, y int) core.Color {
	var sum core.Color
	for s := 0; s < tr.samples; s++ {
		sum = sum.Add(tr.trace(tr.camera.GetRay(x, y, tr.shading.Random)))
	}
	c := sum.Scale(1 / float32(tr.samples))
	c.A = 1
	return c
}

// trace shades the first surface a camera ray meets, or the environment
func (tr *tileRenderer) trace(ray core.Ray) core.Color {
	hit, ok := tr.shading.Store.NearestHit(ray)
	if !ok {
		return tr.shading.Environment.Radiance(ray.Direction)
	}
	return tr.shading.ShadeHit(ray, hit, core.White, tr.depth)
}
