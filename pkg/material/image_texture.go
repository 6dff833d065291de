package material

import (
	"image"

	"github.com/chewxy/math32"

	"github.com/df07/go-octree-pathtracer/pkg/core"
)

// ImageTexture provides bilinear-filtered color from a decoded image
type ImageTexture struct {
	Path   string // Source file, kept so material libraries can refer back to it
	Width  int
	Height int
	Pixels []core.Color // Row-major: Pixels[y*Width + x], row 0 at the top
}

// NewImageTexture creates a new image texture
func NewImageTexture(width, height int, pixels []core.Color) *ImageTexture {
	return &ImageTexture{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// NewImageTextureFromImage converts any decoded image
func NewImageTextureFromImage(img image.Image) *ImageTexture {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]core.Color, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pixels[y*w+x] = core.ColorFrom(img.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return NewImageTexture(w, h, pixels)
}

// Color samples the texture with bilinear filtering. UV wraps around and
// v=0 is the bottom row of the image.
func (t *ImageTexture) Color(uv core.TextureCoordinate, angle float32) core.Color {
	if t.Width == 0 || t.Height == 0 {
		return core.Black
	}
	u := wrap01(uv.U)
	v := wrap01(uv.V)

	x := u * float32(t.Width-1)
	y := (1 - v) * float32(t.Height-1)

	x0 := int(math32.Floor(x))
	y0 := int(math32.Floor(y))
	x1 := min(x0+1, t.Width-1)
	y1 := min(y0+1, t.Height-1)
	fx := x - float32(x0)
	fy := y - float32(y0)

	top := t.at(x0, y0).Lerp(t.at(x1, y0), fx)
	bottom := t.at(x0, y1).Lerp(t.at(x1, y1), fx)
	return top.Lerp(bottom, fy)
}

func (t *ImageTexture) at(x, y int) core.Color {
	return t.Pixels[y*t.Width+x]
}

// wrap01 maps any coordinate into [0,1)
func wrap01(f float32) float32 {
	f = math32.Mod(f, 1)
	if f < 0 {
		f++
	}
	if f >= 1 || math32.IsNaN(f) {
		return 0
	}
	return f
}
