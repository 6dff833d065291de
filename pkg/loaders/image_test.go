package loaders

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-octree-pathtracer/pkg/core"
)

// testImage returns a 2x2 image with white, red, green and blue pixels
func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.NRGBA{R: 255, A: 255})
	img.Set(0, 1, color.NRGBA{G: 255, A: 255})
	img.Set(1, 1, color.NRGBA{B: 255, A: 255})
	return img
}

func TestSaveAndLoadImage(t *testing.T) {
	formats := []string{"png", "bmp", "tiff"}
	expected := []core.Color{
		core.White, core.NewColor(1, 0, 0),
		core.NewColor(0, 1, 0), core.NewColor(0, 0, 1),
	}

	for _, ext := range formats {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "test."+ext)
			if err := SaveImage(path, testImage()); err != nil {
				t.Fatalf("SaveImage failed: %v", err)
			}

			tex, err := LoadImage(path)
			if err != nil {
				t.Fatalf("LoadImage failed: %v", err)
			}
			if tex.Width != 2 || tex.Height != 2 {
				t.Fatalf("Expected 2x2, got %dx%d", tex.Width, tex.Height)
			}
			for i, want := range expected {
				if !tex.Pixels[i].Equals(want, 1e-3) {
					t.Errorf("Pixel %d: Expected %v, got %v", i, want, tex.Pixels[i])
				}
			}
			if tex.Path != path {
				t.Errorf("Expected path %q, got %q", path, tex.Path)
			}
		})
	}
}

func TestLoadImage_Missing(t *testing.T) {
	if _, err := LoadImage(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestDecodeImage_Garbage(t *testing.T) {
	if _, err := DecodeImage(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("Expected an error for undecodable data")
	}
}

func TestImageCache(t *testing.T) {
	dir := t.TempDir()
	if err := SaveImage(filepath.Join(dir, "wood.png"), testImage()); err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}

	cache := NewImageCache(dir)
	first, err := cache.Load("wood.png")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := os.Remove(filepath.Join(dir, "wood.png")); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	second, err := cache.Load("wood.png")
	if err != nil {
		t.Fatalf("Expected cached texture, got error %v", err)
	}
	if first != second {
		t.Error("Expected the same texture instance from the cache")
	}
	if first.Path != "wood.png" {
		t.Errorf("Expected the relative path to be kept, got %q", first.Path)
	}
}
