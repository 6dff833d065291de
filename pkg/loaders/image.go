package loaders

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "image/gif" // GIF decoder

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/df07/go-octree-pathtracer/pkg/material"
)

// LoadImage loads a PNG, JPEG, GIF, BMP, TIFF or WebP image as a texture
func LoadImage(filename string) (*material.ImageTexture, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	tex, err := DecodeImage(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	tex.Path = filename
	return tex, nil
}

// DecodeImage decodes any registered image format into a texture
func DecodeImage(r io.Reader) (*material.ImageTexture, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return material.NewImageTextureFromImage(img), nil
}

// ImageCache loads textures relative to a base directory and shares each
// decoded file between materials
type ImageCache struct {
	base   string
	mu     sync.Mutex
	images map[string]*material.ImageTexture
}

// NewImageCache creates a cache resolving relative paths against base
func NewImageCache(base string) *ImageCache {
	return &ImageCache{base: base, images: make(map[string]*material.ImageTexture)}
}

// Load returns the texture for path, decoding it on first use
func (c *ImageCache) Load(path string) (*material.ImageTexture, error) {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(c.base, path)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if tex, ok := c.images[full]; ok {
		return tex, nil
	}
	tex, err := LoadImage(full)
	if err != nil {
		return nil, err
	}
	tex.Path = path
	c.images[full] = tex
	return tex, nil
}

// SaveImage writes img in the format named by the file extension. PNG is
// used for unknown extensions and keeps 16 bits per channel.
func SaveImage(filename string, img image.Image) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	if err := EncodeImage(file, filepath.Ext(filename), img); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", filename, err)
	}
	return file.Close()
}

// EncodeImage writes img using the encoder for ext
func EncodeImage(w io.Writer, ext string, img image.Image) error {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case "bmp":
		return bmp.Encode(w, img)
	case "tif", "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return png.Encode(w, img)
	}
}
