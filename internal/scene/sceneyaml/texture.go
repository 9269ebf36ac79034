package sceneyaml

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"scenelink/internal/scene"
)

// LoadTexture decodes a png, jpeg, bmp or webp file into RGBA8 pixels.
// A non-zero width and height resample the image to that size.
func LoadTexture(name, path string, width, height uint32) (*scene.Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", name, err)
	}
	defer f.Close()
	return DecodeTexture(name, f, width, height)
}

func DecodeTexture(name string, r io.Reader, width, height uint32) (*scene.Texture, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: texture %q: %w", ErrInvalidScene, name, err)
	}

	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	if width > 0 && height > 0 {
		dst = image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	} else {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	}

	return &scene.Texture{
		Name:   name,
		Width:  uint32(dst.Rect.Dx()),
		Height: uint32(dst.Rect.Dy()),
		Data:   dst.Pix,
	}, nil
}
