package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	snapframe "github.com/hasimpk/snap-to-frame"
)

var (
	ErrEngineReleased = errors.New("raster: image has been released")
)

// Surfaces larger than this are refused rather than allocated.
const maxSurfaceDim = 16384

// Engine is the pure-Go raster backend. The same engine instance serves the
// interactive preview path and the background worker path, so both produce
// byte-identical output for identical input.
type Engine struct{}

func (ng Engine) Version() string {
	return fmt.Sprintf("raster/%s (gg)", snapframe.VERSION)
}

func (ng Engine) Initialize(tmpDir string) error {
	if tmpDir != "" {
		if err := os.MkdirAll(tmpDir, 0755); err != nil {
			return err
		}
	}
	return nil
}

func (ng Engine) Terminate() {}

func (ng Engine) LoadBlob(b []byte, srcFormat ...string) (snapframe.Image, error) {
	if len(b) == 0 {
		return nil, snapframe.ErrInvalidImageData
	}

	img, format, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, snapframe.ErrInvalidImageData
	}
	if format == "jpeg" {
		format = "jpg"
	}

	im := &Image{src: img, data: b, format: format}
	im.width = img.Bounds().Dx()
	im.height = img.Bounds().Dy()

	return im, nil
}

// LoadRGBA wraps a raw width*height*4 pixel buffer. This is the decode-free
// entry point for the background worker, which receives pixels rather than
// encoded files.
func (ng Engine) LoadRGBA(pix []byte, width, height int) (snapframe.Image, error) {
	if width <= 0 || height <= 0 || len(pix) != width*height*4 {
		return nil, snapframe.ErrInvalidImageData
	}

	img := &image.RGBA{
		Pix:    pix,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}

	return &Image{src: img, format: "rgba", width: width, height: height}, nil
}

func (ng Engine) GetImageInfo(b []byte, srcFormat ...string) (*snapframe.ImageInfo, error) {
	if len(b) == 0 {
		return nil, snapframe.ErrInvalidImageData
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return nil, snapframe.ErrInvalidImageData
	}

	if format == "jpeg" {
		format = "jpg"
	}
	format = strings.ToLower(format)

	ar := float64(int(float64(cfg.Width)/float64(cfg.Height)*10000)) / 10000

	return &snapframe.ImageInfo{
		Format: format, Width: cfg.Width, Height: cfg.Height,
		AspectRatio: ar, ContentLength: len(b),
	}, nil
}

// Image is a decoded source bitmap plus, after RenderFrame, the encoded
// composite that replaced it.
type Image struct {
	src image.Image

	data   []byte
	width  int
	height int
	format string
}

func (i *Image) Data() []byte {
	return i.data
}

func (i *Image) Width() int {
	return i.width
}

func (i *Image) Height() int {
	return i.height
}

func (i *Image) Format() string {
	return i.format
}

func (i *Image) Released() bool {
	return i.src == nil
}

func (i *Image) Release() {
	i.src = nil
	i.data = nil
}

func (i *Image) WriteToFile(fn string) error {
	return os.WriteFile(fn, i.Data(), 0664)
}
