package raster

import (
	"image/color"

	"github.com/anthonynsimon/bild/blur"
	"github.com/fogleman/gg"
)

// drawShadow rasterizes the drop shadow under the image placement.
//
// Native shadowing would follow the source's per-pixel alpha, so the shadow
// is built from a puppet instead: an opaque shape matching the placement is
// filled on its own layer, gaussian-blurred, and composited under where the
// real image will land. The image drawn afterwards covers the solid core of
// the puppet while the blurred halo outside the shape remains visible.
func drawShadow(dc *gg.Context, x, y, w, h int, radius float64, spread int) {
	layer := gg.NewContext(dc.Width(), dc.Height())
	layer.SetColor(color.Black)
	traceRoundedRect(layer, float64(x), float64(y), float64(w), float64(h), radius)
	layer.Fill()

	shape := layer.Image()
	if spread > 0 {
		shape = blur.Gaussian(shape, float64(spread))
	}

	dc.DrawImage(shape, 0, 0)
}
