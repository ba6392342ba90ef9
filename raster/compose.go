package raster

import (
	"image"
	"image/draw"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	snapframe "github.com/hasimpk/snap-to-frame"
)

// RenderFrame runs the full compositing pipeline and replaces the image's
// data with the encoded result at exactly the frame's configured size.
//
// Pipeline: validate config, allocate the working surface (padded by the
// shadow extent so blur is never clipped), fill the background, resolve the
// placement, draw the shadow shape, composite the clipped source image,
// stroke the border, then crop the extent margin back off and encode.
func (i *Image) RenderFrame(f *snapframe.Frame) error {
	if i.Released() {
		return ErrEngineReleased
	}
	if err := f.Validate(); err != nil {
		return err
	}

	extent := f.ShadowExtent()
	dc, err := newSurface(f.Width+2*extent, f.Height+2*extent)
	if err != nil {
		return err
	}

	if err := fillBackground(dc, f, extent); err != nil {
		return err
	}

	ax, ay, aw, ah := f.ImageArea()
	area := snapframe.Area{X: ax + extent, Y: ay + extent, Width: aw, Height: ah}
	p := snapframe.ResolvePlacement(i.width, i.height, area, f.Fit)
	x, y, w, h := p.Round()
	radius := snapframe.ClampRadius(float64(f.BorderRadius), float64(w), float64(h))

	if w > 0 && h > 0 {
		if f.Shadow {
			drawShadow(dc, x, y, w, h, radius, f.ShadowSpread)
		}

		scaled := scaleImage(i.src, w, h)
		if radius > 0 {
			traceRoundedRect(dc, float64(x), float64(y), float64(w), float64(h), radius)
			dc.Clip()
			dc.DrawImage(scaled, x, y)
			dc.ResetClip()
		} else {
			dc.DrawImage(scaled, x, y)
		}

		if f.Border {
			drawBorder(dc, f, float64(x), float64(y), float64(w), float64(h), radius)
		}
	}

	out := dc.Image()
	if extent > 0 {
		cropped := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
		draw.Draw(cropped, cropped.Bounds(), out, image.Pt(extent, extent), draw.Src)
		out = cropped
	}

	data, err := encodeBlob(out, f.Format)
	if err != nil {
		return err
	}

	i.src = out
	i.data = data
	i.width = f.Width
	i.height = f.Height
	i.format = f.Format

	return nil
}

func newSurface(w, h int) (*gg.Context, error) {
	if w <= 0 || h <= 0 || w > maxSurfaceDim || h > maxSurfaceDim {
		return nil, snapframe.ErrSurfaceUnavailable
	}
	return gg.NewContext(w, h), nil
}

// fillBackground covers the full frame rectangle. Rounding applies only to
// the placed image, never the background.
func fillBackground(dc *gg.Context, f *snapframe.Frame, extent int) error {
	switch f.BackgroundType {
	case snapframe.BackgroundGradient:
		start, errS := snapframe.ParseColor(f.GradientStart)
		end, errE := snapframe.ParseColor(f.GradientEnd)
		if errS != nil || errE != nil {
			return &snapframe.GradientColorError{Start: f.GradientStart, End: f.GradientEnd}
		}

		ax, ay, aw, ah := f.ImageArea()
		x0 := float64(ax + extent)
		y0 := float64(ay + extent)
		x1, y1 := x0, y0
		switch f.GradientDirection {
		case snapframe.GradientVertical:
			y1 = y0 + float64(ah)
		case snapframe.GradientDiagonal:
			x1 = x0 + float64(aw)
			y1 = y0 + float64(ah)
		default: // horizontal
			x1 = x0 + float64(aw)
		}

		grad := gg.NewLinearGradient(x0, y0, x1, y1)
		grad.AddColorStop(0, start)
		grad.AddColorStop(1, end)
		dc.SetFillStyle(grad)

	default:
		col, err := snapframe.ParseColor(f.Background)
		if err != nil {
			return &snapframe.InvalidColorError{Field: "background", Value: f.Background}
		}
		dc.SetColor(col)
	}

	dc.DrawRectangle(float64(extent), float64(extent), float64(f.Width), float64(f.Height))
	dc.Fill()
	return nil
}

func drawBorder(dc *gg.Context, f *snapframe.Frame, x, y, w, h, radius float64) {
	col, err := snapframe.ParseColor(f.BorderColor)
	if err != nil {
		return // validated before drawing began
	}

	dc.SetColor(col)
	dc.SetLineWidth(float64(f.BorderWidth))
	if dash := f.DashPattern(); dash != nil {
		dc.SetDash(dash...)
	} else {
		dc.SetDash()
	}

	if radius > 0 {
		traceRoundedRect(dc, x, y, w, h, radius)
	} else {
		dc.DrawRectangle(x, y, w, h)
	}
	dc.Stroke()
	dc.SetDash()
}

// scaleImage resizes the source to the drawn rectangle with a high-quality
// kernel. A no-op when the source already matches.
func scaleImage(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}
