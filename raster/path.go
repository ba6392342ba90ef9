package raster

import (
	"github.com/fogleman/gg"

	snapframe "github.com/hasimpk/snap-to-frame"
)

// traceRoundedRect traces a clockwise rounded-rectangle path starting at the
// end of the top-left arc: top edge, top-right arc, right edge, bottom-right
// arc, bottom edge, bottom-left arc, left edge, close. The fixed ordering
// keeps the stroke dash phase stable between the clip, shadow and border
// uses of the same shape.
func traceRoundedRect(dc *gg.Context, x, y, w, h, r float64) {
	r = snapframe.ClampRadius(r, w, h)
	if r <= 0 {
		dc.DrawRectangle(x, y, w, h)
		return
	}

	x0, x1, x2, x3 := x, x+r, x+w-r, x+w
	y0, y1, y2, y3 := y, y+r, y+h-r, y+h

	dc.NewSubPath()
	dc.MoveTo(x1, y0)
	dc.LineTo(x2, y0)
	dc.DrawArc(x2, y1, r, gg.Radians(270), gg.Radians(360))
	dc.LineTo(x3, y2)
	dc.DrawArc(x2, y2, r, gg.Radians(0), gg.Radians(90))
	dc.LineTo(x1, y3)
	dc.DrawArc(x1, y2, r, gg.Radians(90), gg.Radians(180))
	dc.LineTo(x0, y1)
	dc.DrawArc(x1, y1, r, gg.Radians(180), gg.Radians(270))
	dc.ClosePath()
}
