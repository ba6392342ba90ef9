package snapframe

import "math"

// Rect is a width/height pair.
type Rect struct {
	Width, Height int
}

func NewRect(w, h int) *Rect {
	return &Rect{Width: w, Height: h}
}

func (r *Rect) AspectRatio() float64 {
	return float64(r.Width) / float64(r.Height)
}

func (r *Rect) Equal(other *Rect) bool {
	return (r.Width == other.Width) && (r.Height == other.Height)
}

// Area is the image area: the padding-inset sub-rectangle of the frame
// where the source image is placed.
type Area struct {
	X, Y, Width, Height int
}

// Placement is the resolved position and size of the drawn source image,
// in frame coordinates (before any shadow-extent offset).
type Placement struct {
	X, Y, W, H float64
}

// ResolvePlacement computes where the source image lands inside the area.
//
// Both modes preserve the source aspect ratio exactly and center the drawn
// rectangle on both axes. Only cover lets the drawn rectangle exceed the
// area bounds; the compositor clips to the drawn rectangle's rounded shape,
// not to the area, so a cover image can bleed past the padding boundary.
func ResolvePlacement(imageW, imageH int, area Area, fit string) Placement {
	imageAspect := float64(imageW) / float64(imageH)
	areaAspect := float64(area.Width) / float64(area.Height)

	var w, h float64
	switch fit {
	case FitCover:
		if imageAspect > areaAspect {
			h = float64(area.Height)
			w = h * imageAspect
		} else {
			w = float64(area.Width)
			h = w / imageAspect
		}
	default: // contain
		if imageAspect > areaAspect {
			w = float64(area.Width)
			h = w / imageAspect
		} else {
			h = float64(area.Height)
			w = h * imageAspect
		}
	}

	return Placement{
		X: float64(area.X) + (float64(area.Width)-w)/2,
		Y: float64(area.Y) + (float64(area.Height)-h)/2,
		W: w,
		H: h,
	}
}

// Round snaps the placement to whole pixels for the raster backend.
func (p Placement) Round() (x, y, w, h int) {
	return round(p.X), round(p.Y), round(p.W), round(p.H)
}

// ClampRadius limits a requested corner radius to half the drawn
// rectangle's smaller dimension.
func ClampRadius(radius, w, h float64) float64 {
	return math.Min(radius, math.Min(w/2, h/2))
}

// Rounding function for float64 numbers
func round(in float64) int {
	if in < 0 {
		return int(math.Ceil(in - 0.5))
	}
	return int(math.Floor(in + 0.5))
}
