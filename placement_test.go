package snapframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	squareArea = Area{X: 0, Y: 0, Width: 1080, Height: 1080}
	wideSource = NewRect(2000, 1000)
	tallSource = NewRect(1000, 2000)
)

// Geometry tests

func TestContainWideSource(t *testing.T) {
	p := ResolvePlacement(wideSource.Width, wideSource.Height, squareArea, FitContain)
	assert.Equal(t, 1080.0, p.W)
	assert.Equal(t, 540.0, p.H)
	assert.Equal(t, 0.0, p.X)
	assert.Equal(t, 270.0, p.Y)
}

func TestContainTallSource(t *testing.T) {
	p := ResolvePlacement(tallSource.Width, tallSource.Height, squareArea, FitContain)
	assert.Equal(t, 540.0, p.W)
	assert.Equal(t, 1080.0, p.H)
	assert.Equal(t, 270.0, p.X)
	assert.Equal(t, 0.0, p.Y)
}

func TestCoverWideSource(t *testing.T) {
	p := ResolvePlacement(wideSource.Width, wideSource.Height, squareArea, FitCover)
	assert.Equal(t, 2160.0, p.W)
	assert.Equal(t, 1080.0, p.H)
	assert.Equal(t, -540.0, p.X)
	assert.Equal(t, 0.0, p.Y)
}

func TestCoverTallSource(t *testing.T) {
	p := ResolvePlacement(tallSource.Width, tallSource.Height, squareArea, FitCover)
	assert.Equal(t, 1080.0, p.W)
	assert.Equal(t, 2160.0, p.H)
	assert.Equal(t, 0.0, p.X)
	assert.Equal(t, -540.0, p.Y)
}

func TestContainRespectsPaddingOffset(t *testing.T) {
	area := Area{X: 40, Y: 40, Width: 1000, Height: 1000}
	p := ResolvePlacement(2000, 1000, area, FitContain)
	assert.Equal(t, 1000.0, p.W)
	assert.Equal(t, 500.0, p.H)
	assert.Equal(t, 40.0, p.X)
	assert.Equal(t, 290.0, p.Y)
}

func TestContainFitsWithinArea(t *testing.T) {
	sources := []*Rect{NewRect(640, 480), NewRect(480, 640), NewRect(33, 777), NewRect(3000, 17)}
	for _, src := range sources {
		p := ResolvePlacement(src.Width, src.Height, squareArea, FitContain)

		assert.True(t, p.W <= float64(squareArea.Width))
		assert.True(t, p.H <= float64(squareArea.Height))
		// at least one axis exactly touches the area bounds
		assert.True(t, p.W == float64(squareArea.Width) || p.H == float64(squareArea.Height))
		// aspect ratio preserved
		assert.InDelta(t, src.AspectRatio(), p.W/p.H, 1e-9)
	}
}

func TestCoverFillsArea(t *testing.T) {
	sources := []*Rect{NewRect(640, 480), NewRect(480, 640), NewRect(33, 777), NewRect(3000, 17)}
	for _, src := range sources {
		p := ResolvePlacement(src.Width, src.Height, squareArea, FitCover)

		assert.True(t, p.W >= float64(squareArea.Width))
		assert.True(t, p.H >= float64(squareArea.Height))
		// exactly one axis exceeds (square source on square area both touch)
		if src.AspectRatio() != 1.0 {
			exceedsW := p.W > float64(squareArea.Width)
			exceedsH := p.H > float64(squareArea.Height)
			assert.True(t, exceedsW != exceedsH)
		}
		assert.InDelta(t, src.AspectRatio(), p.W/p.H, 1e-9)
	}
}

func TestPlacementRound(t *testing.T) {
	p := Placement{X: 10.5, Y: -0.5, W: 99.4, H: 100.6}
	x, y, w, h := p.Round()
	assert.Equal(t, 11, x)
	// half-away-from-zero: a cover placement half a pixel above the top
	// edge rounds further out, not inward
	assert.Equal(t, -1, y)
	assert.Equal(t, 99, w)
	assert.Equal(t, 101, h)
}

func TestClampRadius(t *testing.T) {
	assert.Equal(t, 50.0, ClampRadius(1000, 100, 100))
	assert.Equal(t, 25.0, ClampRadius(1000, 50, 200))
	assert.Equal(t, 10.0, ClampRadius(10, 100, 100))
	assert.Equal(t, 0.0, ClampRadius(0, 100, 100))
}
