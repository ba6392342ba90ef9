// Package preview drives the renderer on the interactive path: every
// configuration change schedules a render, rapid changes are debounced, and
// stale completions are discarded so only the newest result is ever applied.
package preview

import (
	"errors"
	"sync"
	"time"

	snapframe "github.com/hasimpk/snap-to-frame"
)

// DefaultDebounce is the settle time between a config change and the render
// it triggers.
var DefaultDebounce = 150 * time.Millisecond

// ErrSuperseded is returned by Render when a newer update arrived while the
// render was in flight and its result was discarded.
var ErrSuperseded = errors.New("preview: render superseded by a newer update")

// Result is one finished preview render, tagged with the generation that
// produced it.
type Result struct {
	Data   []byte
	Format string
	Gen    uint64
}

// Renderer renders at most one preview at a time, newest config wins.
//
// Cancellation is soft: an in-flight render is not interrupted, but its
// generation is checked after every suspension point and a superseded result
// is dropped instead of delivered.
type Renderer struct {
	Engine   snapframe.Engine
	Debounce time.Duration

	// OnResult receives the winning render of each generation. OnError
	// receives per-render failures. Both are called off the caller's
	// goroutine.
	OnResult func(Result)
	OnError  func(error)

	mu      sync.Mutex
	gen     uint64
	timer   *time.Timer
	srcData []byte
}

func NewRenderer(engine snapframe.Engine) *Renderer {
	return &Renderer{Engine: engine, Debounce: DefaultDebounce}
}

// SetSource replaces the source image blob. The blob is decoded fresh per
// render so a render never observes a half-swapped source, and any pending
// debounced render for the old source is invalidated.
func (r *Renderer) SetSource(data []byte) {
	r.mu.Lock()
	r.srcData = data
	r.gen++ // outdate anything in flight
	r.mu.Unlock()
}

// Update schedules a render of the current source with the given frame after
// the debounce window. A newer Update supersedes an older one whether or not
// its render already started.
func (r *Renderer) Update(frame *snapframe.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gen++
	gen := r.gen

	if r.timer != nil {
		r.timer.Stop()
	}

	d := r.Debounce
	if d <= 0 {
		d = DefaultDebounce
	}
	r.timer = time.AfterFunc(d, func() {
		r.render(gen, frame)
	})
}

// Render runs one render immediately, bypassing the debounce, and returns
// the result directly. Used for the initial paint and for export.
func (r *Renderer) Render(frame *snapframe.Frame) (*Result, error) {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	data := r.srcData
	r.mu.Unlock()

	res, err := r.renderOnce(gen, frame, data)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrSuperseded
	}
	return res, nil
}

// Close stops any pending debounced render.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Renderer) render(gen uint64, frame *snapframe.Frame) {
	r.mu.Lock()
	data := r.srcData
	r.mu.Unlock()

	res, err := r.renderOnce(gen, frame, data)
	if err != nil {
		if r.OnError != nil {
			r.OnError(err)
		}
		return
	}
	if res != nil && r.OnResult != nil {
		r.OnResult(*res)
	}
}

// renderOnce returns (nil, nil) when the render was superseded mid-flight.
func (r *Renderer) renderOnce(gen uint64, frame *snapframe.Frame, data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, snapframe.ErrInvalidImageData
	}

	im, err := r.Engine.LoadBlob(data)
	if err != nil {
		return nil, err
	}
	defer im.Release()

	if r.stale(gen) {
		return nil, nil
	}

	if err := im.RenderFrame(frame); err != nil {
		return nil, err
	}

	if r.stale(gen) {
		return nil, nil
	}

	return &Result{Data: im.Data(), Format: im.Format(), Gen: gen}, nil
}

func (r *Renderer) stale(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return gen != r.gen
}
