// Package worker is the background execution shell for the renderer. Tasks
// carry raw RGBA pixel buffers rather than encoded files; the worker context
// has no decoding of its own. Responses are matched to requests by id, never
// by position, and every submitted id is answered exactly once.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	snapframe "github.com/hasimpk/snap-to-frame"
)

// Message types of the task protocol.
const (
	TypeProcess = "process"
	TypeResult  = "result"
	TypeError   = "error"
)

// DefaultPollInterval paces Wait's checks of the pending set.
var DefaultPollInterval = 50 * time.Millisecond

// Task is one render request: raw pixels plus the frame to apply.
type Task struct {
	Type   string           `json:"type"`
	ID     string           `json:"id"`
	Pix    []byte           `json:"-"`
	Width  int              `json:"width"`
	Height int              `json:"height"`
	Frame  *snapframe.Frame `json:"frame"`
}

// Response answers exactly one Task, keyed by the same id. Either Data or
// Err is set, never both.
type Response struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Data   []byte `json:"-"`
	Format string `json:"format,omitempty"`
	Err    string `json:"message,omitempty"`
}

// Worker renders tasks on a single background goroutine, in submission
// order. Completion order observed by the caller is still not guaranteed,
// so consumers must key off Response.ID.
type Worker struct {
	engine snapframe.Engine

	tasks     chan Task
	responses chan Response

	mu      sync.Mutex
	pending map[string]struct{}
	total   int
	done    int

	wg sync.WaitGroup
}

func New(engine snapframe.Engine) *Worker {
	w := &Worker{
		engine:    engine,
		tasks:     make(chan Task, 64),
		responses: make(chan Response, 64),
		pending:   make(map[string]struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

// Submit queues a task. Duplicate ids are refused so the answer-once
// contract stays intact.
func (w *Worker) Submit(t Task) error {
	if t.Frame == nil {
		return fmt.Errorf("worker: task %q has no frame", t.ID)
	}

	w.mu.Lock()
	if _, ok := w.pending[t.ID]; ok {
		w.mu.Unlock()
		return fmt.Errorf("worker: duplicate task id %q", t.ID)
	}
	w.pending[t.ID] = struct{}{}
	w.total++
	w.mu.Unlock()

	t.Type = TypeProcess
	w.tasks <- t
	return nil
}

// Responses delivers one response per submitted task. The channel closes
// after Close once all queued tasks have been answered.
func (w *Worker) Responses() <-chan Response {
	return w.responses
}

// Pending is the number of submitted tasks not yet answered.
func (w *Worker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Progress counts completed tasks (success or failure) against the total
// submitted.
func (w *Worker) Progress() (done, total int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done, w.total
}

// Wait blocks until the pending set drains, polling on a short fixed
// interval, or until the context is done. The context bound is the caller's
// liveness guard; a task whose completion never arrives would otherwise
// block forever.
func (w *Worker) Wait(ctx context.Context) error {
	ticker := time.NewTicker(DefaultPollInterval)
	defer ticker.Stop()

	for {
		if w.Pending() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close stops accepting tasks and, once in-flight work is answered, closes
// the response channel.
func (w *Worker) Close() {
	close(w.tasks)
	w.wg.Wait()
}

func (w *Worker) run() {
	defer w.wg.Done()
	for t := range w.tasks {
		w.responses <- w.process(t)
	}
	close(w.responses)
}

func (w *Worker) process(t Task) Response {
	defer w.complete(t.ID)

	im, err := w.engine.LoadRGBA(t.Pix, t.Width, t.Height)
	if err != nil {
		return Response{Type: TypeError, ID: t.ID, Err: err.Error()}
	}
	defer im.Release()

	if err := im.RenderFrame(t.Frame); err != nil {
		return Response{Type: TypeError, ID: t.ID, Err: err.Error()}
	}

	return Response{Type: TypeResult, ID: t.ID, Data: im.Data(), Format: im.Format()}
}

func (w *Worker) complete(id string) {
	w.mu.Lock()
	delete(w.pending, id)
	w.done++
	w.mu.Unlock()
}
