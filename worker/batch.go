package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	snapframe "github.com/hasimpk/snap-to-frame"
)

var (
	// ErrBatchFailed is returned only when literally every item of a batch
	// failed. Partial failure is reported through the error list instead.
	ErrBatchFailed = errors.New("worker: all batch items failed")
)

// File is one named source blob submitted to a batch.
type File struct {
	Name string
	Data []byte
}

// Output is one finished render, still carrying the source name; suggested
// download names are the export assembler's concern.
type Output struct {
	Name   string
	Data   []byte
	Format string
}

// RunBatch decodes each file into a raw pixel buffer, feeds the buffers
// through a background worker, and collects the answers by id. A file that
// cannot be decoded or rendered contributes an error but never aborts the
// rest of the batch; outputs come back in input order regardless of
// completion order.
func RunBatch(ctx context.Context, engine snapframe.Engine, files []File, frame *snapframe.Frame) ([]Output, []error, error) {
	var errs []error

	tasks := make([]Task, 0, len(files))
	names := make(map[string]string, len(files))
	order := make([]string, 0, len(files))

	for n, f := range files {
		id := fmt.Sprintf("task-%d", n)

		pix, width, height, err := decodeRGBA(f.Data)
		if err != nil {
			errs = append(errs, &snapframe.DecodeError{Name: f.Name, Err: err})
			continue
		}

		tasks = append(tasks, Task{ID: id, Pix: pix, Width: width, Height: height, Frame: frame})
		names[id] = f.Name
		order = append(order, id)
	}

	w := New(engine)

	// Submission and collection must overlap. Both worker queues are
	// bounded, so submitting the whole batch before reading any response
	// wedges once the buffers fill.
	results := make(map[string]Response, len(tasks))
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for resp := range w.Responses() {
			results[resp.ID] = resp
		}
	}()

	var submitErrs []error
	go func() {
		for _, t := range tasks {
			if err := w.Submit(t); err != nil {
				submitErrs = append(submitErrs, err)
			}
		}
		w.Close()
	}()

	select {
	case <-ctx.Done():
		return nil, errs, ctx.Err()
	case <-collected:
	}
	errs = append(errs, submitErrs...)

	outputs := make([]Output, 0, len(order))
	for _, id := range order {
		resp, ok := results[id]
		if !ok {
			continue // submit refused, reported above
		}
		if resp.Type == TypeError {
			errs = append(errs, fmt.Errorf("render %s: %s", names[id], resp.Err))
			continue
		}
		outputs = append(outputs, Output{Name: names[id], Data: resp.Data, Format: resp.Format})
	}

	if len(outputs) == 0 && len(files) > 0 {
		return nil, errs, ErrBatchFailed
	}
	return outputs, errs, nil
}

// decodeRGBA turns an encoded source into the raw width*height*4 buffer the
// worker protocol carries. Decoding stays on the submitting side because the
// worker context has no decoder.
func decodeRGBA(b []byte) (pix []byte, width, height int, err error) {
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, 0, 0, err
	}

	bnd := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bnd.Dx(), bnd.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bnd.Min, draw.Src)

	return rgba.Pix, bnd.Dx(), bnd.Dy(), nil
}
