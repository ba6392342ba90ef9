package worker

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	snapframe "github.com/hasimpk/snap-to-frame"
	"github.com/hasimpk/snap-to-frame/raster"
)

func testFrame() *snapframe.Frame {
	f := snapframe.NewFrame()
	f.Width, f.Height = 64, 64
	return f
}

func rgbaBuf(w, h int, c color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img.Pix
}

func pngBlob(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestWorkerAnswersEveryTaskById(t *testing.T) {
	w := New(raster.Engine{})

	ids := []string{"c", "a", "b"}
	for _, id := range ids {
		err := w.Submit(Task{ID: id, Pix: rgbaBuf(10, 10, color.RGBA{R: 255, A: 255}), Width: 10, Height: 10, Frame: testFrame()})
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, w.Wait(ctx))

	done, total := w.Progress()
	assert.Equal(t, 3, done)
	assert.Equal(t, 3, total)
	assert.Equal(t, 0, w.Pending())

	w.Close()

	got := map[string]int{}
	for resp := range w.Responses() {
		got[resp.ID]++
		assert.Equal(t, TypeResult, resp.Type)
		assert.NotEmpty(t, resp.Data)
		assert.Equal(t, "png", resp.Format)
	}
	// exactly one answer per id
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1}, got)
}

func TestWorkerReportsTaskErrors(t *testing.T) {
	w := New(raster.Engine{})
	defer w.Close()

	// pixel buffer doesn't match the declared dimensions
	err := w.Submit(Task{ID: "bad", Pix: make([]byte, 16), Width: 10, Height: 10, Frame: testFrame()})
	require.NoError(t, err)

	resp := <-w.Responses()
	assert.Equal(t, TypeError, resp.Type)
	assert.Equal(t, "bad", resp.ID)
	assert.NotEmpty(t, resp.Err)
	assert.Nil(t, resp.Data)
}

func TestWorkerRejectsDuplicateIds(t *testing.T) {
	// no run loop, so the first task stays pending
	w := &Worker{
		tasks:   make(chan Task, 4),
		pending: make(map[string]struct{}),
	}

	task := Task{ID: "dup", Pix: rgbaBuf(8, 8, color.RGBA{A: 255}), Width: 8, Height: 8, Frame: testFrame()}
	require.NoError(t, w.Submit(task))
	assert.Error(t, w.Submit(task))

	assert.Error(t, w.Submit(Task{ID: "noframe"}))
}

func TestWorkerWaitHonorsContext(t *testing.T) {
	w := New(raster.Engine{})
	defer w.Close()

	// a task that never existed cannot complete; Wait must give up with ctx
	w.mu.Lock()
	w.pending["ghost"] = struct{}{}
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, w.Wait(ctx), context.DeadlineExceeded)
}

func TestRunBatchPartialFailure(t *testing.T) {
	files := []File{
		{Name: "one.png", Data: pngBlob(t, 20, 20, color.RGBA{R: 255, A: 255})},
		{Name: "broken.png", Data: []byte("not an image at all")},
		{Name: "three.png", Data: pngBlob(t, 30, 15, color.RGBA{B: 255, A: 255})},
	}

	outputs, errs, err := RunBatch(context.Background(), raster.Engine{}, files, testFrame())
	require.NoError(t, err)

	require.Len(t, outputs, 2)
	assert.Equal(t, "one.png", outputs[0].Name)
	assert.Equal(t, "three.png", outputs[1].Name)

	require.Len(t, errs, 1)
	var derr *snapframe.DecodeError
	assert.ErrorAs(t, errs[0], &derr)
	assert.Equal(t, "broken.png", derr.Name)
}

func TestRunBatchAllFailed(t *testing.T) {
	files := []File{
		{Name: "a.png", Data: []byte("garbage")},
		{Name: "b.png", Data: nil},
	}

	outputs, errs, err := RunBatch(context.Background(), raster.Engine{}, files, testFrame())
	assert.ErrorIs(t, err, ErrBatchFailed)
	assert.Nil(t, outputs)
	assert.Len(t, errs, 2)
}

func TestRunBatchLargerThanQueueBuffers(t *testing.T) {
	// well past the worker's channel capacity, so progress requires
	// responses to drain while submission is still going
	blob := pngBlob(t, 4, 4, color.RGBA{R: 255, A: 255})
	files := make([]File, 200)
	for n := range files {
		files[n] = File{Name: fmt.Sprintf("img-%03d.png", n), Data: blob}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	outputs, errs, err := RunBatch(ctx, raster.Engine{}, files, testFrame())
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.Len(t, outputs, len(files))
	assert.Equal(t, "img-000.png", outputs[0].Name)
	assert.Equal(t, "img-199.png", outputs[len(files)-1].Name)
}

func TestRunBatchEmpty(t *testing.T) {
	outputs, errs, err := RunBatch(context.Background(), raster.Engine{}, nil, testFrame())
	assert.NoError(t, err)
	assert.Empty(t, outputs)
	assert.Empty(t, errs)
}
