package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/pressly/lg"

	snapframe "github.com/hasimpk/snap-to-frame"
	"github.com/hasimpk/snap-to-frame/export"
	"github.com/hasimpk/snap-to-frame/worker"
)

var (
	MimeTypes = map[string]string{
		"png":  "image/png",
		"jpeg": "image/jpeg",
		"jpg":  "image/jpeg",
		"bmp":  "image/bmp",
		"gif":  "image/gif",
		"webp": "image/webp",
		"tiff": "image/tiff",
	}

	ErrInvalidURL = errors.New("invalid url")
	ErrNoFile     = errors.New("no file uploaded")
)

// frameFromRequest layers the request's frame query over the configured
// defaults and validates eagerly, so a bad color is rejected before any
// source bytes are read.
func frameFromRequest(r *http.Request) (*snapframe.Frame, error) {
	f := *app.FrameBase
	if r.URL.RawQuery != "" {
		if err := f.SetFromQuery(r.URL.RawQuery); err != nil {
			return nil, err
		}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// RenderUpload frames a single uploaded image and responds with the encoded
// result plus a suggested download name.
func RenderUpload(w http.ResponseWriter, r *http.Request) {
	frame, err := frameFromRequest(r)
	if err != nil {
		respond.ApiError(w, 422, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respond.ApiError(w, 422, ErrNoFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.ApiError(w, 422, err)
		return
	}

	blob, err := app.RenderBlob(r.Context(), data, frame)
	if err != nil {
		lg.Errorf("Render failed for %s cause: %s", header.Filename, err)
		respond.ImageError(w, 422, err)
		return
	}

	name := export.OutputName(header.Filename, frame.Format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	respond.Image(w, 200, blob, frame)
}

// FetchRender fetches a remote image on demand and frames it.
func FetchRender(w http.ResponseWriter, r *http.Request) {
	frame, err := frameFromRequest(r)
	if err != nil {
		respond.ApiError(w, 422, err)
		return
	}

	fetchURL := r.URL.Query().Get("url")
	if fetchURL == "" {
		respond.ImageError(w, 422, ErrInvalidURL)
		return
	}

	resp, err := app.Fetcher.Get(r.Context(), fetchURL)
	if err != nil {
		lg.Errorf("Fetching failed for %s because %s", fetchURL, err)
		respond.ImageError(w, 422, err)
		return
	}
	if resp.Status != 200 || len(resp.Data) == 0 {
		respond.ImageError(w, 422, snapframe.ErrInvalidImageData)
		return
	}

	blob, err := app.RenderBlob(r.Context(), resp.Data, frame)
	if err != nil {
		respond.ImageError(w, 422, err)
		return
	}

	name := export.OutputName(resp.URL.Path, frame.Format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	respond.Image(w, 200, blob, frame)
}

// RenderBatch frames every uploaded file through the background worker and
// responds with a zip archive. One bad file yields an error entry, not an
// aborted batch; only a batch where every item failed is an error response.
func RenderBatch(w http.ResponseWriter, r *http.Request) {
	frame, err := frameFromRequest(r)
	if err != nil {
		respond.ApiError(w, 422, err)
		return
	}

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		respond.ApiError(w, 422, err)
		return
	}
	fhs := r.MultipartForm.File["file"]
	if len(fhs) == 0 {
		respond.ApiError(w, 422, ErrNoFile)
		return
	}

	files := make([]worker.File, 0, len(fhs))
	for _, fh := range fhs {
		f, err := fh.Open()
		if err != nil {
			respond.ApiError(w, 422, err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			respond.ApiError(w, 422, err)
			return
		}
		files = append(files, worker.File{Name: fh.Filename, Data: data})
	}

	outputs, errs, err := worker.RunBatch(r.Context(), app.ImageEngine, files, frame)
	if err != nil {
		respond.ApiError(w, 422, err)
		return
	}
	for _, e := range errs {
		lg.Warnf("batch item failed: %s", e)
	}

	entries := make([]export.Entry, len(outputs))
	for n, o := range outputs {
		entries[n] = export.Entry{Name: export.OutputName(o.Name, o.Format), Data: o.Data}
	}

	var buf bytes.Buffer
	if err := export.Archive(&buf, entries); err != nil {
		respond.ApiError(w, 500, err)
		return
	}

	if len(errs) > 0 {
		w.Header().Set("X-Render-Errors", strconv.Itoa(len(errs)))
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="framed_images.zip"`)
	w.WriteHeader(200)
	w.Write(buf.Bytes())
}

func GetImageInfo(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		respond.ApiError(w, 422, errors.New("no image url"))
		return
	}

	resp, err := app.Fetcher.Get(r.Context(), url)
	if err != nil {
		respond.ApiError(w, 422, err)
		return
	}

	imfo, err := app.ImageEngine.GetImageInfo(resp.Data)
	if err != nil {
		respond.ApiError(w, 422, err)
		return
	}
	imfo.URL = resp.URL.String()
	imfo.Mimetype = MimeTypes[imfo.Format]

	w.Header().Set("X-Meta-Width", fmt.Sprintf("%d", imfo.Width))
	w.Header().Set("X-Meta-Height", fmt.Sprintf("%d", imfo.Height))
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", app.Config.CacheMaxAge))
	respond.JSON(w, 200, imfo)
}
