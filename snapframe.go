package snapframe

import (
	"errors"
	"fmt"
)

const (
	VERSION = "1.0.0"
)

var (
	ErrInvalidImageData = errors.New("invalid image data")

	// ErrSurfaceUnavailable is returned when a 2D drawing surface cannot
	// be allocated for a render. Fatal for that render, never retried.
	ErrSurfaceUnavailable = errors.New("unable to allocate drawing surface")
)

// Engine decodes source images and hands back renderable Image handles.
type Engine interface {
	Version() string
	Initialize(tmpDir string) error
	Terminate()

	LoadBlob(b []byte, srcFormat ...string) (Image, error)
	LoadRGBA(pix []byte, width, height int) (Image, error)
	GetImageInfo(b []byte, srcFormat ...string) (*ImageInfo, error)
}

// Image is a decoded source bitmap. RenderFrame replaces the image's data
// with the framed composite, encoded per the frame's output format.
type Image interface {
	Data() []byte
	Width() int
	Height() int
	Format() string

	Release()
	Released() bool

	RenderFrame(frame *Frame) error
	WriteToFile(string) error
}

type ImageInfo struct {
	URL           string  `json:"url"`
	Format        string  `json:"format"`
	Mimetype      string  `json:"mimetype"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	AspectRatio   float64 `json:"aspect_ratio"`
	ContentLength int     `json:"content_length"`
}

// InvalidColorError reports a configuration color that failed validation,
// naming the field and echoing the raw input. Raised before any drawing.
type InvalidColorError struct {
	Field string
	Value string
}

func (e *InvalidColorError) Error() string {
	return fmt.Sprintf("invalid color for %s: %q", e.Field, e.Value)
}

// GradientColorError reports gradient stops that passed validation but were
// rejected while building the gradient itself.
type GradientColorError struct {
	Start string
	End   string
}

func (e *GradientColorError) Error() string {
	return fmt.Sprintf("unable to build gradient from stops %q and %q", e.Start, e.End)
}

// DecodeError reports a single source file that could not be decoded.
// In a batch it never aborts the other files.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a failure producing the output blob.
type EncodeError struct {
	Format string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
