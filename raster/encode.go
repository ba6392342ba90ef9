package raster

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"

	snapframe "github.com/hasimpk/snap-to-frame"
)

func encodeBlob(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case snapframe.FormatJPG:
		opts := &jpeg.Options{Quality: snapframe.JpegQuality}
		if err := jpeg.Encode(&buf, img, opts); err != nil {
			return nil, &snapframe.EncodeError{Format: format, Err: err}
		}
	default:
		if err := png.Encode(&buf, img); err != nil {
			return nil, &snapframe.EncodeError{Format: format, Err: err}
		}
	}

	return buf.Bytes(), nil
}
