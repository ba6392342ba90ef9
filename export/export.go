// Package export is the boundary to the download side: it turns finished
// encoded images into suggested filenames and multi-file archives. Nothing
// here re-renders; ownership of the blobs transfers in.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// Archives always deflate at this level; callers cannot tune it.
const archiveCompressionLevel = 6

const maxFilenameLen = 100

var nonAlnumRuns = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Entry is one file of an archive.
type Entry struct {
	Name string
	Data []byte
}

// SanitizeFilename derives a safe base name from a source filename: the
// extension is stripped, every run of non-alphanumerics collapses to one
// underscore, edges are trimmed, the rest is lowercased and capped at 100
// characters.
func SanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	s := nonAlnumRuns.ReplaceAllString(base, "_")
	s = strings.Trim(s, "_")
	s = strings.ToLower(s)
	if len(s) > maxFilenameLen {
		s = s[:maxFilenameLen]
	}
	if s == "" {
		s = "image"
	}
	return s
}

// OutputName is the suggested download name for a render of the given
// source file in the given output format.
func OutputName(srcName, format string) string {
	return SanitizeFilename(srcName) + "." + format
}

// Archive writes the entries into a zip stream. Duplicate names are
// suffixed with a counter so no entry silently overwrites another.
func Archive(w io.Writer, entries []Entry) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, archiveCompressionLevel)
	})

	seen := make(map[string]int, len(entries))
	for _, e := range entries {
		name := e.Name
		if n := seen[e.Name]; n > 0 {
			ext := filepath.Ext(name)
			name = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n, ext)
		}
		seen[e.Name]++

		fw, err := zw.Create(name)
		if err != nil {
			return err
		}
		if _, err := fw.Write(e.Data); err != nil {
			return err
		}
	}

	return zw.Close()
}
