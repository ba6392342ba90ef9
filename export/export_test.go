package export

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"My Photo (1).PNG", "my_photo_1"},
		{"screenshot 2026-08-29 at 10.15.03.png", "screenshot_2026_08_29_at_10_15_03"},
		{"image.jpeg", "image"},
		{"---.png", "image"},
		{"", "image"},
		{"noext", "noext"},
		{"UPPER_lower.jpg", "upper_lower"},
		{"../../etc/passwd", "passwd"},
		{"Ünïcode name!.png", "n_code_name"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, SanitizeFilename(tc.in), "input %q", tc.in)
	}
}

func TestSanitizeFilenameTruncates(t *testing.T) {
	long := strings.Repeat("a", 250) + ".png"
	got := SanitizeFilename(long)
	assert.Len(t, got, 100)
	assert.Equal(t, strings.Repeat("a", 100), got)
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "my_photo_1.png", OutputName("My Photo (1).PNG", "png"))
	assert.Equal(t, "shot.jpg", OutputName("shot.png", "jpg"))
}

func TestArchiveRoundTrip(t *testing.T) {
	entries := []Entry{
		{Name: "one.png", Data: []byte("first payload")},
		{Name: "two.jpg", Data: []byte("second payload")},
	}

	var buf bytes.Buffer
	require.NoError(t, Archive(&buf, entries))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	got := map[string]string{}
	for _, zf := range zr.File {
		rc, err := zf.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		got[zf.Name] = string(b)
	}

	assert.Equal(t, map[string]string{
		"one.png": "first payload",
		"two.jpg": "second payload",
	}, got)
}

func TestArchiveDeduplicatesNames(t *testing.T) {
	entries := []Entry{
		{Name: "image.png", Data: []byte("a")},
		{Name: "image.png", Data: []byte("b")},
		{Name: "image.png", Data: []byte("c")},
	}

	var buf bytes.Buffer
	require.NoError(t, Archive(&buf, entries))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	names := make([]string, 0, len(zr.File))
	for _, zf := range zr.File {
		names = append(names, zf.Name)
	}
	assert.Equal(t, []string{"image.png", "image_1.png", "image_2.png"}, names)
}

func TestArchiveEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Archive(&buf, nil))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Empty(t, zr.File)
}
