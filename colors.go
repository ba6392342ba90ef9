package snapframe

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// FallbackColor stands in for unparseable colors in the sanitizing path.
const FallbackColor = "#ffffff"

// IsValidColor reports whether the surface parser can render s. A string
// starting with "#" is valid iff it carries exactly 3, 6 or 8 hex digits.
// Any other non-empty string is valid if the parser resolves it (named CSS
// colors, rgb()/rgba() functional forms).
func IsValidColor(s string) bool {
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		switch len(hex) {
		case 3, 6, 8:
		default:
			return false
		}
		for _, c := range hex {
			if !isHexDigit(c) {
				return false
			}
		}
		return true
	}
	_, err := ParseColor(s)
	return err == nil
}

// SanitizeColor returns s when renderable, else the fallback, else #ffffff.
// Idempotent: sanitizing a sanitized color is a no-op.
func SanitizeColor(s string, fallback ...string) string {
	if IsValidColor(s) {
		return s
	}
	if len(fallback) > 0 && IsValidColor(fallback[0]) {
		return fallback[0]
	}
	return FallbackColor
}

// ParseColor resolves a color string to a concrete RGBA value. This is the
// single parser shared by validation and the raster backend, so a color that
// validates always draws the same pixels in both execution contexts.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.RGBA{}, fmt.Errorf("empty color")
	}

	if strings.HasPrefix(s, "#") {
		return parseHexColor(s[1:])
	}

	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "rgb(") || strings.HasPrefix(lower, "rgba(") {
		return parseFuncColor(lower)
	}

	if c, ok := colornames.Map[lower]; ok {
		return c, nil
	}

	return color.RGBA{}, fmt.Errorf("unknown color: %q", s)
}

func parseHexColor(hex string) (color.RGBA, error) {
	for _, c := range hex {
		if !isHexDigit(c) {
			return color.RGBA{}, fmt.Errorf("invalid hex color: #%s", hex)
		}
	}

	switch len(hex) {
	case 3:
		r := hexNibble(hex[0])
		g := hexNibble(hex[1])
		b := hexNibble(hex[2])
		return color.RGBA{R: r<<4 | r, G: g<<4 | g, B: b<<4 | b, A: 0xff}, nil
	case 6:
		v, _ := strconv.ParseUint(hex, 16, 32)
		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
	case 8:
		v, _ := strconv.ParseUint(hex, 16, 64)
		return premultiply(uint8(v>>24), uint8(v>>16), uint8(v>>8), uint8(v)), nil
	}
	return color.RGBA{}, fmt.Errorf("invalid hex color: #%s", hex)
}

// parseFuncColor handles rgb(r,g,b) and rgba(r,g,b,a) with a in [0,1].
func parseFuncColor(s string) (color.RGBA, error) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return color.RGBA{}, fmt.Errorf("malformed color: %q", s)
	}

	parts := strings.Split(s[open+1:len(s)-1], ",")
	wantAlpha := strings.HasPrefix(s, "rgba")
	if (wantAlpha && len(parts) != 4) || (!wantAlpha && len(parts) != 3) {
		return color.RGBA{}, fmt.Errorf("malformed color: %q", s)
	}

	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return color.RGBA{}, fmt.Errorf("malformed color: %q", s)
		}
		ch[i] = uint8(v)
	}

	if !wantAlpha {
		return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: 0xff}, nil
	}

	a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
	if err != nil || a < 0 || a > 1 {
		return color.RGBA{}, fmt.Errorf("malformed color: %q", s)
	}
	return premultiply(ch[0], ch[1], ch[2], uint8(round(a*255))), nil
}

func premultiply(r, g, b, a uint8) color.RGBA {
	return color.RGBA{
		R: uint8(uint16(r) * uint16(a) / 0xff),
		G: uint8(uint16(g) * uint16(a) / 0xff),
		B: uint8(uint16(b) * uint16(a) / 0xff),
		A: a,
	}
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexNibble(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
