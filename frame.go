package snapframe

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
)

// Background fill strategies.
const (
	BackgroundSolid    = "solid"
	BackgroundGradient = "gradient"
)

// Gradient axes.
const (
	GradientHorizontal = "horizontal"
	GradientVertical   = "vertical"
	GradientDiagonal   = "diagonal"
)

// Fit modes for placing the source image inside the image area.
const (
	FitContain = "contain"
	FitCover   = "cover"
)

// Border stroke styles.
const (
	BorderSolid  = "solid"
	BorderDashed = "dashed"
	BorderDotted = "dotted"
)

// Output formats.
const (
	FormatPNG = "png"
	FormatJPG = "jpg"
)

// JpegQuality is the fixed quality factor used for lossy output.
const JpegQuality = 95

var (
	DefaultFrameSize = 1080
)

// Frame is the full configuration for one render call. It is immutable for
// the duration of a render; no component mutates it mid-render.
type Frame struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	Background        string `json:"background"`
	BackgroundType    string `json:"background_type"`
	GradientStart     string `json:"gradient_start"`
	GradientEnd       string `json:"gradient_end"`
	GradientDirection string `json:"gradient_direction"`

	Padding int    `json:"padding"`
	Fit     string `json:"fit"`

	BorderRadius int  `json:"border_radius"`
	Shadow       bool `json:"shadow"`
	ShadowSpread int  `json:"shadow_spread"`

	Border      bool   `json:"border"`
	BorderColor string `json:"border_color"`
	BorderWidth int    `json:"border_width"`
	BorderStyle string `json:"border_style"`

	Format string `json:"format"`
}

func NewFrame() *Frame {
	return &Frame{
		Width:             DefaultFrameSize,
		Height:            DefaultFrameSize,
		Background:        "#ffffff",
		BackgroundType:    BackgroundSolid,
		GradientStart:     "#ffffff",
		GradientEnd:       "#000000",
		GradientDirection: GradientHorizontal,
		Fit:               FitContain,
		ShadowSpread:      20,
		BorderColor:       "#000000",
		BorderWidth:       4,
		BorderStyle:       BorderSolid,
		Format:            FormatPNG,
	}
}

func NewFrameFromQuery(q string) (*Frame, error) {
	f := NewFrame()
	if err := f.SetFromQuery(q); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate rejects unrenderable configuration before any drawing happens.
// Colors are checked eagerly so a bad value surfaces to the caller instead of
// silently degrading to white.
func (f *Frame) Validate() error {
	switch f.BackgroundType {
	case BackgroundSolid:
		if !IsValidColor(f.Background) {
			return &InvalidColorError{Field: "background", Value: f.Background}
		}
	case BackgroundGradient:
		if !IsValidColor(f.GradientStart) {
			return &InvalidColorError{Field: "gradient_start", Value: f.GradientStart}
		}
		if !IsValidColor(f.GradientEnd) {
			return &InvalidColorError{Field: "gradient_end", Value: f.GradientEnd}
		}
	default:
		return fmt.Errorf("unknown background type: %q", f.BackgroundType)
	}

	if f.Border && !IsValidColor(f.BorderColor) {
		return &InvalidColorError{Field: "border_color", Value: f.BorderColor}
	}

	switch f.Format {
	case FormatPNG, FormatJPG:
	default:
		return fmt.Errorf("unknown output format: %q", f.Format)
	}

	return nil
}

// ImageArea is the sub-rectangle of the frame inside the padding. Degenerate
// (non-positive) areas are returned as-is; the compositor produces degenerate
// draws for them rather than rejecting the config.
func (f *Frame) ImageArea() (x, y, w, h int) {
	return f.Padding, f.Padding, f.Width - 2*f.Padding, f.Height - 2*f.Padding
}

// ShadowExtent is the symmetric margin added per side to the working canvas
// so shadow blur is never clipped by a canvas edge.
func (f *Frame) ShadowExtent() int {
	if !f.Shadow {
		return 0
	}
	spread := float64(f.ShadowSpread)
	return int(math.Ceil(spread + math.Max(2, spread/5)))
}

// MimeType of the encoded output, chosen solely from the format field.
func (f *Frame) MimeType() string {
	if f.Format == FormatJPG {
		return "image/jpeg"
	}
	return "image/png"
}

func (f *Frame) SetFromQuery(q string) error {
	if q == "" {
		return fmt.Errorf("no query given")
	}

	query, err := url.ParseQuery(q)
	if err != nil {
		return err
	}

	if v := query.Get("size"); v != "" {
		if _, err := fmt.Sscanf(v, "%dx%d", &f.Width, &f.Height); err != nil {
			return fmt.Errorf("invalid size query: %s", v)
		}
	}

	if v := query.Get("bg"); v != "" {
		f.Background = v
	}
	if v := query.Get("bgtype"); v != "" {
		f.BackgroundType = v
	}
	if v := query.Get("gstart"); v != "" {
		f.GradientStart = v
	}
	if v := query.Get("gend"); v != "" {
		f.GradientEnd = v
	}
	if v := query.Get("gdir"); v != "" {
		f.GradientDirection = v
	}

	if v := query.Get("pad"); v != "" {
		if f.Padding, err = strconv.Atoi(v); err != nil {
			return err
		}
	}
	if v := query.Get("fit"); v != "" {
		f.Fit = v
	}

	if v := query.Get("radius"); v != "" {
		if f.BorderRadius, err = strconv.Atoi(v); err != nil {
			return err
		}
	}

	if v := query.Get("shadow"); v != "" {
		f.Shadow = boolParam(v)
	}
	if v := query.Get("spread"); v != "" {
		if f.ShadowSpread, err = strconv.Atoi(v); err != nil {
			return err
		}
	}

	if v := query.Get("border"); v != "" {
		f.Border = boolParam(v)
	}
	if v := query.Get("bcolor"); v != "" {
		f.BorderColor = v
	}
	if v := query.Get("bwidth"); v != "" {
		if f.BorderWidth, err = strconv.Atoi(v); err != nil {
			return err
		}
	}
	if v := query.Get("bstyle"); v != "" {
		f.BorderStyle = v
	}

	if v := query.Get("format"); v != "" {
		f.Format = v
	}

	return nil
}

// ToQuery is the canonical encoding of a frame, used as part of the
// rendered-result cache key.
func (f *Frame) ToQuery() url.Values {
	u := url.Values{}

	u.Add("size", fmt.Sprintf("%dx%d", f.Width, f.Height))
	u.Add("bgtype", f.BackgroundType)
	if f.BackgroundType == BackgroundGradient {
		u.Add("gstart", f.GradientStart)
		u.Add("gend", f.GradientEnd)
		u.Add("gdir", f.GradientDirection)
	} else {
		u.Add("bg", f.Background)
	}
	if f.Padding != 0 {
		u.Add("pad", strconv.Itoa(f.Padding))
	}
	u.Add("fit", f.Fit)
	if f.BorderRadius != 0 {
		u.Add("radius", strconv.Itoa(f.BorderRadius))
	}
	if f.Shadow {
		u.Add("shadow", "1")
		u.Add("spread", strconv.Itoa(f.ShadowSpread))
	}
	if f.Border {
		u.Add("border", "1")
		u.Add("bcolor", f.BorderColor)
		u.Add("bwidth", strconv.Itoa(f.BorderWidth))
		u.Add("bstyle", f.BorderStyle)
	}
	u.Add("format", f.Format)

	return u
}

// boolParam reads a flag-style query value. Explicit false spellings turn
// the feature off so a request can override an enabled server default; any
// other non-empty value enables it.
func boolParam(v string) bool {
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return true
}

// DashPattern returns the stroke dash lengths for the border style.
// A nil pattern means a solid stroke.
func (f *Frame) DashPattern() []float64 {
	switch f.BorderStyle {
	case BorderDashed:
		return []float64{8, 4}
	case BorderDotted:
		return []float64{2, 4}
	default:
		return nil
	}
}
