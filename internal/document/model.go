package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/inamate/linechart/internal/geometry"
)

var (
	// ErrInvalidColor is returned for style colors that are neither hex nor transparent.
	ErrInvalidColor = errors.New("invalid color")
	// ErrInvalidSize is returned for negative or non-finite widths, sizes and bounds.
	ErrInvalidSize = errors.New("invalid size")
)

// Transparent is the normalised spelling of "no paint".
const Transparent = "transparent"

// Chart is the JSON document a host loads into an engine.
type Chart struct {
	ID     string    `json:"id"`
	Title  string    `json:"title,omitempty"`
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
	Scale  float64   `json:"scale,omitempty"`
	Series []float64 `json:"series"`
	Style  *Style    `json:"style,omitempty"`
}

// Style holds every visual input to rendering. Changing any field re-renders
// but never changes interaction state.
type Style struct {
	// Line
	LineStrokeColor string  `json:"lineStrokeColor"`
	LineStrokeWidth float64 `json:"lineStrokeWidth"`

	// Data point markers; PointSize 0 disables them.
	PointSize        float64 `json:"pointSize"`
	PointFillColor   string  `json:"pointFillColor"`
	PointStrokeColor string  `json:"pointStrokeColor"`
	PointStrokeWidth float64 `json:"pointStrokeWidth"`

	Curve bool `json:"curve"`

	// Crosshair
	CrosshairColor string  `json:"crosshairColor"`
	CrosshairWidth float64 `json:"crosshairWidth"`
	ShowAcrossTop  bool    `json:"showAcrossTop"`

	// Value line
	ValueLineColor string  `json:"valueLineColor"`
	ValueLineWidth float64 `json:"valueLineWidth"`

	// Selection marker
	MarkerSize        float64 `json:"markerSize"`
	MarkerStrokeColor string  `json:"markerStrokeColor"`
	MarkerStrokeWidth float64 `json:"markerStrokeWidth"`
	MarkerFillColor   string  `json:"markerFillColor"`

	Insets geometry.Insets `json:"insets"`
}

// DefaultStyle returns the stock look: thin black curved line, no point
// markers, blue crosshair and marker, light gray value line.
func DefaultStyle() Style {
	return Style{
		LineStrokeColor:   "#000000",
		LineStrokeWidth:   1,
		PointSize:         0,
		PointFillColor:    "#ffffff",
		PointStrokeColor:  "#000000",
		PointStrokeWidth:  1,
		Curve:             true,
		CrosshairColor:    "#0668b3",
		CrosshairWidth:    1,
		ShowAcrossTop:     false,
		ValueLineColor:    "#aaaaaa",
		ValueLineWidth:    0.5,
		MarkerSize:        8,
		MarkerStrokeColor: "#0668b3",
		MarkerStrokeWidth: 1,
		MarkerFillColor:   Transparent,
		Insets:            geometry.Insets{Left: 0, Right: 0, Top: 4, Bottom: 4},
	}
}

// Normalize validates s and returns a copy with every color in lowercase
// #rrggbb form (or "transparent").
func (s Style) Normalize() (Style, error) {
	colors := []struct {
		name string
		v    *string
	}{
		{"lineStrokeColor", &s.LineStrokeColor},
		{"pointFillColor", &s.PointFillColor},
		{"pointStrokeColor", &s.PointStrokeColor},
		{"crosshairColor", &s.CrosshairColor},
		{"valueLineColor", &s.ValueLineColor},
		{"markerStrokeColor", &s.MarkerStrokeColor},
		{"markerFillColor", &s.MarkerFillColor},
	}
	for _, c := range colors {
		norm, err := NormalizeColor(*c.v)
		if err != nil {
			return Style{}, fmt.Errorf("%s: %w", c.name, err)
		}
		*c.v = norm
	}

	sizes := []struct {
		name string
		v    float64
	}{
		{"lineStrokeWidth", s.LineStrokeWidth},
		{"pointSize", s.PointSize},
		{"pointStrokeWidth", s.PointStrokeWidth},
		{"crosshairWidth", s.CrosshairWidth},
		{"valueLineWidth", s.ValueLineWidth},
		{"markerSize", s.MarkerSize},
		{"markerStrokeWidth", s.MarkerStrokeWidth},
		{"insets.left", s.Insets.Left},
		{"insets.right", s.Insets.Right},
		{"insets.top", s.Insets.Top},
		{"insets.bottom", s.Insets.Bottom},
	}
	for _, sz := range sizes {
		if err := checkSize(sz.v); err != nil {
			return Style{}, fmt.Errorf("%s: %w", sz.name, err)
		}
	}

	return s, nil
}

// NormalizeColor accepts "#rgb", "#rrggbb", "transparent", "clear" or "".
func NormalizeColor(s string) (string, error) {
	trimmed := strings.TrimSpace(strings.ToLower(s))
	switch trimmed {
	case "", Transparent, "clear", "none":
		return Transparent, nil
	}
	if len(trimmed) != 4 && len(trimmed) != 7 {
		return "", fmt.Errorf("%w %q", ErrInvalidColor, s)
	}
	c, err := colorful.Hex(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w %q", ErrInvalidColor, s)
	}
	return c.Hex(), nil
}

func checkSize(v float64) error {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSize, v)
	}
	return nil
}

// ParseChart decodes and validates a chart document. A missing style gets
// DefaultStyle.
func ParseChart(data []byte) (*Chart, error) {
	var chart Chart
	if err := json.Unmarshal(data, &chart); err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	if err := chart.Validate(); err != nil {
		return nil, err
	}
	return &chart, nil
}

// Validate checks bounds and normalises the style in place.
func (c *Chart) Validate() error {
	if err := checkSize(c.Width); err != nil {
		return fmt.Errorf("width: %w", err)
	}
	if err := checkSize(c.Height); err != nil {
		return fmt.Errorf("height: %w", err)
	}
	if err := checkSize(c.Scale); err != nil {
		return fmt.Errorf("scale: %w", err)
	}

	style := DefaultStyle()
	if c.Style != nil {
		style = *c.Style
	}
	norm, err := style.Normalize()
	if err != nil {
		return fmt.Errorf("style: %w", err)
	}
	c.Style = &norm
	return nil
}
