package geometry

import "math"

// Point is a pixel position in content space. Origin is top-left.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Insets is the padding between the widget bounds and the plotting area.
type Insets struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// ContentArea describes the widget bounds and the space reserved around the plot.
// PointDiameter is subtracted from both axes so markers at the extremes stay
// fully inside the bounds.
type ContentArea struct {
	Width         float64
	Height        float64
	Insets        Insets
	PointDiameter float64
}

// PlotWidth returns the horizontal span available to data point centers.
func (a ContentArea) PlotWidth() float64 {
	return a.Width - a.Insets.Left - a.Insets.Right - a.PointDiameter
}

// PlotHeight returns the vertical span available to data point centers.
func (a ContentArea) PlotHeight() float64 {
	return a.Height - a.Insets.Top - a.Insets.Bottom - a.PointDiameter
}

// Valid reports whether there is any room left to plot in.
func (a ContentArea) Valid() bool {
	return a.PlotWidth() > 0 && a.PlotHeight() > 0
}

// Rect represents an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectAround returns the square of side size centered on p.
func RectAround(p Point, size float64) Rect {
	return Rect{X: p.X - size/2, Y: p.Y - size/2, Width: size, Height: size}
}

// Center returns the center point of the rect.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// ValueRange is the closed interval spanned by a series.
type ValueRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// RangeOf scans values for their min and max. Non-finite samples are skipped.
// An empty (or entirely non-finite) series yields the zero range.
func RangeOf(values []float64) ValueRange {
	r := ValueRange{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range values {
		if !isFinite(v) {
			continue
		}
		r.Min = min(r.Min, v)
		r.Max = max(r.Max, v)
	}
	if r.Min > r.Max {
		return ValueRange{}
	}
	return r
}

// Span returns Max - Min.
func (r ValueRange) Span() float64 {
	return r.Max - r.Min
}

// Fraction returns where v sits in the range, 0 at Min and 1 at Max. Both ends
// are halved when Max - Min overflows.
func (r ValueRange) Fraction(v float64) float64 {
	if span := r.Span(); !math.IsInf(span, 0) {
		return (v - r.Min) / span
	}
	return (v/2 - r.Min/2) / (r.Max/2 - r.Min/2)
}

// IsZero reports whether every sample had the same value.
func (r ValueRange) IsZero() bool {
	return r.Span() == 0
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
