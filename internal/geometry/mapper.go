package geometry

import "math"

// Mapper converts between series indices/values and content-space pixels for
// one snapshot of a series. It is a value type; build a fresh one whenever the
// series, bounds or style change.
type Mapper struct {
	area  ContentArea
	rng   ValueRange
	count int
	step  float64
}

// NewMapper scans values for their range and derives the step width.
func NewMapper(area ContentArea, values []float64) Mapper {
	return Mapper{
		area:  area,
		rng:   RangeOf(values),
		count: len(values),
		step:  StepWidth(len(values), area),
	}
}

// StepWidth returns the horizontal distance between consecutive points.
// Fewer than two points have no step and yield 0.
func StepWidth(count int, area ContentArea) float64 {
	if count < 2 {
		return 0
	}
	return area.PlotWidth() / float64(count-1)
}

// Area returns the content area the mapper was built for.
func (m Mapper) Area() ContentArea { return m.area }

// Range returns the value range of the snapshot.
func (m Mapper) Range() ValueRange { return m.rng }

// Count returns the number of samples in the snapshot.
func (m Mapper) Count() int { return m.count }

// Step returns the step width.
func (m Mapper) Step() float64 { return m.step }

// X returns the horizontal pixel position of index i.
func (m Mapper) X(i int) float64 {
	return float64(i)*m.step + m.area.Insets.Left + m.area.PointDiameter/2
}

// Y returns the vertical pixel position of value v. Larger values map to
// smaller y. A zero range (or a non-finite value) maps to the vertical center.
// Ranges wider than the largest float64 still map to finite positions.
func (m Mapper) Y(v float64) float64 {
	drawHeight := m.area.PlotHeight()
	top := m.area.Insets.Top + m.area.PointDiameter/2
	if m.rng.IsZero() || !isFinite(v) {
		return top + drawHeight/2
	}
	return drawHeight - m.rng.Fraction(v)*drawHeight + top
}

// Point maps a single sample.
func (m Mapper) Point(i int, v float64) Point {
	return Point{X: m.X(i), Y: m.Y(v)}
}

// Points maps every sample of values. values must be the series the mapper
// was built from.
func (m Mapper) Points(values []float64) []Point {
	if len(values) == 0 {
		return nil
	}
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = m.Point(i, v)
	}
	return points
}

// Index is the inverse of X: the nearest index to pixel x, always clamped to
// [0, Count-1]. Returns 0 whenever there is nothing to resolve against.
func (m Mapper) Index(x float64) int {
	if m.count < 2 || m.step <= 0 || math.IsNaN(x) {
		return 0
	}
	raw := math.Round((x - m.area.Insets.Left - m.area.PointDiameter/2) / m.step)
	last := m.count - 1
	if raw <= 0 {
		return 0
	}
	if raw >= float64(last) {
		return last
	}
	return int(raw)
}
