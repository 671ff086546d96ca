package geometry_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/linechart/internal/geometry"
)

var sampleSeries = []float64{0, 2, 1, 3, 5, 4, 8, 6.5, 7.8, 9.2, 9.0, 5.5, 10}

func bareArea(width, height float64) geometry.ContentArea {
	return geometry.ContentArea{Width: width, Height: height}
}

func TestMapper_SampleScenario(t *testing.T) {
	m := geometry.NewMapper(bareArea(300, 200), sampleSeries)

	require.InDelta(t, 25.0, m.Step(), 1e-9)
	require.InDelta(t, 0.0, m.X(0), 1e-9)
	require.InDelta(t, 300.0, m.X(12), 1e-9)
	require.Equal(t, geometry.ValueRange{Min: 0, Max: 10}, m.Range())

	assert.InDelta(t, 0.0, m.Y(10), 1e-9, "max value maps to the top")
	assert.InDelta(t, 200.0, m.Y(0), 1e-9, "min value maps to the bottom")
	assert.InDelta(t, 100.0, m.Y(5), 1e-9)
}

func TestMapper_InsetsAndPointDiameter(t *testing.T) {
	area := geometry.ContentArea{
		Width:         220,
		Height:        120,
		Insets:        geometry.Insets{Left: 10, Right: 0, Top: 4, Bottom: 4},
		PointDiameter: 10,
	}
	m := geometry.NewMapper(area, []float64{1, 2, 3})

	// (220 - 10 - 0 - 10) / 2
	require.InDelta(t, 100.0, m.Step(), 1e-9)
	assert.InDelta(t, 15.0, m.X(0), 1e-9)
	assert.InDelta(t, 215.0, m.X(2), 1e-9)

	// drawHeight = 120 - 8 - 10 = 102; top = 4 + 5
	assert.InDelta(t, 9.0, m.Y(3), 1e-9)
	assert.InDelta(t, 111.0, m.Y(1), 1e-9)
}

func TestStepWidth_Degenerate(t *testing.T) {
	area := bareArea(300, 200)
	assert.Zero(t, geometry.StepWidth(0, area))
	assert.Zero(t, geometry.StepWidth(1, area))
	assert.InDelta(t, 300.0, geometry.StepWidth(2, area), 1e-9)
}

func TestMapper_IndexRoundTrip(t *testing.T) {
	areas := []geometry.ContentArea{
		bareArea(300, 200),
		{Width: 375, Height: 180, Insets: geometry.Insets{Left: 7, Right: 13, Top: 4, Bottom: 4}, PointDiameter: 6},
		{Width: 64, Height: 20, PointDiameter: 2},
	}
	for _, area := range areas {
		for n := 1; n <= 40; n++ {
			values := make([]float64, n)
			for i := range values {
				values[i] = math.Sin(float64(i))
			}
			m := geometry.NewMapper(area, values)
			for i := range n {
				require.Equal(t, i, m.Index(m.X(i)), "area=%+v n=%d i=%d", area, n, i)
			}
		}
	}
}

func TestMapper_SingleSampleIndexIsZero(t *testing.T) {
	m := geometry.NewMapper(bareArea(300, 200), []float64{42})
	assert.Equal(t, 0, m.Index(-10))
	assert.Equal(t, 0, m.Index(150))
	assert.Equal(t, 0, m.Index(1e9))
}

func TestMapper_YMonotone(t *testing.T) {
	m := geometry.NewMapper(bareArea(300, 200), sampleSeries)
	prev := math.Inf(1)
	for v := -5.0; v <= 15; v += 0.25 {
		y := m.Y(v)
		require.LessOrEqual(t, y, prev, "y must not increase as value grows (v=%v)", v)
		prev = y
	}
}

func TestMapper_HugeRangeStaysFinite(t *testing.T) {
	values := []float64{-1e308, 0, 1e308}
	m := geometry.NewMapper(bareArea(300, 200), values)
	require.True(t, math.IsInf(m.Range().Span(), 1))

	ys := make([]float64, len(values))
	for i, v := range values {
		ys[i] = m.Y(v)
		require.False(t, math.IsNaN(ys[i]) || math.IsInf(ys[i], 0), "v=%v y=%v", v, ys[i])
	}
	assert.InDelta(t, 200.0, ys[0], 1e-9)
	assert.InDelta(t, 100.0, ys[1], 1e-9)
	assert.InDelta(t, 0.0, ys[2], 1e-9)
}

func TestMapper_ZeroRangeMapsToCenter(t *testing.T) {
	area := geometry.ContentArea{
		Width:  100,
		Height: 60,
		Insets: geometry.Insets{Top: 4, Bottom: 4},
	}
	m := geometry.NewMapper(area, []float64{3, 3, 3, 3})
	require.True(t, m.Range().IsZero())

	for i := range 4 {
		y := m.Point(i, 3).Y
		require.False(t, math.IsNaN(y) || math.IsInf(y, 0))
		require.InDelta(t, 30.0, y, 1e-9)
	}
}

func TestRangeOf(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   geometry.ValueRange
	}{
		{"empty", nil, geometry.ValueRange{}},
		{"single", []float64{4}, geometry.ValueRange{Min: 4, Max: 4}},
		{"negative", []float64{-3, 2, -7}, geometry.ValueRange{Min: -7, Max: 2}},
		{"skips non-finite", []float64{math.NaN(), 1, math.Inf(1), 5}, geometry.ValueRange{Min: 1, Max: 5}},
		{"all non-finite", []float64{math.NaN()}, geometry.ValueRange{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, geometry.RangeOf(tt.values))
		})
	}
}

func TestContentArea_Valid(t *testing.T) {
	assert.True(t, bareArea(10, 10).Valid())
	assert.False(t, geometry.ContentArea{Width: 10, Height: 10, PointDiameter: 10}.Valid())
	assert.False(t, geometry.ContentArea{Width: 10, Height: 8, Insets: geometry.Insets{Top: 4, Bottom: 4}}.Valid())
}
