package document_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/linechart/internal/document"
)

func TestNormalizeColor(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"#000", "#000000", false},
		{"#0668B3", "#0668b3", false},
		{" #aaaaaa ", "#aaaaaa", false},
		{"", document.Transparent, false},
		{"clear", document.Transparent, false},
		{"Transparent", document.Transparent, false},
		{"blue", "", true},
		{"#12345", "", true},
	}

	for _, tt := range tests {
		got, err := document.NormalizeColor(tt.in)
		if tt.wantErr {
			require.Error(t, err, tt.in)
			assert.True(t, errors.Is(err, document.ErrInvalidColor))
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestDefaultStyle_IsNormalized(t *testing.T) {
	s := document.DefaultStyle()
	norm, err := s.Normalize()
	require.NoError(t, err)
	assert.Equal(t, s, norm)
}

func TestStyle_NormalizeRejectsBadInput(t *testing.T) {
	s := document.DefaultStyle()
	s.CrosshairColor = "red"
	_, err := s.Normalize()
	require.ErrorIs(t, err, document.ErrInvalidColor)
	assert.Contains(t, err.Error(), "crosshairColor")

	s = document.DefaultStyle()
	s.MarkerSize = -1
	_, err = s.Normalize()
	require.ErrorIs(t, err, document.ErrInvalidSize)

	s = document.DefaultStyle()
	s.Insets.Top = math.NaN()
	_, err = s.Normalize()
	require.ErrorIs(t, err, document.ErrInvalidSize)
}

func TestParseChart(t *testing.T) {
	chart, err := document.ParseChart([]byte(`{
		"id": "c1",
		"width": 300,
		"height": 200,
		"series": [1, 2, 3]
	}`))
	require.NoError(t, err)
	require.NotNil(t, chart.Style)
	assert.Equal(t, document.DefaultStyle(), *chart.Style)
	assert.Equal(t, []float64{1, 2, 3}, chart.Series)

	chart, err = document.ParseChart([]byte(`{
		"width": 300, "height": 200, "series": [],
		"style": {"lineStrokeColor": "#F00", "curve": false, "insets": {"left": 2}}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", chart.Style.LineStrokeColor)
	assert.Equal(t, document.Transparent, chart.Style.PointFillColor)
	assert.False(t, chart.Style.Curve)
	assert.InDelta(t, 2.0, chart.Style.Insets.Left, 1e-9)
}

func TestParseChart_Errors(t *testing.T) {
	_, err := document.ParseChart([]byte(`{not json`))
	require.Error(t, err)

	_, err = document.ParseChart([]byte(`{"width": -1, "height": 10}`))
	require.ErrorIs(t, err, document.ErrInvalidSize)

	_, err = document.ParseChart([]byte(`{"width": 10, "height": 10, "style": {"valueLineColor": "grey"}}`))
	require.ErrorIs(t, err, document.ErrInvalidColor)
}

func TestRandomSeries_Deterministic(t *testing.T) {
	a := document.RandomSeries(0, 42)
	b := document.RandomSeries(0, 42)
	require.Len(t, a, document.RandomSeriesLength)
	assert.Equal(t, a, b)

	for _, v := range a {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 55.0)
		assert.Equal(t, math.Trunc(v), v)
	}
}

func TestNewSampleChart(t *testing.T) {
	chart := document.NewSampleChart("", 300, 200)
	assert.NotEmpty(t, chart.ID)
	assert.Equal(t, document.SampleSeries(), chart.Series)
	require.NoError(t, chart.Validate())
}
