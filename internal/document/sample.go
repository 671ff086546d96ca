package document

import (
	"math/rand/v2"

	"github.com/inamate/linechart/internal/typeid"
)

// SampleSeries is the series a fresh widget shows before the host loads data.
func SampleSeries() []float64 {
	return []float64{0, 2, 1, 3, 5, 4, 8, 6.5, 7.8, 9.2, 9.0, 5.5, 10}
}

// NewSampleChart returns a chart with the sample series and default style.
// An empty chartID gets a freshly generated one.
func NewSampleChart(chartID string, width, height float64) *Chart {
	if chartID == "" {
		chartID = typeid.NewChartID()
	}
	style := DefaultStyle()
	return &Chart{
		ID:     chartID,
		Title:  "Sample",
		Width:  width,
		Height: height,
		Scale:  1,
		Series: SampleSeries(),
		Style:  &style,
	}
}

// RandomSeriesLength is the number of samples RandomSeries produces by default.
const RandomSeriesLength = 26

// RandomSeries returns n whole-number samples in [0, 55). The same seed always
// yields the same series.
func RandomSeries(n int, seed uint64) []float64 {
	if n <= 0 {
		n = RandomSeriesLength
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(rng.IntN(55))
	}
	return out
}
