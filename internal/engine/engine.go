package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/inamate/linechart/internal/document"
	"github.com/inamate/linechart/internal/geometry"
)

// ErrInvalidCount is returned when a data source reports a negative count.
var ErrInvalidCount = errors.New("data source returned a negative count")

// Engine is the line chart widget core. It owns the series snapshot, style,
// bounds and interaction state; the host feeds it pointer events and draws the
// frames it returns. Not safe for concurrent use.
type Engine struct {
	// Chart state
	chartID string
	title   string
	series  []float64
	style   document.Style

	// Bounds in content space and display scale
	width  float64
	height float64
	scale  float64

	// Collaborators
	source   DataSource
	delegate Delegate
	logger   *slog.Logger

	controller *Controller
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithDelegate sets the selection delegate.
func WithDelegate(d Delegate) Option {
	return func(e *Engine) { e.SetDelegate(d) }
}

// WithDataSource sets the data source used by ReloadData.
func WithDataSource(ds DataSource) Option {
	return func(e *Engine) { e.source = ds }
}

// WithSize sets the initial bounds.
func WithSize(width, height float64) Option {
	return func(e *Engine) {
		e.width = width
		e.height = height
	}
}

// NewEngine creates an engine showing the sample series with the default style.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		series:     document.SampleSeries(),
		style:      document.DefaultStyle(),
		scale:      1,
		delegate:   NopDelegate{},
		logger:     slog.Default(),
		controller: NewController(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// --- Commands (host → engine) ---

// SetSize sets the widget bounds in content units.
func (e *Engine) SetSize(width, height float64) error {
	if !finiteNonNegative(width) || !finiteNonNegative(height) {
		return fmt.Errorf("set size %vx%v: %w", width, height, document.ErrInvalidSize)
	}
	e.width = width
	e.height = height
	e.refresh()
	return nil
}

// SetScale sets the device pixels per content unit. Non-positive values reset to 1.
func (e *Engine) SetScale(scale float64) {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1
	}
	e.scale = scale
}

// SetStyle validates and applies a style.
func (e *Engine) SetStyle(style document.Style) error {
	norm, err := style.Normalize()
	if err != nil {
		return fmt.Errorf("set style: %w", err)
	}
	e.style = norm
	e.refresh()
	return nil
}

// SetSeries replaces the series with a copy of values.
func (e *Engine) SetSeries(values []float64) {
	e.series = append([]float64(nil), values...)
	e.refresh()
}

// SetDataSource sets the source ReloadData pulls from. nil detaches it.
func (e *Engine) SetDataSource(ds DataSource) {
	e.source = ds
}

// ReloadData pulls a fresh series from the data source. Without a source the
// current series is kept.
func (e *Engine) ReloadData() error {
	if e.source == nil {
		e.logger.Debug("reload without data source, keeping series", "chart", e.chartID, "points", len(e.series))
		return nil
	}

	n := e.source.Count()
	if n < 0 {
		return fmt.Errorf("reload data (count %d): %w", n, ErrInvalidCount)
	}

	values := make([]float64, n)
	for i := range values {
		values[i] = e.source.ValueAt(i)
	}
	e.series = values
	e.refresh()

	if n < 2 {
		e.logger.Debug("series too short for a path", "chart", e.chartID, "points", n)
	}
	return nil
}

// SetDelegate sets the selection delegate. nil installs NopDelegate.
func (e *Engine) SetDelegate(d Delegate) {
	if d == nil {
		d = NopDelegate{}
	}
	e.delegate = d
}

// LoadChart loads a chart document from JSON.
func (e *Engine) LoadChart(jsonData string) error {
	chart, err := document.ParseChart([]byte(jsonData))
	if err != nil {
		return err
	}
	e.applyChart(chart)
	return nil
}

// LoadDocument validates chart and makes it the current state.
func (e *Engine) LoadDocument(chart *document.Chart) error {
	if err := chart.Validate(); err != nil {
		return err
	}
	e.applyChart(chart)
	return nil
}

// LoadSampleChart loads the built-in sample chart at the current size.
func (e *Engine) LoadSampleChart(chartID string) {
	e.applyChart(document.NewSampleChart(chartID, e.width, e.height))
}

// LoadRandomSeries replaces the series with n random samples.
func (e *Engine) LoadRandomSeries(n int, seed uint64) {
	e.SetSeries(document.RandomSeries(n, seed))
}

func (e *Engine) applyChart(chart *document.Chart) {
	e.chartID = chart.ID
	e.title = chart.Title
	e.width = chart.Width
	e.height = chart.Height
	e.SetScale(chart.Scale)
	if chart.Style != nil {
		e.style = *chart.Style
	}
	e.SetSeries(chart.Series)
}

// PointerDown starts an interaction. Coordinates are in device space.
func (e *Engine) PointerDown(pointerID int, x, y float64) {
	p, ok := e.toContent(x, y)
	if !ok {
		return
	}
	e.controller.Down(pointerID, p, e.scene(), e.delegate)
}

// PointerMove updates an interaction.
func (e *Engine) PointerMove(pointerID int, x, y float64) {
	p, ok := e.toContent(x, y)
	if !ok {
		return
	}
	e.controller.Move(pointerID, p, e.scene(), e.delegate)
}

// PointerUp ends an interaction.
func (e *Engine) PointerUp(pointerID int) {
	e.controller.Up(pointerID, e.delegate)
}

// PointerCancel ends an interaction the host aborted.
func (e *Engine) PointerCancel(pointerID int) {
	e.controller.Cancel(pointerID, e.delegate)
}

// --- Queries (host ← engine) ---

// Render returns the current frame and hands over pending transitions.
func (e *Engine) Render() Frame {
	frame := e.Preview()
	frame.Transitions = e.controller.Drain()
	if len(frame.Conditions) > 0 {
		e.logger.Debug("render recovered degenerate input", "chart", e.chartID, "conditions", frame.Conditions)
	}
	return frame
}

// Preview returns the current frame without taking pending transitions, for
// observers that do not animate.
func (e *Engine) Preview() Frame {
	var overlay *Overlay
	if o, ok := e.controller.Overlay(); ok {
		overlay = &o
	}
	return Emit(e.scene(), overlay, e.view())
}

// RenderJSON renders and serializes the frame.
func (e *Engine) RenderJSON() string {
	result, err := FrameToJSON(e.Render())
	if err != nil {
		e.logger.Error("marshal frame", "chart", e.chartID, "error", err)
	}
	return result
}

// State returns the interaction state.
func (e *Engine) State() State {
	return e.controller.State()
}

// Overlay returns the active overlay handle.
func (e *Engine) Overlay() (Overlay, bool) {
	return e.controller.Overlay()
}

// Selection returns the selected index and value while tracking.
func (e *Engine) Selection() (int, float64, bool) {
	o, ok := e.controller.Overlay()
	if !ok {
		return 0, 0, false
	}
	return o.Index, o.Value, true
}

// Range returns the value range of the current series.
func (e *Engine) Range() geometry.ValueRange {
	return geometry.RangeOf(e.series)
}

// Series returns a copy of the current series.
func (e *Engine) Series() []float64 {
	return append([]float64(nil), e.series...)
}

// Style returns the current style.
func (e *Engine) Style() document.Style {
	return e.style
}

// Size returns the widget bounds.
func (e *Engine) Size() (float64, float64) {
	return e.width, e.height
}

// Chart returns the current state as a chart document.
func (e *Engine) Chart() *document.Chart {
	style := e.style
	return &document.Chart{
		ID:     e.chartID,
		Title:  e.title,
		Width:  e.width,
		Height: e.height,
		Scale:  e.scale,
		Series: e.Series(),
		Style:  &style,
	}
}

// ChartJSON returns Chart serialized.
func (e *Engine) ChartJSON() string {
	data, err := json.Marshal(e.Chart())
	if err != nil {
		return "{}"
	}
	return string(data)
}

// --- internals ---

func (e *Engine) scene() Scene {
	return Scene{
		Series: e.series,
		Style:  e.style,
		Width:  e.width,
		Height: e.height,
	}
}

func (e *Engine) refresh() {
	e.controller.Refresh(e.scene(), e.delegate)
}

func (e *Engine) view() geometry.Matrix2D {
	return geometry.ViewTransform(e.scale, geometry.Point{})
}

// toContent maps a device-space pointer position into content space. NaN
// coordinates are dropped; infinite ones pin to the matching edge of the bounds.
func (e *Engine) toContent(x, y float64) (geometry.Point, bool) {
	if math.IsNaN(x) || math.IsNaN(y) {
		e.logger.Debug("dropping pointer event with NaN position", "chart", e.chartID, "x", x, "y", y)
		return geometry.Point{}, false
	}
	p := e.view().Invert().Apply(geometry.Point{X: finiteOrZero(x), Y: finiteOrZero(y)})
	p.X = pinInf(x, p.X, e.width)
	p.Y = pinInf(y, p.Y, e.height)
	return p, true
}

func finiteOrZero(v float64) float64 {
	if math.IsInf(v, 0) {
		return 0
	}
	return v
}

func pinInf(device, content, extent float64) float64 {
	switch {
	case math.IsInf(device, 1):
		return extent
	case math.IsInf(device, -1):
		return 0
	}
	return content
}

func finiteNonNegative(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
