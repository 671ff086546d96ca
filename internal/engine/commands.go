package engine

import (
	"encoding/json"

	"github.com/inamate/linechart/internal/document"
	"github.com/inamate/linechart/internal/geometry"
)

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y], ["Z"].
type PathCommand []interface{}

// Layer names the logical layer a command or transition belongs to. Hosts that
// keep retained layers key them by layer name (and overlay ID for overlays).
type Layer string

const (
	LayerLine      Layer = "line"
	LayerPoints    Layer = "points"
	LayerCrosshair Layer = "crosshair"
	LayerValueLine Layer = "valueLine"
	LayerMarker    Layer = "marker"
	LayerTopLeft   Layer = "topLeft"
	LayerTopRight  Layer = "topRight"
)

const (
	OpPath    = "path"
	OpEllipse = "ellipse"

	LineCapSquare = "square"
)

// valueLineDash is the on/off pattern of the horizontal value line.
var valueLineDash = []float64{5, 5}

// DrawCommand represents a single drawing operation for the host to execute.
// Commands are in painter's order (back to front). A path op strokes Path with
// Stroke and, unless Fill is empty or transparent, fills it first. An ellipse op
// fills then strokes the ellipse inscribed in Rect.
type DrawCommand struct {
	Op          string         `json:"op"`
	Layer       Layer          `json:"layer"`
	OverlayID   string         `json:"overlayId,omitempty"`
	Transform   []float64      `json:"transform,omitempty"` // [a, b, c, d, e, f] affine matrix
	Path        []PathCommand  `json:"path,omitempty"`
	Rect        *geometry.Rect `json:"rect,omitempty"`
	Fill        string         `json:"fill,omitempty"`
	Stroke      string         `json:"stroke,omitempty"`
	StrokeWidth float64        `json:"strokeWidth,omitempty"`
	LineCap     string         `json:"lineCap,omitempty"`
	Dash        []float64      `json:"dash,omitempty"`
}

// Condition is a degenerate-input situation the emitter recovered from.
type Condition string

const (
	ConditionDegenerateSeries Condition = "degenerate-series"
	ConditionZeroRange        Condition = "zero-range"
	ConditionInvalidArea      Condition = "invalid-area"
)

// Frame is everything the host needs to draw one frame.
type Frame struct {
	Commands    []DrawCommand `json:"commands"`
	Transitions []Transition  `json:"transitions,omitempty"`
	OverlayID   string        `json:"overlayId,omitempty"`
	Conditions  []Condition   `json:"conditions,omitempty"`
}

// Scene is a read-only snapshot of everything rendering depends on.
type Scene struct {
	Series []float64
	Style  document.Style
	Width  float64
	Height float64
}

// Area returns the content area for the scene.
func (s Scene) Area() geometry.ContentArea {
	return geometry.ContentArea{
		Width:         s.Width,
		Height:        s.Height,
		Insets:        s.Style.Insets,
		PointDiameter: s.Style.PointSize,
	}
}

// Mapper builds a coordinate mapper for the scene; the value range is
// re-derived on every call.
func (s Scene) Mapper() geometry.Mapper {
	return geometry.NewMapper(s.Area(), s.Series)
}

// Emit translates a scene and optional overlay into draw commands. It does not
// modify its inputs; an overlay is re-resolved against the scene's series.
func Emit(scene Scene, overlay *Overlay, view geometry.Matrix2D) Frame {
	var frame Frame
	var commands []DrawCommand

	style := scene.Style
	area := scene.Area()
	mapper := scene.Mapper()
	n := len(scene.Series)

	if n < 2 {
		frame.Conditions = append(frame.Conditions, ConditionDegenerateSeries)
	}
	if n > 0 && mapper.Range().IsZero() {
		frame.Conditions = append(frame.Conditions, ConditionZeroRange)
	}

	if !area.Valid() {
		frame.Conditions = append(frame.Conditions, ConditionInvalidArea)
	} else if n > 0 {
		points := mapper.Points(scene.Series)

		if n >= 2 {
			segments := geometry.BuildPath(points, style.Curve, geometry.CurveOffset(mapper.Step()))
			commands = append(commands, DrawCommand{
				Op:          OpPath,
				Layer:       LayerLine,
				Path:        SegmentsToPath(segments),
				Stroke:      style.LineStrokeColor,
				StrokeWidth: style.LineStrokeWidth,
			})
		}

		if style.PointSize > 0 {
			for _, p := range points {
				rect := geometry.RectAround(p, style.PointSize)
				commands = append(commands, DrawCommand{
					Op:          OpEllipse,
					Layer:       LayerPoints,
					Rect:        &rect,
					Fill:        style.PointFillColor,
					Stroke:      style.PointStrokeColor,
					StrokeWidth: style.PointStrokeWidth,
				})
			}
		}
	}

	if overlay != nil {
		if sel, ok := resolveSelection(overlay.Pointer, scene); ok {
			geo := buildOverlayGeometry(overlay.Pointer, sel.point, scene)
			commands = append(commands, overlayCommands(overlay.ID, geo, style)...)
			frame.OverlayID = overlay.ID
		}
	}

	if !view.IsIdentity() {
		transform := view.ToSlice()
		for i := range commands {
			commands[i].Transform = transform
		}
	}

	frame.Commands = commands
	return frame
}

// overlayCommands emits the crosshair primitives in drawing order.
func overlayCommands(overlayID string, geo OverlayGeometry, style document.Style) []DrawCommand {
	commands := []DrawCommand{
		{
			Op:          OpPath,
			Layer:       LayerCrosshair,
			OverlayID:   overlayID,
			Path:        geo.Crosshair,
			Stroke:      style.CrosshairColor,
			StrokeWidth: style.CrosshairWidth,
			LineCap:     LineCapSquare,
		},
		{
			Op:          OpPath,
			Layer:       LayerValueLine,
			OverlayID:   overlayID,
			Path:        geo.ValueLine,
			Stroke:      style.ValueLineColor,
			StrokeWidth: style.ValueLineWidth,
			LineCap:     LineCapSquare,
			Dash:        valueLineDash,
		},
		{
			Op:          OpPath,
			Layer:       LayerMarker,
			OverlayID:   overlayID,
			Path:        geo.Marker,
			Fill:        style.MarkerFillColor,
			Stroke:      style.MarkerStrokeColor,
			StrokeWidth: style.MarkerStrokeWidth,
		},
	}

	if geo.TopLeft != nil && geo.TopRight != nil {
		for _, tick := range []struct {
			layer Layer
			path  []PathCommand
		}{
			{LayerTopLeft, geo.TopLeft},
			{LayerTopRight, geo.TopRight},
		} {
			commands = append(commands, DrawCommand{
				Op:          OpPath,
				Layer:       tick.layer,
				OverlayID:   overlayID,
				Path:        tick.path,
				Stroke:      style.CrosshairColor,
				StrokeWidth: style.CrosshairWidth,
				LineCap:     LineCapSquare,
			})
		}
	}

	return commands
}

// SegmentsToPath converts geometry segments to Canvas2D-style path commands.
func SegmentsToPath(segments []geometry.Segment) []PathCommand {
	if len(segments) == 0 {
		return nil
	}
	path := make([]PathCommand, len(segments))
	for i, s := range segments {
		switch s.Kind {
		case geometry.CurveTo:
			path[i] = PathCommand{"C", s.Control1.X, s.Control1.Y, s.Control2.X, s.Control2.Y, s.To.X, s.To.Y}
		default:
			path[i] = PathCommand{s.Kind.String(), s.To.X, s.To.Y}
		}
	}
	return path
}

// EllipsePath generates path commands for the ellipse inscribed in r using
// bezier curves.
func EllipsePath(r geometry.Rect) []PathCommand {
	c := r.Center()
	rx, ry := r.Width/2, r.Height/2

	// Magic number for bezier approximation of a circle/ellipse
	// k = 4 * (sqrt(2) - 1) / 3 ≈ 0.5522847498
	k := 0.5522847498
	kx, ky := rx*k, ry*k

	// Four bezier curves to approximate an ellipse
	return []PathCommand{
		{"M", c.X + rx, c.Y},
		{"C", c.X + rx, c.Y + ky, c.X + kx, c.Y + ry, c.X, c.Y + ry},
		{"C", c.X - kx, c.Y + ry, c.X - rx, c.Y + ky, c.X - rx, c.Y},
		{"C", c.X - rx, c.Y - ky, c.X - kx, c.Y - ry, c.X, c.Y - ry},
		{"C", c.X + kx, c.Y - ry, c.X + rx, c.Y - ky, c.X + rx, c.Y},
		{"Z"},
	}
}

// FrameToJSON serializes a frame to JSON.
func FrameToJSON(frame Frame) (string, error) {
	if frame.Commands == nil {
		frame.Commands = []DrawCommand{}
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return `{"commands":[]}`, err
	}
	return string(data), nil
}
