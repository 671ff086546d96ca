package engine

import (
	"github.com/inamate/linechart/internal/geometry"
	"github.com/inamate/linechart/internal/typeid"
)

// State is the interaction state of the crosshair.
type State int

const (
	StateIdle State = iota
	StateTracking
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTracking:
		return "tracking"
	default:
		return "unknown"
	}
}

// topTickLength is the initial length of each top-edge tick before it spreads.
const topTickLength = 10

// OverlayGeometry is the current shape of every crosshair layer, in content space.
// TopLeft and TopRight are nil unless the style shows ticks across the top.
type OverlayGeometry struct {
	Crosshair []PathCommand `json:"crosshair"`
	ValueLine []PathCommand `json:"valueLine"`
	Marker    []PathCommand `json:"marker"`
	TopLeft   []PathCommand `json:"topLeft,omitempty"`
	TopRight  []PathCommand `json:"topRight,omitempty"`
}

// Overlay is the handle for one interaction. It exists only while tracking;
// the renderer ties its layer resources to ID and drops them when the handle
// disappears from frames.
type Overlay struct {
	ID        string          `json:"id"`
	PointerID int             `json:"pointerId"`
	Pointer   geometry.Point  `json:"pointer"`
	Index     int             `json:"index"`
	Value     float64         `json:"value"`
	Geometry  OverlayGeometry `json:"geometry"`
}

// Controller drives the crosshair through Idle and Tracking in response to
// pointer events. It is not safe for concurrent use.
//
// Only the pointer that started an interaction can move or end it; events from
// any other pointer are ignored while tracking. A repeated down from the active
// pointer is handled as a move.
type Controller struct {
	state   State
	overlay *Overlay
	pending []Transition
	newID   func() string
}

// NewController returns an idle controller.
func NewController() *Controller {
	return &Controller{newID: typeid.NewOverlayID}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Overlay returns a copy of the active overlay handle.
func (c *Controller) Overlay() (Overlay, bool) {
	if c.overlay == nil {
		return Overlay{}, false
	}
	return *c.overlay, true
}

// Drain returns and clears pending transitions.
func (c *Controller) Drain() []Transition {
	out := c.pending
	c.pending = nil
	return out
}

// Down starts tracking at p. Ignored for an empty series or for a second pointer.
func (c *Controller) Down(pointerID int, p geometry.Point, scene Scene, d Delegate) {
	if c.state == StateTracking {
		if pointerID == c.overlay.PointerID {
			c.Move(pointerID, p, scene, d)
		}
		return
	}

	sel, ok := resolveSelection(p, scene)
	if !ok {
		return
	}

	id := c.newID()
	geo := buildOverlayGeometry(p, sel.point, scene)
	c.overlay = &Overlay{
		ID:        id,
		PointerID: pointerID,
		Pointer:   p,
		Index:     sel.index,
		Value:     sel.value,
		Geometry:  geo,
	}
	c.state = StateTracking

	if scene.Style.ShowAcrossTop {
		left, right := shortTopTicks(p)
		c.pending = append(c.pending,
			Transition{
				OverlayID: id,
				Layer:     LayerTopLeft,
				From:      left,
				To:        geo.TopLeft,
				Duration:  spreadDuration(p.X-scene.Style.Insets.Left, scene.Width),
				Easing:    EasingEaseOut,
			},
			Transition{
				OverlayID: id,
				Layer:     LayerTopRight,
				From:      right,
				To:        geo.TopRight,
				Duration:  spreadDuration(scene.Width-scene.Style.Insets.Right-p.X, scene.Width),
				Easing:    EasingEaseOut,
			},
		)
	}

	d.OnSelect(sel.index, sel.value)
}

// Move re-resolves the selection for p against the current series and queues
// transitions for the layers that moved.
func (c *Controller) Move(pointerID int, p geometry.Point, scene Scene, d Delegate) {
	if c.state != StateTracking || pointerID != c.overlay.PointerID {
		return
	}

	sel, ok := resolveSelection(p, scene)
	if !ok {
		c.end(d)
		return
	}

	prev := c.overlay.Geometry
	geo := buildOverlayGeometry(p, sel.point, scene)
	// Top ticks stay where the down event spread them.
	geo.TopLeft, geo.TopRight = prev.TopLeft, prev.TopRight

	for _, l := range []struct {
		layer    Layer
		from, to []PathCommand
	}{
		{LayerCrosshair, prev.Crosshair, geo.Crosshair},
		{LayerValueLine, prev.ValueLine, geo.ValueLine},
		{LayerMarker, prev.Marker, geo.Marker},
	} {
		if pathsEqual(l.from, l.to) {
			continue
		}
		c.pending = append(c.pending, Transition{
			OverlayID: c.overlay.ID,
			Layer:     l.layer,
			From:      l.from,
			To:        l.to,
			Duration:  OverlayMoveDuration,
			Easing:    EasingEaseOut,
		})
	}

	c.overlay.Pointer = p
	c.overlay.Index = sel.index
	c.overlay.Value = sel.value
	c.overlay.Geometry = geo

	d.OnSelect(sel.index, sel.value)
}

// Up ends tracking for the active pointer.
func (c *Controller) Up(pointerID int, d Delegate) {
	if c.state != StateTracking || pointerID != c.overlay.PointerID {
		return
	}
	c.end(d)
}

// Cancel is handled exactly like Up.
func (c *Controller) Cancel(pointerID int, d Delegate) {
	c.Up(pointerID, d)
}

// Refresh re-resolves an active overlay after the scene changed under it
// (new series, bounds or style). The delegate is only told when the
// interaction can no longer continue.
func (c *Controller) Refresh(scene Scene, d Delegate) {
	if c.state != StateTracking {
		return
	}
	sel, ok := resolveSelection(c.overlay.Pointer, scene)
	if !ok {
		c.end(d)
		return
	}
	c.overlay.Index = sel.index
	c.overlay.Value = sel.value
	c.overlay.Geometry = buildOverlayGeometry(c.overlay.Pointer, sel.point, scene)
}

func (c *Controller) end(d Delegate) {
	c.state = StateIdle
	c.overlay = nil
	c.pending = nil
	d.OnInteractionEnd()
}

type selection struct {
	index int
	value float64
	point geometry.Point
}

// resolveSelection maps a pointer to the nearest sample of the scene's
// current series.
func resolveSelection(p geometry.Point, scene Scene) (selection, bool) {
	if len(scene.Series) == 0 {
		return selection{}, false
	}
	mapper := scene.Mapper()
	idx := geometry.NearestIndex(p, mapper)
	value := scene.Series[idx]
	return selection{
		index: idx,
		value: value,
		point: mapper.Point(idx, value),
	}, true
}

// buildOverlayGeometry lays out the crosshair for pointer p with the selected
// sample at sel. Top ticks are returned fully spread.
func buildOverlayGeometry(p, sel geometry.Point, scene Scene) OverlayGeometry {
	style := scene.Style
	geo := OverlayGeometry{
		Crosshair: SegmentsToPath(geometry.LinePath(
			geometry.Point{X: p.X, Y: 0},
			geometry.Point{X: p.X, Y: scene.Height},
		)),
		ValueLine: SegmentsToPath(geometry.LinePath(
			geometry.Point{X: 0, Y: sel.Y},
			geometry.Point{X: scene.Width, Y: sel.Y},
		)),
		Marker: EllipsePath(geometry.RectAround(sel, style.MarkerSize)),
	}

	if style.ShowAcrossTop {
		geo.TopLeft = SegmentsToPath(geometry.LinePath(
			geometry.Point{X: p.X, Y: 0},
			geometry.Point{X: style.Insets.Left, Y: 0},
		))
		geo.TopRight = SegmentsToPath(geometry.LinePath(
			geometry.Point{X: p.X + 1, Y: 0},
			geometry.Point{X: scene.Width - style.Insets.Right, Y: 0},
		))
	}

	return geo
}

// shortTopTicks returns the ticks as first drawn, flanking the pointer.
func shortTopTicks(p geometry.Point) (left, right []PathCommand) {
	left = SegmentsToPath(geometry.LinePath(
		geometry.Point{X: p.X, Y: 0},
		geometry.Point{X: p.X - topTickLength, Y: 0},
	))
	right = SegmentsToPath(geometry.LinePath(
		geometry.Point{X: p.X + 1, Y: 0},
		geometry.Point{X: p.X + topTickLength, Y: 0},
	))
	return left, right
}
