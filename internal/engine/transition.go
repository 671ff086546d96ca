package engine

import (
	"math"
)

// Default transition timings, in seconds.
const (
	// OverlayMoveDuration is used for crosshair, value line and marker moves.
	OverlayMoveDuration = 0.15
	// TopTickSpreadDuration is the time a top tick takes to cross the full width.
	TopTickSpreadDuration = 0.55
)

// EasingType names a timing curve the host should apply to a transition.
type EasingType string

// EasingEaseOut decelerates into the target. Every transition the controller
// queues uses it.
const EasingEaseOut EasingType = "easeOut"

// Transition asks the host renderer to animate one overlay layer from one path
// to another. The engine never runs timers; the host owns the clock and may use
// At to compute intermediate geometry.
type Transition struct {
	OverlayID string        `json:"overlayId"`
	Layer     Layer         `json:"layer"`
	From      []PathCommand `json:"from"`
	To        []PathCommand `json:"to"`
	Duration  float64       `json:"duration"` // seconds
	Easing    EasingType    `json:"easing"`
}

// At returns the layer geometry at normalised time t in [0, 1].
func (tr Transition) At(t float64) []PathCommand {
	return InterpolatePath(tr.From, tr.To, applyEasing(clamp01(t), tr.Easing))
}

// applyEasing applies an easing function to interpolation factor t (0-1).
// Unknown easings are linear.
func applyEasing(t float64, easing EasingType) float64 {
	if easing == EasingEaseOut {
		return t * (2 - t)
	}
	return t
}

// InterpolatePath linearly blends two structurally identical paths. Paths whose
// shapes differ (different length or ops) cannot be blended and hold From until
// the transition completes.
func InterpolatePath(from, to []PathCommand, t float64) []PathCommand {
	if t >= 1 {
		return to
	}
	if !samePathShape(from, to) {
		return from
	}

	result := make([]PathCommand, len(from))
	for i := range from {
		cmd := make(PathCommand, len(from[i]))
		cmd[0] = from[i][0]
		for j := 1; j < len(from[i]); j++ {
			a := toFloat64(from[i][j])
			b := toFloat64(to[i][j])
			cmd[j] = a + (b-a)*t
		}
		result[i] = cmd
	}
	return result
}

func samePathShape(a, b []PathCommand) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) || len(a[i]) == 0 || a[i][0] != b[i][0] {
			return false
		}
	}
	return true
}

// pathsEqual reports whether two paths describe the same geometry.
func pathsEqual(a, b []PathCommand) bool {
	if !samePathShape(a, b) {
		return len(a) == 0 && len(b) == 0
	}
	for i := range a {
		for j := 1; j < len(a[i]); j++ {
			if toFloat64(a[i][j]) != toFloat64(b[i][j]) {
				return false
			}
		}
	}
	return true
}

// spreadDuration scales TopTickSpreadDuration by how far a tick travels
// relative to the full width.
func spreadDuration(distance, width float64) float64 {
	if width <= 0 || math.IsNaN(distance) {
		return 0
	}
	return TopTickSpreadDuration * clamp01(distance/width)
}

func clamp01(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// toFloat64 converts an interface{} to float64.
func toFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
