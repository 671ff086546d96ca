package engine

import "errors"

// ErrNilCallback is returned by NewDelegateFuncs when a callback is missing.
var ErrNilCallback = errors.New("delegate callback is nil")

// Delegate is told about selection changes while the user tracks the chart.
// OnSelect fires on every pointer down/move while tracking; OnInteractionEnd
// fires once when tracking stops.
type Delegate interface {
	OnSelect(index int, value float64)
	OnInteractionEnd()
}

// NopDelegate is the delegate of an engine nobody is listening to.
type NopDelegate struct{}

func (NopDelegate) OnSelect(int, float64) {}
func (NopDelegate) OnInteractionEnd()     {}

type delegateFuncs struct {
	onSelect func(int, float64)
	onEnd    func()
}

func (d delegateFuncs) OnSelect(index int, value float64) { d.onSelect(index, value) }
func (d delegateFuncs) OnInteractionEnd()                 { d.onEnd() }

// NewDelegateFuncs adapts a pair of callbacks to Delegate. Both are required.
func NewDelegateFuncs(onSelect func(index int, value float64), onEnd func()) (Delegate, error) {
	if onSelect == nil || onEnd == nil {
		return nil, ErrNilCallback
	}
	return delegateFuncs{onSelect: onSelect, onEnd: onEnd}, nil
}

// DataSource supplies the series when the engine reloads.
type DataSource interface {
	Count() int
	ValueAt(index int) float64
}

// SliceSource serves a fixed slice.
type SliceSource []float64

func (s SliceSource) Count() int                { return len(s) }
func (s SliceSource) ValueAt(index int) float64 { return s[index] }
