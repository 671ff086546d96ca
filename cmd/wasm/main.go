//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/linechart/internal/document"
	"github.com/inamate/linechart/internal/engine"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine()

	// Create the engine API object
	linechartEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	linechartEngine.Set("loadChart", js.FuncOf(loadChart))
	linechartEngine.Set("loadSampleChart", js.FuncOf(loadSampleChart))
	linechartEngine.Set("loadRandomSeries", js.FuncOf(loadRandomSeries))
	linechartEngine.Set("setSize", js.FuncOf(setSize))
	linechartEngine.Set("setScale", js.FuncOf(setScale))
	linechartEngine.Set("setStyle", js.FuncOf(setStyle))
	linechartEngine.Set("setSeries", js.FuncOf(setSeries))
	linechartEngine.Set("setDataSource", js.FuncOf(setDataSource))
	linechartEngine.Set("reloadData", js.FuncOf(reloadData))
	linechartEngine.Set("setDelegate", js.FuncOf(setDelegate))
	linechartEngine.Set("pointerDown", js.FuncOf(pointerDown))
	linechartEngine.Set("pointerMove", js.FuncOf(pointerMove))
	linechartEngine.Set("pointerUp", js.FuncOf(pointerUp))
	linechartEngine.Set("pointerCancel", js.FuncOf(pointerCancel))

	// --- Queries (frontend ← engine) ---
	linechartEngine.Set("render", js.FuncOf(render))
	linechartEngine.Set("preview", js.FuncOf(preview))
	linechartEngine.Set("getState", js.FuncOf(getState))
	linechartEngine.Set("getSelection", js.FuncOf(getSelection))
	linechartEngine.Set("getRange", js.FuncOf(getRange))
	linechartEngine.Set("getSeries", js.FuncOf(getSeries))
	linechartEngine.Set("getStyle", js.FuncOf(getStyle))
	linechartEngine.Set("getChart", js.FuncOf(getChart))
	linechartEngine.Set("sampleTransition", js.FuncOf(sampleTransition))

	// Register on global scope
	js.Global().Set("linechartEngine", linechartEngine)

	// Signal that WASM is ready
	js.Global().Set("linechartWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func ok() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func fail(err string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err})
}

func toJSON(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return js.ValueOf("null")
	}
	return js.ValueOf(string(data))
}

// --- Command Handlers ---

func loadChart(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing chart JSON")
	}

	if err := eng.LoadChart(args[0].String()); err != nil {
		return fail(err.Error())
	}
	return ok()
}

func loadSampleChart(this js.Value, args []js.Value) interface{} {
	chartID := ""
	if len(args) > 0 && args[0].Type() == js.TypeString {
		chartID = args[0].String()
	}

	eng.LoadSampleChart(chartID)
	return ok()
}

func loadRandomSeries(this js.Value, args []js.Value) interface{} {
	n := document.RandomSeriesLength
	var seed uint64
	if len(args) > 0 && args[0].Type() == js.TypeNumber {
		n = args[0].Int()
	}
	if len(args) > 1 && args[1].Type() == js.TypeNumber {
		seed = uint64(args[1].Float())
	}

	eng.LoadRandomSeries(n, seed)
	return ok()
}

func setSize(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return fail("missing width/height")
	}
	if err := eng.SetSize(args[0].Float(), args[1].Float()); err != nil {
		return fail(err.Error())
	}
	return ok()
}

func setScale(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetScale(args[0].Float())
	return nil
}

// setStyle merges a JSON style over the current one.
func setStyle(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing style JSON")
	}

	style := eng.Style()
	if err := json.Unmarshal([]byte(args[0].String()), &style); err != nil {
		return fail(err.Error())
	}
	if err := eng.SetStyle(style); err != nil {
		return fail(err.Error())
	}
	return ok()
}

func setSeries(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		eng.SetSeries(nil)
		return nil
	}
	eng.SetSeries(floats(args[0]))
	return nil
}

func floats(arr js.Value) []float64 {
	if arr.Type() != js.TypeObject {
		return nil
	}
	length := arr.Length()
	values := make([]float64, length)
	for i := 0; i < length; i++ {
		values[i] = arr.Index(i).Float()
	}
	return values
}

// jsDataSource pulls samples through {count(), valueAt(i)} on a JS object.
type jsDataSource struct {
	obj js.Value
}

func (s jsDataSource) Count() int {
	return s.obj.Call("count").Int()
}

func (s jsDataSource) ValueAt(index int) float64 {
	return s.obj.Call("valueAt", index).Float()
}

func setDataSource(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].IsNull() || args[0].IsUndefined() {
		eng.SetDataSource(nil)
		return nil
	}
	eng.SetDataSource(jsDataSource{obj: args[0]})
	return nil
}

func reloadData(this js.Value, args []js.Value) interface{} {
	if err := eng.ReloadData(); err != nil {
		return fail(err.Error())
	}
	return ok()
}

// setDelegate takes {onSelect(index, value), onInteractionEnd()}; null detaches.
func setDelegate(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].IsNull() || args[0].IsUndefined() {
		eng.SetDelegate(nil)
		return ok()
	}

	obj := args[0]
	onSelect, onEnd := obj.Get("onSelect"), obj.Get("onInteractionEnd")
	if onSelect.Type() != js.TypeFunction || onEnd.Type() != js.TypeFunction {
		return fail(engine.ErrNilCallback.Error())
	}

	d, err := engine.NewDelegateFuncs(
		func(index int, value float64) { onSelect.Invoke(index, value) },
		func() { onEnd.Invoke() },
	)
	if err != nil {
		return fail(err.Error())
	}
	eng.SetDelegate(d)
	return ok()
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}
	eng.PointerDown(args[0].Int(), args[1].Float(), args[2].Float())
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}
	eng.PointerMove(args[0].Int(), args[1].Float(), args[2].Float())
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.PointerUp(args[0].Int())
	return nil
}

func pointerCancel(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.PointerCancel(args[0].Int())
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.RenderJSON())
}

func preview(this js.Value, args []js.Value) interface{} {
	data, err := engine.FrameToJSON(eng.Preview())
	if err != nil {
		return js.ValueOf(`{"commands":[]}`)
	}
	return js.ValueOf(data)
}

func getState(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.State().String())
}

func getSelection(this js.Value, args []js.Value) interface{} {
	index, value, tracking := eng.Selection()
	if !tracking {
		return js.Null()
	}
	return js.ValueOf(map[string]interface{}{"index": index, "value": value})
}

func getRange(this js.Value, args []js.Value) interface{} {
	r := eng.Range()
	return js.ValueOf(map[string]interface{}{"min": r.Min, "max": r.Max})
}

func getSeries(this js.Value, args []js.Value) interface{} {
	return toJSON(eng.Series())
}

func getStyle(this js.Value, args []js.Value) interface{} {
	return toJSON(eng.Style())
}

func getChart(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.ChartJSON())
}

// sampleTransition evaluates a transition from a rendered frame at normalised
// time t, for hosts without their own path tweening.
func sampleTransition(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return fail("missing transition JSON/time")
	}

	var tr engine.Transition
	if err := json.Unmarshal([]byte(args[0].String()), &tr); err != nil {
		return fail(err.Error())
	}
	return toJSON(tr.At(args[1].Float()))
}
