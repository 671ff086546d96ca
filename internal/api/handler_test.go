package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/linechart/internal/api"
	"github.com/inamate/linechart/internal/document"
	"github.com/inamate/linechart/internal/engine"
	"github.com/inamate/linechart/internal/session"
	"github.com/inamate/linechart/internal/typeid"
)

func newRouter(t *testing.T, maxSeries int) *mux.Router {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := session.NewHub(maxSeries)
	go hub.Run(ctx)

	r := mux.NewRouter()
	api.NewHandler(hub, api.Options{DefaultWidth: 300, DefaultHeight: 200}).Register(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeChart(t *testing.T, rr *httptest.ResponseRecorder) document.Chart {
	t.Helper()
	var chart document.Chart
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &chart))
	return chart
}

func createChart(t *testing.T, h http.Handler, body string) document.Chart {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/charts", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeChart(t, rr)
}

func TestHealth(t *testing.T) {
	r := newRouter(t, 0)
	rr := do(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestCreate(t *testing.T) {
	r := newRouter(t, 0)

	t.Run("defaults", func(t *testing.T) {
		chart := createChart(t, r, `{}`)
		require.NoError(t, typeid.Validate(chart.ID, typeid.PrefixChart))
		assert.Equal(t, 300.0, chart.Width)
		assert.Equal(t, 200.0, chart.Height)
		assert.Equal(t, document.SampleSeries(), chart.Series)
		require.NotNil(t, chart.Style)
		assert.Equal(t, "#0668b3", chart.Style.CrosshairColor)
	})

	t.Run("random series", func(t *testing.T) {
		chart := createChart(t, r, `{"random": 42}`)
		assert.Len(t, chart.Series, document.RandomSeriesLength)
	})

	t.Run("explicit id conflicts", func(t *testing.T) {
		id := typeid.NewChartID()
		createChart(t, r, `{"id":"`+id+`","series":[1,2]}`)
		rr := do(t, r, http.MethodPost, "/charts", `{"id":"`+id+`"}`)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"wrong id prefix", `{"id":"` + typeid.NewClientID() + `"}`},
		{"negative width", `{"width":-1}`},
		{"bad color", `{"style":{"lineStrokeColor":"#12345"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, r, http.MethodPost, "/charts", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			assert.Contains(t, rr.Body.String(), `"error"`)
		})
	}
}

func TestGetAndRender(t *testing.T) {
	r := newRouter(t, 0)
	chart := createChart(t, r, `{"series":[0,2,1,3,5,4,8,6.5,7.8,9.2,9.0,5.5,10],"style":{"curve":true,"markerSize":8,"insets":{}}}`)

	rr := do(t, r, http.MethodGet, "/charts/"+chart.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, chart.ID, decodeChart(t, rr).ID)

	rr = do(t, r, http.MethodGet, "/charts/"+chart.ID+"/render", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var frame engine.Frame
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &frame))
	require.NotEmpty(t, frame.Commands)
	assert.Equal(t, engine.LayerLine, frame.Commands[0].Layer)

	rr = do(t, r, http.MethodGet, "/charts/chart_missing", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = do(t, r, http.MethodGet, "/charts/chart_missing/render", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSetSeries(t *testing.T) {
	r := newRouter(t, 5)
	chart := createChart(t, r, `{"series":[1,2]}`)
	path := "/charts/" + chart.ID + "/series"

	rr := do(t, r, http.MethodPut, path, `{"series":[3,1,4,1]}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []float64{3, 1, 4, 1}, decodeChart(t, rr).Series)

	rr = do(t, r, http.MethodPut, path, `{"series":[1,2,3,4,5,6]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, r, http.MethodPut, path, `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, r, http.MethodPut, "/charts/chart_missing/series", `{"series":[]}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSetStyle_MergesPartialStyle(t *testing.T) {
	r := newRouter(t, 0)
	chart := createChart(t, r, `{}`)
	path := "/charts/" + chart.ID + "/style"

	rr := do(t, r, http.MethodPut, path, `{"curve":false,"crosshairColor":"#F00"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	style := decodeChart(t, rr).Style
	require.NotNil(t, style)
	assert.False(t, style.Curve)
	assert.Equal(t, "#ff0000", style.CrosshairColor)
	assert.Equal(t, 8.0, style.MarkerSize, "untouched fields keep their values")

	rr = do(t, r, http.MethodPut, path, `{"valueLineColor":"blue-ish"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, r, http.MethodPut, path, `{"curve":"yes"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, r, http.MethodPut, path, `not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Failed updates leave the style alone.
	rr = do(t, r, http.MethodGet, "/charts/"+chart.ID, "")
	assert.Equal(t, "#ff0000", decodeChart(t, rr).Style.CrosshairColor)
}

func readMessage(t *testing.T, ctx context.Context, conn *websocket.Conn) session.Message {
	t.Helper()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg session.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, msgType string) session.Message {
	t.Helper()
	for {
		if msg := readMessage(t, ctx, conn); msg.Type == msgType {
			return msg
		}
	}
}

func TestWebSocket_PointerSession(t *testing.T) {
	r := newRouter(t, 0)
	chart := createChart(t, r, `{"width":300,"height":200,"style":{"insets":{}}}`)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/charts/" + chart.ID
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	welcome := readMessage(t, ctx, conn)
	require.Equal(t, session.TypeWelcome, welcome.Type)
	var wp session.WelcomePayload
	require.NoError(t, json.Unmarshal(welcome.Payload, &wp))
	require.NoError(t, typeid.Validate(wp.ClientID, typeid.PrefixClient))
	assert.Equal(t, chart.ID, wp.Chart.ID)

	send := func(msgType string, payload interface{}) {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		msg, err := json.Marshal(session.Message{Type: msgType, Payload: data})
		require.NoError(t, err)
		require.NoError(t, conn.Write(ctx, websocket.MessageText, msg))
	}

	send(session.TypePointerDown, session.PointerPayload{PointerID: 1, X: 1000, Y: 10})
	sel := readUntil(t, ctx, conn, session.TypeSelect)
	var sp session.SelectPayload
	require.NoError(t, json.Unmarshal(sel.Payload, &sp))
	assert.Equal(t, 12, sp.Index)
	assert.Equal(t, 10.0, sp.Value)
	assert.Equal(t, wp.ClientID, sp.ClientID)

	send(session.TypePointerCancel, session.PointerPayload{PointerID: 1})
	readUntil(t, ctx, conn, session.TypeInteractionEnd)

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"type":`)))
	assert.Equal(t, session.TypeError, readUntil(t, ctx, conn, session.TypeError).Type)
}

func TestWebSocket_UnknownChart(t *testing.T) {
	r := newRouter(t, 0)
	rr := do(t, r, http.MethodGet, "/ws/charts/chart_missing", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
