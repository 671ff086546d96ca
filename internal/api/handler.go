package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/inamate/linechart/internal/document"
	"github.com/inamate/linechart/internal/engine"
	"github.com/inamate/linechart/internal/session"
	"github.com/inamate/linechart/internal/typeid"
)

const maxBodySize = 4 << 20

type Handler struct {
	hub            *session.Hub
	defaultWidth   float64
	defaultHeight  float64
	originPatterns []string
}

// Options are the server-wide defaults the handler applies.
type Options struct {
	DefaultWidth  float64
	DefaultHeight float64
	// OriginPatterns are the host patterns WebSocket upgrades accept.
	OriginPatterns []string
}

func NewHandler(hub *session.Hub, opts Options) *Handler {
	return &Handler{
		hub:            hub,
		defaultWidth:   opts.DefaultWidth,
		defaultHeight:  opts.DefaultHeight,
		originPatterns: opts.OriginPatterns,
	}
}

// Register mounts every chart route on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods("GET")

	r.HandleFunc("/charts", h.Create).Methods("POST", "OPTIONS")
	r.HandleFunc("/charts/{chartId}", h.Get).Methods("GET")
	r.HandleFunc("/charts/{chartId}/render", h.Render).Methods("GET")
	r.HandleFunc("/charts/{chartId}/series", h.SetSeries).Methods("PUT", "OPTIONS")
	r.HandleFunc("/charts/{chartId}/style", h.SetStyle).Methods("PUT", "OPTIONS")

	r.HandleFunc("/ws/charts/{chartId}", h.WebSocket)
}

type createRequest struct {
	ID     string          `json:"id"`
	Title  string          `json:"title"`
	Width  float64         `json:"width"`
	Height float64         `json:"height"`
	Scale  float64         `json:"scale"`
	Series []float64       `json:"series"`
	Style  *document.Style `json:"style"`
	// Random asks for a seeded random series instead of Series.
	Random *uint64 `json:"random,omitempty"`
}

type seriesRequest struct {
	Series []float64 `json:"series"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Create adds a chart. Missing bounds get the server defaults and a missing
// series gets the sample series.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.ID != "" {
		if err := typeid.Validate(req.ID, typeid.PrefixChart); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	chart := &document.Chart{
		ID:     req.ID,
		Title:  req.Title,
		Width:  req.Width,
		Height: req.Height,
		Scale:  req.Scale,
		Series: req.Series,
		Style:  req.Style,
	}
	if chart.Width == 0 {
		chart.Width = h.defaultWidth
	}
	if chart.Height == 0 {
		chart.Height = h.defaultHeight
	}
	switch {
	case req.Random != nil:
		chart.Series = document.RandomSeries(document.RandomSeriesLength, *req.Random)
	case chart.Series == nil:
		chart.Series = document.SampleSeries()
	}

	created, err := h.hub.Create(r.Context(), chart)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	chartID := mux.Vars(r)["chartId"]

	var chart *document.Chart
	err := h.hub.Do(r.Context(), chartID, func(e *engine.Engine) error {
		chart = e.Chart()
		return nil
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chart)
}

// Render returns the current frame. Transitions stay queued for the live
// clients.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	chartID := mux.Vars(r)["chartId"]

	var frame engine.Frame
	err := h.hub.Do(r.Context(), chartID, func(e *engine.Engine) error {
		frame = e.Preview()
		return nil
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	data, err := engine.FrameToJSON(frame)
	if err != nil {
		slog.Error("marshal frame failed", "error", err, "chart", chartID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(data))
}

func (h *Handler) SetSeries(w http.ResponseWriter, r *http.Request) {
	chartID := mux.Vars(r)["chartId"]

	var req seriesRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Series == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "series is required"})
		return
	}
	if err := h.hub.CheckSeries(req.Series); err != nil {
		handleServiceError(w, err)
		return
	}

	var chart *document.Chart
	err := h.hub.Update(r.Context(), chartID, func(e *engine.Engine) error {
		e.SetSeries(req.Series)
		chart = e.Chart()
		return nil
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chart)
}

// SetStyle merges the body over the chart's current style, so partial styles
// only change the fields they name.
func (h *Handler) SetStyle(w http.ResponseWriter, r *http.Request) {
	chartID := mux.Vars(r)["chartId"]

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil || !json.Valid(body) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var chart *document.Chart
	err = h.hub.Update(r.Context(), chartID, func(e *engine.Engine) error {
		style := e.Style()
		if err := json.Unmarshal(body, &style); err != nil {
			return errInvalidBody
		}
		if err := e.SetStyle(style); err != nil {
			return err
		}
		chart = e.Chart()
		return nil
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chart)
}

// WebSocket attaches a live pointer session to an existing chart.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	chartID := mux.Vars(r)["chartId"]

	if !h.hub.Exists(r.Context(), chartID) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "chart not found"})
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := session.NewClient(h.hub, conn, chartID, typeid.NewClientID())

	h.hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

var errInvalidBody = errors.New("invalid request body")

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrChartNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "chart not found"})
	case errors.Is(err, session.ErrChartExists):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "chart already exists"})
	case errors.Is(err, errInvalidBody):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	case errors.Is(err, session.ErrSeriesTooLong),
		errors.Is(err, document.ErrInvalidColor),
		errors.Is(err, document.ErrInvalidSize):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, session.ErrHubStopped):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "shutting down"})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
