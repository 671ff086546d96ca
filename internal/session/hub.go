package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inamate/linechart/internal/document"
	"github.com/inamate/linechart/internal/engine"
	"github.com/inamate/linechart/internal/typeid"
)

var (
	ErrChartNotFound = errors.New("chart not found")
	ErrChartExists   = errors.New("chart already exists")
	ErrSeriesTooLong = errors.New("series too long")
	ErrHubStopped    = errors.New("hub stopped")
)

// Room is one chart and the clients watching it. Rooms outlive their clients.
type Room struct {
	chartID   string
	engine    *engine.Engine
	clients   map[string]*Client // clientID -> client
	selection *SelectionTracker

	// Engine pointer IDs are allocated per (client, pointer) so that two
	// clients using the same local pointer ID never collide.
	pointers    map[pointerKey]int
	nextPointer int

	// actor is the client whose event the engine is currently handling.
	actor string
	seq   int64
}

type pointerKey struct {
	clientID  string
	pointerID int
}

func newRoom(chartID string) *Room {
	r := &Room{
		chartID:   chartID,
		clients:   make(map[string]*Client),
		selection: NewSelectionTracker(),
		pointers:  make(map[pointerKey]int),
	}
	r.engine = engine.NewEngine(
		engine.WithLogger(slog.Default().With("chart", chartID)),
		engine.WithDelegate(roomDelegate{room: r}),
	)
	return r
}

// Hub owns every chart engine. All engine access is serialised through Run.
type Hub struct {
	rooms      map[string]*Room // chartID -> room, owned by Run
	register   chan *Client
	unregister chan *Client
	requests   chan func()
	done       chan struct{}

	maxSeriesLength int
}

// NewHub creates a hub. maxSeriesLength <= 0 disables the series limit.
func NewHub(maxSeriesLength int) *Hub {
	return &Hub{
		rooms:           make(map[string]*Room),
		register:        make(chan *Client),
		unregister:      make(chan *Client),
		requests:        make(chan func()),
		done:            make(chan struct{}),
		maxSeriesLength: maxSeriesLength,
	}
}

// Run processes registrations, messages and requests until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case fn := <-h.requests:
			fn()
		case <-ctx.Done():
			slog.Info("hub stopped", "charts", len(h.rooms))
			return
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// call runs fn on the hub goroutine and waits for it.
func (h *Hub) call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	req := func() {
		defer close(finished)
		fn()
	}

	select {
	case h.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrHubStopped
	}
	<-finished
	return nil
}

// Create adds a chart. An empty ID gets a fresh chart ID.
func (h *Hub) Create(ctx context.Context, chart *document.Chart) (*document.Chart, error) {
	if chart.ID == "" {
		chart.ID = typeid.NewChartID()
	}
	if err := h.CheckSeries(chart.Series); err != nil {
		return nil, err
	}

	var created *document.Chart
	var opErr error
	err := h.call(ctx, func() {
		if _, ok := h.rooms[chart.ID]; ok {
			opErr = fmt.Errorf("create %s: %w", chart.ID, ErrChartExists)
			return
		}
		room := newRoom(chart.ID)
		if err := room.engine.LoadDocument(chart); err != nil {
			opErr = fmt.Errorf("create %s: %w", chart.ID, err)
			return
		}
		h.rooms[chart.ID] = room
		created = room.engine.Chart()
	})
	if err != nil {
		return nil, err
	}
	if opErr != nil {
		return nil, opErr
	}

	slog.Info("chart created", "chart", created.ID, "points", len(created.Series))
	return created, nil
}

// Do runs fn against the chart's engine on the hub goroutine.
func (h *Hub) Do(ctx context.Context, chartID string, fn func(*engine.Engine) error) error {
	var opErr error
	err := h.call(ctx, func() {
		room, ok := h.rooms[chartID]
		if !ok {
			opErr = fmt.Errorf("chart %s: %w", chartID, ErrChartNotFound)
			return
		}
		if fn != nil {
			opErr = fn(room.engine)
		}
	})
	if err != nil {
		return err
	}
	return opErr
}

// Update is Do followed by a frame broadcast to the chart's clients when fn
// succeeds.
func (h *Hub) Update(ctx context.Context, chartID string, fn func(*engine.Engine) error) error {
	return h.Do(ctx, chartID, func(e *engine.Engine) error {
		if err := fn(e); err != nil {
			return err
		}
		h.rooms[chartID].broadcastFrame()
		return nil
	})
}

// Exists reports whether chartID is known.
func (h *Hub) Exists(ctx context.Context, chartID string) bool {
	return h.Do(ctx, chartID, nil) == nil
}

// CheckSeries enforces the configured series length limit.
func (h *Hub) CheckSeries(values []float64) error {
	if h.maxSeriesLength > 0 && len(values) > h.maxSeriesLength {
		return fmt.Errorf("%d points (max %d): %w", len(values), h.maxSeriesLength, ErrSeriesTooLong)
	}
	return nil
}

func (h *Hub) dispatch(sender *Client, msg *Message) {
	if err := h.call(context.Background(), func() { h.handleMessage(sender, msg) }); err != nil {
		slog.Debug("dropping message", "error", err, "client", sender.ClientID)
	}
}

func (h *Hub) addClient(client *Client) {
	room, ok := h.rooms[client.ChartID]
	if !ok {
		client.Send(errorMessage("chart not found"))
		return
	}
	room.clients[client.ClientID] = client

	welcome, err := newMessage(TypeWelcome, WelcomePayload{
		ClientID: client.ClientID,
		Chart:    room.engine.Chart(),
	})
	if err != nil {
		slog.Error("marshal welcome", "error", err)
	} else {
		welcome.ChartID = room.chartID
		client.Send(welcome)
	}

	// Send current selection and frame to the new client
	if stateMsg := room.selection.StateMessage(); stateMsg != nil {
		stateMsg.ChartID = room.chartID
		client.Send(stateMsg)
	}
	client.Send(room.frameMessage())

	slog.Info("client joined", "client", client.ClientID, "chart", client.ChartID, "clients", len(room.clients))
}

func (h *Hub) removeClient(client *Client) {
	room, ok := h.rooms[client.ChartID]
	if !ok {
		return
	}
	if _, ok := room.clients[client.ClientID]; !ok {
		return
	}

	delete(room.clients, client.ClientID)
	close(client.send)

	// Pointers of a departed client can never come up again
	released := false
	for key, id := range room.pointers {
		if key.clientID != client.ClientID {
			continue
		}
		room.actor = client.ClientID
		room.engine.PointerCancel(id)
		room.actor = ""
		delete(room.pointers, key)
		released = true
	}
	if released {
		room.broadcastFrame()
	}

	slog.Info("client left", "client", client.ClientID, "chart", client.ChartID, "clients", len(room.clients))
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	room, ok := h.rooms[sender.ChartID]
	if !ok {
		sender.Send(errorMessage("chart not found"))
		return
	}

	switch msg.Type {
	case TypePointerDown, TypePointerMove, TypePointerUp, TypePointerCancel:
		h.handlePointer(room, sender, msg)
	case TypeSeriesSet:
		h.handleSeriesSet(room, sender, msg)
	case TypeRenderRequest:
		sender.Send(room.frameMessage())
	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", sender.ClientID)
		sender.Send(errorMessage("unknown message type: " + msg.Type))
	}
}

func (h *Hub) handlePointer(room *Room, sender *Client, msg *Message) {
	var p PointerPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		slog.Warn("invalid pointer payload", "error", err, "client", sender.ClientID)
		sender.Send(errorMessage("invalid pointer payload"))
		return
	}

	room.actor = sender.ClientID
	defer func() { room.actor = "" }()

	if msg.Type == TypePointerDown {
		room.engine.PointerDown(room.pointerFor(sender.ClientID, p.PointerID), p.X, p.Y)
		room.broadcastFrame()
		return
	}

	// Pointers that never went down have nothing to move or end
	id, ok := room.pointers[pointerKey{clientID: sender.ClientID, pointerID: p.PointerID}]
	if !ok {
		return
	}
	switch msg.Type {
	case TypePointerMove:
		room.engine.PointerMove(id, p.X, p.Y)
	case TypePointerUp:
		room.engine.PointerUp(id)
		room.releasePointer(sender.ClientID, p.PointerID)
	case TypePointerCancel:
		room.engine.PointerCancel(id)
		room.releasePointer(sender.ClientID, p.PointerID)
	}

	room.broadcastFrame()
}

func (h *Hub) handleSeriesSet(room *Room, sender *Client, msg *Message) {
	var payload SeriesPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		slog.Warn("invalid series payload", "error", err, "client", sender.ClientID)
		sender.Send(errorMessage("invalid series payload"))
		return
	}
	if err := h.CheckSeries(payload.Series); err != nil {
		sender.Send(errorMessage(err.Error()))
		return
	}

	room.actor = sender.ClientID
	room.engine.SetSeries(payload.Series)
	room.actor = ""

	room.broadcastFrame()
}

func (r *Room) pointerFor(clientID string, pointerID int) int {
	key := pointerKey{clientID: clientID, pointerID: pointerID}
	if id, ok := r.pointers[key]; ok {
		return id
	}
	r.nextPointer++
	r.pointers[key] = r.nextPointer
	return r.nextPointer
}

func (r *Room) releasePointer(clientID string, pointerID int) {
	delete(r.pointers, pointerKey{clientID: clientID, pointerID: pointerID})
}

// frameMessage renders the chart; pending transitions go to whoever receives it.
func (r *Room) frameMessage() *Message {
	frame, err := engine.FrameToJSON(r.engine.Render())
	if err != nil {
		slog.Error("marshal frame", "error", err, "chart", r.chartID)
	}
	r.seq++
	return &Message{
		Type:    TypeFrame,
		ChartID: r.chartID,
		Seq:     r.seq,
		Payload: json.RawMessage(frame),
	}
}

func (r *Room) broadcastFrame() {
	if len(r.clients) == 0 {
		// Still drain transitions so stale ones never reach a later client
		r.engine.Render()
		return
	}
	r.broadcast(r.frameMessage())
}

func (r *Room) broadcast(msg *Message) {
	if msg == nil {
		return
	}
	msg.ChartID = r.chartID
	for _, c := range r.clients {
		c.Send(msg)
	}
}

// roomDelegate fans engine notifications out to every client in the room.
type roomDelegate struct {
	room *Room
}

func (d roomDelegate) OnSelect(index int, value float64) {
	sel := SelectPayload{Index: index, Value: value, ClientID: d.room.actor}
	d.room.selection.Update(sel)

	msg, err := newMessage(TypeSelect, sel)
	if err != nil {
		slog.Error("marshal select", "error", err)
		return
	}
	d.room.broadcast(msg)
}

func (d roomDelegate) OnInteractionEnd() {
	d.room.selection.Clear()

	msg, err := newMessage(TypeInteractionEnd, InteractionEndPayload{ClientID: d.room.actor})
	if err != nil {
		slog.Error("marshal interaction end", "error", err)
		return
	}
	d.room.broadcast(msg)
}
