package session

import (
	"encoding/json"

	"github.com/inamate/linechart/internal/document"
)

type Message struct {
	Type     string          `json:"type"`
	ChartID  string          `json:"chartId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// PointerPayload carries one pointer event in device coordinates.
// X and Y are ignored for up and cancel.
type PointerPayload struct {
	PointerID int     `json:"pointerId"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

type SeriesPayload struct {
	Series []float64 `json:"series"`
}

type WelcomePayload struct {
	ClientID string          `json:"clientId"`
	Chart    *document.Chart `json:"chart"`
}

// SelectPayload reports the selected sample and the client whose pointer
// selected it.
type SelectPayload struct {
	Index    int     `json:"index"`
	Value    float64 `json:"value"`
	ClientID string  `json:"clientId"`
}

type InteractionEndPayload struct {
	ClientID string `json:"clientId"`
}

type SelectionStatePayload struct {
	Selection *SelectPayload `json:"selection"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

const (
	// Client -> server
	TypePointerDown   = "pointer.down"
	TypePointerMove   = "pointer.move"
	TypePointerUp     = "pointer.up"
	TypePointerCancel = "pointer.cancel"
	TypeSeriesSet     = "series.set"
	TypeRenderRequest = "render.request"

	// Server -> client
	TypeWelcome        = "welcome"
	TypeFrame          = "frame"
	TypeSelect         = "select"
	TypeInteractionEnd = "interaction.end"
	TypeSelectionState = "selection.state"
	TypeError          = "error"
)

func newMessage(msgType string, payload interface{}) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: msgType, Payload: data}, nil
}

func errorMessage(text string) *Message {
	data, _ := json.Marshal(ErrorPayload{Error: text})
	return &Message{Type: TypeError, Payload: data}
}
