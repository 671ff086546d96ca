package session

import (
	"log/slog"
	"sync"
)

// SelectionTracker remembers the live selection of a chart so that clients
// joining mid-interaction can draw it.
type SelectionTracker struct {
	mu      sync.RWMutex
	current *SelectPayload
}

func NewSelectionTracker() *SelectionTracker {
	return &SelectionTracker{}
}

func (st *SelectionTracker) Update(sel SelectPayload) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.current = &sel
}

func (st *SelectionTracker) Clear() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.current = nil
}

// Get returns the live selection, if any.
func (st *SelectionTracker) Get() (SelectPayload, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if st.current == nil {
		return SelectPayload{}, false
	}
	return *st.current, true
}

func (st *SelectionTracker) StateMessage() *Message {
	var state SelectionStatePayload
	if sel, ok := st.Get(); ok {
		state.Selection = &sel
	}
	msg, err := newMessage(TypeSelectionState, state)
	if err != nil {
		slog.Error("marshal selection state", "error", err)
		return nil
	}
	return msg
}
