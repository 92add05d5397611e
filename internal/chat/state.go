package chat

import "sync"

// MaxTurns is the conversation window size per session. Appending beyond it
// evicts the oldest turn (FIFO).
const MaxTurns = 5

// Turn is one completed question/answer exchange.
type Turn struct {
	Question string
	Answer   string
	Cited    []string // locator citations referenced in the answer context
}

// History holds a bounded conversation window per session. Sessions are
// isolated from one another; access is serialized so concurrent requests on
// the same session preserve FIFO ordering.
type History struct {
	mu       sync.Mutex
	sessions map[string][]Turn
}

// NewHistory creates an empty session-keyed history store.
func NewHistory() *History {
	return &History{sessions: make(map[string][]Turn)}
}

// Turns returns a copy of the session's window, oldest first.
func (h *History) Turns(sessionID string) []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()

	turns := h.sessions[sessionID]
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Append records a completed turn, evicting the oldest when the window is
// full.
func (h *History) Append(sessionID string, t Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	turns := append(h.sessions[sessionID], t)
	if len(turns) > MaxTurns {
		turns = turns[len(turns)-MaxTurns:]
	}
	h.sessions[sessionID] = turns
}

// Len returns the number of turns stored for a session.
func (h *History) Len(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions[sessionID])
}
