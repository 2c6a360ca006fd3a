package agent

import (
	"encoding/json"
	"sync"
	"time"

	"datachat/chart"
	"datachat/web/types"

	"github.com/google/uuid"
)

// History is the conversation state for one session: an append-only turn log
// plus the most recently produced chart. It is owned exclusively by the
// Router; classifiers and the inferencer never touch it. The mutex
// serializes whole queries, so the user turn for query N is always appended
// before the model turn for query N, and query N+1 cannot interleave.
type History struct {
	mu        sync.Mutex
	sessionID string
	turns     []types.Turn
	lastChart *chart.Spec
}

// NewHistory creates an empty conversation state for a session.
func NewHistory(sessionID string) *History {
	return &History{sessionID: sessionID}
}

// append records a turn. Callers must hold h.mu.
func (h *History) append(role, content string) types.Turn {
	turn := types.Turn{
		ID:        uuid.New().String(),
		SessionID: h.sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	h.turns = append(h.turns, turn)
	return turn
}

// lastExchange returns the most recent model turn and the user turn that
// preceded it, ignoring the trailing skip turns (the query currently being
// handled). Callers must hold h.mu.
func (h *History) lastExchange(skip int) (user *types.Turn, model *types.Turn) {
	end := len(h.turns) - skip
	for i := end - 1; i >= 0; i-- {
		if h.turns[i].Role == types.RoleModel {
			model = &h.turns[i]
			for j := i - 1; j >= 0; j-- {
				if h.turns[j].Role == types.RoleUser {
					user = &h.turns[j]
					return user, model
				}
			}
			return nil, model
		}
	}
	return nil, nil
}

// Turns returns a copy of the turn log in append order.
func (h *History) Turns() []types.Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]types.Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// LastChart returns the cached chart, or nil if none has been produced.
func (h *History) LastChart() *chart.Spec {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastChart
}

// Reset clears the turn log and the cached chart.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = nil
	h.lastChart = nil
}

// snapshot is the serialized form of a conversation state.
type snapshot struct {
	SessionID string       `json:"session_id"`
	Turns     []types.Turn `json:"turns"`
	LastChart *chart.Spec  `json:"last_chart,omitempty"`
}

// Snapshot serializes the conversation state for persistence.
func (h *History) Snapshot() ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return json.Marshal(snapshot{
		SessionID: h.sessionID,
		Turns:     h.turns,
		LastChart: h.lastChart,
	})
}

// RestoreHistory rebuilds a conversation state from a Snapshot payload.
// Turn order, content and timestamps survive the round-trip.
func RestoreHistory(data []byte) (*History, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &History{
		sessionID: snap.SessionID,
		turns:     snap.Turns,
		lastChart: snap.LastChart,
	}, nil
}

// Load replaces the in-memory state with turns restored by a collaborator
// (e.g. the database store after a restart).
func (h *History) Load(turns []types.Turn, lastChart *chart.Spec) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append([]types.Turn(nil), turns...)
	h.lastChart = lastChart
}
