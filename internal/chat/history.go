package chat

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"shopchat/internal/product"
)

// History keeps the append-only conversation per backend session id. It is
// in-memory only: conversations live as long as the process, matching the
// page-lifetime scope of the chat transcript.
type History struct {
	mu       sync.Mutex
	sessions map[string][]Message
}

func NewHistory() *History {
	return &History{sessions: map[string][]Message{}}
}

// Record appends the user's turn and the assistant's reply under the
// session id the backend assigned. Recommendation rows are normalized into
// internal products here, preserving bucket grouping.
func (h *History) Record(sessionID, userMessage string, resp *Response) {
	if sessionID == "" || resp == nil {
		return
	}
	now := time.Now().UTC()
	user := Message{
		ID:        ulid.Make().String(),
		Role:      "user",
		Content:   userMessage,
		Timestamp: now,
	}
	assistant := Message{
		ID:                       ulid.Make().String(),
		Role:                     "assistant",
		Content:                  resp.Message,
		Timestamp:                now,
		BucketLabels:             resp.BucketLabels,
		DiversificationDimension: resp.DiversificationDimension,
		QuickReplies:             resp.QuickReplies,
	}
	if len(resp.Recommendations) > 0 {
		assistant.Recommendations = product.FromAPIRows(resp.Recommendations)
	}

	h.mu.Lock()
	h.sessions[sessionID] = append(h.sessions[sessionID], user, assistant)
	h.mu.Unlock()
}

// Messages returns a copy of the session transcript, oldest first.
func (h *History) Messages(sessionID string) []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	msgs := h.sessions[sessionID]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
