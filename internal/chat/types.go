package chat

import (
	"time"

	"shopchat/internal/product"
)

// Location is the optional coarse position attached to a chat turn.
type Location struct {
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	AccuracyM  *float64 `json:"accuracy_m,omitempty"`
	CapturedAt string   `json:"captured_at,omitempty"`
}

// Request is the wire contract to the recommendation backend. Optional
// fields are pointers so absent values stay out of the outbound JSON
// entirely instead of appearing as null; k=0 and n_rows=0 remain sendable.
type Request struct {
	Message      string    `json:"message"`
	SessionID    string    `json:"session_id,omitempty"`
	UserLocation *Location `json:"user_location,omitempty"`
	K            *int      `json:"k,omitempty"`
	Method       string    `json:"method,omitempty"`
	NRows        *int      `json:"n_rows,omitempty"`
	NPerRow      *int      `json:"n_per_row,omitempty"`
}

// Response is the backend's reply. Recommendations stay raw here; the
// normalizer reshapes them when the turn is recorded into history.
type Response struct {
	ResponseType             string              `json:"response_type"`
	Message                  string              `json:"message"`
	SessionID                string              `json:"session_id"`
	QuickReplies             []string            `json:"quick_replies,omitempty"`
	Recommendations          [][]map[string]any  `json:"recommendations,omitempty"`
	BucketLabels             []string            `json:"bucket_labels,omitempty"`
	DiversificationDimension string              `json:"diversification_dimension,omitempty"`
	Filters                  map[string]any      `json:"filters,omitempty"`
	Preferences              map[string]any      `json:"preferences,omitempty"`
	QuestionCount            *int                `json:"question_count,omitempty"`
}

// Message is one turn of a session-local conversation.
type Message struct {
	ID                       string              `json:"id"`
	Role                     string              `json:"role"` // user | assistant
	Content                  string              `json:"content"`
	Timestamp                time.Time           `json:"timestamp"`
	Recommendations          [][]product.Product `json:"recommendations,omitempty"`
	BucketLabels             []string            `json:"bucket_labels,omitempty"`
	DiversificationDimension string              `json:"diversification_dimension,omitempty"`
	QuickReplies             []string            `json:"quick_replies,omitempty"`
}
