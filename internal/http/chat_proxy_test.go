package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shopchat/internal/config"
)

func chatRequest(body string) *http.Request {
	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestChatFailsClosedWhenUnconfigured(t *testing.T) {
	app := newTestApp(t, config.Config{})

	// even a malformed body gets the configuration error first
	for _, body := range []string{`{"message":"hello"}`, `{broken`} {
		resp, err := app.Test(chatRequest(body))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("body %q: want 503, got %d", body, resp.StatusCode)
		}
		if got := decodeJSON(t, resp)["error"]; got != "API not configured. Set CHAT_API_BASE_URL" {
			t.Fatalf("unexpected error message: %v", got)
		}
	}
}

func TestChatRejectsEmptyMessageBeforeForwarding(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called for an empty message")
	}))
	defer backend.Close()
	app := newTestApp(t, config.Config{ChatAPIBaseURL: backend.URL})

	for _, body := range []string{`{}`, `{"message":""}`, `{"session_id":"s1"}`} {
		resp, err := app.Test(chatRequest(body))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %q: want 400, got %d", body, resp.StatusCode)
		}
		if got := decodeJSON(t, resp)["error"]; got != "Message is required" {
			t.Fatalf("unexpected error message: %v", got)
		}
	}
}

func TestChatMalformedBodyIsServerError(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called for a malformed body")
	}))
	defer backend.Close()
	app := newTestApp(t, config.Config{ChatAPIBaseURL: backend.URL})

	resp, err := app.Test(chatRequest(`{broken`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", resp.StatusCode)
	}
	if got := decodeJSON(t, resp)["error"]; got != "Internal server error" {
		t.Fatalf("unexpected error message: %v", got)
	}
}

func TestChatForwardsTurnVerbatimAndRecordsHistory(t *testing.T) {
	backendReply := `{"response_type":"recommendation","message":"Here you go","session_id":"sess-abc",` +
		`"quick_replies":["Cheaper","Newer"],"bucket_labels":["Best value"],` +
		`"recommendations":[[{"vehicle":{"year":2020,"make":"Honda","model":"Civic"},"retailListing":{"price":19500,"miles":30100}}]]}`

	var forwarded map[string]any
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat" {
			t.Errorf("want POST /chat, got %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &forwarded); err != nil {
			t.Errorf("backend received non-JSON body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(backendReply))
	}))
	defer backend.Close()
	app := newTestApp(t, config.Config{ChatAPIBaseURL: backend.URL})

	resp, err := app.Test(chatRequest(`{"message":"show me sedans","session_id":"sess-abc",` +
		`"user_location":{"latitude":37.44,"longitude":-122.16,"accuracy_m":25,"captured_at":"2026-01-27T00:00:00.000Z"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	if string(raw) != backendReply {
		t.Fatalf("reply not relayed verbatim: %s", raw)
	}

	if forwarded["message"] != "show me sedans" || forwarded["session_id"] != "sess-abc" {
		t.Fatalf("turn fields not forwarded: %v", forwarded)
	}
	loc, ok := forwarded["user_location"].(map[string]any)
	if !ok {
		t.Fatalf("user_location not forwarded: %v", forwarded)
	}
	if loc["latitude"] != 37.44 || loc["longitude"] != -122.16 || loc["accuracy_m"] != 25.0 {
		t.Fatalf("location fields mangled: %v", loc)
	}
	if loc["captured_at"] != "2026-01-27T00:00:00.000Z" {
		t.Fatalf("captured_at mangled: %v", loc)
	}
	for _, key := range []string{"k", "n_rows", "n_per_row", "method"} {
		if _, present := forwarded[key]; present {
			t.Fatalf("unset optional field %q leaked into the payload", key)
		}
	}

	// the relayed turn lands in session history, with rows normalized
	histResp, err := app.Test(httptest.NewRequest("GET", "/api/chat/history?session_id=sess-abc", nil))
	if err != nil {
		t.Fatal(err)
	}
	hist := decodeJSON(t, histResp)
	msgs, ok := hist["messages"].([]any)
	if !ok || len(msgs) != 2 {
		t.Fatalf("want a user and an assistant turn, got %v", hist["messages"])
	}
	userMsg := msgs[0].(map[string]any)
	if userMsg["role"] != "user" || userMsg["content"] != "show me sedans" {
		t.Fatalf("user turn wrong: %v", userMsg)
	}
	assistant := msgs[1].(map[string]any)
	if assistant["role"] != "assistant" || assistant["content"] != "Here you go" {
		t.Fatalf("assistant turn wrong: %v", assistant)
	}
	rows := assistant["recommendations"].([]any)
	first := rows[0].([]any)[0].(map[string]any)
	if first["title"] != "2020 Honda Civic" {
		t.Fatalf("recommendation not normalized: %v", first)
	}
	if first["price_text"] != "$19,500" {
		t.Fatalf("price text wrong: %v", first["price_text"])
	}
}

func TestChatRelaysBackendFailure(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer backend.Close()
	app := newTestApp(t, config.Config{ChatAPIBaseURL: backend.URL})

	resp, err := app.Test(chatRequest(`{"message":"hello"}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("want relayed 502, got %d", resp.StatusCode)
	}
	body := decodeJSON(t, resp)
	if body["error"] != "Backend API error: 502" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
	if body["detail"] != "upstream exploded" {
		t.Fatalf("backend body not relayed as detail: %v", body["detail"])
	}
}

func TestChatHistoryRequiresSessionID(t *testing.T) {
	app := newTestApp(t, config.Config{})
	resp, err := app.Test(httptest.NewRequest("GET", "/api/chat/history", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", resp.StatusCode)
	}
}
