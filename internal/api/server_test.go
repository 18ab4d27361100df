package api

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"Quackito/internal/model"
	"Quackito/internal/service"
	"Quackito/internal/store"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestServer(t *testing.T) (*httptest.Server, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := service.New(store.NewMemoryStore())
	svc.Now = c.Now
	srv := NewServer(svc, 50*time.Millisecond, "*")
	srv.Now = c.Now
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, c
}

func postJSON(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func createDuck(t *testing.T, ts *httptest.Server, body string) DuckResponse {
	t.Helper()
	resp := postJSON(t, ts.URL+"/api/ducks", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	return decode[DuckResponse](t, resp)
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["status"] != "healthy" || body["timestamp"] == "" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestCreate(t *testing.T) {
	ts, _ := newTestServer(t)

	d := createDuck(t, ts, `{"name":"Waddles"}`)
	if d.Name != "Waddles" || len(d.Code) != service.CodeLength {
		t.Errorf("unexpected duck: %+v", d)
	}
	if d.Hunger != 80 || d.Happiness != 80 || d.Energy != 80 || d.Mood != model.MoodHappy {
		t.Errorf("unexpected stats: %+v", d)
	}

	if d := createDuck(t, ts, `{}`); d.Name != model.DefaultName {
		t.Errorf("expected default name, got %q", d.Name)
	}

	resp, err := http.Post(ts.URL+"/api/ducks", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("empty body: expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCreate_BadJSON(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/ducks", `{"name":`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestGet_AppliesDecay(t *testing.T) {
	ts, c := newTestServer(t)
	d := createDuck(t, ts, `{}`)

	c.Advance(120 * time.Minute)
	resp, err := http.Get(ts.URL + "/api/ducks/" + d.Code)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	got := decode[DuckResponse](t, resp)
	if math.Abs(got.Hunger-44) > 1e-9 || math.Abs(got.Happiness-56) > 1e-9 || math.Abs(got.Energy-62) > 1e-9 {
		t.Errorf("unexpected decayed stats: %+v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/ducks/unknown1")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if body := decode[map[string]string](t, resp); body["error"] == "" {
		t.Error("expected error message")
	}
}

func TestInteract(t *testing.T) {
	ts, _ := newTestServer(t)
	d := createDuck(t, ts, `{}`)
	url := ts.URL + "/api/ducks/" + d.Code + "/interact"

	resp := postJSON(t, url, `{"action":"play"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	got := decode[DuckResponse](t, resp)
	if got.Happiness != 100 || got.Energy != 70 {
		t.Errorf("unexpected stats after play: %+v", got)
	}

	resp = postJSON(t, url, `{"action":"feed","food_type":"seeds"}`)
	got = decode[DuckResponse](t, resp)
	if got.Hunger != 95 {
		t.Errorf("expected hunger 95 after seeds, got %v", got.Hunger)
	}
}

func TestInteract_Errors(t *testing.T) {
	ts, _ := newTestServer(t)
	d := createDuck(t, ts, `{}`)

	tests := []struct {
		name   string
		code   string
		body   string
		status int
	}{
		{"unknown action", d.Code, `{"action":"fed"}`, http.StatusBadRequest},
		{"missing action", d.Code, `{}`, http.StatusBadRequest},
		{"upper case action", d.Code, `{"action":"FEED"}`, http.StatusBadRequest},
		{"padded action", d.Code, `{"action":" play "}`, http.StatusBadRequest},
		{"title case action", d.Code, `{"action":"Sleep"}`, http.StatusBadRequest},
		{"upper case food", d.Code, `{"action":"feed","food_type":"SEEDS"}`, http.StatusBadRequest},
		{"unknown food", d.Code, `{"action":"feed","food_type":"pizza"}`, http.StatusBadRequest},
		{"bad json", d.Code, `nope`, http.StatusBadRequest},
		{"unknown duck", "unknown1", `{"action":"feed"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/api/ducks/"+tt.code+"/interact", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("expected %d, got %d", tt.status, resp.StatusCode)
			}
			if body := decode[map[string]string](t, resp); body["error"] == "" {
				t.Error("expected error message")
			}
		})
	}
}

func TestInteract_SuggestsAction(t *testing.T) {
	ts, _ := newTestServer(t)
	d := createDuck(t, ts, `{}`)
	resp := postJSON(t, ts.URL+"/api/ducks/"+d.Code+"/interact", `{"action":"slep"}`)
	body := decode[map[string]string](t, resp)
	if !strings.Contains(body["error"], `"sleep"`) {
		t.Errorf("expected suggestion for sleep, got %q", body["error"])
	}
}

func TestRequestIDAndCORS(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
		t.Errorf("expected generated request id, got %q", resp.Header.Get(RequestIDHeader))
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS header")
	}

	id := uuid.NewString()
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.Header.Get(RequestIDHeader) != id {
		t.Errorf("expected request id %q echoed, got %q", id, resp.Header.Get(RequestIDHeader))
	}

	req, _ = http.NewRequest(http.MethodOptions, ts.URL+"/api/ducks", bytes.NewReader(nil))
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("preflight: expected 204, got %d", resp.StatusCode)
	}
}

func TestWatch(t *testing.T) {
	ts, c := newTestServer(t)
	d := createDuck(t, ts, `{}`)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ducks/" + d.Code + "/watch"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first DuckResponse
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read first: %v", err)
	}
	if first.Code != d.Code || first.Hunger != 80 {
		t.Errorf("unexpected first push: %+v", first)
	}

	c.Advance(10 * time.Minute)
	var next DuckResponse
	for next.Hunger == 0 || next.Hunger == 80 {
		if err := conn.ReadJSON(&next); err != nil {
			t.Fatalf("read next: %v", err)
		}
	}
	if math.Abs(next.Hunger-77) > 1e-9 {
		t.Errorf("expected decayed hunger 77, got %v", next.Hunger)
	}
}

func TestWatch_NotFound(t *testing.T) {
	ts, _ := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ducks/unknown1/watch"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 response, got %+v", resp)
	}
}
