package webhost

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"ripmedia/internal/events"
	"ripmedia/internal/history"
	"ripmedia/internal/model"
	"ripmedia/internal/testsupport"
)

type fakeManager struct {
	mu       sync.Mutex
	enqueued [][]string
	items    []model.ItemState
	err      error
}

func (f *fakeManager) Enqueue(urls []string) ([]model.ItemState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.enqueued = append(f.enqueued, urls)
	out := make([]model.ItemState, 0, len(urls))
	for i, u := range urls {
		out = append(out, model.ItemState{ID: int64(i + 1), URL: u, Status: model.StatusQueued})
	}
	return out, nil
}

func (f *fakeManager) Snapshot() []model.ItemState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.ItemState(nil), f.items...)
}

type fakeHistory struct {
	opts    history.ListOptions
	entries []history.Entry
	batches []history.Batch
	err     error
}

func (f *fakeHistory) List(_ context.Context, opts history.ListOptions) ([]history.Entry, error) {
	f.opts = opts
	return f.entries, f.err
}

func (f *fakeHistory) Batches(context.Context, int) ([]history.Batch, error) {
	return f.batches, f.err
}

func newTestServer(t *testing.T, mgr *fakeManager, opts ...Option) (*Server, *events.Broker) {
	t.Helper()
	broker := events.New(8)
	t.Cleanup(broker.Close)
	return New(t.TempDir(), mgr, broker, opts...), broker
}

func TestIndexServesUI(t *testing.T) {
	srv, _ := newTestServer(t, &fakeManager{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "EventSource") {
		t.Fatal("expected UI to subscribe to /events")
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown path, got %d", rec.Code)
	}
}

func TestState(t *testing.T) {
	mgr := &fakeManager{items: []model.ItemState{{ID: 1, URL: "https://youtu.be/a", Status: model.StatusRunning}}}
	srv, _ := newTestServer(t, mgr)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/state", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp stateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Status != model.StatusRunning {
		t.Fatalf("unexpected items %+v", resp.Items)
	}
}

func TestEnqueue(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        []string
		status      int
	}{
		{
			name:        "json",
			contentType: "application/json; charset=utf-8",
			body:        `{"urls":["https://youtu.be/a"," https://soundcloud.com/b ",""]}`,
			want:        []string{"https://youtu.be/a", "https://soundcloud.com/b"},
			status:      http.StatusOK,
		},
		{
			name:        "text lines",
			contentType: "text/plain",
			body:        "https://youtu.be/a\n# note\n\nhttps://open.spotify.com/track/x\n",
			want:        []string{"https://youtu.be/a", "https://open.spotify.com/track/x"},
			status:      http.StatusOK,
		},
		{name: "bad json", contentType: "application/json", body: "{", status: http.StatusBadRequest},
		{name: "empty", contentType: "text/plain", body: "\n\n", status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := &fakeManager{}
			srv, _ := newTestServer(t, mgr)
			req := httptest.NewRequest(http.MethodPost, "/enqueue", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status != http.StatusOK {
				if len(mgr.enqueued) != 0 {
					t.Fatalf("nothing should be enqueued, got %v", mgr.enqueued)
				}
				return
			}
			var resp enqueueResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Queued != len(tt.want) {
				t.Fatalf("queued = %d, want %d", resp.Queued, len(tt.want))
			}
			if len(mgr.enqueued) != 1 || !reflect.DeepEqual(mgr.enqueued[0], tt.want) {
				t.Fatalf("enqueued %v, want %v", mgr.enqueued, tt.want)
			}
		})
	}
}

func TestEnqueueDoesNotReadLocalFiles(t *testing.T) {
	list := testsupport.WriteURLList(t, t.TempDir(), "https://youtu.be/secret")
	mgr := &fakeManager{}
	srv, _ := newTestServer(t, mgr)
	req := httptest.NewRequest(http.MethodPost, "/enqueue", strings.NewReader(list))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !reflect.DeepEqual(mgr.enqueued[0], []string{list}) {
		t.Fatalf("expected path taken literally, got %v", mgr.enqueued[0])
	}
}

func TestEnqueueAfterShutdown(t *testing.T) {
	srv, _ := newTestServer(t, &fakeManager{err: errors.New("manager closed")})
	req := httptest.NewRequest(http.MethodPost, "/enqueue", strings.NewReader("https://youtu.be/a"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCrossOriginPostRejected(t *testing.T) {
	mgr := &fakeManager{}
	srv, _ := newTestServer(t, mgr)
	req := httptest.NewRequest(http.MethodPost, "http://127.0.0.1:8765/enqueue", strings.NewReader("https://youtu.be/a"))
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(mgr.enqueued) != 0 {
		t.Fatal("cross-origin request must not enqueue")
	}

	req = httptest.NewRequest(http.MethodPost, "http://127.0.0.1:8765/enqueue", strings.NewReader("https://youtu.be/a"))
	req.Header.Set("Origin", "http://127.0.0.1:8765")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("same-origin status = %d", rec.Code)
	}
}

func TestOpen(t *testing.T) {
	var opened []string
	broker := events.New(1)
	defer broker.Close()
	root := t.TempDir()
	file := testsupport.WriteFile(t, filepath.Join(root, "Artist - Song.mp3"), "x")
	srv := New(root, &fakeManager{}, broker, WithOpener(func(p string) error {
		opened = append(opened, p)
		return nil
	}))

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"missing path", `{}`, http.StatusBadRequest},
		{"invalid json", `nope`, http.StatusBadRequest},
		{"outside root", `{"path":"/etc/passwd"}`, http.StatusForbidden},
		{"traversal", `{"path":"` + root + `/../x"}`, http.StatusForbidden},
		{"inside root", `{"path":"` + file + `"}`, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/open", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			srv.Handler().ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
	if !reflect.DeepEqual(opened, []string{file}) {
		t.Fatalf("opened %v", opened)
	}
}

func TestHistory(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	h := &fakeHistory{
		entries: []history.Entry{{ID: 3, URL: "https://youtu.be/a", Status: model.StatusDone, FinishedAt: now}},
		batches: []history.Batch{{ID: "b1", Total: 1, Saved: 1}},
	}
	srv, _ := newTestServer(t, &fakeManager{}, WithHistory(h))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history?limit=5&status=done&batch=b1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if h.opts != (history.ListOptions{Limit: 5, Status: model.StatusDone, BatchID: "b1"}) {
		t.Fatalf("unexpected options %+v", h.opts)
	}
	var resp historyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 1 || len(resp.Batches) != 1 || resp.Batches[0].ID != "b1" {
		t.Fatalf("unexpected response %+v", resp)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history?limit=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}
}

func TestHistoryWithoutStore(t *testing.T) {
	srv, _ := newTestServer(t, &fakeManager{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"items":[],"batches":[]}` {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestEventsStream(t *testing.T) {
	broker := events.New(8)
	defer broker.Close()
	srv := New(t.TempDir(), &fakeManager{}, broker, WithPingInterval(20*time.Millisecond))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /events: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type %q", ct)
	}

	deadline := time.Now().Add(2 * time.Second)
	for broker.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	broker.Publish(events.Event{Type: events.TypeStatus, ID: 7, Status: model.StatusRunning})

	reader := bufio.NewReader(resp.Body)
	var sawPing, sawEvent bool
	for !(sawPing && sawEvent) {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case line == ": ping":
			sawPing = true
		case strings.HasPrefix(line, "data: "):
			var evt events.Event
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &evt); err != nil {
				t.Fatalf("decode event: %v", err)
			}
			if evt.ID != 7 || evt.Type != events.TypeStatus || evt.Sequence == 0 {
				t.Fatalf("unexpected event %+v", evt)
			}
			sawEvent = true
		}
	}

	cancel()
	deadline = time.Now().Add(2 * time.Second)
	for broker.Subscribers() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber not released after disconnect")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStartStop(t *testing.T) {
	srv, _ := newTestServer(t, &fakeManager{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	addr, err := srv.Start(ctx, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	resp, err := http.Get("http://" + addr.String() + "/state")
	if err != nil {
		t.Fatalf("GET /state: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	srv.Stop()
	if _, err := http.Get("http://" + addr.String() + "/state"); err == nil {
		t.Fatal("expected connection failure after Stop")
	}
}
