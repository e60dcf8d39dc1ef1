package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type flakyTransport struct {
	failures int
	calls    int
	agents   []string
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.calls++
	f.agents = append(f.agents, req.Header.Get("User-Agent"))
	if f.calls <= f.failures {
		return nil, errors.New("connection reset")
	}
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
}

func TestTransportRetriesGet(t *testing.T) {
	base := &flakyTransport{failures: 2}
	tr := &Transport{Base: base, UserAgent: UserAgent, RetryMax: 2}
	req, _ := http.NewRequest(http.MethodGet, "http://example.invalid", nil)
	resp, err := tr.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	resp.Body.Close()
	if base.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", base.calls)
	}
	for _, ua := range base.agents {
		if ua != UserAgent {
			t.Fatalf("unexpected user agent %q", ua)
		}
	}
	if req.Header.Get("User-Agent") != "" {
		t.Fatal("caller request was mutated")
	}
}

func TestTransportDoesNotRetryPost(t *testing.T) {
	base := &flakyTransport{failures: 5}
	tr := &Transport{Base: base, RetryMax: 2}
	req, _ := http.NewRequest(http.MethodPost, "http://example.invalid", strings.NewReader("x"))
	if _, err := tr.RoundTrip(req); err == nil {
		t.Fatal("expected error")
	}
	if base.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", base.calls)
	}
}

func TestGetBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	client := NewClient(5 * time.Second)
	body, _, err := GetBytes(context.Background(), client, srv.URL+"/ok", 4)
	if err != nil || string(body) != "0123" {
		t.Fatalf("unexpected body %q err=%v", body, err)
	}

	_, _, err = GetBytes(context.Background(), client, srv.URL+"/missing", 10)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404 status error, got %v", err)
	}
}
