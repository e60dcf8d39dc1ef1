// Package httpx builds the HTTP clients used for catalog APIs, artwork and
// notifications: a fixed User-Agent, bounded retries for replayable requests,
// and an overall timeout.
package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// UserAgent identifies ripmedia to remote services.
	UserAgent = "ripmedia/0.1"

	defaultTimeout  = 15 * time.Second
	defaultRetryMax = 2
)

// Transport adds a default User-Agent and retries GET/HEAD requests without
// a body on transport errors.
type Transport struct {
	Base      http.RoundTripper
	UserAgent string
	// RetryMax is the number of retries after the first attempt.
	RetryMax int
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	retries := max(t.RetryMax, 0)
	if (req.Method != http.MethodGet && req.Method != http.MethodHead) || req.Body != nil {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		r := req.Clone(req.Context())
		if r.Header.Get("User-Agent") == "" && t.UserAgent != "" {
			r.Header.Set("User-Agent", t.UserAgent)
		}
		resp, err := base.RoundTrip(r)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if req.Context().Err() != nil {
			break
		}
	}
	return nil, lastErr
}

// NewClient returns a client with the ripmedia transport. A non-positive
// timeout selects the default.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Transport: &Transport{
			Base: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 15 * time.Second,
			},
			UserAgent: UserAgent,
			RetryMax:  defaultRetryMax,
		},
		Timeout: timeout,
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Status)
}

// GetBytes fetches url and returns at most limit bytes of the body. Non-2xx
// responses return a *StatusError.
func GetBytes(ctx context.Context, client *http.Client, url string, limit int64) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, resp.Header, &StatusError{URL: url, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, resp.Header, err
	}
	return body, resp.Header, nil
}
