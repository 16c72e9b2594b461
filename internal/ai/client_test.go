package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

type ipv4Server struct {
	URL string
	srv *http.Server
	ln  net.Listener
}

func newIPv4Server(t *testing.T, handler http.Handler) *ipv4Server {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) {
			t.Skipf("skipping test: cannot open local listener (%v)", err)
		}
		t.Fatalf("listen tcp4: %v", err)
	}
	srv := &http.Server{Handler: handler}
	s := &ipv4Server{
		URL: "http://" + ln.Addr().String(),
		srv: srv,
		ln:  ln,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(fmt.Sprintf("test server serve: %v", err))
		}
	}()
	return s
}

func (s *ipv4Server) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = s.srv.Shutdown(ctx)
}

func testServerSequence(t *testing.T, statuses []int, headers []http.Header, bodyOK any) *ipv4Server {
	t.Helper()
	var idx int32
	return newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		i := int(atomic.AddInt32(&idx, 1)) - 1
		if i >= len(statuses) {
			i = len(statuses) - 1
		}
		st := statuses[i]
		if headers != nil && i < len(headers) && headers[i] != nil {
			for k, vals := range headers[i] {
				for _, v := range vals {
					w.Header().Add(k, v)
				}
			}
		}
		if st >= 200 && st < 300 {
			w.WriteHeader(st)
			_ = json.NewEncoder(w).Encode(bodyOK)
			return
		}
		w.WriteHeader(st)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "rate limited"}})
	}))
}

func TestGenerateRetriesOn429(t *testing.T) {
	okBody := GenerateResponse{Choices: []Choice{{Message: Message{Role: "assistant", Content: "ok"}}}}
	srv := testServerSequence(t, []int{429, 200}, []http.Header{{"Retry-After": {"0"}}, {}}, okBody)
	defer srv.Close()

	c := NewClient("test", srv.URL, 2*time.Second, retryPolicy{maxAttempts: 3, baseDelay: 10 * time.Millisecond, maxDelay: 100 * time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := c.Generate(ctx, GenerateRequest{Model: "test-model", Messages: []Message{{Role: "user", Content: "hi"}}, MaxTokens: 1})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content != "ok" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestRetryAfterHonored(t *testing.T) {
	okBody := GenerateResponse{Choices: []Choice{{Message: Message{Role: "assistant", Content: "ok"}}}}
	// Ask server to instruct a 1-second Retry-After, then succeed.
	srv := testServerSequence(t, []int{429, 200}, []http.Header{{"Retry-After": {"1"}}, {}}, okBody)
	defer srv.Close()

	c := NewClient("test", srv.URL, 5*time.Second, newRetryPolicy(3, 0, 0, 3, 500*time.Millisecond, 4*time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	start := time.Now()
	_, err := c.Generate(ctx, GenerateRequest{Model: "test-model", Messages: []Message{{Role: "user", Content: "hi"}}, MaxTokens: 1})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	elapsed := time.Since(start)
	if elapsed < 900*time.Millisecond { // allow some scheduling variance
		t.Fatalf("expected at least ~1s delay due to Retry-After, got %v", elapsed)
	}
}

func TestErrorIncludesRequestID(t *testing.T) {
	// Server returns 400 with X-Request-Id header
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Request-Id", "req_test_123")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "bad req", "code": "bad_request"}})
	}))
	defer srv.Close()

	c := NewClient("test", srv.URL, 2*time.Second, retryPolicy{maxAttempts: 1, baseDelay: 10 * time.Millisecond, maxDelay: 50 * time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := c.Generate(ctx, GenerateRequest{Model: "test-model", Messages: []Message{{Role: "user", Content: "hi"}}, MaxTokens: 1})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "req_test_123") {
		t.Fatalf("expected request id in error, got: %v", err)
	}
}

func TestGenerateClassifiesErrors(t *testing.T) {
	tests := []struct {
		status int
		body   map[string]any
		check  func(error) bool
	}{
		{http.StatusUnauthorized, map[string]any{"error": map[string]any{"message": "no key"}}, func(err error) bool { var e *AuthError; return errors.As(err, &e) }},
		{http.StatusNotFound, map[string]any{"error": map[string]any{"message": "model not found", "code": "model_not_found"}}, func(err error) bool { var e *ModelNotFoundError; return errors.As(err, &e) }},
		{http.StatusPaymentRequired, map[string]any{"error": map[string]any{"message": "insufficient quota"}}, func(err error) bool { var e *QuotaExceededError; return errors.As(err, &e) }},
		{http.StatusBadGateway, map[string]any{"message": "upstream"}, func(err error) bool { var e *ServerError; return errors.As(err, &e) }},
	}
	for _, tt := range tests {
		srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			_ = json.NewEncoder(w).Encode(tt.body)
		}))
		c := NewClient("test", srv.URL, 2*time.Second, retryPolicy{maxAttempts: 1, baseDelay: time.Millisecond, maxDelay: time.Millisecond})
		_, err := c.Generate(context.Background(), GenerateRequest{Model: "m", Messages: []Message{{Role: "user", Content: "hi"}}})
		srv.Close()
		if err == nil || !tt.check(err) {
			t.Fatalf("status %d: unexpected error %T %v", tt.status, err, err)
		}
	}
}

func TestGenerateGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":{"message":"busy"}}`)
	}))
	defer srv.Close()

	c := NewClient("test", srv.URL, 2*time.Second, retryPolicy{maxAttempts: 3, baseDelay: time.Millisecond, maxDelay: 5 * time.Millisecond})
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "m", Messages: []Message{{Role: "user", Content: "hi"}}})
	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestGenerateRequiresKeyAndModel(t *testing.T) {
	c := NewClient("", "http://127.0.0.1:1", time.Second, retryPolicy{maxAttempts: 1})
	if _, err := c.Generate(context.Background(), GenerateRequest{Model: "m"}); err == nil {
		t.Fatalf("expected missing key error")
	}
	c = NewClient("k", "http://127.0.0.1:1", time.Second, retryPolicy{maxAttempts: 1})
	if _, err := c.Generate(context.Background(), GenerateRequest{}); err == nil {
		t.Fatalf("expected missing model error")
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d := parseRetryAfter("3"); d != 3*time.Second {
		t.Fatalf("seconds: got %v", d)
	}
	for _, v := range []string{"", "0", "-2", "soon"} {
		if d := parseRetryAfter(v); d != 0 {
			t.Fatalf("parseRetryAfter(%q) = %v, want 0", v, d)
		}
	}
	future := time.Now().Add(10 * time.Second).UTC().Format(http.TimeFormat)
	if d := parseRetryAfter(future); d <= 0 || d > 11*time.Second {
		t.Fatalf("http date: got %v", d)
	}
}

func TestRetryPolicyDelayIsCapped(t *testing.T) {
	p := retryPolicy{maxAttempts: 10, baseDelay: 100 * time.Millisecond, maxDelay: 400 * time.Millisecond}
	for attempt := 1; attempt <= 8; attempt++ {
		if d := p.delay(attempt); d > 480*time.Millisecond {
			t.Fatalf("attempt %d: delay %v exceeds cap with jitter", attempt, d)
		}
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := retryPolicy{maxAttempts: 3, baseDelay: time.Second, maxDelay: time.Second}
	err := p.run(ctx, func() error { return &ServerError{APIError: &APIError{StatusCode: 500}} })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRuntimeRegistry(t *testing.T) {
	got := Providers()
	want := []string{ProviderOllama, ProviderOpenAI, ProviderOpenRouter}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("Providers() = %v, want %v", got, want)
	}
	rt, ok := GetRuntime(ProviderOpenAI, RuntimeConfig{APIKey: "k"})
	if !ok {
		t.Fatalf("openai runtime missing")
	}
	if c, ok := rt.(*Client); !ok || c.baseURL != "https://api.openai.com/v1" {
		t.Fatalf("unexpected openai runtime %#v", rt)
	}
	rt, _ = GetRuntime(ProviderOpenRouter, RuntimeConfig{BaseURL: "http://proxy.local/v1/"})
	if c := rt.(*Client); c.baseURL != "http://proxy.local/v1" {
		t.Fatalf("base url override ignored: %s", c.baseURL)
	}
	if _, ok := GetRuntime("bogus", RuntimeConfig{}); ok {
		t.Fatalf("unexpected runtime for bogus provider")
	}
}

func TestTypedErrorsUnwrapToAPIError(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-Id", "req_auth_1")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "invalid key", "code": "invalid_api_key"}})
	}))
	defer srv.Close()

	c := NewClient("test", srv.URL, 2*time.Second, retryPolicy{maxAttempts: 1, baseDelay: time.Millisecond, maxDelay: time.Millisecond})
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "m", Messages: []Message{{Role: "user", Content: "hi"}}})
	var auth *AuthError
	if !errors.As(err, &auth) {
		t.Fatalf("expected AuthError, got %T %v", err, err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected AuthError to unwrap to APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Code != "invalid_api_key" || apiErr.RequestID != "req_auth_1" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
	if !strings.HasPrefix(err.Error(), "authentication failed: api error: status=401") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestRateLimitErrorMessage(t *testing.T) {
	e := &RateLimitError{APIError: &APIError{StatusCode: 429}, RetryAfter: 1500 * time.Millisecond}
	if !strings.HasPrefix(e.Error(), "rate limited (retry after 2s): api error: status=429") {
		t.Fatalf("unexpected message: %v", e)
	}
	var apiErr *APIError
	if !errors.As(error(e), &apiErr) || apiErr.StatusCode != 429 {
		t.Fatalf("expected unwrap to APIError")
	}
	if got := (&RateLimitError{APIError: &APIError{StatusCode: 429}}).Error(); !strings.HasPrefix(got, "rate limited: ") {
		t.Fatalf("unexpected message: %v", got)
	}
}
