package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/mavcrawl/pkg/cache"
	"github.com/matzehuels/mavcrawl/pkg/httputil"
)

func TestNewClient(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	headers := map[string]string{"User-Agent": "mavcrawl"}
	client := NewClient(c, "central:", time.Hour, headers)

	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.cache != c {
		t.Error("NewClient() cache not set correctly")
	}
	if client.headers["User-Agent"] != "mavcrawl" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestNewClientNilCache(t *testing.T) {
	client := NewClient(nil, "", 0, nil)
	if _, ok := client.cache.(*cache.NullCache); !ok {
		t.Errorf("cache = %T, want *cache.NullCache", client.cache)
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client := NewClient(nil, "test:", time.Hour, nil)
	client.SetHTTPClient(server.Client())

	var resp response
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want %q", resp.Message, "hello")
	}
}

func TestClientGetWithHeadersOverridesDefaults(t *testing.T) {
	var received string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = r.Header.Get("X-Override")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(nil, "test:", time.Hour, map[string]string{"X-Override": "default"})
	client.SetHTTPClient(server.Client())

	var resp map[string]string
	err := client.GetWithHeaders(context.Background(), server.URL, map[string]string{"X-Override": "overridden"}, &resp)
	if err != nil {
		t.Fatalf("GetWithHeaders() error: %v", err)
	}
	if received != "overridden" {
		t.Errorf("header = %q, want %q", received, "overridden")
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code      int
		wantErr   error
		retryable bool
	}{
		{http.StatusOK, nil, false},
		{http.StatusNotFound, ErrNotFound, false},
		{http.StatusGone, ErrNotFound, false},
		{http.StatusForbidden, ErrNetwork, false},
		{http.StatusTooManyRequests, ErrNetwork, true},
		{http.StatusBadGateway, ErrNetwork, true},
	}
	for _, tt := range tests {
		err := checkStatus(tt.code)
		if tt.wantErr == nil {
			if err != nil {
				t.Errorf("checkStatus(%d) = %v, want nil", tt.code, err)
			}
			continue
		}
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("checkStatus(%d) = %v, want %v", tt.code, err, tt.wantErr)
		}
		var re *httputil.RetryableError
		if got := errors.As(err, &re); got != tt.retryable {
			t.Errorf("checkStatus(%d) retryable = %v, want %v", tt.code, got, tt.retryable)
		}
	}
}

func TestClientGetBytesNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := NewClient(nil, "", 0, nil)
	client.SetHTTPClient(server.Client())

	_, err := client.GetBytes(context.Background(), server.URL+"/missing.pom")
	if !IsNotFound(err) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCachedStoresSuccessOnly(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	client := NewClient(c, "test:", time.Hour, nil)
	ctx := context.Background()

	var calls atomic.Int32
	fetch := func() ([]byte, error) {
		calls.Add(1)
		return []byte("body"), nil
	}
	for range 2 {
		data, err := client.Cached(ctx, "pom", "u", false, fetch)
		if err != nil || string(data) != "body" {
			t.Fatalf("Cached = (%q, %v)", data, err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("fetch calls = %d, want 1", calls.Load())
	}

	if _, err := client.Cached(ctx, "pom", "u", true, fetch); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("refresh did not bypass the cache")
	}

	_, err := client.Cached(ctx, "pom", "missing", false, func() ([]byte, error) { return nil, ErrNotFound })
	if !IsNotFound(err) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, hit, _ := c.Get(ctx, client.keyer.HTTPKey("pom", "missing")); hit {
		t.Error("failure was cached")
	}
}

func TestClientThrottleShared(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(nil, "", 0, nil)
	client.SetHTTPClient(server.Client())
	client.SetThrottle(httputil.NewThrottle(20 * time.Millisecond))

	start := time.Now()
	for range 3 {
		if _, err := client.GetBytes(context.Background(), server.URL); err != nil {
			t.Fatal(err)
		}
	}
	if time.Since(start) < 35*time.Millisecond {
		t.Error("requests were not throttled")
	}
}

func TestClientRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(nil, "", 0, nil)
	client.SetHTTPClient(server.Client())

	_, err := client.GetBytes(context.Background(), server.URL+"/busy")
	var re *httputil.RetryableError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want a RetryableError", err)
	}
	if re.After != 5*time.Second {
		t.Errorf("After = %v, want 5s", re.After)
	}
}
