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

	"github.com/matzehuels/modsync/pkg/cache"
	"github.com/matzehuels/modsync/pkg/httputil"
)

func TestNewClient(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	headers := map[string]string{"User-Agent": "modsync/test"}
	client := NewClient(c, "test:", time.Hour, headers)

	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if err := client.cache.Set(context.Background(), "mod", []byte("{}"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(context.Background(), "test:mod"); !hit {
		t.Error("NewClient() cache keys are not namespaced by prefix")
	}
	if client.headers["User-Agent"] != "modsync/test" {
		t.Error("NewClient() headers not set correctly")
	}
	if client.attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retries by default)", client.attempts)
	}
}

func TestNewClientOptions(t *testing.T) {
	client := NewClient(nil, "", 0, nil, WithTimeout(5*time.Second), WithRetries(2))
	if client.http.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v", client.http.Timeout)
	}
	if client.attempts != 3 {
		t.Errorf("attempts = %d, want 3", client.attempts)
	}
	if client.cache == nil {
		t.Error("nil cache should be replaced by a null cache")
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

	client := NewClient(nil, "test:", time.Hour, nil, WithHTTPClient(server.Client()))

	var resp response
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want %q", resp.Message, "hello")
	}
}

func TestClientSendsHeaders(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	client := NewClient(nil, "", 0, map[string]string{"User-Agent": "modsync/1.0"})
	if _, err := client.GetText(context.Background(), server.URL); err != nil {
		t.Fatal(err)
	}
	if got != "modsync/1.0" {
		t.Errorf("User-Agent = %q", got)
	}
}

func TestClientGetBytes(t *testing.T) {
	payload := []byte{0x50, 0x4b, 0x03, 0x04, 0x00}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	data, err := NewClient(nil, "", 0, nil).GetBytes(context.Background(), server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(payload) {
		t.Errorf("GetBytes() = %v", data)
	}
}

func TestClientGet404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewClient(nil, "", 0, nil).GetText(context.Background(), server.URL)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestClientNoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(nil, "", 0, nil).GetText(context.Background(), server.URL)
	if !errors.Is(err, ErrNetwork) || !httputil.IsRetryable(err) {
		t.Errorf("error = %v, want retryable ErrNetwork", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestClientRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(nil, "", 0, nil, WithRetries(1))
	text, err := client.GetText(context.Background(), server.URL)
	if err != nil || text != "ok" {
		t.Fatalf("GetText() = %q, %v", text, err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestClientCached(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	client := NewClient(c, "page:", time.Hour, nil)

	type listing struct {
		Title string `json:"title"`
	}
	fetchCount := 0
	fetch := func(v *listing) func() error {
		return func() error {
			fetchCount++
			v.Title = "Fetched"
			return nil
		}
	}

	var first listing
	if err := client.Cached(context.Background(), "mod", false, &first, fetch(&first)); err != nil {
		t.Fatal(err)
	}
	var second listing
	if err := client.Cached(context.Background(), "mod", false, &second, fetch(&second)); err != nil {
		t.Fatal(err)
	}
	if fetchCount != 1 {
		t.Errorf("fetch count = %d, want 1", fetchCount)
	}
	if second.Title != "Fetched" {
		t.Errorf("cached value = %+v", second)
	}

	var third listing
	if err := client.Cached(context.Background(), "mod", true, &third, fetch(&third)); err != nil {
		t.Fatal(err)
	}
	if fetchCount != 2 {
		t.Errorf("refresh should bypass the cache, fetch count = %d", fetchCount)
	}
}

func TestClientCachedFetchError(t *testing.T) {
	client := NewClient(nil, "test:", time.Hour, nil)
	var value string
	err := client.Cached(context.Background(), "k", false, &value, func() error { return ErrNotFound })
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Cached() error = %v", err)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		wantErr   bool
		wantType  error
		retryable bool
	}{
		{name: "200 OK", code: 200},
		{name: "204 No Content", code: 204},
		{name: "404 Not Found", code: 404, wantErr: true, wantType: ErrNotFound},
		{name: "500", code: 500, wantErr: true, wantType: ErrNetwork, retryable: true},
		{name: "503", code: 503, wantErr: true, wantType: ErrNetwork, retryable: true},
		{name: "403 Forbidden", code: 403, wantErr: true, wantType: ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStatus(tt.code)
			if (err != nil) != tt.wantErr {
				t.Fatalf("checkStatus(%d) = %v", tt.code, err)
			}
			if tt.wantType != nil && !errors.Is(err, tt.wantType) {
				t.Errorf("checkStatus() error = %v, want %v", err, tt.wantType)
			}
			if httputil.IsRetryable(err) != tt.retryable {
				t.Errorf("retryable = %v, want %v", httputil.IsRetryable(err), tt.retryable)
			}
		})
	}
}

func TestNewHTTPClient(t *testing.T) {
	if client := NewHTTPClient(); client.Timeout != httpTimeout {
		t.Errorf("Timeout = %v, want %v", client.Timeout, httpTimeout)
	}
}

func TestClientPostJSON(t *testing.T) {
	var got map[string]string
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		contentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	err := NewClient(nil, "", 0, nil).PostJSON(context.Background(), server.URL, map[string]string{"content": "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if got["content"] != "hi" || contentType != "application/json" {
		t.Errorf("body = %v, content type = %q", got, contentType)
	}
}
