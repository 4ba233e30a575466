package integrations

import (
	"errors"
	"net/http"
	"time"

	"github.com/matzehuels/modsync/pkg/buildinfo"
)

const httpTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when the remote page or file does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with the default request timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// DefaultUserAgent identifies modsync to remote hosts.
func DefaultUserAgent() string {
	return "modsync/" + buildinfo.Version
}
