// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by outbound calls that do not set their own timeout.
var HTTPClient = &http.Client{
	Timeout: 60 * time.Second,
}

// NewHTTPClient returns a client with the given timeout, falling back to
// HTTPClient's when timeout is not positive.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		return HTTPClient
	}
	return &http.Client{Timeout: timeout}
}
