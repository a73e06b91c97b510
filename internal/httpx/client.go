// Package httpx builds the outbound HTTP clients used by the shell.
package httpx

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// NewClient returns a standard *http.Client backed by retryablehttp.
// retryMax of zero issues every request exactly once. Non-2xx responses are
// handed back to the caller instead of being turned into errors.
// base, when non-nil, supplies the underlying transport.
func NewClient(retryMax int, base *http.Client) *http.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = retryMax
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil // suppress default logging
	if base != nil {
		retryClient.HTTPClient = base
	}
	return retryClient.StandardClient()
}
