// Package fetch retrieves raw payloads (HTML pages and JSON documents) from
// the upstream sources. Every failure is reported as a *FetchFailure; callers
// decide whether to retry with IsRetryable.
package fetch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Payload is a successfully fetched response body.
type Payload struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Text returns the body as a string.
func (p *Payload) Text() string {
	if p == nil {
		return ""
	}
	return string(p.Body)
}

// Fetcher retrieves the payload at url. Implementations never retry.
type Fetcher interface {
	Fetch(ctx context.Context, url string, headers http.Header) (*Payload, error)
}

// FetchFailure describes why a fetch did not produce a payload.
// StatusCode is 0 for network-level failures (DNS, timeout, reset).
type FetchFailure struct {
	URL        string
	StatusCode int
	Err        error
}

func (f *FetchFailure) Error() string {
	if f.StatusCode == 0 {
		return fmt.Sprintf("fetch %s: network failure: %v", f.URL, f.Err)
	}
	return fmt.Sprintf("fetch %s: status %d: %v", f.URL, f.StatusCode, f.Err)
}

func (f *FetchFailure) Unwrap() error { return f.Err }

// Network reports whether the failure happened below HTTP.
func (f *FetchFailure) Network() bool { return f.StatusCode == 0 }

// AsFailure extracts the *FetchFailure from err's chain.
func AsFailure(err error) (*FetchFailure, bool) {
	var ff *FetchFailure
	if errors.As(err, &ff) {
		return ff, true
	}
	return nil, false
}

// IsRetryable reports whether err is worth another attempt: network failures,
// 429 and 5xx are; other statuses and caller cancellation are not.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	ff, ok := AsFailure(err)
	if !ok {
		return false
	}
	if ff.Network() {
		return true
	}
	return ff.StatusCode == http.StatusTooManyRequests || ff.StatusCode >= http.StatusInternalServerError
}

func failure(url string, status int, err error) *FetchFailure {
	return &FetchFailure{URL: url, StatusCode: status, Err: err}
}
