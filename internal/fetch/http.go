package fetch

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fortuna/gridiron/internal/logging"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// HTTPOptions configures an HTTPFetcher.
type HTTPOptions struct {
	Timeout time.Duration
	// RequestsPerMinute limits requests per host. 0 disables limiting.
	RequestsPerMinute int
	Logger            *zap.Logger
	// Client overrides the underlying client (tests).
	Client *http.Client
}

// HTTPFetcher is a plain net/http fetcher with per-host rate limiting and
// transparent gzip, deflate and brotli decoding.
type HTTPFetcher struct {
	client *http.Client
	rpm    int
	logger *zap.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPFetcher creates a fetcher. A zero timeout defaults to 15s.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPFetcher{
		client:   client,
		rpm:      opts.RequestsPerMinute,
		logger:   logging.OrNop(opts.Logger),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Fetch performs one GET. Non-2xx responses fail with their status code.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, headers http.Header) (*Payload, error) {
	if err := f.wait(ctx, rawURL); err != nil {
		return nil, failure(rawURL, 0, errors.Wrap(err, "rate limit wait"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, failure(rawURL, 0, errors.Wrap(err, "build request"))
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Debug("fetch failed", zap.String("url", rawURL), zap.Error(err))
		return nil, failure(rawURL, 0, errors.Wrap(err, "send request"))
	}
	defer resp.Body.Close()

	// The status decides the failure kind; the body only feeds the message.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, err := decodeBody(resp)
		detail := truncate(body, 200)
		if err != nil {
			detail = "undecodable body: " + err.Error()
		}
		return nil, failure(rawURL, resp.StatusCode, errors.Newf("unexpected status: %s", detail))
	}

	body, err := decodeBody(resp)
	if err != nil {
		return nil, failure(rawURL, 0, errors.Wrap(err, "read response body"))
	}

	f.logger.Debug("fetched",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("took", time.Since(start)),
	)

	return &Payload{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func (f *HTTPFetcher) wait(ctx context.Context, rawURL string) error {
	if f.rpm <= 0 {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	return f.limiter(u.Host).Wait(ctx)
}

func (f *HTTPFetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(float64(f.rpm)/60.0), 1)
		f.limiters[host] = l
	}
	return l
}

// decodeBody reads resp.Body, undoing any Content-Encoding. The transport only
// decompresses on its own when the caller did not set Accept-Encoding.
func decodeBody(resp *http.Response) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return raw, nil
	}

	var r io.Reader
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "", "identity":
		return raw, nil
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, errors.Wrap(err, "gzip")
		}
		defer gz.Close()
		r = gz
	case "deflate":
		// Servers disagree on whether deflate means zlib-wrapped or raw.
		if zr, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
			defer zr.Close()
			r = zr
		} else {
			fr := flate.NewReader(bytes.NewReader(raw))
			defer fr.Close()
			r = fr
		}
	case "br":
		r = brotli.NewReader(bytes.NewReader(raw))
	default:
		return raw, nil
	}
	return io.ReadAll(io.LimitReader(r, maxBodyBytes))
}

func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
