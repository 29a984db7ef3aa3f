package fetch

import (
	"context"
	"net/http"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fortuna/gridiron/internal/logging"
)

// BrowserOptions configures a BrowserFetcher.
type BrowserOptions struct {
	Timeout           time.Duration
	RequestsPerMinute int
	// RenderWait is how long to let scripts run after the body is visible.
	RenderWait time.Duration
	Logger     *zap.Logger
}

// BrowserFetcher loads pages in headless Chrome. It is used for the HTML
// source when plain HTTP requests are blocked. The browser does not expose
// response codes, so failures carry no status.
type BrowserFetcher struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
	wait     time.Duration
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewBrowserFetcher starts a headless Chrome allocator. Call Close when done.
func NewBrowserFetcher(opts BrowserOptions) *BrowserFetcher {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(UserAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	renderWait := opts.RenderWait
	if renderWait <= 0 {
		renderWait = time.Second
	}
	limit := rate.Inf
	if opts.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(opts.RequestsPerMinute) / 60.0)
	}

	return &BrowserFetcher{
		allocCtx: allocCtx,
		cancel:   cancel,
		timeout:  timeout,
		wait:     renderWait,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logging.OrNop(opts.Logger),
	}
}

// Close releases the browser.
func (b *BrowserFetcher) Close() {
	if b.cancel != nil {
		b.cancel()
	}
}

// Fetch navigates to url and returns the rendered document.
func (b *BrowserFetcher) Fetch(ctx context.Context, url string, headers http.Header) (*Payload, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, failure(url, 0, errors.Wrap(err, "rate limit wait"))
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	browserCtx, cancelBrowser := chromedp.NewContext(b.allocCtx)
	defer cancelBrowser()

	// Tie the tab's lifetime to the caller's deadline.
	go func() {
		<-ctx.Done()
		cancelBrowser()
	}()

	extra := network.Headers{}
	for k, vs := range headers {
		// Chrome negotiates its own encoding and user agent.
		if k == "Accept-Encoding" || k == "User-Agent" || len(vs) == 0 {
			continue
		}
		extra[k] = vs[0]
	}

	var html string
	err := chromedp.Run(browserCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(extra),
		chromedp.Navigate(url),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
		chromedp.Sleep(b.wait),
		chromedp.OuterHTML(`html`, &html, chromedp.ByQuery),
	)
	if err != nil {
		b.logger.Debug("browser fetch failed", zap.String("url", url), zap.Error(err))
		return nil, failure(url, 0, errors.Wrap(err, "chromedp"))
	}
	if html == "" {
		return nil, failure(url, 0, errors.New("empty document"))
	}

	return &Payload{
		URL:         url,
		StatusCode:  http.StatusOK,
		ContentType: "text/html",
		Body:        []byte(html),
	}, nil
}
