package chromedp_renderer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/user/counterteams-service/internal/repository"
)

// requestHeaders are sent with every navigation so the page is served as it
// would be to a regular browser.
var requestHeaders = network.Headers{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"Referer":                   "https://google.com",
	"DNT":                       "1",
	"Upgrade-Insecure-Requests": "1",
}

// ChromedpRenderer renders every page in its own tab of one shared headless
// Chrome process. The process is launched on the first Render.
type ChromedpRenderer struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	timeout       time.Duration

	mu      sync.Mutex
	started bool
}

// NewChromedpRenderer creates a renderer whose pages are bounded by pageLoadTimeout.
// proxyServer, when set, routes the whole browser through one proxy.
func NewChromedpRenderer(pageLoadTimeout time.Duration, userAgent, proxyServer string) *ChromedpRenderer {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	if proxyServer != "" {
		opts = append(opts, chromedp.ProxyServer(proxyServer))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		slog.Debug(fmt.Sprintf(format, args...))
	}))

	return &ChromedpRenderer{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		timeout:       pageLoadTimeout,
	}
}

// ensureBrowser launches the shared browser once. Tabs created before it runs
// would each get a browser of their own.
func (c *ChromedpRenderer) ensureBrowser() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}
	if err := chromedp.Run(c.browserCtx); err != nil {
		return err
	}
	c.started = true
	slog.Info("Headless browser started")
	return nil
}

// Render navigates to url and returns the rendered document.
func (c *ChromedpRenderer) Render(ctx context.Context, url string) (string, error) {
	if err := c.ensureBrowser(); err != nil {
		slog.Error("Failed to start browser", "error", err)
		return "", fmt.Errorf("%w: start browser: %v", repository.ErrFetch, err)
	}

	taskCtx, cancel := chromedp.NewContext(c.browserCtx)
	defer cancel()

	// Propagate caller cancellation into the browser tab.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, c.timeout)
	defer cancelTimeout()

	var document string
	startTime := time.Now()
	err := chromedp.Run(taskCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(requestHeaders),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &document, chromedp.ByQuery),
	)
	if err != nil {
		slog.Error("Failed to render page", "url", url, "error", err)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(taskCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s after %s", repository.ErrFetchTimeout, url, c.timeout)
		}
		return "", fmt.Errorf("%w: %s: %v", repository.ErrFetch, url, err)
	}

	slog.Info("Rendered page", "url", url, "bytes", len(document), "duration_ms", time.Since(startTime).Milliseconds())
	return document, nil
}

// Close shuts the browser down.
func (c *ChromedpRenderer) Close() {
	c.browserCancel()
	c.allocCancel()
}
