package resty_downloader

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/user/counterteams-service/internal/repository"
)

// Options configures a RestyDownloader.
type Options struct {
	// Timeout is an upper bound per request; callers may pass a shorter
	// deadline through the context.
	Timeout   time.Duration
	UserAgent string
	// RatePerSecond caps outbound requests. Zero means unlimited.
	RatePerSecond float64
	// Proxy selects the outbound proxy per request. Nil goes direct.
	Proxy func(*http.Request) (*url.URL, error)
}

// RestyDownloader fetches image bytes over HTTP.
type RestyDownloader struct {
	client *resty.Client
}

func NewRestyDownloader(opts Options) *RestyDownloader {
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(1).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "image/avif,image/webp,image/png,image/*;q=0.8,*/*;q=0.5")

	if opts.Proxy != nil {
		client.SetTransport(&http.Transport{Proxy: opts.Proxy})
	}
	if opts.RatePerSecond > 0 {
		burst := int(opts.RatePerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter := rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}
	return &RestyDownloader{client: client}
}

func (d *RestyDownloader) Download(ctx context.Context, url string) ([]byte, string, error) {
	resp, err := d.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", repository.ErrImageDownload, url, err)
	}
	if resp.IsError() {
		return nil, "", fmt.Errorf("%w: %s: status %d", repository.ErrImageDownload, url, resp.StatusCode())
	}
	body := resp.Body()
	if len(body) == 0 {
		return nil, "", fmt.Errorf("%w: %s: empty body", repository.ErrImageDownload, url)
	}
	return body, resp.Header().Get("Content-Type"), nil
}
