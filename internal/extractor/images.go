package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/user/counterteams-service/internal/repository"
	"github.com/user/counterteams-service/pkg/metrics"
	"github.com/user/counterteams-service/pkg/utils"
)

// ImageResolver turns raw per-table image sources into cached, content
// addressed image references.
type ImageResolver struct {
	downloader  repository.DownloaderRepository
	store       repository.ImageRepository
	concurrency int
	timeout     time.Duration
	inflight    singleflight.Group
}

// NewImageResolver creates a resolver that downloads at most concurrency
// images at a time, each bounded by timeout.
func NewImageResolver(downloader repository.DownloaderRepository, store repository.ImageRepository, concurrency int, timeout time.Duration) *ImageResolver {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ImageResolver{
		downloader:  downloader,
		store:       store,
		concurrency: concurrency,
		timeout:     timeout,
	}
}

// Resolve maps every image source to a reference, then splits the result:
// the first table's images label the headers and the remaining tables are
// transposed into the body grid. Failed or missing images are nil at their
// position.
func (r *ImageResolver) Resolve(ctx context.Context, base *url.URL, tables [][]string) ([]*string, [][]*string) {
	refs := make([][]*string, len(tables))

	g := new(errgroup.Group)
	g.SetLimit(r.concurrency)
	for t, srcs := range tables {
		refs[t] = make([]*string, len(srcs))
		for i, src := range srcs {
			if src == "" {
				continue
			}
			abs, err := utils.ToAbsoluteURL(base, src)
			if err != nil {
				slog.Warn("Skipping unparseable image source", "src", src, "error", err)
				continue
			}
			g.Go(func() error {
				key := utils.ImageKey(abs)
				if err := r.cache(ctx, abs, key); err != nil {
					slog.Warn("Image unavailable, leaving gap", "url", abs, "key", key, "error", err)
					return nil
				}
				refs[t][i] = &key
				return nil
			})
		}
	}
	_ = g.Wait()

	if len(refs) == 0 {
		return []*string{}, [][]*string{}
	}
	return refs[0], Transpose(refs[1:], nil)
}

// cache makes sure the bytes for key are in the store. Concurrent requests for
// the same key share one download.
func (r *ImageResolver) cache(ctx context.Context, absURL, key string) error {
	_, err, _ := r.inflight.Do(key, func() (any, error) {
		if ok, err := r.store.Exists(ctx, key); err == nil && ok {
			metrics.ImageDownloadsTotal.WithLabelValues("cached").Inc()
			return nil, nil
		}

		dctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		data, contentType, err := r.downloader.Download(dctx, absURL)
		if err != nil {
			metrics.ImageDownloadsTotal.WithLabelValues("failed").Inc()
			return nil, err
		}
		if contentType == "" {
			contentType = mime.TypeByExtension(utils.ImageExt(absURL))
		}
		if err := r.store.Put(ctx, key, data, contentType); err != nil {
			metrics.ImageDownloadsTotal.WithLabelValues("failed").Inc()
			return nil, fmt.Errorf("%w: storing %s: %v", repository.ErrImageDownload, key, err)
		}
		metrics.ImageDownloadsTotal.WithLabelValues("downloaded").Inc()
		return nil, nil
	})
	return err
}
