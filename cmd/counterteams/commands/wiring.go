package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/redis/go-redis/v9"

	"github.com/user/counterteams-service/internal/adapter/chromedp_renderer"
	"github.com/user/counterteams-service/internal/adapter/filesystem"
	nats_adapter "github.com/user/counterteams-service/internal/adapter/nats"
	"github.com/user/counterteams-service/internal/adapter/postgres"
	redis_adapter "github.com/user/counterteams-service/internal/adapter/redis"
	"github.com/user/counterteams-service/internal/adapter/resty_downloader"
	"github.com/user/counterteams-service/internal/entity"
	"github.com/user/counterteams-service/internal/extractor"
	"github.com/user/counterteams-service/internal/repository"
	"github.com/user/counterteams-service/internal/usecase"
	"github.com/user/counterteams-service/pkg/config"
	"github.com/user/counterteams-service/pkg/proxy"
)

// app holds everything a command needs. close releases backend connections
// in reverse order of acquisition.
type app struct {
	bosses    []entity.Boss
	store     repository.CollectionRepository
	images    repository.ImageRepository
	checks    map[string]repository.Pinger
	refresher *usecase.Refresher
	teams     *usecase.TeamService

	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// connections lazily opens each external client at most once.
type connections struct {
	cfg    *config.Config
	app    *app
	rdb    *redis.Client
	dbpool *pgxpool.Pool
	js     jetstream.JetStream
}

func (c *connections) redis(ctx context.Context) (*redis.Client, error) {
	if c.rdb != nil {
		return c.rdb, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     c.cfg.RedisAddr,
		Password: c.cfg.RedisPassword,
		DB:       c.cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	slog.Info("Redis connection established")
	c.app.closers = append(c.app.closers, func() { rdb.Close() })
	c.rdb = rdb
	return rdb, nil
}

func (c *connections) postgres(ctx context.Context) (*pgxpool.Pool, error) {
	if c.dbpool != nil {
		return c.dbpool, nil
	}
	dbpool, err := pgxpool.New(ctx, c.cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	slog.Info("PostgreSQL connection pool established")
	c.app.closers = append(c.app.closers, dbpool.Close)
	c.dbpool = dbpool
	return dbpool, nil
}

func (c *connections) jetstream() (jetstream.JetStream, error) {
	if c.js != nil {
		return c.js, nil
	}
	nc, err := nats.Connect(c.cfg.NATSURL, nats.Name("counterteams"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}
	slog.Info("NATS connection established", "url", nc.ConnectedUrl())
	c.app.closers = append(c.app.closers, nc.Close)
	c.js = js
	return js, nil
}

func (c *connections) collectionStore(ctx context.Context) (repository.CollectionRepository, repository.Pinger, error) {
	switch c.cfg.CacheBackend {
	case "file":
		repo := filesystem.NewCollectionRepo(c.cfg.DataFile)
		return repo, repo, nil
	case "redis":
		rdb, err := c.redis(ctx)
		if err != nil {
			return nil, nil, err
		}
		repo := redis_adapter.NewCollectionRepo(rdb)
		return repo, repo, nil
	case "postgres":
		dbpool, err := c.postgres(ctx)
		if err != nil {
			return nil, nil, err
		}
		repo := postgres.NewCollectionRepo(dbpool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, nil, fmt.Errorf("ensure postgres schema: %w", err)
		}
		return repo, repo, nil
	case "nats":
		js, err := c.jetstream()
		if err != nil {
			return nil, nil, err
		}
		repo, err := nats_adapter.NewCollectionRepo(ctx, js, c.cfg.NATSKVBucket)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo, nil
	default:
		return nil, nil, fmt.Errorf("unknown CACHE_BACKEND %q", c.cfg.CacheBackend)
	}
}

func (c *connections) imageStore(ctx context.Context) (repository.ImageRepository, error) {
	switch c.cfg.ImageBackend {
	case "file":
		return filesystem.NewImageRepo(c.cfg.ImageDir)
	case "redis":
		rdb, err := c.redis(ctx)
		if err != nil {
			return nil, err
		}
		return redis_adapter.NewImageRepo(rdb), nil
	case "nats":
		js, err := c.jetstream()
		if err != nil {
			return nil, err
		}
		return nats_adapter.NewImageRepo(ctx, js, c.cfg.NATSObjectBucket)
	default:
		return nil, fmt.Errorf("unknown IMAGE_BACKEND %q", c.cfg.ImageBackend)
	}
}

// newApp wires the backends selected by cfg into the use cases.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{
		bosses: entity.DefaultBosses(),
		checks: make(map[string]repository.Pinger),
	}
	conns := &connections{cfg: cfg, app: a}

	store, pinger, err := conns.collectionStore(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	a.store = store
	a.checks[cfg.CacheBackend] = pinger

	images, err := conns.imageStore(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	a.images = images

	proxies, err := proxy.NewRotator(cfg.ProxyURLs)
	if err != nil {
		a.close()
		return nil, err
	}
	// Chrome takes one proxy per browser process; image downloads rotate.
	var browserProxy string
	var downloadProxy func(*http.Request) (*url.URL, error)
	if proxies.Len() > 0 {
		browserProxy = proxies.Next().String()
		downloadProxy = proxies.ProxyFunc
	}

	renderer := chromedp_renderer.NewChromedpRenderer(cfg.PageLoadTimeout(), cfg.UserAgent, browserProxy)
	a.closers = append(a.closers, renderer.Close)

	downloader := resty_downloader.NewRestyDownloader(resty_downloader.Options{
		Timeout:       cfg.ImageTimeout(),
		UserAgent:     cfg.UserAgent,
		RatePerSecond: cfg.ImageRatePerSecond,
		Proxy:         downloadProxy,
	})
	resolver := extractor.NewImageResolver(downloader, images, cfg.ImageConcurrency, cfg.ImageTimeout())
	ext := extractor.New(resolver, nil)

	a.refresher = usecase.NewRefresher(a.bosses, renderer, ext, store, nil)
	a.teams = usecase.NewTeamService(a.bosses, store, images, a.refresher, cfg.ImagePublicBaseURL, nil).
		WithReadCache(cfg.ReadCacheTTL())

	slog.Info("Application wired",
		"cache_backend", cfg.CacheBackend,
		"image_backend", cfg.ImageBackend,
		"bosses", len(a.bosses),
	)
	return a, nil
}
