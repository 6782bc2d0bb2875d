package usecase

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/user/counterteams-service/internal/entity"
	"github.com/user/counterteams-service/internal/repository"
)

var (
	ErrUnknownBoss     = errors.New("unknown boss")
	ErrInvalidImageKey = errors.New("invalid image key")
)

var imageKeyPattern = regexp.MustCompile(`^[0-9a-f]{8}\.[a-z0-9]+$`)

// TeamManager is the read and trigger surface exposed to the delivery layer.
type TeamManager interface {
	Bosses() []entity.Boss
	GetEntry(ctx context.Context, bossID string) (entity.Entry, error)
	GetStatus(ctx context.Context) entity.StatusReport
	RefreshNow(ctx context.Context, force bool) (entity.RefreshSummary, error)
	ResolveImage(ctx context.Context, key string) (entity.ImageLocation, error)
}

// TeamService serves stored entries. It never extracts on a read; only
// RefreshNow runs the refresher.
type TeamService struct {
	bosses          []entity.Boss
	store           repository.CollectionRepository
	images          repository.ImageRepository
	refresher       *Refresher
	publicImageBase string
	now             func() time.Time

	// cache holds the last loaded collection under a single key. Nil when
	// read caching is off.
	cache *expirable.LRU[string, entity.Collection]
}

const collectionCacheKey = "collection"

// NewTeamService creates a TeamService. When publicImageBase is set, images are
// resolved to redirects under it instead of being read from the byte store.
func NewTeamService(
	bosses []entity.Boss,
	store repository.CollectionRepository,
	images repository.ImageRepository,
	refresher *Refresher,
	publicImageBase string,
	now func() time.Time,
) *TeamService {
	if now == nil {
		now = time.Now
	}
	return &TeamService{
		bosses:          bosses,
		store:           store,
		images:          images,
		refresher:       refresher,
		publicImageBase: strings.TrimRight(publicImageBase, "/"),
		now:             now,
	}
}

// WithReadCache keeps a loaded collection for ttl so reads do not hit the
// store on every request. A ttl of zero or less disables caching.
func (s *TeamService) WithReadCache(ttl time.Duration) *TeamService {
	if ttl > 0 {
		s.cache = expirable.NewLRU[string, entity.Collection](1, nil, ttl)
	}
	return s
}

func (s *TeamService) Bosses() []entity.Boss {
	return s.bosses
}

// GetEntry returns the stored entry for bossID, or an empty one if the boss has
// never been populated.
func (s *TeamService) GetEntry(ctx context.Context, bossID string) (entity.Entry, error) {
	if _, ok := entity.FindBoss(s.bosses, bossID); !ok {
		return entity.Entry{}, ErrUnknownBoss
	}
	if entry, ok := s.load(ctx)[bossID]; ok {
		return entry.Normalize(), nil
	}
	return entity.EmptyEntry(), nil
}

func (s *TeamService) GetStatus(ctx context.Context) entity.StatusReport {
	collection := s.load(ctx)
	now := s.now()

	report := entity.StatusReport{
		LastUpdated: make(map[string]string, len(s.bosses)),
		IsUpdateDay: IsUpdateDay(now),
	}
	for _, boss := range s.bosses {
		entry, ok := collection[boss.ID]
		if ok && entry.LastUpdated != "" {
			report.LastUpdated[boss.ID] = entry.LastUpdated
		} else {
			report.LastUpdated[boss.ID] = entity.NeverUpdated
		}

		var existing *entity.Entry
		if ok {
			existing = &entry
		}
		if dataStale(now, existing) {
			report.DataMissing = true
		}
	}
	return report
}

// RefreshNow runs the refresher synchronously and drops any cached collection.
func (s *TeamService) RefreshNow(ctx context.Context, force bool) (entity.RefreshSummary, error) {
	summary, err := s.refresher.Run(ctx, force)
	if s.cache != nil && summary.Persisted {
		s.cache.Purge()
	}
	return summary, err
}

// ResolveImage locates the cached bytes for a content-addressed key.
func (s *TeamService) ResolveImage(ctx context.Context, key string) (entity.ImageLocation, error) {
	if !imageKeyPattern.MatchString(key) {
		return entity.ImageLocation{}, ErrInvalidImageKey
	}
	if s.publicImageBase != "" {
		return entity.ImageLocation{RedirectURL: s.publicImageBase + "/" + key}, nil
	}
	data, contentType, err := s.images.Get(ctx, key)
	if err != nil {
		return entity.ImageLocation{}, err
	}
	return entity.ImageLocation{Data: data, ContentType: contentType}, nil
}

// load never fails: an unreadable store is served as an empty collection.
func (s *TeamService) load(ctx context.Context) entity.Collection {
	if s.cache != nil {
		if cached, ok := s.cache.Get(collectionCacheKey); ok {
			return cached
		}
	}
	collection, err := s.store.Load(ctx)
	if err != nil {
		slog.Warn("Failed to load collection, serving empty", "error", err)
		return entity.Collection{}
	}
	if s.cache != nil {
		s.cache.Add(collectionCacheKey, collection)
	}
	return collection
}
