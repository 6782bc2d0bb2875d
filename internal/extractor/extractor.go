package extractor

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/user/counterteams-service/internal/entity"
	"github.com/user/counterteams-service/internal/repository"
)

// Extractor builds an entry from one rendered counters page.
type Extractor struct {
	images *ImageResolver
	now    func() time.Time
}

// New creates an Extractor. images may be nil, in which case entries carry no
// image references. now defaults to time.Now.
func New(images *ImageResolver, now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{images: images, now: now}
}

// Extract parses the document and reshapes it into an entry for boss. It fails
// with repository.ErrExtraction unless the result has both headers and rows.
func (e *Extractor) Extract(ctx context.Context, boss entity.Boss, document string) (*entity.Entry, error) {
	f, err := ParseFragments(document)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", repository.ErrExtraction, boss.ID, err)
	}
	if len(f.Headings) == 0 {
		return nil, fmt.Errorf("%w: no h2 headings for %s", repository.ErrExtraction, boss.ID)
	}
	if len(f.Bodies) == 0 {
		return nil, fmt.Errorf("%w: no table bodies for %s", repository.ErrExtraction, boss.ID)
	}

	base, err := url.Parse(boss.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: bad page url for %s: %v", repository.ErrExtraction, boss.ID, err)
	}

	entry := entity.Entry{
		Title:   pageTitle(f, boss),
		URL:     boss.URL,
		Headers: SliceHeaders(f.Headings, boss),
		Rows:    BuildRows(skipLeading(f.Bodies, boss.BodySkip)),
	}
	// The bounds and body skip can leave nothing behind even when the raw
	// fragments exist; an incomplete entry must never replace a stored one.
	if len(entry.Headers) == 0 {
		return nil, fmt.Errorf("%w: no headings left after slicing for %s", repository.ErrExtraction, boss.ID)
	}
	if len(entry.Rows) == 0 {
		return nil, fmt.Errorf("%w: no counter rows left after skipping for %s", repository.ErrExtraction, boss.ID)
	}
	if e.images != nil {
		entry.HeaderImages, entry.BodyImages = e.images.Resolve(ctx, base, f.TableImages)
	}
	entry.LastUpdated = entity.FormatTimestamp(e.now())

	entry = entry.Normalize()
	return &entry, nil
}

func pageTitle(f *Fragments, boss entity.Boss) string {
	if len(f.Titles) > 0 && f.Titles[0] != "" {
		return f.Titles[0]
	}
	return DefaultTitle(boss.ID)
}

// DefaultTitle is used when a page has no h1.
func DefaultTitle(bossID string) string {
	return cases.Title(language.English).String(bossID) + " Counters"
}
