// Package ingest turns a submitted URL into a stored, metadata-enriched bookmark.
package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/lock"
	"github.com/MrSnakeDoc/marks/internal/logger"
	"github.com/MrSnakeDoc/marks/internal/metadata"
)

// Fetcher downloads a page body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Store is the persistence the service needs.
type Store interface {
	Get(ctx context.Context, owner, id string) (*domain.Bookmark, error)
	Save(ctx context.Context, b *domain.Bookmark, collectionIDs *[]string) (*domain.Bookmark, error)
}

// CollectionChecker validates collection ownership.
type CollectionChecker interface {
	CheckOwned(ctx context.Context, owner string, ids []string) error
}

// Request is the user input for a create or update.
// A nil CollectionIDs leaves memberships unchanged; an empty one clears them.
// KeepURL makes an update re-fetch the stored URL, read under the bookmark
// lock; URL is ignored then. Creates always need a URL.
type Request struct {
	Owner         string
	URL           string
	KeepURL       bool
	CollectionIDs *[]string
}

// Service runs the fetch, extract, classify and persist pipeline.
type Service struct {
	fetcher     Fetcher
	store       Store
	collections CollectionChecker
	locker      lock.Locker
	logger      logger.Logger
	extract     func([]byte) domain.ExtractedMetadata
}

// NewService wires the pipeline.
func NewService(f Fetcher, s Store, c CollectionChecker, l lock.Locker, log logger.Logger) *Service {
	return &Service{
		fetcher:     f,
		store:       s,
		collections: c,
		locker:      l,
		logger:      log,
		extract:     metadata.Extract,
	}
}

// Create validates req, fetches the page and stores a new bookmark.
// A failed fetch still stores the bookmark with default metadata.
func (s *Service) Create(ctx context.Context, req Request) (*domain.Bookmark, error) {
	return s.ingest(ctx, req, "")
}

// Update re-fetches the page for bookmark id and stores the result, even when
// the URL did not change. A failed fetch keeps the previous metadata.
func (s *Service) Update(ctx context.Context, id string, req Request) (*domain.Bookmark, error) {
	if id == "" {
		return nil, domain.ErrNotFound
	}
	return s.ingest(ctx, req, id)
}

func (s *Service) ingest(ctx context.Context, req Request, existingID string) (*domain.Bookmark, error) {
	keepURL := req.KeepURL && existingID != ""

	var url string
	if !keepURL {
		var err error
		if url, err = domain.NormalizeURL(req.URL); err != nil {
			return nil, err
		}
	}

	if req.CollectionIDs != nil {
		if err := s.collections.CheckOwned(ctx, req.Owner, *req.CollectionIDs); err != nil {
			return nil, err
		}
	}

	var b *domain.Bookmark
	if existingID == "" {
		b = domain.NewBookmark(req.Owner, url)
	} else {
		release, err := s.locker.Acquire(ctx, lock.BookmarkKey(existingID))
		if err != nil {
			return nil, err
		}
		defer release()

		b, err = s.store.Get(ctx, req.Owner, existingID)
		if err != nil {
			return nil, err
		}
		if keepURL {
			url = b.URL
		}
	}

	s.enrich(ctx, b, url)
	b.URL = url

	return s.store.Save(ctx, b, req.CollectionIDs)
}

// enrich overwrites b's derived fields from the page at url.
// Fetch failures are logged and leave b untouched.
func (s *Service) enrich(ctx context.Context, b *domain.Bookmark, url string) {
	start := time.Now()
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		fields := []logger.Field{
			logger.String("url", url),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err),
		}
		if b.ID != "" {
			fields = append(fields, logger.String("bookmark_id", b.ID))
		}
		if !errors.Is(err, metadata.ErrFetchFailed) {
			fields = append(fields, logger.Bool("unexpected", true))
		}
		s.logger.Warn("metadata fetch failed, keeping current fields", fields...)
		return
	}

	md := s.extract(body)
	b.ApplyMetadata(md)

	s.logger.Debug("metadata extracted",
		logger.String("url", url),
		logger.String("bookmark_type", string(b.BookmarkType)),
		logger.Duration("elapsed", time.Since(start)))
}
