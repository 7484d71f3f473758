package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/MrSnakeDoc/marks/internal/domain"
)

// BookmarkStore owns Bookmark rows and their collection memberships.
type BookmarkStore struct {
	db *DB
}

// NewBookmarkStore creates a BookmarkStore on db.
func NewBookmarkStore(db *DB) *BookmarkStore {
	return &BookmarkStore{db: db}
}

type bookmarkRow struct {
	ID            string `db:"id"`
	UserID        string `db:"user_id"`
	URL           string `db:"url"`
	Title         string `db:"title"`
	Description   string `db:"description"`
	BookmarkType  string `db:"bookmark_type"`
	PreviewImage  string `db:"preview_image"`
	CreatedAt     string `db:"created_at"`
	UpdatedAt     string `db:"updated_at"`
	CollectionIDs string `db:"collection_ids"`
}

func (r bookmarkRow) toDomain() (*domain.Bookmark, error) {
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	updated, err := parseTime(r.UpdatedAt)
	if err != nil {
		return nil, err
	}

	ids := []string{}
	if r.CollectionIDs != "" {
		ids = strings.Split(r.CollectionIDs, ",")
		sort.Strings(ids)
	}

	bt := domain.BookmarkType(r.BookmarkType)
	if !bt.Valid() {
		bt = domain.TypeWebsite
	}

	return &domain.Bookmark{
		ID:            r.ID,
		UserID:        r.UserID,
		URL:           r.URL,
		Title:         r.Title,
		Description:   r.Description,
		BookmarkType:  bt,
		PreviewImage:  r.PreviewImage,
		CreatedAt:     created,
		UpdatedAt:     updated,
		CollectionIDs: ids,
	}, nil
}

const selectBookmark = `
	SELECT b.id, b.user_id, b.url, b.title, b.description, b.bookmark_type, b.preview_image,
		b.created_at, b.updated_at,
		(SELECT COALESCE(GROUP_CONCAT(bc.collection_id, ','), '')
			FROM bookmark_collections bc WHERE bc.bookmark_id = b.id) AS collection_ids
	FROM bookmarks b`

// Get returns the bookmark id owned by owner, or domain.ErrNotFound.
func (s *BookmarkStore) Get(ctx context.Context, owner, id string) (*domain.Bookmark, error) {
	return getBookmark(ctx, s.db.db, owner, id)
}

func getBookmark(ctx context.Context, q sqlx.QueryerContext, owner, id string) (*domain.Bookmark, error) {
	var row bookmarkRow
	err := sqlx.GetContext(ctx, q, &row, selectBookmark+` WHERE b.id = ? AND b.user_id = ?`, id, owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}
	return row.toDomain()
}

// ListByOwner returns every bookmark of owner, newest first.
func (s *BookmarkStore) ListByOwner(ctx context.Context, owner string) ([]*domain.Bookmark, error) {
	return s.list(ctx, selectBookmark+` WHERE b.user_id = ? ORDER BY b.created_at DESC, b.id`, owner)
}

// ListByCollection returns the bookmarks of owner that belong to collectionID.
// A collection that owner does not own yields domain.ErrNotFound.
func (s *BookmarkStore) ListByCollection(ctx context.Context, owner, collectionID string) ([]*domain.Bookmark, error) {
	var exists int
	err := s.db.db.GetContext(ctx, &exists,
		`SELECT COUNT(*) FROM collections WHERE id = ? AND user_id = ?`, collectionID, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to look up collection: %w", err)
	}
	if exists == 0 {
		return nil, domain.ErrNotFound
	}

	return s.list(ctx, selectBookmark+`
		JOIN bookmark_collections m ON m.bookmark_id = b.id
		WHERE m.collection_id = ? AND b.user_id = ?
		ORDER BY b.created_at DESC, b.id`, collectionID, owner)
}

func (s *BookmarkStore) list(ctx context.Context, query string, args ...any) ([]*domain.Bookmark, error) {
	var rows []bookmarkRow
	if err := s.db.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}

	bookmarks := make([]*domain.Bookmark, 0, len(rows))
	for _, r := range rows {
		b, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, nil
}

// Save inserts b when it has no ID and updates it otherwise.
// When collectionIDs is non-nil the memberships are replaced by it in the same
// transaction; nil leaves them untouched. Every collection must belong to b's owner.
// The stored bookmark is returned.
func (s *BookmarkStore) Save(ctx context.Context, b *domain.Bookmark, collectionIDs *[]string) (*domain.Bookmark, error) {
	var saved *domain.Bookmark

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		now := s.db.timestamp()

		if b.ID == "" {
			id := uuid.NewString()
			_, err := tx.ExecContext(ctx, `
				INSERT INTO bookmarks (id, user_id, url, title, description, bookmark_type, preview_image, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, id, b.UserID, b.URL, b.Title, b.Description, string(b.BookmarkType), b.PreviewImage, now, now)
			if err != nil {
				return fmt.Errorf("failed to insert bookmark: %w", err)
			}
			b.ID = id
		} else {
			res, err := tx.ExecContext(ctx, `
				UPDATE bookmarks
				SET url = ?, title = ?, description = ?, bookmark_type = ?, preview_image = ?, updated_at = ?
				WHERE id = ? AND user_id = ?
			`, b.URL, b.Title, b.Description, string(b.BookmarkType), b.PreviewImage, now, b.ID, b.UserID)
			if err != nil {
				return fmt.Errorf("failed to update bookmark: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to update bookmark: %w", err)
			}
			if n == 0 {
				return domain.ErrNotFound
			}
		}

		if collectionIDs != nil {
			if err := replaceMemberships(ctx, tx, b.UserID, b.ID, *collectionIDs); err != nil {
				return err
			}
		}

		var err error
		saved, err = getBookmark(ctx, tx, b.UserID, b.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func replaceMemberships(ctx context.Context, tx *sqlx.Tx, owner, bookmarkID string, ids []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM bookmark_collections WHERE bookmark_id = ?`, bookmarkID); err != nil {
		return fmt.Errorf("failed to clear collections: %w", err)
	}

	for _, cid := range dedupe(ids) {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO bookmark_collections (bookmark_id, collection_id)
			SELECT ?, id FROM collections WHERE id = ? AND user_id = ?
		`, bookmarkID, cid, owner)
		if err != nil {
			return fmt.Errorf("failed to link collection: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to link collection: %w", err)
		}
		if n == 0 {
			return domain.NewValidationError("collection_ids", "one or more collections do not exist")
		}
	}
	return nil
}

// Delete removes the bookmark and its memberships.
func (s *BookmarkStore) Delete(ctx context.Context, owner, id string) error {
	res, err := s.db.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ? AND user_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
