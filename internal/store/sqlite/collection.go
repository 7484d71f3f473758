package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/MrSnakeDoc/marks/internal/domain"
)

// CollectionStore owns Collection rows. Every query is scoped to an owner.
type CollectionStore struct {
	db *DB
}

// NewCollectionStore creates a CollectionStore on db.
func NewCollectionStore(db *DB) *CollectionStore {
	return &CollectionStore{db: db}
}

type collectionRow struct {
	ID          string `db:"id"`
	UserID      string `db:"user_id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

func (r collectionRow) toDomain() (*domain.Collection, error) {
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	updated, err := parseTime(r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.Collection{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}, nil
}

const selectCollection = `SELECT id, user_id, title, description, created_at, updated_at FROM collections`

// Create stores a new collection for owner.
func (s *CollectionStore) Create(ctx context.Context, owner string, in domain.CollectionInput) (*domain.Collection, error) {
	if err := in.Validate(true); err != nil {
		return nil, err
	}

	c := &domain.Collection{ID: uuid.NewString(), UserID: owner}
	in.Apply(c)
	now := s.db.timestamp()

	_, err := s.db.db.ExecContext(ctx, `
		INSERT INTO collections (id, user_id, title, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ID, c.UserID, c.Title, c.Description, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert collection: %w", err)
	}

	return s.Get(ctx, owner, c.ID)
}

// Get returns the collection id owned by owner, or domain.ErrNotFound.
func (s *CollectionStore) Get(ctx context.Context, owner, id string) (*domain.Collection, error) {
	var row collectionRow
	err := s.db.db.GetContext(ctx, &row, selectCollection+` WHERE id = ? AND user_id = ?`, id, owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	return row.toDomain()
}

// ListByOwner returns every collection of owner, newest first.
func (s *CollectionStore) ListByOwner(ctx context.Context, owner string) ([]*domain.Collection, error) {
	var rows []collectionRow
	err := s.db.db.SelectContext(ctx, &rows, selectCollection+` WHERE user_id = ? ORDER BY created_at DESC, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	collections := make([]*domain.Collection, 0, len(rows))
	for _, r := range rows {
		c, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		collections = append(collections, c)
	}
	return collections, nil
}

// Update applies in to the collection id owned by owner.
// With full set, in must carry every required field (PUT); otherwise it is a partial update (PATCH).
func (s *CollectionStore) Update(ctx context.Context, owner, id string, in domain.CollectionInput, full bool) (*domain.Collection, error) {
	if err := in.Validate(full); err != nil {
		return nil, err
	}

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var row collectionRow
		err := tx.GetContext(ctx, &row, selectCollection+` WHERE id = ? AND user_id = ?`, id, owner)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load collection: %w", err)
		}

		c := &domain.Collection{Title: row.Title, Description: row.Description}
		in.Apply(c)

		_, err = tx.ExecContext(ctx, `
			UPDATE collections SET title = ?, description = ?, updated_at = ?
			WHERE id = ? AND user_id = ?
		`, c.Title, c.Description, s.db.timestamp(), id, owner)
		if err != nil {
			return fmt.Errorf("failed to update collection: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, owner, id)
}

// Delete removes the collection and its membership links. Member bookmarks are kept.
func (s *CollectionStore) Delete(ctx context.Context, owner, id string) error {
	res, err := s.db.db.ExecContext(ctx, `DELETE FROM collections WHERE id = ? AND user_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CheckOwned returns a ValidationError on "collection_ids" unless every id is
// a collection owned by owner.
func (s *CollectionStore) CheckOwned(ctx context.Context, owner string, ids []string) error {
	return checkOwned(ctx, s.db.db, owner, ids)
}

func checkOwned(ctx context.Context, q sqlx.QueryerContext, owner string, ids []string) error {
	if slices.Contains(ids, "") {
		return domain.NewValidationError("collection_ids", "collection ids must not be blank")
	}
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`SELECT COUNT(*) FROM collections WHERE user_id = ? AND id IN (?)`, owner, ids)
	if err != nil {
		return fmt.Errorf("failed to build collection query: %w", err)
	}

	var count int
	if err := sqlx.GetContext(ctx, q, &count, query, args...); err != nil {
		return fmt.Errorf("failed to check collections: %w", err)
	}
	if count != len(ids) {
		return domain.NewValidationError("collection_ids", "one or more collections do not exist")
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
