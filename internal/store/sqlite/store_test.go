package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/logger"
)

// newTestDB opens an in-memory database whose clock advances one second per call.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(context.Background(), MemoryPath, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	db.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return db
}

func ptr[T any](v T) *T { return &v }

func mustCollection(t *testing.T, s *CollectionStore, owner, title string) *domain.Collection {
	t.Helper()
	c, err := s.Create(context.Background(), owner, domain.CollectionInput{Title: ptr(title)})
	require.NoError(t, err)
	return c
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marks.db")

	db, err := Open(context.Background(), path, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Ping(context.Background()))
	assert.Equal(t, path, db.Path())
	require.NoError(t, db.Close())

	// Reopening an existing file keeps the schema.
	db, err = Open(context.Background(), path, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestBookmarkStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	bookmarks := NewBookmarkStore(db)
	collections := NewCollectionStore(db)

	c1 := mustCollection(t, collections, "alice", "Reading")
	c2 := mustCollection(t, collections, "alice", "Music")

	b := domain.NewBookmark("alice", "https://example.com/a")
	b.Title = "A"
	b.BookmarkType = domain.TypeArticle

	saved, err := bookmarks.Save(ctx, b, &[]string{c2.ID, c1.ID, c1.ID})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	assert.Equal(t, "A", saved.Title)
	assert.Equal(t, domain.TypeArticle, saved.BookmarkType)
	assert.ElementsMatch(t, []string{c1.ID, c2.ID}, saved.CollectionIDs)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := bookmarks.Get(ctx, "alice", saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	_, err = bookmarks.Get(ctx, "bob", saved.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookmarkStore_UpdateMemberships(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	bookmarks := NewBookmarkStore(db)
	collections := NewCollectionStore(db)

	c1 := mustCollection(t, collections, "alice", "One")
	c2 := mustCollection(t, collections, "alice", "Two")

	saved, err := bookmarks.Save(ctx, domain.NewBookmark("alice", "https://example.com"), &[]string{c1.ID})
	require.NoError(t, err)
	created := saved.CreatedAt

	t.Run("nil leaves memberships untouched", func(t *testing.T) {
		saved.Title = "renamed"
		updated, err := bookmarks.Save(ctx, saved, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{c1.ID}, updated.CollectionIDs)
		assert.Equal(t, "renamed", updated.Title)
		assert.Equal(t, created, updated.CreatedAt)
		assert.True(t, updated.UpdatedAt.After(created))
	})

	t.Run("non-nil replaces memberships", func(t *testing.T) {
		updated, err := bookmarks.Save(ctx, saved, &[]string{c2.ID})
		require.NoError(t, err)
		assert.Equal(t, []string{c2.ID}, updated.CollectionIDs)
	})

	t.Run("empty list clears memberships", func(t *testing.T) {
		updated, err := bookmarks.Save(ctx, saved, &[]string{})
		require.NoError(t, err)
		assert.Empty(t, updated.CollectionIDs)
		assert.NotNil(t, updated.CollectionIDs)
	})
}

func TestBookmarkStore_SaveRejectsForeignCollection(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	bookmarks := NewBookmarkStore(db)
	collections := NewCollectionStore(db)

	bobs := mustCollection(t, collections, "bob", "Bob's")

	_, err := bookmarks.Save(ctx, domain.NewBookmark("alice", "https://example.com"), &[]string{bobs.ID})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	// The failed insert rolled back.
	list, err := bookmarks.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = bookmarks.Save(ctx, domain.NewBookmark("alice", "https://example.com"), &[]string{"missing"})
	assert.True(t, domain.IsValidation(err))

	_, err = bookmarks.Save(ctx, domain.NewBookmark("alice", "https://example.com"), &[]string{""})
	assert.True(t, domain.IsValidation(err))
}

func TestBookmarkStore_SaveUnknownID(t *testing.T) {
	db := newTestDB(t)
	b := domain.NewBookmark("alice", "https://example.com")
	b.ID = "does-not-exist"

	_, err := NewBookmarkStore(db).Save(context.Background(), b, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookmarkStore_List(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	bookmarks := NewBookmarkStore(db)
	collections := NewCollectionStore(db)

	c := mustCollection(t, collections, "alice", "Reading")

	first, err := bookmarks.Save(ctx, domain.NewBookmark("alice", "https://one.example"), &[]string{c.ID})
	require.NoError(t, err)
	second, err := bookmarks.Save(ctx, domain.NewBookmark("alice", "https://two.example"), nil)
	require.NoError(t, err)
	_, err = bookmarks.Save(ctx, domain.NewBookmark("bob", "https://bob.example"), nil)
	require.NoError(t, err)

	list, err := bookmarks.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, first.ID, list[1].ID)

	inCollection, err := bookmarks.ListByCollection(ctx, "alice", c.ID)
	require.NoError(t, err)
	require.Len(t, inCollection, 1)
	assert.Equal(t, first.ID, inCollection[0].ID)

	_, err = bookmarks.ListByCollection(ctx, "bob", c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	empty, err := bookmarks.ListByOwner(ctx, "carol")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestBookmarkStore_Delete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	bookmarks := NewBookmarkStore(db)
	collections := NewCollectionStore(db)

	c := mustCollection(t, collections, "alice", "Reading")
	saved, err := bookmarks.Save(ctx, domain.NewBookmark("alice", "https://example.com"), &[]string{c.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, bookmarks.Delete(ctx, "bob", saved.ID), domain.ErrNotFound)
	require.NoError(t, bookmarks.Delete(ctx, "alice", saved.ID))
	assert.ErrorIs(t, bookmarks.Delete(ctx, "alice", saved.ID), domain.ErrNotFound)

	// The collection survives and is now empty.
	members, err := bookmarks.ListByCollection(ctx, "alice", c.ID)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestCollectionStore_CRUD(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	collections := NewCollectionStore(db)

	c, err := collections.Create(ctx, "alice", domain.CollectionInput{Title: ptr("  Reading  "), Description: ptr("long reads")})
	require.NoError(t, err)
	assert.Equal(t, "Reading", c.Title)
	assert.Equal(t, "long reads", c.Description)

	_, err = collections.Create(ctx, "alice", domain.CollectionInput{})
	assert.True(t, domain.IsValidation(err))

	_, err = collections.Get(ctx, "bob", c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	t.Run("partial update keeps other fields", func(t *testing.T) {
		updated, err := collections.Update(ctx, "alice", c.ID, domain.CollectionInput{Description: ptr("changed")}, false)
		require.NoError(t, err)
		assert.Equal(t, "Reading", updated.Title)
		assert.Equal(t, "changed", updated.Description)
		assert.Equal(t, c.CreatedAt, updated.CreatedAt)
	})

	t.Run("full update requires title", func(t *testing.T) {
		_, err := collections.Update(ctx, "alice", c.ID, domain.CollectionInput{Description: ptr("x")}, true)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("other owner cannot update", func(t *testing.T) {
		_, err := collections.Update(ctx, "bob", c.ID, domain.CollectionInput{Title: ptr("mine")}, true)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	list, err := collections.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, collections.Delete(ctx, "bob", c.ID), domain.ErrNotFound)
	require.NoError(t, collections.Delete(ctx, "alice", c.ID))
	_, err = collections.Get(ctx, "alice", c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCollectionStore_DeleteKeepsBookmarks(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	bookmarks := NewBookmarkStore(db)
	collections := NewCollectionStore(db)

	c1 := mustCollection(t, collections, "alice", "One")
	c2 := mustCollection(t, collections, "alice", "Two")
	saved, err := bookmarks.Save(ctx, domain.NewBookmark("alice", "https://example.com"), &[]string{c1.ID, c2.ID})
	require.NoError(t, err)

	require.NoError(t, collections.Delete(ctx, "alice", c1.ID))

	got, err := bookmarks.Get(ctx, "alice", saved.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{c2.ID}, got.CollectionIDs)
}

func TestCollectionStore_CheckOwned(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	collections := NewCollectionStore(db)

	mine := mustCollection(t, collections, "alice", "Mine")
	theirs := mustCollection(t, collections, "bob", "Theirs")

	assert.NoError(t, collections.CheckOwned(ctx, "alice", nil))
	assert.NoError(t, collections.CheckOwned(ctx, "alice", []string{mine.ID, mine.ID}))

	err := collections.CheckOwned(ctx, "alice", []string{mine.ID, theirs.ID})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	err = collections.CheckOwned(ctx, "alice", []string{"nope"})
	assert.True(t, domain.IsValidation(err))

	err = collections.CheckOwned(ctx, "alice", []string{mine.ID, ""})
	assert.True(t, domain.IsValidation(err), "blank ids are rejected, not skipped")

	err = collections.CheckOwned(ctx, "alice", []string{""})
	assert.True(t, domain.IsValidation(err))
}
