package domain

import "time"

// Bookmark is a saved URL enriched with metadata scraped from the page.
//
// A Bookmark always belongs to exactly one owner. The owner is fixed at
// creation and never transferred.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the opaque unique identifier (UUID v4).
	ID string `json:"id"`

	// UserID is the opaque identity of the owning user.
	UserID string `json:"-"`

	// ─────────────────────────────
	// User input
	// ─────────────────────────────

	// URL is the only field supplied by the user.
	URL string `json:"url"`

	// ─────────────────────────────
	// Derived from the page
	// (overwritten on every successful fetch)
	// ─────────────────────────────

	Title        string       `json:"title"`
	Description  string       `json:"description"`
	BookmarkType BookmarkType `json:"bookmark_type"`
	PreviewImage string       `json:"preview_image"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// CollectionIDs lists the collections this bookmark belongs to.
	CollectionIDs []string `json:"collection_ids"`
}

// NewBookmark returns a bookmark for owner with every derived field at its default.
func NewBookmark(owner, url string) *Bookmark {
	return &Bookmark{
		UserID:        owner,
		URL:           url,
		BookmarkType:  TypeWebsite,
		CollectionIDs: []string{},
	}
}

// ApplyMetadata overwrites the derived fields with an extraction result.
// Empty values overwrite too: a page without a description clears it.
func (b *Bookmark) ApplyMetadata(md ExtractedMetadata) {
	b.Title = md.Title
	b.Description = md.Description
	b.PreviewImage = md.Image
	b.BookmarkType = ClassifyType(md.Type)
}
