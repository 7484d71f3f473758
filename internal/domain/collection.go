package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxCollectionTitle is the longest accepted collection title, in characters.
const MaxCollectionTitle = 200

// Collection is a user-defined named group of bookmarks.
// Deleting a collection unlinks its bookmarks but never deletes them.
type Collection struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CollectionInput carries the user-editable collection fields.
// A nil field is left untouched by a partial update.
type CollectionInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// Validate checks the input. When full is true every required field must be present.
func (in CollectionInput) Validate(full bool) error {
	if in.Title == nil {
		if full {
			return NewValidationError("title", "this field is required")
		}
		return nil
	}
	title := strings.TrimSpace(*in.Title)
	if title == "" {
		return NewValidationError("title", "this field may not be blank")
	}
	if utf8.RuneCountInString(title) > MaxCollectionTitle {
		return NewValidationError("title", "ensure this field has no more than 200 characters")
	}
	return nil
}

// Apply copies the non-nil input fields onto c.
func (in CollectionInput) Apply(c *Collection) {
	if in.Title != nil {
		c.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
}
