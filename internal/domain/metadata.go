package domain

import "strings"

// ExtractedMetadata holds the descriptive fields found in a fetched page.
// Every field defaults to the empty string when the page does not declare it.
type ExtractedMetadata struct {
	Title       string
	Description string
	Image       string
	Type        string
}

// BookmarkType is the canonical classification of a bookmarked page.
type BookmarkType string

const (
	TypeWebsite BookmarkType = "website"
	TypeArticle BookmarkType = "article"
	TypeBook    BookmarkType = "book"
	TypeMusic   BookmarkType = "music"
	TypeVideo   BookmarkType = "video"
)

// typePriority is checked in order; the first substring found wins.
var typePriority = []BookmarkType{TypeArticle, TypeBook, TypeMusic, TypeVideo}

// ClassifyType maps a raw og:type value to a BookmarkType.
// Matching is a case-sensitive substring test, so "video.movie" is a video and
// "article video" is an article. Anything unmatched, including "", is a website.
func ClassifyType(raw string) BookmarkType {
	for _, t := range typePriority {
		if strings.Contains(raw, string(t)) {
			return t
		}
	}
	return TypeWebsite
}

// Valid reports whether t is one of the known bookmark types.
func (t BookmarkType) Valid() bool {
	switch t {
	case TypeWebsite, TypeArticle, TypeBook, TypeMusic, TypeVideo:
		return true
	default:
		return false
	}
}
