package metadata

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/MrSnakeDoc/marks/internal/domain"
)

// Extract reads the Open Graph fields from an HTML document.
//
// For each field the lookup order is, first match wins:
//
//  1. <meta property="og:FIELD">
//  2. <meta name="og:FIELD">
//  3. title: the <title> text; description: <meta name="description">
//
// A matching meta element without a content attribute yields "" and still
// stops the chain. Malformed HTML is parsed best-effort and never fails.
func Extract(body []byte) domain.ExtractedMetadata {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return domain.ExtractedMetadata{}
	}

	return domain.ExtractedMetadata{
		Title:       findMetaContent(doc, "title"),
		Description: findMetaContent(doc, "description"),
		Image:       findMetaContent(doc, "image"),
		Type:        findMetaContent(doc, "type"),
	}
}

func findMetaContent(doc *goquery.Document, field string) string {
	og := "og:" + field

	if sel := doc.Find(fmt.Sprintf(`meta[property=%q]`, og)).First(); sel.Length() > 0 {
		return sel.AttrOr("content", "")
	}

	if sel := doc.Find(fmt.Sprintf(`meta[name=%q]`, og)).First(); sel.Length() > 0 {
		return sel.AttrOr("content", "")
	}

	switch field {
	case "title":
		if sel := doc.Find("title").First(); sel.Length() > 0 {
			return sel.Text()
		}
	case "description":
		if sel := doc.Find(`meta[name="description"]`).First(); sel.Length() > 0 {
			return sel.AttrOr("content", "")
		}
	}

	return ""
}
