package domain

import (
	"net/url"
	"strings"
)

// MaxURLLength bounds user-supplied bookmark URLs.
const MaxURLLength = 2048

var allowedSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ftp":   true,
	"ftps":  true,
}

// NormalizeURL trims raw and checks that it looks like an absolute URL.
// It returns the trimmed URL or a ValidationError on the "url" field.
func NormalizeURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", NewValidationError("url", "this field is required")
	}
	if len(s) > MaxURLLength {
		return "", NewValidationError("url", "ensure this field has no more than 2048 characters")
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", NewValidationError("url", "enter a valid URL")
	}
	if !allowedSchemes[strings.ToLower(u.Scheme)] || u.Hostname() == "" {
		return "", NewValidationError("url", "enter a valid URL")
	}
	if strings.ContainsAny(u.Hostname(), " \t") {
		return "", NewValidationError("url", "enter a valid URL")
	}

	return s, nil
}
