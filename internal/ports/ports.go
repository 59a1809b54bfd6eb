package ports

import "context"

// RichText converts free-text fields into sanitized HTML and plain text. Empty input
// yields "". Implementations should not fail; callers treat an error as an empty field.
type RichText interface {
	ToHTML(raw string) (string, error)
	ToPlain(raw string) (string, error)
	SanitizeHTML(raw string) (string, error)
}

// LogoFetcher inlines a remote image as a data URI. ok is false on any failure.
type LogoFetcher interface {
	FetchDataURI(ctx context.Context, url string) (dataURI string, ok bool)
}
