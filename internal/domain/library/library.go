package library

import "booknest/internal/domain/document"

// Collection is a named set of books from a single source.
type Collection struct {
	Name  string              `json:"name"`
	URL   string              `json:"url"`
	Books []document.Document `json:"books"`
}

// CachedOnlineLibrary is a book source backed by a refreshable local cache.
type CachedOnlineLibrary interface {
	GetCollection() (*Collection, error)
	ClearCache() error
}
