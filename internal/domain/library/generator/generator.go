package generator

import (
	"context"

	"booknest/internal/domain/document"
)

// OnlineResource points at a book hosted by an online provider. The URL is
// where the raw text can be downloaded; Metadata carries provider-specific
// details (author, subjects, format).
type OnlineResource struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	URL         string            `json:"url"`
	Metadata    map[string]string `json:"metadata"`
}

// BookSource lists books available from an online provider and materializes
// them into narratable documents.
type BookSource interface {
	ListOnlineResources() ([]*OnlineResource, error)
	LoadResource(context.Context, *OnlineResource) (*document.Document, error)
}
