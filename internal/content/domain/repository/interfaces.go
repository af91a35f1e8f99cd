// Package repository defines the ports the content coordinator drives.
package repository

import (
	"context"

	"github.com/searchforge/searchforge/internal/content/domain/model"
	"github.com/searchforge/searchforge/internal/shared/result"
)

// ContentRepository is the document-store side of content storage: the
// record of truth for crawled pages.
type ContentRepository interface {
	// Insert stores a new page and returns its assigned id.
	Insert(ctx context.Context, page *model.CrawledPage) result.Result[string]

	// Replace overwrites the record for url with page. The bool reports
	// whether a record existed.
	Replace(ctx context.Context, url string, page *model.CrawledPage) result.Result[bool]

	// FindByURL retrieves the full page for url.
	FindByURL(ctx context.Context, url string) result.Result[*model.CrawledPage]

	// Delete removes the record for url. The bool reports whether a record
	// was deleted.
	Delete(ctx context.Context, url string) result.Result[bool]

	// ScanText is the degraded-mode fallback: a bounded substring scan over
	// title, description and text content.
	ScanText(ctx context.Context, query string, limit int) result.Result[[]model.IndexedDocument]

	// Ping verifies connectivity.
	Ping(ctx context.Context) result.Result[bool]
}

// SearchIndex is the search-engine side of content storage. Implementations
// must treat upsert as an atomic replace of the record for its url.
type SearchIndex interface {
	UpsertDoc(ctx context.Context, doc model.IndexedDocument) result.Result[bool]
	DeleteDoc(ctx context.Context, url string) result.Result[bool]
	SearchText(ctx context.Context, query string, limit int) result.Result[[]model.IndexedDocument]
	SearchPrefix(ctx context.Context, term string, limit int) result.Result[[]model.IndexedDocument]
	SearchByField(ctx context.Context, field, value string, limit int) result.Result[[]model.IndexedDocument]
	AddSuggestion(ctx context.Context, phrase string, weight float64) result.Result[bool]
	Suggest(ctx context.Context, prefix string, limit int) result.Result[[]string]
	Ping(ctx context.Context) result.Result[bool]
}
