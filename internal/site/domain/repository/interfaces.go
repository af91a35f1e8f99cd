// Package repository defines the site profile persistence port.
package repository

import (
	"context"

	"github.com/searchforge/searchforge/internal/shared/result"
	"github.com/searchforge/searchforge/internal/site/domain/model"
)

// SiteRepository persists per-url site profiles.
type SiteRepository interface {
	// Upsert stores or replaces the profile for its canonical url.
	Upsert(ctx context.Context, profile *model.Profile) result.Result[bool]

	// FindByURL retrieves the profile for url.
	FindByURL(ctx context.Context, url string) result.Result[*model.Profile]

	// FindByDomain lists profiles under a domain.
	FindByDomain(ctx context.Context, domain string, limit, skip int64) result.Result[[]*model.Profile]

	// FindByContentHash looks up profiles sharing a content hash, used to
	// detect re-crawls of unchanged pages.
	FindByContentHash(ctx context.Context, hash string) result.Result[[]*model.Profile]

	// MarkInactive flags a url as gone without deleting its history.
	MarkInactive(ctx context.Context, url string) result.Result[bool]

	// Delete removes the profile for url.
	Delete(ctx context.Context, url string) result.Result[bool]

	// CountActive reports how many profiles are still live.
	CountActive(ctx context.Context) result.Result[int64]
}
