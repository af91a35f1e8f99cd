// Package repository defines the licensed-website persistence port.
package repository

import (
	"context"

	"github.com/searchforge/searchforge/internal/shared/result"
	"github.com/searchforge/searchforge/internal/website/domain/model"
)

// WebsiteRepository persists licensed-website records.
type WebsiteRepository interface {
	// Upsert stores or replaces the record for its website url.
	Upsert(ctx context.Context, profile *model.Profile) result.Result[bool]

	// FindByWebsiteURL retrieves the record for url.
	FindByWebsiteURL(ctx context.Context, url string) result.Result[*model.Profile]

	// FindByProvince pages through records registered in a province.
	FindByProvince(ctx context.Context, province string, limit, skip int64) result.Result[[]*model.Profile]

	// Delete removes the record for url.
	Delete(ctx context.Context, url string) result.Result[bool]

	// Count returns the total number of records.
	Count(ctx context.Context) result.Result[int64]
}
