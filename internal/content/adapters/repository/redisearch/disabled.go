package redisearch

import (
	"context"

	"github.com/searchforge/searchforge/internal/content/domain/model"
	"github.com/searchforge/searchforge/internal/content/domain/repository"
	"github.com/searchforge/searchforge/internal/shared/result"
)

const notConfigured = "search index not configured"

// Disabled is the search port used when no index is configured. Every
// method fails Unavailable, which the coordinator treats as a signal to
// degrade rather than an error to surface.
type Disabled struct{}

var _ repository.SearchIndex = Disabled{}

func (Disabled) UpsertDoc(context.Context, model.IndexedDocument) result.Result[bool] {
	return result.Failure[bool](notConfigured, result.KindUnavailable)
}

func (Disabled) DeleteDoc(context.Context, string) result.Result[bool] {
	return result.Failure[bool](notConfigured, result.KindUnavailable)
}

func (Disabled) SearchText(context.Context, string, int) result.Result[[]model.IndexedDocument] {
	return result.Failure[[]model.IndexedDocument](notConfigured, result.KindUnavailable)
}

func (Disabled) SearchPrefix(context.Context, string, int) result.Result[[]model.IndexedDocument] {
	return result.Failure[[]model.IndexedDocument](notConfigured, result.KindUnavailable)
}

func (Disabled) SearchByField(context.Context, string, string, int) result.Result[[]model.IndexedDocument] {
	return result.Failure[[]model.IndexedDocument](notConfigured, result.KindUnavailable)
}

func (Disabled) AddSuggestion(context.Context, string, float64) result.Result[bool] {
	return result.Failure[bool](notConfigured, result.KindUnavailable)
}

func (Disabled) Suggest(context.Context, string, int) result.Result[[]string] {
	return result.Failure[[]string](notConfigured, result.KindUnavailable)
}

func (Disabled) Ping(context.Context) result.Result[bool] {
	return result.Failure[bool](notConfigured, result.KindUnavailable)
}
