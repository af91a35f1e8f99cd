// Package mongodb implements the document-store side of content storage.
package mongodb

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/searchforge/searchforge/internal/content/domain/model"
	"github.com/searchforge/searchforge/internal/content/domain/repository"
	"github.com/searchforge/searchforge/internal/platform/database"
	"github.com/searchforge/searchforge/internal/platform/logger"
	"github.com/searchforge/searchforge/internal/shared/result"
)

const collectionName = "crawled_pages"

// ContentRepository stores crawled pages in MongoDB.
type ContentRepository struct {
	store  *database.Store
	coll   *database.Collection
	logger logger.Logger
}

var _ repository.ContentRepository = (*ContentRepository)(nil)

// NewContentRepository creates the repository and bootstraps its indexes.
func NewContentRepository(ctx context.Context, store *database.Store, log logger.Logger) (*ContentRepository, error) {
	r := &ContentRepository{
		store:  store,
		coll:   store.Collection(collectionName),
		logger: log,
	}

	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: fieldURL, Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: fieldDomain, Value: 1}}},
		{Keys: bson.D{{Key: fieldContentHash, Value: 1}}},
	}
	if res := store.EnsureIndexes(ctx, collectionName, models); !res.OK {
		return nil, res.Err()
	}

	return r, nil
}

// Insert stores a new page and returns its assigned id.
func (r *ContentRepository) Insert(ctx context.Context, page *model.CrawledPage) result.Result[string] {
	if err := page.Validate(); err != nil {
		return result.Failure[string](err.Error(), result.KindValidation)
	}
	return r.coll.InsertOne(ctx, toDocument(page))
}

// Replace overwrites the record for url with page, inserting when absent.
func (r *ContentRepository) Replace(ctx context.Context, url string, page *model.CrawledPage) result.Result[bool] {
	if err := page.Validate(); err != nil {
		return result.Failure[bool](err.Error(), result.KindValidation)
	}

	res := r.coll.ReplaceOne(ctx, bson.M{fieldURL: url}, toDocument(page), true)
	if !res.OK {
		return result.Propagate[bool](res)
	}
	return result.Success(res.Value.Matched > 0, "")
}

// FindByURL retrieves the full page for url.
func (r *ContentRepository) FindByURL(ctx context.Context, url string) result.Result[*model.CrawledPage] {
	res := r.coll.FindOne(ctx, bson.M{fieldURL: url})
	if !res.OK {
		return result.Propagate[*model.CrawledPage](res)
	}

	page, err := fromDocument(res.Value)
	if err != nil {
		return database.SerializationFailure[*model.CrawledPage](r.logger, url, err)
	}
	return result.Success(page, "")
}

// Delete removes the record for url.
func (r *ContentRepository) Delete(ctx context.Context, url string) result.Result[bool] {
	res := r.coll.DeleteOne(ctx, bson.M{fieldURL: url})
	if !res.OK {
		return result.Propagate[bool](res)
	}
	return result.Success(res.Value > 0, "")
}

// ScanText is the degraded-mode fallback: a bounded case-insensitive
// substring scan over title, description and text content.
func (r *ContentRepository) ScanText(ctx context.Context, query string, limit int) result.Result[[]model.IndexedDocument] {
	pattern := regexp.QuoteMeta(query)
	filter := bson.M{"$or": []bson.M{
		{fieldTitle: bson.M{"$regex": pattern, "$options": "i"}},
		{fieldDescription: bson.M{"$regex": pattern, "$options": "i"}},
		{fieldTextContent: bson.M{"$regex": pattern, "$options": "i"}},
	}}

	res := r.coll.FindMany(ctx, filter, int64(limit), 0, bson.D{{Key: fieldPageRank, Value: -1}, {Key: fieldURL, Value: 1}})
	if !res.OK {
		return result.Propagate[[]model.IndexedDocument](res)
	}

	docs := make([]model.IndexedDocument, 0, len(res.Value))
	for _, raw := range res.Value {
		page, err := fromDocument(raw)
		if err != nil {
			// One undecodable record must not hide the rest of the scan.
			r.logger.Error("skipping undecodable page in scan", "error", err.Error())
			continue
		}
		docs = append(docs, page.Project())
	}
	return result.Success(docs, "")
}

// Ping verifies connectivity.
func (r *ContentRepository) Ping(ctx context.Context) result.Result[bool] {
	return r.store.Ping(ctx)
}
