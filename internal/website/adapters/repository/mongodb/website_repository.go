// Package mongodb implements the licensed-website repository on the document store.
package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/searchforge/searchforge/internal/platform/database"
	"github.com/searchforge/searchforge/internal/platform/logger"
	"github.com/searchforge/searchforge/internal/shared/result"
	"github.com/searchforge/searchforge/internal/website/domain/model"
	"github.com/searchforge/searchforge/internal/website/domain/repository"
)

const collectionName = "websites"

// WebsiteRepository stores licensed-website records in MongoDB.
type WebsiteRepository struct {
	store  *database.Store
	coll   *database.Collection
	logger logger.Logger
}

var _ repository.WebsiteRepository = (*WebsiteRepository)(nil)

// NewWebsiteRepository creates the repository and bootstraps its indexes.
func NewWebsiteRepository(ctx context.Context, store *database.Store, log logger.Logger) (*WebsiteRepository, error) {
	r := &WebsiteRepository{
		store:  store,
		coll:   store.Collection(collectionName),
		logger: log,
	}

	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: fieldWebsiteURL, Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if res := store.EnsureIndexes(ctx, collectionName, models); !res.OK {
		return nil, res.Err()
	}

	return r, nil
}

// Upsert stores or replaces the record for its website url.
func (r *WebsiteRepository) Upsert(ctx context.Context, profile *model.Profile) result.Result[bool] {
	if err := profile.Validate(); err != nil {
		return result.Failure[bool](err.Error(), result.KindValidation)
	}

	res := r.coll.ReplaceOne(ctx, bson.M{fieldWebsiteURL: profile.WebsiteURL}, toDocument(profile), true)
	if !res.OK {
		return result.Propagate[bool](res)
	}
	return result.Success(res.Value.Matched > 0, "")
}

// FindByWebsiteURL retrieves the record for url.
func (r *WebsiteRepository) FindByWebsiteURL(ctx context.Context, url string) result.Result[*model.Profile] {
	res := r.coll.FindOne(ctx, bson.M{fieldWebsiteURL: url})
	if !res.OK {
		return result.Propagate[*model.Profile](res)
	}

	p, err := fromDocument(res.Value)
	if err != nil {
		return database.SerializationFailure[*model.Profile](r.logger, url, err)
	}
	return result.Success(p, "")
}

// FindByProvince pages through records registered in a province.
func (r *WebsiteRepository) FindByProvince(ctx context.Context, province string, limit, skip int64) result.Result[[]*model.Profile] {
	filter := bson.M{fieldDomainInfo + "." + fieldProvince: province}
	res := r.coll.FindMany(ctx, filter, limit, skip, bson.D{{Key: fieldWebsiteURL, Value: 1}})
	if !res.OK {
		return result.Propagate[[]*model.Profile](res)
	}

	profiles := make([]*model.Profile, 0, len(res.Value))
	for _, doc := range res.Value {
		p, err := fromDocument(doc)
		if err != nil {
			return database.SerializationFailure[[]*model.Profile](r.logger, database.ID(doc), err)
		}
		profiles = append(profiles, p)
	}
	return result.Success(profiles, "")
}

// Delete removes the record for url.
func (r *WebsiteRepository) Delete(ctx context.Context, url string) result.Result[bool] {
	res := r.coll.DeleteOne(ctx, bson.M{fieldWebsiteURL: url})
	if !res.OK {
		return result.Propagate[bool](res)
	}
	return result.Success(res.Value > 0, "")
}

// Count returns the total number of records.
func (r *WebsiteRepository) Count(ctx context.Context) result.Result[int64] {
	return r.coll.Count(ctx, bson.M{})
}
