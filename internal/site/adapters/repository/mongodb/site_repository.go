// Package mongodb implements the site profile repository on the document store.
package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/searchforge/searchforge/internal/platform/database"
	"github.com/searchforge/searchforge/internal/platform/logger"
	"github.com/searchforge/searchforge/internal/shared/result"
	"github.com/searchforge/searchforge/internal/site/domain/model"
	"github.com/searchforge/searchforge/internal/site/domain/repository"
)

const collectionName = "sites"

// SiteRepository stores site profiles in MongoDB.
type SiteRepository struct {
	store  *database.Store
	coll   *database.Collection
	logger logger.Logger
}

var _ repository.SiteRepository = (*SiteRepository)(nil)

// NewSiteRepository creates the repository and bootstraps its indexes.
func NewSiteRepository(ctx context.Context, store *database.Store, log logger.Logger) (*SiteRepository, error) {
	r := &SiteRepository{
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
		{Keys: bson.D{
			{Key: fieldTitle, Value: "text"},
			{Key: fieldDescription, Value: "text"},
			{Key: fieldTextContent, Value: "text"},
		}},
	}
	if res := store.EnsureIndexes(ctx, collectionName, models); !res.OK {
		return nil, res.Err()
	}

	return r, nil
}

// Upsert stores or replaces the profile for its canonical url.
func (r *SiteRepository) Upsert(ctx context.Context, profile *model.Profile) result.Result[bool] {
	if err := profile.Validate(); err != nil {
		return result.Failure[bool](err.Error(), result.KindValidation)
	}

	res := r.coll.ReplaceOne(ctx, bson.M{fieldURL: profile.URL}, toDocument(profile), true)
	if !res.OK {
		return result.Propagate[bool](res)
	}
	return result.Success(res.Value.Matched > 0, "")
}

// FindByURL retrieves the profile for url.
func (r *SiteRepository) FindByURL(ctx context.Context, url string) result.Result[*model.Profile] {
	res := r.coll.FindOne(ctx, bson.M{fieldURL: url})
	if !res.OK {
		return result.Propagate[*model.Profile](res)
	}

	p, err := fromDocument(res.Value)
	if err != nil {
		return database.SerializationFailure[*model.Profile](r.logger, url, err)
	}
	return result.Success(p, "")
}

// FindByDomain lists profiles under a domain.
func (r *SiteRepository) FindByDomain(ctx context.Context, domain string, limit, skip int64) result.Result[[]*model.Profile] {
	return r.findMany(ctx, bson.M{fieldDomain: domain}, limit, skip)
}

// FindByContentHash looks up profiles sharing a content hash.
func (r *SiteRepository) FindByContentHash(ctx context.Context, hash string) result.Result[[]*model.Profile] {
	return r.findMany(ctx, bson.M{fieldContentHash: hash}, 0, 0)
}

// MarkInactive flags a url as gone without deleting its history.
func (r *SiteRepository) MarkInactive(ctx context.Context, url string) result.Result[bool] {
	res := r.coll.UpdateOne(ctx, bson.M{fieldURL: url}, bson.M{
		fieldIsActive:      false,
		fieldLastIndexedAt: database.Date(time.Now()),
	})
	if !res.OK {
		return result.Propagate[bool](res)
	}
	if res.Value.Matched == 0 {
		return result.Failure[bool]("site not found", result.KindNotFound)
	}
	return result.Success(res.Value.Modified > 0, "")
}

// Delete removes the profile for url.
func (r *SiteRepository) Delete(ctx context.Context, url string) result.Result[bool] {
	res := r.coll.DeleteOne(ctx, bson.M{fieldURL: url})
	if !res.OK {
		return result.Propagate[bool](res)
	}
	return result.Success(res.Value > 0, "")
}

// CountActive reports how many profiles are still live.
func (r *SiteRepository) CountActive(ctx context.Context) result.Result[int64] {
	return r.coll.Count(ctx, bson.M{fieldIsActive: true})
}

func (r *SiteRepository) findMany(ctx context.Context, filter bson.M, limit, skip int64) result.Result[[]*model.Profile] {
	res := r.coll.FindMany(ctx, filter, limit, skip, bson.D{{Key: fieldPageRank, Value: -1}, {Key: fieldURL, Value: 1}})
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
