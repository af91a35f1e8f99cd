// Package mongodb implements the sponsor repository on the document store.
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
	"github.com/searchforge/searchforge/internal/sponsor/domain/model"
	"github.com/searchforge/searchforge/internal/sponsor/domain/repository"
)

const collectionName = "sponsors"

// SponsorRepository stores sponsor submissions in MongoDB.
type SponsorRepository struct {
	store  *database.Store
	coll   *database.Collection
	logger logger.Logger
}

var _ repository.SponsorRepository = (*SponsorRepository)(nil)

// NewSponsorRepository creates the repository and bootstraps its indexes.
func NewSponsorRepository(ctx context.Context, store *database.Store, log logger.Logger) (*SponsorRepository, error) {
	r := &SponsorRepository{
		store:  store,
		coll:   store.Collection(collectionName),
		logger: log,
	}

	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: fieldEmail, Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: fieldStatus, Value: 1}}},
		{Keys: bson.D{{Key: fieldSubmissionTime, Value: -1}}},
		{Keys: bson.D{{Key: fieldStatus, Value: 1}, {Key: fieldSubmissionTime, Value: -1}}},
	}
	if res := store.EnsureIndexes(ctx, collectionName, models); !res.OK {
		return nil, res.Err()
	}

	return r, nil
}

// Insert stores a new submission.
func (r *SponsorRepository) Insert(ctx context.Context, profile *model.Profile) result.Result[string] {
	return r.coll.InsertOne(ctx, toDocument(profile))
}

// FindByID retrieves a submission by its store-assigned id.
func (r *SponsorRepository) FindByID(ctx context.Context, id string) result.Result[*model.Profile] {
	oid, err := database.HexID(id)
	if err != nil {
		return result.Failure[*model.Profile](err.Error(), result.KindValidation)
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByEmail retrieves a submission by its unique email.
func (r *SponsorRepository) FindByEmail(ctx context.Context, email string) result.Result[*model.Profile] {
	return r.findOne(ctx, bson.M{fieldEmail: email})
}

// FindByStatus lists submissions in a state, newest first.
func (r *SponsorRepository) FindByStatus(ctx context.Context, status model.Status, limit, skip int64) result.Result[[]*model.Profile] {
	res := r.coll.FindMany(ctx, bson.M{fieldStatus: string(status)}, limit, skip,
		bson.D{{Key: fieldSubmissionTime, Value: -1}})
	if !res.OK {
		return result.Propagate[[]*model.Profile](res)
	}

	profiles := make([]*model.Profile, 0, len(res.Value))
	for _, doc := range res.Value {
		p, err := fromDocument(doc, r.logger)
		if err != nil {
			return database.SerializationFailure[[]*model.Profile](r.logger, database.ID(doc), err)
		}
		profiles = append(profiles, p)
	}
	return result.Success(profiles, "")
}

// UpdateStatus moves the record to status. A missing record fails NotFound;
// a matched record that was already in the target state returns
// Success(false) rather than an error.
func (r *SponsorRepository) UpdateStatus(ctx context.Context, id string, status model.Status, notes string) result.Result[bool] {
	oid, err := database.HexID(id)
	if err != nil {
		return result.Failure[bool](err.Error(), result.KindValidation)
	}

	setDoc := bson.M{
		fieldStatus:       string(status),
		fieldLastModified: database.Date(time.Now()),
	}
	if notes != "" {
		setDoc[fieldNotes] = notes
	}

	res := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, setDoc)
	if !res.OK {
		return result.Propagate[bool](res)
	}
	if res.Value.Matched == 0 {
		return result.Failure[bool]("sponsor not found", result.KindNotFound)
	}
	return result.Success(res.Value.Modified > 0, "")
}

// RecordPayment attaches payment details to a submission.
func (r *SponsorRepository) RecordPayment(ctx context.Context, id, paymentReference, transactionID string) result.Result[bool] {
	oid, err := database.HexID(id)
	if err != nil {
		return result.Failure[bool](err.Error(), result.KindValidation)
	}

	now := time.Now()
	setDoc := bson.M{
		fieldPaymentReference: paymentReference,
		fieldTransactionID:    transactionID,
		fieldPaymentDate:      database.Date(now),
		fieldLastModified:     database.Date(now),
	}

	res := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, setDoc)
	if !res.OK {
		return result.Propagate[bool](res)
	}
	if res.Value.Matched == 0 {
		return result.Failure[bool]("sponsor not found", result.KindNotFound)
	}
	return result.Success(res.Value.Modified > 0, "")
}

// Count returns the number of submissions in a state. An empty status
// counts every submission.
func (r *SponsorRepository) Count(ctx context.Context, status model.Status) result.Result[int64] {
	filter := bson.M{}
	if status != "" {
		filter[fieldStatus] = string(status)
	}
	return r.coll.Count(ctx, filter)
}

func (r *SponsorRepository) findOne(ctx context.Context, filter bson.M) result.Result[*model.Profile] {
	res := r.coll.FindOne(ctx, filter)
	if !res.OK {
		return result.Propagate[*model.Profile](res)
	}

	p, err := fromDocument(res.Value, r.logger)
	if err != nil {
		return database.SerializationFailure[*model.Profile](r.logger, database.ID(res.Value), err)
	}
	return result.Success(p, "")
}
