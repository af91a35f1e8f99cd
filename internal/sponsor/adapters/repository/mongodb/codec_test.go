package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/searchforge/searchforge/internal/platform/database"
	"github.com/searchforge/searchforge/internal/platform/logger"
	"github.com/searchforge/searchforge/internal/sponsor/domain/model"
)

func TestFromDocumentWidensIntegerAmount(t *testing.T) {
	// Records written by earlier producers carry amounts as int64.
	p, err := fromDocument(bson.M{
		fieldFullName:       "Ada Lovelace",
		fieldEmail:          "ada@example.com",
		fieldAmount:         int64(1500),
		fieldSubmissionTime: database.Date(time.Now()),
		fieldStatus:         "VERIFIED",
	}, logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 1500.0, p.Amount)
	assert.Equal(t, model.StatusVerified, p.Status)
}

func TestFromDocumentUnknownStatusDefaultsToPending(t *testing.T) {
	p, err := fromDocument(bson.M{
		fieldFullName:       "Ada Lovelace",
		fieldEmail:          "ada@example.com",
		fieldAmount:         100.0,
		fieldSubmissionTime: database.Date(time.Now()),
		fieldStatus:         "APPROVED",
	}, logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, p.Status)
}

func TestFromDocumentOptionalFieldsStayNil(t *testing.T) {
	p, err := fromDocument(bson.M{
		fieldFullName:       "Ada Lovelace",
		fieldEmail:          "ada@example.com",
		fieldAmount:         100.0,
		fieldSubmissionTime: database.Date(time.Now()),
	}, logger.NewNop())
	require.NoError(t, err)

	assert.Nil(t, p.Company)
	assert.Nil(t, p.Notes)
	assert.Nil(t, p.PaymentReference)
	assert.Nil(t, p.PaymentDate)
	assert.Nil(t, p.TransactionID)
	assert.Equal(t, p.SubmissionTime, p.LastModified, "last modified falls back to submission time")
}

func TestToDocumentOmitsNilOptionals(t *testing.T) {
	p, err := model.NewProfile("Ada", "ada@example.com", "", "gold", 100, "USD")
	require.NoError(t, err)

	doc := toDocument(p)

	assert.NotContains(t, doc, fieldCompany)
	assert.NotContains(t, doc, fieldNotes)
	assert.NotContains(t, doc, fieldPaymentReference)
	assert.NotContains(t, doc, fieldPaymentDate)
	assert.Equal(t, "PENDING", doc[fieldStatus])
}
