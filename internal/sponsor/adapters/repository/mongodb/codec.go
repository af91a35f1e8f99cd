package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/searchforge/searchforge/internal/platform/database"
	"github.com/searchforge/searchforge/internal/platform/logger"
	"github.com/searchforge/searchforge/internal/sponsor/domain/model"
)

const (
	fieldFullName         = "full_name"
	fieldEmail            = "email"
	fieldMobile           = "mobile"
	fieldPlan             = "plan"
	fieldAmount           = "amount"
	fieldCompany          = "company"
	fieldIPAddress        = "ip_address"
	fieldUserAgent        = "user_agent"
	fieldSubmissionTime   = "submission_time"
	fieldLastModified     = "last_modified"
	fieldStatus           = "status"
	fieldNotes            = "notes"
	fieldPaymentReference = "payment_reference"
	fieldPaymentDate      = "payment_date"
	fieldCurrency         = "currency"
	fieldBankAccountInfo  = "bank_account_info"
	fieldTransactionID    = "transaction_id"
)

func toDocument(p *model.Profile) bson.M {
	doc := bson.M{
		fieldFullName:       p.FullName,
		fieldEmail:          p.Email,
		fieldMobile:         p.Mobile,
		fieldPlan:           p.Plan,
		fieldAmount:         p.Amount,
		fieldIPAddress:      p.IPAddress,
		fieldUserAgent:      p.UserAgent,
		fieldSubmissionTime: database.Date(p.SubmissionTime),
		fieldLastModified:   database.Date(p.LastModified),
		fieldStatus:         string(p.Status),
		fieldCurrency:       p.Currency,
	}
	if p.Company != nil {
		doc[fieldCompany] = *p.Company
	}
	if p.Notes != nil {
		doc[fieldNotes] = *p.Notes
	}
	if p.PaymentReference != nil {
		doc[fieldPaymentReference] = *p.PaymentReference
	}
	if p.PaymentDate != nil {
		doc[fieldPaymentDate] = database.Date(*p.PaymentDate)
	}
	if p.BankAccountInfo != nil {
		doc[fieldBankAccountInfo] = *p.BankAccountInfo
	}
	if p.TransactionID != nil {
		doc[fieldTransactionID] = *p.TransactionID
	}
	return doc
}

func fromDocument(doc bson.M, log logger.Logger) (*model.Profile, error) {
	p := &model.Profile{ID: database.ID(doc)}
	var err error

	if p.FullName, err = database.Str(doc, fieldFullName); err != nil {
		return nil, err
	}
	if p.Email, err = database.Str(doc, fieldEmail); err != nil {
		return nil, err
	}
	if p.Mobile, err = database.StrOr(doc, fieldMobile, ""); err != nil {
		return nil, err
	}
	if p.Plan, err = database.StrOr(doc, fieldPlan, ""); err != nil {
		return nil, err
	}
	// Historical records carry integer amounts; widen rather than migrate.
	if p.Amount, err = database.Double(doc, fieldAmount); err != nil {
		return nil, err
	}
	if p.Company, err = database.OptStr(doc, fieldCompany); err != nil {
		return nil, err
	}
	if p.IPAddress, err = database.StrOr(doc, fieldIPAddress, ""); err != nil {
		return nil, err
	}
	if p.UserAgent, err = database.StrOr(doc, fieldUserAgent, ""); err != nil {
		return nil, err
	}
	if p.SubmissionTime, err = database.Time(doc, fieldSubmissionTime); err != nil {
		return nil, err
	}
	if p.LastModified, err = database.TimeOr(doc, fieldLastModified, p.SubmissionTime); err != nil {
		return nil, err
	}

	rawStatus, err := database.StrOr(doc, fieldStatus, string(model.StatusPending))
	if err != nil {
		return nil, err
	}
	status, known := model.ParseStatus(rawStatus)
	if !known {
		log.Warn("unknown sponsor status, defaulting to PENDING", "email", p.Email, "status", rawStatus)
	}
	p.Status = status

	if p.Notes, err = database.OptStr(doc, fieldNotes); err != nil {
		return nil, err
	}
	if p.PaymentReference, err = database.OptStr(doc, fieldPaymentReference); err != nil {
		return nil, err
	}
	if p.PaymentDate, err = database.OptTime(doc, fieldPaymentDate); err != nil {
		return nil, err
	}
	if p.Currency, err = database.StrOr(doc, fieldCurrency, ""); err != nil {
		return nil, err
	}
	if p.BankAccountInfo, err = database.OptStr(doc, fieldBankAccountInfo); err != nil {
		return nil, err
	}
	if p.TransactionID, err = database.OptStr(doc, fieldTransactionID); err != nil {
		return nil, err
	}

	return p, nil
}
