// Package repository defines the sponsor persistence port.
package repository

import (
	"context"

	"github.com/searchforge/searchforge/internal/shared/result"
	"github.com/searchforge/searchforge/internal/sponsor/domain/model"
)

// SponsorRepository persists sponsor submissions.
type SponsorRepository interface {
	// Insert stores a new submission and returns its assigned id. A second
	// submission with the same email fails with a Conflict naming the field.
	Insert(ctx context.Context, profile *model.Profile) result.Result[string]

	// FindByID retrieves a submission by its store-assigned id.
	FindByID(ctx context.Context, id string) result.Result[*model.Profile]

	// FindByEmail retrieves a submission by its unique email.
	FindByEmail(ctx context.Context, email string) result.Result[*model.Profile]

	// FindByStatus lists submissions in a state, newest first.
	FindByStatus(ctx context.Context, status model.Status, limit, skip int64) result.Result[[]*model.Profile]

	// UpdateStatus moves the record to status and appends notes. It fails
	// NotFound when no record matches; an update that matched but changed
	// nothing returns Success(false).
	UpdateStatus(ctx context.Context, id string, status model.Status, notes string) result.Result[bool]

	// RecordPayment attaches payment details to a submission.
	RecordPayment(ctx context.Context, id, paymentReference, transactionID string) result.Result[bool]

	// Count returns the number of submissions in a state; an empty status
	// counts every submission.
	Count(ctx context.Context, status model.Status) result.Result[int64]
}
