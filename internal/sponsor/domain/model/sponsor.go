// Package model defines sponsor records and their verification lifecycle.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Status is the verification state of a sponsor record.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusVerified  Status = "VERIFIED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus decodes a stored status name. Unknown names fall back to
// PENDING; the second return value reports whether the name was recognized.
func ParseStatus(name string) (Status, bool) {
	switch Status(strings.ToUpper(name)) {
	case StatusPending:
		return StatusPending, true
	case StatusVerified:
		return StatusVerified, true
	case StatusRejected:
		return StatusRejected, true
	case StatusCancelled:
		return StatusCancelled, true
	default:
		return StatusPending, false
	}
}

// Profile is one sponsor submission. Optional fields are pointers so the
// codec can distinguish absent from zero.
type Profile struct {
	ID               string
	FullName         string
	Email            string
	Mobile           string
	Plan             string
	Amount           float64
	Company          *string
	IPAddress        string
	UserAgent        string
	SubmissionTime   time.Time
	LastModified     time.Time
	Status           Status
	Notes            *string
	PaymentReference *string
	PaymentDate      *time.Time
	Currency         string
	BankAccountInfo  *string
	TransactionID    *string
}

// NewProfile creates a submission in its initial state.
func NewProfile(fullName, email, mobile, plan string, amount float64, currency string) (*Profile, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("sponsor email must not be empty")
	}
	now := time.Now().UTC()
	return &Profile{
		FullName:       fullName,
		Email:          email,
		Mobile:         mobile,
		Plan:           plan,
		Amount:         amount,
		Currency:       currency,
		Status:         StatusPending,
		SubmissionTime: now,
		LastModified:   now,
	}, nil
}

// CanTransition reports whether the status may move from its current value
// to next. Transitions are monotonic: only PENDING may move, and only to
// VERIFIED, REJECTED or CANCELLED.
func (p *Profile) CanTransition(next Status) bool {
	if p.Status != StatusPending {
		return false
	}
	switch next {
	case StatusVerified, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

// Transition moves the record to next and touches LastModified.
func (p *Profile) Transition(next Status) error {
	if !p.CanTransition(next) {
		return fmt.Errorf("invalid status transition %s -> %s", p.Status, next)
	}
	p.Status = next
	p.LastModified = time.Now().UTC()
	return nil
}

// Touch updates LastModified; call on every mutation.
func (p *Profile) Touch() {
	p.LastModified = time.Now().UTC()
}
