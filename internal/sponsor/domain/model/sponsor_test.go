package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Status
		known bool
	}{
		{"pending", "PENDING", StatusPending, true},
		{"verified", "VERIFIED", StatusVerified, true},
		{"rejected", "REJECTED", StatusRejected, true},
		{"cancelled", "CANCELLED", StatusCancelled, true},
		{"lowercase accepted", "verified", StatusVerified, true},
		{"unknown falls back to pending", "APPROVED", StatusPending, false},
		{"empty falls back to pending", "", StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, known := ParseStatus(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestNewProfile(t *testing.T) {
	p, err := NewProfile("Ada Lovelace", "ada@example.com", "+1-555-0100", "gold", 1500, "USD")
	require.NoError(t, err)

	assert.Equal(t, StatusPending, p.Status)
	assert.False(t, p.SubmissionTime.IsZero())
	assert.Equal(t, p.SubmissionTime, p.LastModified)
	assert.Nil(t, p.Company)
	assert.Nil(t, p.PaymentDate)
}

func TestNewProfileRequiresEmail(t *testing.T) {
	_, err := NewProfile("Ada", "   ", "", "gold", 1500, "USD")
	assert.Error(t, err)
}

func TestTransitionsAreMonotonic(t *testing.T) {
	for _, next := range []Status{StatusVerified, StatusRejected, StatusCancelled} {
		t.Run(string(next), func(t *testing.T) {
			p := &Profile{Status: StatusPending}
			require.NoError(t, p.Transition(next))
			assert.Equal(t, next, p.Status)
			assert.False(t, p.LastModified.IsZero())

			// Terminal states never move again.
			assert.Error(t, p.Transition(StatusPending))
			assert.Error(t, p.Transition(StatusVerified))
		})
	}
}

func TestTransitionRejectsPendingTarget(t *testing.T) {
	p := &Profile{Status: StatusPending}
	assert.Error(t, p.Transition(StatusPending))
	assert.Equal(t, StatusPending, p.Status)
}
