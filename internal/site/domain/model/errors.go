package model

import "errors"

var (
	// ErrEmptyURL is returned when a profile arrives without its key.
	ErrEmptyURL = errors.New("site url must not be empty")
)
