package model

import "errors"

var (
	// ErrEmptyWebsiteURL is returned when a record arrives without its key.
	ErrEmptyWebsiteURL = errors.New("website url must not be empty")
)
