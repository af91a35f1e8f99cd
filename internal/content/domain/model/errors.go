package model

import "errors"

var (
	// ErrEmptyURL is returned when a page arrives without a url.
	ErrEmptyURL = errors.New("page url must not be empty")
)
