package domain

import "errors"

var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidID    = errors.New("invalid issue id")

	ErrRequiredFieldsMissing = errors.New("required field(s) missing")
	ErrMissingID             = errors.New("missing _id")
	ErrNoUpdateFields        = errors.New("no update field(s) sent")
)
