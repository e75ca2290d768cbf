package domain

import "errors"

var (
	// ErrValidation marks missing or malformed input, e.g. an empty barcode.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateKey is returned when a barcode is already in the catalog.
	ErrDuplicateKey = errors.New("barcode already exists")
	// ErrNotFound is returned when a barcode is missing from the catalog.
	ErrNotFound = errors.New("product not found")
	// ErrParse marks an expiration date that is not YYYY-MM-DD.
	ErrParse = errors.New("unparseable date")
	// ErrIO wraps file access failures during import, export and report writes.
	ErrIO = errors.New("i/o failure")
)
