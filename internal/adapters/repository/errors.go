package repository

import "errors"

// Sentinel kinds for catalogue errors.
var (
	ErrInvalidCatalog = errors.New("invalid fixture catalog")
)
