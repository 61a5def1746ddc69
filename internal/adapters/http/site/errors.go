package site

import "errors"

// Sentinel kinds for site errors.
var (
	ErrRender = errors.New("page render failed")
)
