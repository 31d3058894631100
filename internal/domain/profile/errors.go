package profile

import "errors"

// Sentinel kinds for profile errors.
var (
	ErrInvalidName = errors.New("invalid profile name")
)
