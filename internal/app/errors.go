package service

import "errors"

// Sentinel error kinds for the service layer.
var (
	ErrNotStarted         = errors.New("service not started")
	ErrSnapshotsRequired  = errors.New("both start and end snapshots are required")
	ErrNothingToRecompute = errors.New("profile has no stored snapshots")
)
