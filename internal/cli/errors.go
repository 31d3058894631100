package cli

import "errors"

// Sentinel errors returned by commands.
var (
	ErrUnknownColumn = errors.New("unknown sort column")
	ErrUnknownView   = errors.New("unknown view")
	ErrNoTarget      = errors.New("name a profile or pass --all")
	ErrBadGovernors  = errors.New("governors must be positive")
	ErrStdinTwice    = errors.New("only one of --start and --end can read stdin")
)
