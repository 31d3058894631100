package compare

import "errors"

// Sentinel kinds for comparison errors.
var (
	ErrNoPlayers      = errors.New("no players selected")
	ErrTooManyPlayers = errors.New("too many players selected")
	ErrUnknownPlayer  = errors.New("player not in result set")
)
