package session

import "errors"

var (
	// ErrNoSession is returned when an operation requires a live session
	// and none exists for the presented ID.
	ErrNoSession = errors.New("no live session")
)
