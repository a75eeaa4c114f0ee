package game

import "errors"

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrAlreadyOnline  = errors.New("player already online")
	ErrUnknownRoom    = errors.New("unknown room")
	ErrNotInRoom      = errors.New("player not in room")
)
