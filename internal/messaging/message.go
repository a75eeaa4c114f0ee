// Package messaging renders chat and notices and hands them to each
// recipient's outbound queue.
package messaging

import (
	"errors"
	"time"
)

// ErrRecipientGone is returned by a Publisher when the named player is no
// longer online.
var ErrRecipientGone = errors.New("recipient is not online")

type Scope int

const (
	// ScopeRoom is chat heard by everyone in one room.
	ScopeRoom Scope = iota
	// ScopeGlobal is chat heard by everyone online.
	ScopeGlobal
	// ScopeSystem is a notice about From, sent verbatim to everyone but From.
	ScopeSystem
)

func (s Scope) String() string {
	switch s {
	case ScopeRoom:
		return "room"
	case ScopeGlobal:
		return "global"
	case ScopeSystem:
		return "system"
	}
	return "unknown"
}

// Message is one utterance or notice. Room is required for room-scoped
// messages and ignored for global ones.
type Message struct {
	Scope Scope
	From  string
	Room  string
	Body  string
	Time  time.Time
}
