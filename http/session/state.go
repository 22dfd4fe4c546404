package session

import "github.com/beconnected/beconnected/route"

var _ route.Sessioner = State{}

// A State is the read-only view of a session guards decide on.
type State struct {
	UserID uint
}

// IsAuthenticated asserts whether a user is registered in the session.
func (s State) IsAuthenticated() bool { return s.UserID != 0 }
