package route

import (
	"fmt"

	"github.com/beconnected/beconnected"
)

// A View identifies a page of the web app an Entry resolves to.
type View string

const (
	Home        View = "home"
	Login       View = "login"
	Register    View = "register"
	Feed        View = "feed"
	Network     View = "network"
	Profile     View = "profile"
	Messages    View = "messages"
	Settings    View = "settings"
	Connections View = "connections"
)

var _ beconnected.Enumerable = Home

// String implements fmt.Stringer.
func (v View) String() string { return string(v) }

// Valid asserts the View is one the web app can render.
//
// Valid implements beconnected.Enumerable.
func (v View) Valid() error {
	switch v {
	case Home, Login, Register, Feed, Network, Profile, Messages, Settings, Connections:
		return nil
	default:
		return fmt.Errorf("%w: view %q", beconnected.ErrNotValid, string(v))
	}
}
