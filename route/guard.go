package route

// A Sessioner reports whether the session making a navigation is authenticated.
type Sessioner interface {
	IsAuthenticated() bool
}

// A DecisionState is where a single navigation to an Entry stands.
//
// Every navigation starts Unchecked
// and ends either Authorized or Redirected.
// Both are terminal.
type DecisionState int

const (
	Unchecked DecisionState = iota
	Authorized
	Redirected
)

func (ds DecisionState) String() string {
	switch ds {
	case Authorized:
		return "authorized"
	case Redirected:
		return "redirected"
	default:
		return "unchecked"
	}
}

// A Decision is the verdict of a Guard for one navigation.
// Redirect is set only when the State is Redirected.
type Decision struct {
	State    DecisionState
	Redirect string
}

// Allowed asserts whether the View of the navigation may render.
func (d Decision) Allowed() bool { return d.State == Authorized }

// transition moves an Unchecked Decision to its terminal state.
// A Decision already in a terminal state does not change.
func (d Decision) transition(to DecisionState, redirect string) Decision {
	if d.State != Unchecked {
		return d
	}

	if to != Redirected {
		redirect = ""
	}

	return Decision{State: to, Redirect: redirect}
}

// A Guard protects guarded Entries from unauthenticated sessions.
type Guard struct {
	// LoginPath is where unauthenticated navigations are redirected to.
	// The zero value redirects to the LoginPath constant.
	LoginPath string
}

// NewGuard constructs a Guard redirecting to loginPath.
func NewGuard(loginPath string) Guard { return Guard{LoginPath: loginPath} }

// Check decides whether the navigation to e renders.
//
// An unguarded Entry always renders.
// A guarded Entry renders only if s is authenticated;
// a nil s is unauthenticated.
//
// Check keeps no state between calls,
// so calling code must pass the session state of the navigation at hand.
func (g Guard) Check(e Entry, s Sessioner) Decision {
	var d Decision
	if !e.Guarded || (s != nil && s.IsAuthenticated()) {
		return d.transition(Authorized, "")
	}

	return d.transition(Redirected, g.loginPath())
}

// Navigate resolves path against t and checks the resulting Entry.
//
// If path matches nothing, Navigate returns ErrNotFound
// and a Decision that is still Unchecked.
func (g Guard) Navigate(t *Table, path string, s Sessioner) (Match, Decision, error) {
	m, err := t.Match(path)
	if err != nil {
		return Match{}, Decision{}, err
	}

	return m, g.Check(m.Entry, s), nil
}

func (g Guard) loginPath() string {
	if g.LoginPath == "" {
		return LoginPath
	}

	return g.LoginPath
}
