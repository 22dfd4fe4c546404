package route

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/gorilla/mux"
)

// A Table resolves request paths to Entries.
//
// A Table is immutable once constructed and safe for concurrent use.
type Table struct {
	entries []Entry
	byName  map[string]Entry
	r       *mux.Router
}

// New constructs a *Table from entries.
//
// New returns ErrPattern if an Entry's pattern cannot be compiled
// and ErrDuplicate if two entries would match exactly the same paths.
func New(entries ...Entry) (*Table, error) {
	t := &Table{
		entries: make([]Entry, 0, len(entries)),
		byName:  make(map[string]Entry, len(entries)),
		r:       mux.NewRouter(),
	}

	shapes := make(map[string]string)
	for _, e := range entries {
		if err := e.validate(); err != nil {
			return nil, err
		}

		shape := e.shape()
		if prev, ok := shapes[shape]; ok {
			return nil, fmt.Errorf("%w: %q and %q", ErrDuplicate, prev, e.Pattern)
		}

		shapes[shape] = e.Pattern
		t.entries = append(t.entries, e)
	}

	// NOTE: gorilla/mux returns the first registered route matching a request,
	// so registering by precedence makes literal segments win over parameters.
	sort.SliceStable(t.entries, func(i, j int) bool {
		return precedes(t.entries[i].kinds(), t.entries[j].kinds())
	})

	for _, e := range t.entries {
		t.byName[e.Pattern] = e
		if err := t.r.Path(e.MuxPath()).Name(e.Pattern).GetError(); err != nil {
			return nil, fmt.Errorf("%w: %q: %s", ErrPattern, e.Pattern, err)
		}
	}

	return t, nil
}

// Default constructs the *Table of the web app.
//
// Default panics if the table is misconfigured.
func Default() *Table {
	t, err := New(
		Entry{Pattern: HomePath, View: Home},
		Entry{Pattern: LoginPath, View: Login},
		Entry{Pattern: RegisterPath, View: Register},
		Entry{Pattern: FeedPath, View: Feed, Guarded: true},
		Entry{Pattern: NetworkPath, View: Network, Guarded: true},
		Entry{Pattern: ProfilePattern, View: Profile, Guarded: true},
		Entry{Pattern: MessagesPath, View: Messages, Guarded: true},
		Entry{Pattern: SettingsPath, View: Settings, Guarded: true},
		Entry{Pattern: ConnectionsPattern, View: Connections, Guarded: true},
	)
	if err != nil {
		panic(err)
	}

	return t
}

// Entries returns the Entries of the *Table in the order they are matched.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Match resolves path to the single best matching Entry.
// The path is taken as is: it is not unescaped nor cleaned,
// and it must not carry a query string.
//
// If no Entry matches, ErrNotFound returns.
func (t *Table) Match(path string) (Match, error) {
	req := &http.Request{Method: http.MethodGet, URL: &url.URL{Path: path}}

	var rm mux.RouteMatch
	if !t.r.Match(req, &rm) || rm.Route == nil {
		return Match{}, fmt.Errorf("%w: %q", ErrNotFound, path)
	}

	e, ok := t.byName[rm.Route.GetName()]
	if !ok {
		return Match{}, fmt.Errorf("%w: %q", ErrNotFound, path)
	}

	params := make(Params, len(rm.Vars))
	for k, v := range rm.Vars {
		params[k] = v
	}

	return Match{Entry: e, Params: params}, nil
}

// Path builds the path of the first Entry rendering v,
// binding params as name, value pairs,
// e.g., t.Path(Profile, "username", "alice") returns "/profile/alice".
//
// Values are escaped with url.PathEscape.
func (t *Table) Path(v View, params ...string) (string, error) {
	if len(params)%2 != 0 {
		return "", fmt.Errorf("%w: params must be name, value pairs", ErrPattern)
	}

	pairs := make([]string, len(params))
	for i, p := range params {
		if i%2 == 1 {
			p = url.PathEscape(p)
		}
		pairs[i] = p
	}

	for _, e := range t.entries {
		if e.View != v {
			continue
		}

		u, err := t.r.Get(e.Pattern).URLPath(pairs...)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrPattern, err)
		}

		return u.Path, nil
	}

	return "", fmt.Errorf("%w: no entry renders %s", ErrNotFound, v)
}

// precedes orders segment kinds lexicographically, literals (0) before parameters (1).
func precedes(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}

	return len(a) < len(b)
}
