package route

import (
	"fmt"
	"regexp"
	"strings"
)

var paramName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// An Entry binds a path pattern to a View.
//
// A Pattern starts with "/" and separates segments by "/".
// A segment starting with ":" is a named parameter matching any non-empty segment,
// e.g., "/profile/:username".
//
// A Guarded Entry requires an authenticated session to render its View.
type Entry struct {
	Pattern string
	View    View
	Guarded bool
}

// MuxPath translates the Pattern into a gorilla/mux path template,
// e.g., "/profile/:username" becomes "/profile/{username}".
func (e Entry) MuxPath() string {
	segs := splitPattern(e.Pattern)
	for i, seg := range segs {
		if isParam(seg) {
			segs[i] = "{" + seg[1:] + "}"
		}
	}

	return "/" + strings.Join(segs, "/")
}

// shape replaces every parameter segment with ":"
// so two patterns differing only by parameter names collide.
func (e Entry) shape() string {
	segs := splitPattern(e.Pattern)
	for i, seg := range segs {
		if isParam(seg) {
			segs[i] = ":"
		}
	}

	return "/" + strings.Join(segs, "/")
}

// kinds lists, per segment, whether it is a literal (0) or a parameter (1).
func (e Entry) kinds() []int {
	segs := splitPattern(e.Pattern)
	ks := make([]int, len(segs))
	for i, seg := range segs {
		if isParam(seg) {
			ks[i] = 1
		}
	}

	return ks
}

// validate checks the Entry can be compiled into a Table.
func (e Entry) validate() error {
	if err := e.View.Valid(); err != nil {
		return err
	}

	if !strings.HasPrefix(e.Pattern, "/") {
		return fmt.Errorf("%w: %q must start with /", ErrPattern, e.Pattern)
	}

	if strings.ContainsAny(e.Pattern, "{}?#") {
		return fmt.Errorf("%w: %q contains reserved characters", ErrPattern, e.Pattern)
	}

	seen := make(map[string]bool)
	for _, seg := range splitPattern(e.Pattern) {
		if seg == "" && e.Pattern != "/" {
			return fmt.Errorf("%w: %q has an empty segment", ErrPattern, e.Pattern)
		}

		if !isParam(seg) {
			continue
		}

		name := seg[1:]
		if !paramName.MatchString(name) {
			return fmt.Errorf("%w: %q has a bad parameter name %q", ErrPattern, e.Pattern, name)
		}

		if seen[name] {
			return fmt.Errorf("%w: %q repeats parameter %q", ErrPattern, e.Pattern, name)
		}

		seen[name] = true
	}

	return nil
}

// Params are the values bound to named parameters of the matched Entry.
type Params map[string]string

// Get returns the value bound to name or an empty string.
func (p Params) Get(name string) string { return p[name] }

// A Match is the Entry a path resolved to and the parameters bound while resolving.
type Match struct {
	Entry
	Params Params
}

func isParam(seg string) bool { return strings.HasPrefix(seg, ":") }

func splitPattern(pattern string) []string {
	return strings.Split(strings.TrimPrefix(pattern, "/"), "/")
}
