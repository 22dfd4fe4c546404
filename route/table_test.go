package route_test

import (
	"testing"

	"github.com/beconnected/beconnected"
	"github.com/beconnected/beconnected/route"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tcs := []struct {
		name    string
		entries []route.Entry
		err     error
	}{
		{"zero", nil, nil},
		{"root", []route.Entry{{Pattern: "/", View: route.Home}}, nil},
		{"bad-view", []route.Entry{{Pattern: "/", View: route.View("timeline")}}, beconnected.ErrNotValid},
		{"no-slash", []route.Entry{{Pattern: "feed", View: route.Feed}}, route.ErrPattern},
		{"empty-segment", []route.Entry{{Pattern: "/profile//connections", View: route.Connections}}, route.ErrPattern},
		{"trailing-slash", []route.Entry{{Pattern: "/feed/", View: route.Feed}}, route.ErrPattern},
		{"empty-param", []route.Entry{{Pattern: "/profile/:", View: route.Profile}}, route.ErrPattern},
		{"bad-param", []route.Entry{{Pattern: "/profile/:user-name", View: route.Profile}}, route.ErrPattern},
		{"repeat-param", []route.Entry{{Pattern: "/profile/:a/:a", View: route.Profile}}, route.ErrPattern},
		{"mux-syntax", []route.Entry{{Pattern: "/profile/{username}", View: route.Profile}}, route.ErrPattern},
		{
			"duplicate",
			[]route.Entry{{Pattern: "/feed", View: route.Feed}, {Pattern: "/feed", View: route.Network}},
			route.ErrDuplicate,
		},
		{
			"duplicate-params",
			[]route.Entry{
				{Pattern: "/profile/:username", View: route.Profile},
				{Pattern: "/profile/:id", View: route.Settings},
			},
			route.ErrDuplicate,
		},
		{
			"literal-and-param",
			[]route.Entry{
				{Pattern: "/profile/:username", View: route.Profile},
				{Pattern: "/profile/me", View: route.Settings},
			},
			nil,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange + Act
			tbl, err := route.New(tc.entries...)

			// Assert
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				require.Nil(t, tbl)
				return
			}

			require.NoError(t, err)
			require.Len(t, tbl.Entries(), len(tc.entries))
		})
	}
}

func TestDefault(t *testing.T) {
	// Arrange
	expected := map[string]struct {
		view    route.View
		guarded bool
	}{
		"/":                              {route.Home, false},
		"/login":                         {route.Login, false},
		"/register":                      {route.Register, false},
		"/feed":                          {route.Feed, true},
		"/network":                       {route.Network, true},
		"/profile/:username":             {route.Profile, true},
		"/messages":                      {route.Messages, true},
		"/settings":                      {route.Settings, true},
		"/profile/:username/connections": {route.Connections, true},
	}

	// Act
	entries := route.Default().Entries()

	// Assert
	require.Len(t, entries, len(expected))
	for _, e := range entries {
		exp, ok := expected[e.Pattern]
		require.True(t, ok, e.Pattern)
		require.Equal(t, exp.view, e.View, e.Pattern)
		require.Equal(t, exp.guarded, e.Guarded, e.Pattern)
	}
}

func TestTableMatch(t *testing.T) {
	tbl := route.Default()

	tcs := []struct {
		path     string
		view     route.View
		username string
	}{
		{"/", route.Home, ""},
		{"/login", route.Login, ""},
		{"/register", route.Register, ""},
		{"/feed", route.Feed, ""},
		{"/network", route.Network, ""},
		{"/messages", route.Messages, ""},
		{"/settings", route.Settings, ""},
		{"/profile/alice", route.Profile, "alice"},
		{"/profile/alice/connections", route.Connections, "alice"},
		{"/profile/alice.b-c_d~e", route.Profile, "alice.b-c_d~e"},
		{"/profile/a+b", route.Profile, "a+b"},
		{"/profile/a@b", route.Profile, "a@b"},
		{"/profile/o'neil", route.Profile, "o'neil"},
		{"/profile/connections", route.Profile, "connections"},
		{"/profile/connections/connections", route.Connections, "connections"},
	}

	for _, tc := range tcs {
		t.Run(tc.path, func(t *testing.T) {
			// Act
			m, err := tbl.Match(tc.path)

			// Assert
			require.NoError(t, err)
			require.Equal(t, tc.view, m.View)
			require.Equal(t, tc.username, m.Params.Get(route.UsernameParam))
		})
	}
}

func TestTableMatchNotFound(t *testing.T) {
	tbl := route.Default()

	for _, path := range []string{
		"",
		"/timeline",
		"/profile",
		"/profile/",
		"/profile/alice/followers",
		"/feed/extra",
		"/FEED",
	} {
		t.Run(path, func(t *testing.T) {
			// Act
			m, err := tbl.Match(path)

			// Assert
			require.ErrorIs(t, err, route.ErrNotFound)
			require.Zero(t, m)
		})
	}
}

func TestTableMatchPrecedence(t *testing.T) {
	// Arrange
	tbl, err := route.New(
		route.Entry{Pattern: "/profile/:username", View: route.Profile, Guarded: true},
		route.Entry{Pattern: "/profile/me", View: route.Settings, Guarded: true},
		route.Entry{Pattern: "/:section/connections", View: route.Network},
		route.Entry{Pattern: "/profile/:username/connections", View: route.Connections},
	)
	require.NoError(t, err)

	// Act
	me, err := tbl.Match("/profile/me")
	require.NoError(t, err)

	alice, err := tbl.Match("/profile/alice")
	require.NoError(t, err)

	conns, err := tbl.Match("/profile/alice/connections")
	require.NoError(t, err)

	other, err := tbl.Match("/feed/connections")
	require.NoError(t, err)

	// Assert
	require.Equal(t, route.Settings, me.View)
	require.Empty(t, me.Params)

	require.Equal(t, route.Profile, alice.View)
	require.Equal(t, "alice", alice.Params.Get("username"))

	require.Equal(t, route.Connections, conns.View)
	require.Equal(t, "alice", conns.Params.Get("username"))

	require.Equal(t, route.Network, other.View)
	require.Equal(t, "feed", other.Params.Get("section"))

	entries := tbl.Entries()
	require.Equal(t, "/profile/me", entries[0].Pattern)
	require.Equal(t, "/profile/:username", entries[1].Pattern)
	require.Equal(t, "/profile/:username/connections", entries[2].Pattern)
	require.Equal(t, "/:section/connections", entries[3].Pattern)
}

func TestTableMatchPure(t *testing.T) {
	// Arrange
	tbl := route.Default()
	first, err := tbl.Match("/profile/alice")
	require.NoError(t, err)

	// Act
	first.Params["username"] = "mallory"
	second, err := tbl.Match("/profile/alice")

	// Assert
	require.NoError(t, err)
	require.Equal(t, "alice", second.Params.Get("username"))
}

func TestTablePath(t *testing.T) {
	tbl := route.Default()

	tcs := []struct {
		name     string
		view     route.View
		params   []string
		expected string
		err      error
	}{
		{"home", route.Home, nil, "/", nil},
		{"feed", route.Feed, nil, "/feed", nil},
		{"profile", route.Profile, []string{"username", "alice"}, "/profile/alice", nil},
		{"connections", route.Connections, []string{"username", "alice"}, "/profile/alice/connections", nil},
		{"escaped", route.Profile, []string{"username", "a b"}, "/profile/a%20b", nil},
		{"odd-params", route.Profile, []string{"username"}, "", route.ErrPattern},
		{"missing-param", route.Profile, nil, "", route.ErrPattern},
		{"unknown-view", route.View("timeline"), nil, "", route.ErrNotFound},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			actual, err := tbl.Path(tc.view, tc.params...)

			// Assert
			require.ErrorIs(t, err, tc.err)
			require.Equal(t, tc.expected, actual)
		})
	}
}

func TestEntryMuxPath(t *testing.T) {
	// Arrange
	e := route.Entry{Pattern: "/profile/:username/connections"}

	// Act + Assert
	require.Equal(t, "/profile/{username}/connections", e.MuxPath())
	require.Equal(t, "/", route.Entry{Pattern: "/"}.MuxPath())
}

func TestViewValid(t *testing.T) {
	for _, v := range []route.View{
		route.Home,
		route.Login,
		route.Register,
		route.Feed,
		route.Network,
		route.Profile,
		route.Messages,
		route.Settings,
		route.Connections,
	} {
		require.NoError(t, v.Valid())
	}

	require.ErrorIs(t, route.View("").Valid(), beconnected.ErrNotValid)
}
