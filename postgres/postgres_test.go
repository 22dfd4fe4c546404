package postgres_test

import (
	"testing"

	"github.com/beconnected/beconnected/postgres"
	"github.com/stretchr/testify/require"
)

func TestBuildCxnStr(t *testing.T) {
	for _, tc := range []struct {
		name     string
		cfg      *postgres.CxnConfig
		expected string
	}{
		{
			name:     "URL",
			cfg:      &postgres.CxnConfig{URL: "postgres://u:p@db:5432/app", Host: "ignored"},
			expected: "postgres://u:p@db:5432/app",
		},
		{
			name:     "Default-SSLMode",
			cfg:      &postgres.CxnConfig{Host: "localhost", Port: "5432", Name: "app", User: "u", Password: "p"},
			expected: "host=localhost port=5432 dbname=app user=u password=p sslmode=prefer",
		},
		{
			name:     "SSLMode",
			cfg:      &postgres.CxnConfig{Host: "db", Port: "5433", Name: "app", User: "u", SSLMode: "disable"},
			expected: "host=db port=5433 dbname=app user=u password= sslmode=disable",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, postgres.BuildCxnStr(tc.cfg))
		})
	}
}

func TestCxnConfigConfigured(t *testing.T) {
	var nilCfg *postgres.CxnConfig
	require.False(t, nilCfg.Configured())
	require.False(t, (&postgres.CxnConfig{Host: "localhost"}).Configured())
	require.True(t, (&postgres.CxnConfig{URL: "postgres://db"}).Configured())
	require.True(t, (&postgres.CxnConfig{Name: "app", User: "u"}).Configured())
}

func TestConnectUnconfigured(t *testing.T) {
	// Act
	db, err := postgres.Connect(&postgres.CxnConfig{}, postgres.Migrations, "TESTING")

	// Assert
	require.Nil(t, db)
	require.Error(t, err)
}

func TestPending(t *testing.T) {
	// Arrange
	all := []postgres.Migration{{Key: "a"}, {Key: "b"}, {Key: "c"}}

	// Act + Assert
	require.Len(t, postgres.Pending(all, nil), 3)

	actual := postgres.Pending(all, []string{"b"})
	require.Len(t, actual, 2)
	require.Equal(t, "a", actual[0].Key)
	require.Equal(t, "c", actual[1].Key)

	require.Empty(t, postgres.Pending(all, []string{"c", "a", "b"}))
}

func TestEscapeLike(t *testing.T) {
	require.Equal(t, "ali", postgres.EscapeLike("ali"))
	require.Equal(t, `50\%\_off\\`, postgres.EscapeLike(`50%_off\`))
}
