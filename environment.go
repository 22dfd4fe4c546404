package beconnected

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// An Environment is a deployment of BeConnected.
type Environment string

const (
	Demo        Environment = "DEMO"
	Development Environment = "DEVELOPMENT"
	Production  Environment = "PRODUCTION"
	Review      Environment = "REVIEW"
	Staging     Environment = "STAGING"
	Testing     Environment = "TESTING"
)

func (e Environment) String() string { return string(e) }

func (e Environment) Valid() error {
	switch e {
	case Demo, Development, Production, Review, Staging, Testing:
		return nil
	}

	return ErrNotValid
}

// CanUseServiceStub reports whether missing backing services (database, secrets)
// may be replaced with in-process stand-ins.
func (e Environment) CanUseServiceStub() bool {
	return e == Demo || e.IsLocal()
}

// IsLocal reports whether e runs on a developer's machine, served over plain HTTP.
func (e Environment) IsLocal() bool { return e == Development || e == Testing }

func (e Environment) IsDevelopment() bool { return e == Development }

func (e Environment) IsProduction() bool { return e == Production }

func (e Environment) IsTesting() bool { return e == Testing }

// envVarOr parses the value of the environment variable key,
// falling back to def when it is unset or parse rejects it.
func envVarOr[T any](key string, def T, parse func(string) (T, error)) T {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return def
	}

	parsed, err := parse(val)
	if err != nil {
		return def
	}

	return parsed
}

// EnvVarOrBool reads key as "true" or "false", in any case.
func EnvVarOrBool(key string, def bool) bool {
	return envVarOr(key, def, func(val string) (bool, error) {
		switch strings.ToLower(val) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}

		return false, ErrNotValid
	})
}

// EnvVarOrDuration reads key with [time.ParseDuration].
func EnvVarOrDuration(key string, def time.Duration) time.Duration {
	return envVarOr(key, def, time.ParseDuration)
}

// EnvVarOrEnv reads key as an [Environment], in any case.
func EnvVarOrEnv(key string, def Environment) Environment {
	return envVarOr(key, def, func(val string) (Environment, error) {
		env := Environment(strings.ToUpper(val))
		return env, env.Valid()
	})
}

// EnvVarOrInt reads key with [strconv.Atoi].
func EnvVarOrInt(key string, def int) int {
	return envVarOr(key, def, strconv.Atoi)
}

// EnvVarOrString reads key, falling back to def when it is empty.
func EnvVarOrString(key, def string) string {
	return envVarOr(key, def, func(val string) (string, error) { return val, nil })
}

// EnvVarOrURL reads key as an absolute URL.
// The fallback is def with its path reset to the root, or nil when def does not parse.
func EnvVarOrURL(key, def string) *url.URL {
	fallback, err := url.ParseRequestURI(def)
	if err != nil {
		return nil
	}
	fallback.Path = "/"

	return envVarOr(key, fallback, url.ParseRequestURI)
}
