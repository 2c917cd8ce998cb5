//go:build integration

package testdb

import "os"

// Environment variables consulted for the test database URL, in order.
const (
	EnvTestDatabaseURL = "LEXIS_TEST_DATABASE_URL"
	EnvDatabaseURL     = "DATABASE_URL"
)

// GetTestDatabaseURL returns the first non-empty database URL from the
// environment, or "" when none is set.
func GetTestDatabaseURL() string {
	for _, name := range []string{EnvTestDatabaseURL, EnvDatabaseURL} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// IsCIEnvironment reports whether the tests run under a CI system.
func IsCIEnvironment() bool {
	return os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != ""
}
