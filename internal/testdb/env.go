//go:build integration

package testdb

import (
	"os"

	"github.com/phrazzld/task-manager-api/internal/redact"
)

// Environment variables consulted for the test database URL, in order.
const (
	EnvTestDBURL   = "TASKAPI_TEST_DB_URL"
	EnvDatabaseURL = "DATABASE_URL"
)

// GetTestDatabaseURL returns the first configured test database URL, or "".
func GetTestDatabaseURL() string {
	for _, name := range []string{EnvTestDBURL, EnvDatabaseURL} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// ShouldSkipDatabaseTest reports whether no database URL is configured.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == ""
}

func maskDatabaseURL(dbURL string) string {
	return redact.String(dbURL)
}
