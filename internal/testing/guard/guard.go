// Package guard puts any test binary that imports it into test mode with the
// in-memory store, so no test reaches for Postgres or Redis by accident.
package guard

import "os"

func init() {
	setDefault("RAILYARD_TEST_MODE", "1")
	setDefault("APP_STORE", "memory")
}

func setDefault(key, value string) {
	if _, ok := os.LookupEnv(key); !ok {
		_ = os.Setenv(key, value)
	}
}
