package app

import (
	"os"
	"strconv"
	"sync"
)

const testModeEnv = "RAILYARD_TEST_MODE"

var (
	testModeMu  sync.RWMutex
	testModeSet bool
	testMode    bool
)

// InTestMode reports whether binaries should return before opening
// connections. Any value strconv.ParseBool accepts as true enables it.
func InTestMode() bool {
	testModeMu.RLock()
	if testModeSet {
		defer testModeMu.RUnlock()
		return testMode
	}
	testModeMu.RUnlock()
	return RefreshTestMode()
}

// RefreshTestMode rereads RAILYARD_TEST_MODE and returns the new value.
func RefreshTestMode() bool {
	on, _ := strconv.ParseBool(os.Getenv(testModeEnv))
	testModeMu.Lock()
	defer testModeMu.Unlock()
	testMode, testModeSet = on, true
	return on
}
