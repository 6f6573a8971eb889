// Package guard switches the binaries into test mode when imported from a
// test, so running main() never dials Postgres or Redis.
package guard

import (
	"os"
	"sync"
)

const testModeEnv = "CBM_TEST_MODE"

var once sync.Once

func init() {
	Enable()
}

// Enable sets CBM_TEST_MODE unless the caller already chose a value.
func Enable() {
	once.Do(func() {
		if os.Getenv(testModeEnv) == "" {
			_ = os.Setenv(testModeEnv, "1")
		}
	})
}
