// Package testing switches the process into test mode when blank imported
// from a _test.go file.
package testing

import (
	"os"
	"sync"
)

var once sync.Once

var testDefaults = map[string]string{
	"KPIR_TEST_MODE": "1",
	"SESSION_SECRET": "test-session-secret",
	"CSRF_SECRET":    "test-csrf-secret",
	"GOTENBERG_URL":  "http://127.0.0.1:0",
}

// Ensure applies the test environment once. Variables already set are kept,
// except KPIR_TEST_MODE which is always on.
func Ensure() {
	once.Do(func() {
		for key, value := range testDefaults {
			if key != "KPIR_TEST_MODE" && os.Getenv(key) != "" {
				continue
			}
			_ = os.Setenv(key, value)
		}
	})
}

func init() {
	Ensure()
}
