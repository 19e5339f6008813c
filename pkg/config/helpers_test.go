package config_test

import (
	"os"
	"testing"
)

// unset removes keys for the rest of the test. Call t.Setenv on the same keys
// first so their original values are restored afterwards.
func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		if err := os.Unsetenv(k); err != nil {
			t.Fatalf("unset %s: %v", k, err)
		}
	}
}
