package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertLogged checks that the captured log output contains a record with
// msg and every key=value pair in attrs. It abstracts the log handler's
// quoting so tests do not depend on it.
func AssertLogged(t *testing.T, result *HarnessResult, msg string, attrs ...string) {
	t.Helper()

	for _, line := range strings.Split(result.Logs(), "\n") {
		if !strings.Contains(line, msg) {
			continue
		}
		matched := true
		for _, attr := range attrs {
			if !strings.Contains(line, attr) {
				matched = false
				break
			}
		}
		if matched {
			return
		}
	}
	require.Failf(t, "log record not found", "expected a log record %q with %v in:\n%s", msg, attrs, result.Logs())
}

// AssertNotLogged checks that no captured log record contains msg.
func AssertNotLogged(t *testing.T, result *HarnessResult, msg string) {
	t.Helper()
	require.NotContains(t, result.Logs(), msg)
}
