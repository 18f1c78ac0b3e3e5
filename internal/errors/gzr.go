// Package errors provides comprehensive error types for looker-deployer.
// This file contains gzr subprocess related errors.
package errors

import (
	"fmt"
	"time"
)

// GzrNotInstalled creates an error when the gzr binary cannot be found.
func GzrNotInstalled(binary string) *DeployError {
	return &DeployError{
		Kind:    ErrGzr,
		Message: fmt.Sprintf("%s is not installed or not in PATH", binary),
		Details: map[string]string{
			"binary": binary,
		},
		Suggestion: `Install the Gazer CLI, which looker-deployer uses for
content import and export:

  gem install gazer

Then verify with: gzr --version`,
		DocLink: "https://github.com/looker-open-source/gzr",
	}
}

// GzrFailed creates an error for a gzr invocation that exited non-zero.
func GzrFailed(args []string, exitCode int, output string) *DeployError {
	err := &DeployError{
		Kind:    ErrGzr,
		Message: fmt.Sprintf("gzr exited with code %d", exitCode),
		Details: map[string]string{
			"exit_code": fmt.Sprintf("%d", exitCode),
		},
		Suggestion: "Re-run with --debug to see the full gzr output in the logs.",
	}
	if len(args) > 0 {
		// First two args identify the operation (e.g. "dashboard import")
		// without leaking credentials that appear later in the argv.
		op := args[0]
		if len(args) > 1 {
			op += " " + args[1]
		}
		err.Details["operation"] = op
	}
	if output != "" {
		err.Details["output"] = tail(output, 500)
	}
	return err
}

// GzrTimeout creates an error for a gzr invocation that exceeded its deadline.
func GzrTimeout(elapsed time.Duration) *DeployError {
	return &DeployError{
		Kind:    ErrTimeout,
		Message: fmt.Sprintf("gzr timed out after %v", elapsed.Round(time.Second)),
		Suggestion: `Large dashboards can take a while to import. Raise the limit
in the deployer config:

  gzr:
    timeout: 10m`,
	}
}

// tail returns at most n trailing bytes of s, marking truncation.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
