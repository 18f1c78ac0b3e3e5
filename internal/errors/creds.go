// Package errors provides comprehensive error types for looker-deployer.
// This file contains credential and configuration related errors.
package errors

import (
	"fmt"
	"strings"
)

// IniNotFound creates an error for a missing looker.ini file.
func IniNotFound(iniPath string) *DeployError {
	return &DeployError{
		Kind:    ErrCreds,
		Message: fmt.Sprintf("credentials file not found: %s", iniPath),
		Details: map[string]string{
			"path": iniPath,
		},
		Suggestion: `Create a looker.ini with one section per environment:

  [dev]
  base_url=https://looker-dev.company.com:19999
  client_id=abc
  client_secret=xyz
  verify_ssl=True

Then point ldeploy at it with --ini /path/to/looker.ini`,
		DocLink: "https://github.com/looker-open-source/sdk-codegen#configuring-the-sdk",
	}
}

// IniParseError creates an error for an unreadable looker.ini file.
func IniParseError(iniPath string, parseErr error) *DeployError {
	return &DeployError{
		Kind:    ErrCreds,
		Message: fmt.Sprintf("failed to parse credentials file: %s", iniPath),
		Cause:   parseErr,
		Details: map[string]string{
			"path": iniPath,
		},
		Suggestion: "Check the file for INI syntax errors (sections in brackets, key=value lines).",
	}
}

// EnvironmentNotFound creates an error for a missing ini section.
func EnvironmentNotFound(env, iniPath string, available []string) *DeployError {
	suggestion := fmt.Sprintf("Add a [%s] section to %s or pass a different --env.", env, iniPath)
	if len(available) > 0 {
		suggestion += fmt.Sprintf("\n  Available environments: %s", strings.Join(available, ", "))
	}
	return &DeployError{
		Kind:    ErrCreds,
		Message: fmt.Sprintf("environment %q not found in credentials file", env),
		Details: map[string]string{
			"environment": env,
			"path":        iniPath,
		},
		Suggestion: suggestion,
	}
}

// CredsIncomplete creates an error for a section missing required keys.
func CredsIncomplete(env string, missing []string) *DeployError {
	return &DeployError{
		Kind:    ErrCreds,
		Message: fmt.Sprintf("environment %q is missing required keys", env),
		Details: map[string]string{
			"environment": env,
			"missing":     strings.Join(missing, ", "),
		},
		Suggestion: "Each environment needs base_url, client_id and client_secret.",
	}
}

// ConfigValidationError creates an error for invalid tool configuration values.
func ConfigValidationError(field, message string, validOptions []string) *DeployError {
	suggestion := fmt.Sprintf("Fix the %q field in the deployer config file", field)
	if len(validOptions) > 0 {
		suggestion += fmt.Sprintf("\n  Valid options: %s", strings.Join(validOptions, ", "))
	}

	return &DeployError{
		Kind:    ErrConfig,
		Message: fmt.Sprintf("invalid configuration: %s", message),
		Details: map[string]string{
			"field": field,
		},
		Suggestion: suggestion,
	}
}

// TargetFolderInvalid creates an error for a target folder override that does
// not start at the shared root.
func TargetFolderInvalid(target string) *DeployError {
	return &DeployError{
		Kind:    ErrConfig,
		Message: fmt.Sprintf("target folder %q must begin with 'Shared'", target),
		Details: map[string]string{
			"target_folder": target,
		},
		Suggestion: `Target folder overrides are absolute Looker paths, e.g.:
  --target-folder Shared/Data_Team/Staging`,
	}
}
