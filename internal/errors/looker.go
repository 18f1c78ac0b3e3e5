// Package errors provides comprehensive error types for looker-deployer.
// This file contains Looker API, folder and connection related errors.
package errors

import (
	"fmt"
	"strings"
)

// AuthFailed creates an error for API authentication failures.
func AuthFailed(env string, cause error) *DeployError {
	return &DeployError{
		Kind:    ErrAuth,
		Message: fmt.Sprintf("authentication failed for environment %q", env),
		Cause:   cause,
		Details: map[string]string{
			"environment": env,
		},
		Suggestion: `Check the client_id and client_secret for this environment
in looker.ini, and confirm the API credentials are still active in the
Looker admin panel (Admin > Users > API Keys).`,
	}
}

// APIUnavailable creates an error for transport-level API failures.
func APIUnavailable(baseURL string, cause error) *DeployError {
	err := &DeployError{
		Kind:    ErrAPI,
		Message: "Looker API unreachable",
		Cause:   cause,
		Suggestion: `Check connectivity to the instance:

  curl -I ` + baseURL + `

If the instance uses a self-signed certificate, set verify_ssl=False
for this environment in looker.ini.`,
	}
	if baseURL != "" {
		err.Details = map[string]string{"base_url": baseURL}
	}
	return err
}

// AmbiguousFolder creates an error when a folder name matches more than one
// folder under the same parent. Deploying into a guessed folder is never safe.
func AmbiguousFolder(name, parentID string, ids []string) *DeployError {
	return &DeployError{
		Kind:    ErrFolder,
		Message: fmt.Sprintf("more than one folder named %q under parent %s", name, parentID),
		Details: map[string]string{
			"folder":     name,
			"parent_id":  parentID,
			"folder_ids": strings.Join(ids, ", "),
		},
		Suggestion: "Rename or remove the duplicate folders in the target instance, then retry.",
	}
}

// FolderCreateFailed creates an error for a failed folder creation.
func FolderCreateFailed(name, parentID string, cause error) *DeployError {
	return &DeployError{
		Kind:    ErrFolder,
		Message: fmt.Sprintf("failed to create folder %q", name),
		Cause:   cause,
		Details: map[string]string{
			"folder":    name,
			"parent_id": parentID,
		},
		Suggestion: "Confirm the API user has the manage_spaces permission on the target instance.",
	}
}

// ConnectionWriteFailed creates an error for a failed connection create/update.
func ConnectionWriteFailed(name, op string, cause error) *DeployError {
	return &DeployError{
		Kind:    ErrConnection,
		Message: fmt.Sprintf("failed to %s connection %q", op, name),
		Cause:   cause,
		Details: map[string]string{
			"connection": name,
			"operation":  op,
		},
		Suggestion: `Connection passwords are not readable through the API, so the
target may be rejecting a write without one. Provide passwords with:

  ldeploy connections --db-config db-config.yaml`,
	}
}
