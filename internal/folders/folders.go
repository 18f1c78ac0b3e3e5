// Package folders resolves and creates Looker folder hierarchies.
// Content always deploys under the shared root ("Shared"), whose folder ID
// is fixed by Looker; everything below it is resolved by name, creating
// missing levels on the way down.
package folders

import (
	"context"
	"fmt"

	"github.com/leighajarett/looker-deployer/internal/errors"
	"github.com/leighajarett/looker-deployer/internal/logging"
	"github.com/leighajarett/looker-deployer/internal/looker"
)

const (
	// SharedName is the name of the shared root folder.
	SharedName = "Shared"
	// RootParentID is the parent ID of the shared root.
	RootParentID = "0"
	// SharedID is the well-known folder ID of the shared root.
	SharedID = "1"
)

// Resolver resolves folder names to IDs against a Looker instance.
type Resolver struct {
	client looker.Client
	log    *logging.Logger
}

// NewResolver creates a Resolver over the given client.
func NewResolver(client looker.Client, log *logging.Logger) *Resolver {
	if log == nil {
		log = logging.Global()
	}
	return &Resolver{client: client, log: log}
}

// IDsForName returns the IDs of folders with the given name under the given
// parent. The shared root never hits the API: its ID is fixed.
func (r *Resolver) IDsForName(ctx context.Context, name, parentID string) ([]string, error) {
	if name == SharedName && parentID == RootParentID {
		return []string{SharedID}, nil
	}

	found, err := r.client.SearchFolders(ctx, name, parentID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(found))
	for _, f := range found {
		ids = append(ids, f.ID)
	}
	return ids, nil
}

// ResolveOrCreate returns the ID of the folder with the given name under the
// given parent, creating it when absent. More than one match is an error:
// deploying into a guessed duplicate is never safe.
func (r *Resolver) ResolveOrCreate(ctx context.Context, name, parentID string) (string, error) {
	ids, err := r.IDsForName(ctx, name, parentID)
	if err != nil {
		return "", err
	}
	r.log.Debug("folder ids from name", "folder", name, "parent_id", parentID, "ids", ids)

	switch len(ids) {
	case 1:
		r.log.Info("found folder", "folder", name, "id", ids[0])
		return ids[0], nil
	case 0:
		r.log.Warn("no folder found, creating", "folder", name, "parent_id", parentID)
		created, err := r.client.CreateFolder(ctx, name, parentID)
		if err != nil {
			return "", err
		}
		return created.ID, nil
	default:
		return "", errors.AmbiguousFolder(name, parentID, ids)
	}
}

// EnsurePath walks a path of folder names rooted at Shared, resolving or
// creating each level, and returns the ID of the final element — the folder
// content deploys into. Each level's resolved ID seeds the next level's
// parent, so the walk is strictly sequential.
func (r *Resolver) EnsurePath(ctx context.Context, names []string) (string, error) {
	if len(names) == 0 {
		return "", errors.New(errors.ErrFolder, "empty folder path")
	}
	if names[0] != SharedName {
		return "", errors.New(errors.ErrFolder,
			fmt.Sprintf("folder path must be rooted at %q, got %q", SharedName, names[0]))
	}

	parentID := RootParentID
	for _, name := range names {
		if name == "" {
			return "", errors.New(errors.ErrFolder, "folder path contains an empty segment")
		}

		r.log.Debug("ensuring folder", "folder", name, "parent_id", parentID)
		id, err := r.ResolveOrCreate(ctx, name, parentID)
		if err != nil {
			return "", err
		}
		parentID = id
	}

	return parentID, nil
}
