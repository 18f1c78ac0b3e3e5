package content

import (
	"context"
	"os"

	"github.com/leighajarett/looker-deployer/internal/errors"
	"github.com/leighajarett/looker-deployer/internal/folders"
	"github.com/leighajarett/looker-deployer/internal/logging"
)

// Exporter pulls a folder tree out of a Looker instance.
// Satisfied by *gzr.Runner.
type Exporter interface {
	ExportFolder(ctx context.Context, folderID, dir string) error
}

// Export pulls the entire Shared tree of the source environment into dir.
// The resulting directory layout is what DeployFolders consumes.
func Export(ctx context.Context, exporter Exporter, dir string, log *logging.Logger) error {
	if log == nil {
		log = logging.Global()
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, errors.ErrContent, "failed to create export directory")
	}

	log.Info("pulling content", "folder_id", folders.SharedID, "dir", dir)
	return exporter.ExportFolder(ctx, folders.SharedID, dir)
}
