// Package content deploys gzr-exported Looker content (looks and dashboards)
// into a target instance, mapping on-disk directory trees to Looker folder
// paths rooted at Shared.
package content

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/leighajarett/looker-deployer/internal/errors"
	"github.com/leighajarett/looker-deployer/internal/folders"
)

// gzr names exported files after their content type.
var (
	lookFilePattern = regexp.MustCompile(`^Look`)
	dashFilePattern = regexp.MustCompile(`^Dashboard`)
)

// DirContents lists the deployable pieces of one exported directory.
type DirContents struct {
	// Path is the scanned directory.
	Path string
	// Looks are full paths of Look_*.json files.
	Looks []string
	// Dashboards are full paths of Dashboard_*.json files.
	Dashboards []string
	// Children are full paths of subdirectories (child folders).
	Children []string
}

// Scan inspects one exported directory, separating looks, dashboards and
// child folders. Files that match neither pattern (e.g. the Space metadata
// file gzr writes) are ignored.
func Scan(dir string) (DirContents, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return DirContents{}, errors.Wrap(err, errors.ErrContent,
			fmt.Sprintf("failed to read content directory %s", dir))
	}

	contents := DirContents{Path: dir}
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		switch {
		case entry.IsDir():
			contents.Children = append(contents.Children, full)
		case lookFilePattern.MatchString(entry.Name()):
			contents.Looks = append(contents.Looks, full)
		case dashFilePattern.MatchString(entry.Name()):
			contents.Dashboards = append(contents.Dashboards, full)
		}
	}

	return contents, nil
}

// FolderPath maps an on-disk directory to the Looker folder path it deploys
// into: the path is cut at the first path segment equal to "Shared" and the
// remainder is the folder path. Matching whole segments (not substrings)
// keeps directories like "SharedReports" from being mistaken for the root.
func FolderPath(dir string) ([]string, error) {
	cleaned := filepath.Clean(dir)
	parts := strings.Split(cleaned, string(os.PathSeparator))

	for i, part := range parts {
		if part == folders.SharedName {
			out := make([]string, len(parts)-i)
			copy(out, parts[i:])
			return out, nil
		}
	}

	return nil, errors.WithSuggestion(errors.ErrContent,
		fmt.Sprintf("path %q has no %q segment", dir, folders.SharedName),
		`Content deploys are rooted at the Shared folder, so the local path must
contain the exported Shared directory, e.g. ./export/Shared/Data_Team`)
}

// FolderPathForFile maps a single content file to the folder path of the
// directory that contains it.
func FolderPathForFile(file string) ([]string, error) {
	return FolderPath(filepath.Dir(file))
}
