package content

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leighajarett/looker-deployer/internal/errors"
	"github.com/leighajarett/looker-deployer/internal/folders"
	"github.com/leighajarett/looker-deployer/internal/gzr"
	"github.com/leighajarett/looker-deployer/internal/logging"
	"github.com/leighajarett/looker-deployer/internal/report"
)

// Importer imports a single content file into a Looker folder.
// Satisfied by *gzr.Runner; tests substitute fakes.
type Importer interface {
	ImportContent(ctx context.Context, contentType gzr.ContentType, file, folderID string) error
}

// Resolver resolves folder paths on the target instance.
// Satisfied by *folders.Resolver.
type Resolver interface {
	EnsurePath(ctx context.Context, names []string) (string, error)
}

// Options configures a deploy run.
type Options struct {
	// Recursive deploys child directories of each folder.
	Recursive bool
	// TargetFolder redirects content to a different folder path on the
	// target. Must begin with "Shared".
	TargetFolder string
}

// Deployer pushes exported content into a target Looker instance.
type Deployer struct {
	resolver    Resolver
	importer    Importer
	concurrency int
	log         *logging.Logger
}

// NewDeployer creates a Deployer. Concurrency bounds parallel imports within
// a folder.
func NewDeployer(resolver Resolver, importer Importer, concurrency int, log *logging.Logger) *Deployer {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = logging.Global()
	}
	return &Deployer{
		resolver:    resolver,
		importer:    importer,
		concurrency: concurrency,
		log:         log,
	}
}

// ValidateTargetFolder checks a target folder override up front, before any
// API or filesystem work happens.
func ValidateTargetFolder(target string) error {
	if target == "" {
		return nil
	}
	first := strings.SplitN(filepath.ToSlash(target), "/", 2)[0]
	if first != folders.SharedName {
		return errors.TargetFolderInvalid(target)
	}
	return nil
}

// DeployFolders deploys each source directory (and, when recursive, its
// children) into the target instance. Failed imports are recorded in the
// report without aborting the rest of the run.
func (d *Deployer) DeployFolders(ctx context.Context, dirs []string, opts Options) (*report.Report, error) {
	if err := ValidateTargetFolder(opts.TargetFolder); err != nil {
		return nil, err
	}

	rep := report.New("Folder deploy")

	for _, dir := range dirs {
		d.log.Debug("working folder", "folder", dir)

		src := dir
		if opts.TargetFolder != "" {
			d.log.Info("target folder override", "target_folder", opts.TargetFolder)
			retargeted, cleanup, err := retargetDir(dir, opts.TargetFolder)
			if err != nil {
				return rep, err
			}
			src = retargeted
			defer cleanup()
		}

		if err := d.deployDir(ctx, src, opts.Recursive, rep); err != nil {
			return rep, err
		}
	}

	return rep, nil
}

// DeployLooks deploys individual look files.
func (d *Deployer) DeployLooks(ctx context.Context, files []string, opts Options) (*report.Report, error) {
	return d.deployFiles(ctx, gzr.ContentTypeLook, files, opts)
}

// DeployDashboards deploys individual dashboard files.
func (d *Deployer) DeployDashboards(ctx context.Context, files []string, opts Options) (*report.Report, error) {
	return d.deployFiles(ctx, gzr.ContentTypeDashboard, files, opts)
}

// deployDir ensures the Looker folder for one directory, imports its looks
// then its dashboards, and recurses into children when asked to.
func (d *Deployer) deployDir(ctx context.Context, dir string, recursive bool, rep *report.Report) error {
	contents, err := Scan(dir)
	if err != nil {
		return err
	}
	d.log.Debug("files to process",
		"looks", contents.Looks,
		"dashboards", contents.Dashboards,
		"children", contents.Children,
	)

	path, err := FolderPath(dir)
	if err != nil {
		return err
	}
	d.log.Debug("folders to process", "folders", path)

	folderID, err := d.resolver.EnsurePath(ctx, path)
	if err != nil {
		return err
	}
	d.log.Debug("target folder id", "folder_id", folderID)

	// Looks first, then dashboards: dashboards can reference looks.
	d.importWave(ctx, gzr.ContentTypeLook, contents.Looks, folderID, rep)
	d.importWave(ctx, gzr.ContentTypeDashboard, contents.Dashboards, folderID, rep)

	if recursive && len(contents.Children) > 0 {
		d.log.Info("recursing into child folders", "children", contents.Children)
		for _, child := range contents.Children {
			if err := d.deployDir(ctx, child, recursive, rep); err != nil {
				return err
			}
		}
	}

	return nil
}

// importWave imports one content type through a bounded worker pool.
// Workers record outcomes instead of returning errors so a failed import
// does not cancel imports already in flight.
func (d *Deployer) importWave(ctx context.Context, contentType gzr.ContentType, files []string, folderID string, rep *report.Report) {
	if len(files) == 0 {
		return
	}

	var g errgroup.Group
	g.SetLimit(d.concurrency)

	for _, file := range files {
		file := file
		g.Go(func() error {
			start := time.Now()
			err := d.importer.ImportContent(ctx, contentType, file, folderID)
			elapsed := time.Since(start)

			if err != nil {
				d.log.Error("import failed",
					"content_type", string(contentType),
					"source_file", file,
					"folder_id", folderID,
					"error", err.Error(),
				)
				rep.Failure(string(contentType), file, folderID, err, elapsed)
				return nil
			}

			rep.Success(string(contentType), file, folderID, elapsed)
			return nil
		})
	}

	// Workers never return errors, so Wait only synchronizes.
	_ = g.Wait()
}

// deployFiles deploys individual content files, resolving each file's folder
// from its directory.
func (d *Deployer) deployFiles(ctx context.Context, contentType gzr.ContentType, files []string, opts Options) (*report.Report, error) {
	if err := ValidateTargetFolder(opts.TargetFolder); err != nil {
		return nil, err
	}

	title := "Look deploy"
	if contentType == gzr.ContentTypeDashboard {
		title = "Dashboard deploy"
	}
	rep := report.New(title)

	for _, file := range files {
		d.log.Debug("working content", "content_type", string(contentType), "file", file)

		src := file
		if opts.TargetFolder != "" {
			d.log.Info("target folder override", "target_folder", opts.TargetFolder)
			retargeted, cleanup, err := retargetFile(file, opts.TargetFolder)
			if err != nil {
				return rep, err
			}
			src = retargeted
			defer cleanup()
		}

		path, err := FolderPathForFile(src)
		if err != nil {
			return rep, err
		}

		folderID, err := d.resolver.EnsurePath(ctx, path)
		if err != nil {
			return rep, err
		}

		start := time.Now()
		if err := d.importer.ImportContent(ctx, contentType, src, folderID); err != nil {
			rep.Failure(string(contentType), file, folderID, err, time.Since(start))
			continue
		}
		rep.Success(string(contentType), file, folderID, time.Since(start))
	}

	return rep, nil
}

// retargetDir copies a source directory tree under the target folder path in
// a temp directory, so path cutting and recursion see the override path.
func retargetDir(dir, targetFolder string) (string, func(), error) {
	tmp, err := os.MkdirTemp("", "ldeploy-")
	if err != nil {
		return "", nil, errors.Wrap(err, errors.ErrContent, "failed to create temp directory")
	}
	cleanup := func() { _ = os.RemoveAll(tmp) }

	dest := filepath.Join(tmp, filepath.FromSlash(targetFolder))
	if err := os.MkdirAll(dest, 0755); err != nil {
		cleanup()
		return "", nil, errors.Wrap(err, errors.ErrContent, "failed to stage target folder")
	}
	if err := copyFS(dest, os.DirFS(dir)); err != nil {
		cleanup()
		return "", nil, errors.Wrap(err, errors.ErrContent,
			fmt.Sprintf("failed to stage %s under %s", dir, targetFolder))
	}

	return dest, cleanup, nil
}

// retargetFile copies a single content file under the target folder path in
// a temp directory.
func retargetFile(file, targetFolder string) (string, func(), error) {
	tmp, err := os.MkdirTemp("", "ldeploy-")
	if err != nil {
		return "", nil, errors.Wrap(err, errors.ErrContent, "failed to create temp directory")
	}
	cleanup := func() { _ = os.RemoveAll(tmp) }

	destDir := filepath.Join(tmp, filepath.FromSlash(targetFolder))
	if err := os.MkdirAll(destDir, 0755); err != nil {
		cleanup()
		return "", nil, errors.Wrap(err, errors.ErrContent, "failed to stage target folder")
	}

	dest := filepath.Join(destDir, filepath.Base(file))
	if err := copyFile(file, dest); err != nil {
		cleanup()
		return "", nil, errors.Wrap(err, errors.ErrContent,
			fmt.Sprintf("failed to stage %s under %s", file, targetFolder))
	}

	return dest, cleanup, nil
}

// copyFS copies the file tree rooted at fsys into dir, matching the behavior
// of os.CopyFS, which is unavailable before Go 1.23.
func copyFS(dir string, fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		newPath := filepath.Join(dir, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(newPath, 0777)
		}
		if !d.Type().IsRegular() {
			return &os.PathError{Op: "CopyFS", Path: path, Err: os.ErrInvalid}
		}

		r, err := fsys.Open(path)
		if err != nil {
			return err
		}
		defer r.Close()
		info, err := r.Stat()
		if err != nil {
			return err
		}
		w, err := os.OpenFile(newPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0666|info.Mode()&0777)
		if err != nil {
			return err
		}

		if _, err := io.Copy(w, r); err != nil {
			w.Close()
			return &os.PathError{Op: "Copy", Path: newPath, Err: err}
		}
		return w.Close()
	})
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
