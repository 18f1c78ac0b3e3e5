// Package gzr wraps the Gazer CLI, which looker-deployer delegates content
// import and export to. Gazer owns the content wire format; this package owns
// building its argv from environment credentials and supervising the process.
package gzr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/leighajarett/looker-deployer/internal/config"
	"github.com/leighajarett/looker-deployer/internal/creds"
	"github.com/leighajarett/looker-deployer/internal/errors"
	"github.com/leighajarett/looker-deployer/internal/logging"
)

// ContentType is a gzr-importable content type.
type ContentType string

const (
	// ContentTypeLook imports a Look_*.json file.
	ContentTypeLook ContentType = "look"
	// ContentTypeDashboard imports a Dashboard_*.json file.
	ContentTypeDashboard ContentType = "dashboard"
)

// Valid reports whether the content type is one gzr can import.
func (t ContentType) Valid() bool {
	return t == ContentTypeLook || t == ContentTypeDashboard
}

// Runner executes gzr commands against one Looker environment.
type Runner struct {
	binary  string
	timeout time.Duration
	creds   creds.GzrCreds
	log     *logging.Logger
}

// NewRunner creates a Runner for the given environment credentials.
func NewRunner(cfg config.GzrConfig, gc creds.GzrCreds, log *logging.Logger) *Runner {
	if log == nil {
		log = logging.Global()
	}
	binary := cfg.Binary
	if binary == "" {
		binary = config.DefaultGzrBinary
	}
	return &Runner{
		binary:  binary,
		timeout: cfg.Timeout,
		creds:   gc,
		log:     log,
	}
}

// CheckAvailable verifies the gzr binary can be found.
func (r *Runner) CheckAvailable() error {
	if _, err := exec.LookPath(r.binary); err != nil {
		return errors.GzrNotInstalled(r.binary)
	}
	return nil
}

// ImportContent imports a single content file into the given folder.
func (r *Runner) ImportContent(ctx context.Context, contentType ContentType, file, folderID string) error {
	if !contentType.Valid() {
		return errors.New(errors.ErrContent,
			fmt.Sprintf("unsupported content type %q", contentType))
	}

	r.log.Info("deploying content",
		"content_type", string(contentType),
		"source_file", file,
		"folder_id", folderID,
		"host", r.creds.Host,
		"verify_ssl", r.creds.VerifySSL,
	)

	args := []string{string(contentType), "import", file, folderID}
	args = append(args, r.authArgs()...)
	args = append(args, "--force")

	return r.run(ctx, args)
}

// ExportFolder exports a folder tree (by ID) into dir.
func (r *Runner) ExportFolder(ctx context.Context, folderID, dir string) error {
	r.log.Info("exporting folder",
		"folder_id", folderID,
		"dir", dir,
		"host", r.creds.Host,
	)

	args := []string{"space", "export", folderID, "--dir", dir}
	args = append(args, r.authArgs()...)

	return r.run(ctx, args)
}

// authArgs builds the credential flags shared by every gzr invocation.
func (r *Runner) authArgs() []string {
	args := []string{
		"--host", r.creds.Host,
		"--client-id", r.creds.ClientID,
		"--client-secret", r.creds.ClientSecret,
	}
	if r.creds.Port != "" {
		args = append(args, "--port", r.creds.Port)
	}
	if !r.creds.VerifySSL {
		args = append(args, "--no-verify-ssl")
	}
	return args
}

// run executes gzr with the given args, streaming output to the logs.
// A non-zero exit is an error: silently swallowing failed imports leaves the
// target instance half-deployed with no signal.
func (r *Runner) run(ctx context.Context, args []string) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.binary, args...)

	var output bytes.Buffer
	logOut := r.log.Writer(logging.LevelDebug)
	cmd.Stdout = io.MultiWriter(&output, logOut)
	cmd.Stderr = io.MultiWriter(&output, logOut)

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return errors.GzrTimeout(elapsed)
		}
		exitCode := 1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return errors.GzrFailed(args, exitCode, strings.TrimSpace(output.String()))
	}

	r.log.Debug("gzr finished", "operation", args[0], "duration", elapsed.String())
	return nil
}
