package gzr

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/leighajarett/looker-deployer/internal/config"
	"github.com/leighajarett/looker-deployer/internal/creds"
	"github.com/leighajarett/looker-deployer/internal/errors"
	"github.com/leighajarett/looker-deployer/internal/logging"
)

func testCreds() creds.GzrCreds {
	return creds.GzrCreds{
		Host:         "looker.company.com",
		Port:         "19999",
		ClientID:     "id",
		ClientSecret: "secret",
		VerifySSL:    true,
	}
}

func TestContentType_Valid(t *testing.T) {
	if !ContentTypeLook.Valid() || !ContentTypeDashboard.Valid() {
		t.Error("look and dashboard must be valid content types")
	}
	if ContentType("board").Valid() {
		t.Error("board is not an importable content type")
	}
}

func TestCheckAvailable_Missing(t *testing.T) {
	r := NewRunner(config.GzrConfig{Binary: "definitely-not-a-real-binary"}, testCreds(), logging.NewNoop())

	err := r.CheckAvailable()
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if !stderrors.Is(err, errors.ErrGzr) {
		t.Errorf("expected ErrGzr, got %v", err)
	}
}

func TestCheckAvailable_Found(t *testing.T) {
	r := NewRunner(config.GzrConfig{Binary: "echo"}, testCreds(), logging.NewNoop())
	if err := r.CheckAvailable(); err != nil {
		t.Errorf("CheckAvailable() error = %v", err)
	}
}

func TestImportContent_InvalidType(t *testing.T) {
	r := NewRunner(config.GzrConfig{Binary: "echo"}, testCreds(), logging.NewNoop())

	err := r.ImportContent(context.Background(), ContentType("board"), "file.json", "1")
	if err == nil {
		t.Fatal("expected error for invalid content type")
	}
	if !stderrors.Is(err, errors.ErrContent) {
		t.Errorf("expected ErrContent, got %v", err)
	}
}

func TestImportContent_Success(t *testing.T) {
	// echo accepts any argv and exits zero, standing in for gzr.
	r := NewRunner(config.GzrConfig{Binary: "echo", Timeout: 10 * time.Second}, testCreds(), logging.NewNoop())

	err := r.ImportContent(context.Background(), ContentTypeLook, "Look_1.json", "42")
	if err != nil {
		t.Errorf("ImportContent() error = %v", err)
	}
}

func TestImportContent_NonZeroExit(t *testing.T) {
	r := NewRunner(config.GzrConfig{Binary: "false"}, testCreds(), logging.NewNoop())

	err := r.ImportContent(context.Background(), ContentTypeDashboard, "Dashboard_1.json", "42")
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !stderrors.Is(err, errors.ErrGzr) {
		t.Errorf("expected ErrGzr, got %v", err)
	}
}

func TestExportFolder_Success(t *testing.T) {
	r := NewRunner(config.GzrConfig{Binary: "echo"}, testCreds(), logging.NewNoop())

	if err := r.ExportFolder(context.Background(), "1", t.TempDir()); err != nil {
		t.Errorf("ExportFolder() error = %v", err)
	}
}

func TestAuthArgs(t *testing.T) {
	tests := []struct {
		name        string
		creds       creds.GzrCreds
		wantPort    bool
		wantNoSSL   bool
	}{
		{
			name:      "verify ssl with port",
			creds:     testCreds(),
			wantPort:  true,
			wantNoSSL: false,
		},
		{
			name: "no verify ssl without port",
			creds: creds.GzrCreds{
				Host:         "looker.company.com",
				ClientID:     "id",
				ClientSecret: "secret",
				VerifySSL:    false,
			},
			wantPort:  false,
			wantNoSSL: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner(config.GzrConfig{}, tt.creds, logging.NewNoop())
			args := strings.Join(r.authArgs(), " ")

			if !strings.Contains(args, "--host looker.company.com") {
				t.Errorf("args missing host: %q", args)
			}
			if !strings.Contains(args, "--client-id id") {
				t.Errorf("args missing client id: %q", args)
			}
			if got := strings.Contains(args, "--port 19999"); got != tt.wantPort {
				t.Errorf("port flag present = %v, want %v (%q)", got, tt.wantPort, args)
			}
			if got := strings.Contains(args, "--no-verify-ssl"); got != tt.wantNoSSL {
				t.Errorf("no-verify-ssl present = %v, want %v (%q)", got, tt.wantNoSSL, args)
			}
		})
	}
}

func TestNewRunner_DefaultBinary(t *testing.T) {
	r := NewRunner(config.GzrConfig{}, testCreds(), logging.NewNoop())
	if r.binary != config.DefaultGzrBinary {
		t.Errorf("binary = %q, want %q", r.binary, config.DefaultGzrBinary)
	}
}
