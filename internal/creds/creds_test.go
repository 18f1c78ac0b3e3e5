package creds

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	deployerrors "github.com/leighajarett/looker-deployer/internal/errors"
)

func writeIni(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "looker.ini")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write ini: %v", err)
	}
	return path
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("nonexistent/looker.ini")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, deployerrors.ErrCreds) {
		t.Errorf("expected ErrCreds, got %v", err)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	path := writeIni(t, `
[dev]
base_url=https://looker-dev.company.com:19999
client_id=dev_id
client_secret=dev_secret
verify_ssl=True

[prod]
base_url=https://looker.company.com:19999
client_id=prod_id
client_secret=prod_secret
verify_ssl=False
`)

	file, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	envs := file.Environments()
	if len(envs) != 2 || envs[0] != "dev" || envs[1] != "prod" {
		t.Errorf("Environments() = %v, want [dev prod]", envs)
	}

	dev, err := file.Environment("dev")
	if err != nil {
		t.Fatalf("Environment(dev) error = %v", err)
	}
	if dev.BaseURL != "https://looker-dev.company.com:19999" {
		t.Errorf("BaseURL = %q", dev.BaseURL)
	}
	if dev.ClientID != "dev_id" || dev.ClientSecret != "dev_secret" {
		t.Errorf("credentials = %q/%q", dev.ClientID, dev.ClientSecret)
	}
	if !dev.VerifySSL {
		t.Error("dev.VerifySSL = false, want true")
	}

	prod, err := file.Environment("prod")
	if err != nil {
		t.Fatalf("Environment(prod) error = %v", err)
	}
	if prod.VerifySSL {
		t.Error("prod.VerifySSL = true, want false")
	}
}

func TestEnvironment_NotFound(t *testing.T) {
	path := writeIni(t, `
[dev]
base_url=https://looker-dev.company.com:19999
client_id=id
client_secret=secret
`)

	file, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	_, err = file.Environment("staging")
	if err == nil {
		t.Fatal("expected error for missing section")
	}

	var deployErr *deployerrors.DeployError
	if !errors.As(err, &deployErr) {
		t.Fatalf("expected *DeployError, got %T", err)
	}
	if deployErr.Details["environment"] != "staging" {
		t.Errorf("details = %v", deployErr.Details)
	}
}

func TestEnvironment_IncompleteSection(t *testing.T) {
	path := writeIni(t, `
[dev]
base_url=https://looker-dev.company.com:19999
`)

	file, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	_, err = file.Environment("dev")
	if err == nil {
		t.Fatal("expected error for incomplete section")
	}

	var deployErr *deployerrors.DeployError
	if !errors.As(err, &deployErr) {
		t.Fatalf("expected *DeployError, got %T", err)
	}
	if deployErr.Details["missing"] != "client_id, client_secret" {
		t.Errorf("missing = %q", deployErr.Details["missing"])
	}
}

func TestGzrCreds(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		wantHost string
		wantPort string
		wantErr  bool
	}{
		{
			name:     "host with port",
			baseURL:  "https://looker.company.com:19999",
			wantHost: "looker.company.com",
			wantPort: "19999",
		},
		{
			name:     "host without port",
			baseURL:  "https://looker.company.com",
			wantHost: "looker.company.com",
			wantPort: "",
		},
		{
			// The original string-stripping approach mangled hosts whose
			// leading letters overlap the scheme; URL parsing must not.
			name:     "host starting with scheme letters",
			baseURL:  "https://hts.looker.company.com:443",
			wantHost: "hts.looker.company.com",
			wantPort: "443",
		},
		{
			name:    "garbage url",
			baseURL: "://not-a-url",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := Environment{
				Name:         "dev",
				BaseURL:      tt.baseURL,
				ClientID:     "id",
				ClientSecret: "secret",
				VerifySSL:    true,
			}

			gc, err := env.GzrCreds()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("GzrCreds() error = %v", err)
			}
			if gc.Host != tt.wantHost {
				t.Errorf("Host = %q, want %q", gc.Host, tt.wantHost)
			}
			if gc.Port != tt.wantPort {
				t.Errorf("Port = %q, want %q", gc.Port, tt.wantPort)
			}
			if gc.ClientID != "id" || gc.ClientSecret != "secret" {
				t.Errorf("credentials not carried over: %+v", gc)
			}
		})
	}
}

func TestParseVerifySSL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"True", true},
		{"true", true},
		{"False", false},
		{"false", false},
		{"0", false},
		{"no", false},
		{"off", false},
		{"", true},
		{"anything", true},
	}

	for _, tt := range tests {
		if got := parseVerifySSL(tt.in); got != tt.want {
			t.Errorf("parseVerifySSL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
