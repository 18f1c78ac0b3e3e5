// Package creds loads Looker environment credentials from a looker.ini file.
// The file is the same one the vendor SDK consumes: one section per
// environment, each with base_url, client_id, client_secret and verify_ssl.
package creds

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/leighajarett/looker-deployer/internal/errors"
)

// Environment holds the credentials for one Looker instance.
type Environment struct {
	// Name is the ini section name (e.g. "dev", "prod").
	Name string
	// BaseURL is the API endpoint, e.g. https://looker.company.com:19999.
	BaseURL string
	// ClientID is the API3 client id.
	ClientID string
	// ClientSecret is the API3 client secret.
	ClientSecret string
	// VerifySSL controls TLS certificate verification.
	VerifySSL bool
}

// GzrCreds is the credential subset the gzr CLI takes on its command line.
// Host and Port are split out of BaseURL because gzr takes them separately.
type GzrCreds struct {
	Host         string
	Port         string
	ClientID     string
	ClientSecret string
	VerifySSL    bool
}

// File is a parsed looker.ini.
type File struct {
	path string
	envs map[string]Environment
	// order preserves section order for error messages and listings.
	order []string
}

// Load parses the looker.ini at path.
func Load(path string) (*File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.IniNotFound(path)
	}

	raw, err := ini.Load(path)
	if err != nil {
		return nil, errors.IniParseError(path, err)
	}

	f := &File{
		path: path,
		envs: make(map[string]Environment),
	}

	for _, section := range raw.Sections() {
		name := section.Name()
		if name == ini.DefaultSection {
			continue
		}

		env := Environment{
			Name:         name,
			BaseURL:      section.Key("base_url").String(),
			ClientID:     section.Key("client_id").String(),
			ClientSecret: section.Key("client_secret").String(),
			VerifySSL:    parseVerifySSL(section.Key("verify_ssl").String()),
		}

		f.envs[name] = env
		f.order = append(f.order, name)
	}

	return f, nil
}

// Path returns the path the file was loaded from.
func (f *File) Path() string {
	return f.path
}

// Environments returns the environment names in file order.
func (f *File) Environments() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Environment returns the named environment, validating that the keys the
// deployer needs are present.
func (f *File) Environment(name string) (Environment, error) {
	env, ok := f.envs[name]
	if !ok {
		return Environment{}, errors.EnvironmentNotFound(name, f.path, f.order)
	}

	var missing []string
	if env.BaseURL == "" {
		missing = append(missing, "base_url")
	}
	if env.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if env.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if len(missing) > 0 {
		return Environment{}, errors.CredsIncomplete(name, missing)
	}

	return env, nil
}

// GzrCreds derives the host/port credential form gzr expects.
// The base URL is parsed as a URL rather than string-stripped, so hosts
// that happen to start with letters from the scheme survive intact.
func (e Environment) GzrCreds() (GzrCreds, error) {
	u, err := url.Parse(e.BaseURL)
	if err != nil || u.Hostname() == "" {
		return GzrCreds{}, errors.New(errors.ErrCreds,
			fmt.Sprintf("environment %q has an unparseable base_url: %s", e.Name, e.BaseURL))
	}

	return GzrCreds{
		Host:         u.Hostname(),
		Port:         u.Port(),
		ClientID:     e.ClientID,
		ClientSecret: e.ClientSecret,
		VerifySSL:    e.VerifySSL,
	}, nil
}

// parseVerifySSL interprets the strings Python's configparser writes
// ("True"/"False") along with the usual boolean spellings.
// An absent or unrecognized value verifies, matching the SDK default.
func parseVerifySSL(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "false", "0", "no", "off":
		return false
	default:
		return true
	}
}
