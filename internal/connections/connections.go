// Package connections promotes database connection definitions between
// Looker environments. Connection passwords never come back from the API, so
// writes to the target are completed from a local YAML password file.
package connections

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leighajarett/looker-deployer/internal/errors"
	"github.com/leighajarett/looker-deployer/internal/logging"
	"github.com/leighajarett/looker-deployer/internal/looker"
	"github.com/leighajarett/looker-deployer/internal/report"
)

// DBConfig maps connection names to the secrets the API won't export.
type DBConfig map[string]struct {
	Password string `yaml:"password"`
}

// LoadDBConfig reads a YAML password file:
//
//	warehouse:
//	  password: hunter2
func LoadDBConfig(path string) (DBConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConnection,
			fmt.Sprintf("failed to read db config %s", path))
	}

	var cfg DBConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConnection,
			fmt.Sprintf("failed to parse db config %s", path))
	}
	return cfg, nil
}

// Options configures a connection promotion run.
type Options struct {
	// Pattern optionally restricts promotion to connection names matching
	// this regular expression.
	Pattern string
	// DBConfigPath optionally points at a YAML password file.
	DBConfigPath string
	// Delete removes target connections that match Pattern and no longer
	// exist on the source.
	Delete bool
}

// Syncer promotes connections from a source to a target instance.
type Syncer struct {
	source looker.Client
	target looker.Client
	log    *logging.Logger
}

// NewSyncer creates a Syncer between two environments.
func NewSyncer(source, target looker.Client, log *logging.Logger) *Syncer {
	if log == nil {
		log = logging.Global()
	}
	return &Syncer{source: source, target: target, log: log}
}

// Send promotes matching source connections to the target: existing names
// are updated, new names created, and (optionally) orphaned target names
// deleted. Individual failures are recorded without stopping the run.
func (s *Syncer) Send(ctx context.Context, opts Options) (*report.Report, error) {
	var pattern *regexp.Regexp
	if opts.Pattern != "" {
		var err error
		pattern, err = regexp.Compile(opts.Pattern)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrConnection,
				fmt.Sprintf("invalid connection pattern %q", opts.Pattern))
		}
	}

	var dbConfig DBConfig
	if opts.DBConfigPath != "" {
		var err error
		dbConfig, err = LoadDBConfig(opts.DBConfigPath)
		if err != nil {
			return nil, err
		}
	}

	sourceConns, err := s.source.AllConnections(ctx)
	if err != nil {
		return nil, err
	}
	targetConns, err := s.target.AllConnections(ctx)
	if err != nil {
		return nil, err
	}

	targetByName := make(map[string]looker.Connection, len(targetConns))
	for _, c := range targetConns {
		targetByName[c.Name] = c
	}

	rep := report.New("Connection deploy")
	sourceNames := make(map[string]bool, len(sourceConns))

	for _, conn := range sourceConns {
		if pattern != nil && !pattern.MatchString(conn.Name) {
			s.log.Debug("skipping connection outside pattern", "connection", conn.Name)
			continue
		}
		sourceNames[conn.Name] = true

		if entry, ok := dbConfig[conn.Name]; ok {
			conn.Password = entry.Password
		} else if dbConfig != nil {
			s.log.Warn("no password configured for connection", "connection", conn.Name)
		}

		start := time.Now()
		if _, exists := targetByName[conn.Name]; exists {
			s.log.Info("updating connection", "connection", conn.Name)
			if err := s.target.UpdateConnection(ctx, conn.Name, conn); err != nil {
				rep.Failure("connection", conn.Name, "update", err, time.Since(start))
				continue
			}
			rep.Success("connection", conn.Name, "update", time.Since(start))
		} else {
			s.log.Info("creating connection", "connection", conn.Name)
			if err := s.target.CreateConnection(ctx, conn); err != nil {
				rep.Failure("connection", conn.Name, "create", err, time.Since(start))
				continue
			}
			rep.Success("connection", conn.Name, "create", time.Since(start))
		}
	}

	if opts.Delete {
		for _, conn := range targetConns {
			if pattern != nil && !pattern.MatchString(conn.Name) {
				continue
			}
			if sourceNames[conn.Name] {
				continue
			}

			start := time.Now()
			s.log.Info("deleting orphaned connection", "connection", conn.Name)
			if err := s.target.DeleteConnection(ctx, conn.Name); err != nil {
				rep.Failure("connection", conn.Name, "delete", err, time.Since(start))
				continue
			}
			rep.Success("connection", conn.Name, "delete", time.Since(start))
		}
	}

	return rep, nil
}
