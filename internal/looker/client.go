// Package looker binds the deployer to the Looker API through the official
// Go SDK. The rest of the code only sees the narrow Client interface, which
// keeps the SDK types out of the deploy logic and lets tests use fakes.
package looker

import (
	"context"
)

// Folder is a Looker folder (historically "space").
type Folder struct {
	ID       string
	Name     string
	ParentID string
}

// Connection is a Looker database connection definition.
// Password is write-only through the API: listing connections never returns
// it, so promotion has to inject passwords from local configuration.
type Connection struct {
	Name                 string
	DialectName          string
	Host                 string
	Port                 string
	Database             string
	Schema               string
	Username             string
	Password             string
	SSL                  bool
	JdbcAdditionalParams string
}

// Client is the Looker API surface the deployer uses.
type Client interface {
	// SearchFolders returns folders with the given name under the given parent.
	SearchFolders(ctx context.Context, name, parentID string) ([]Folder, error)
	// CreateFolder creates a folder under the given parent.
	CreateFolder(ctx context.Context, name, parentID string) (Folder, error)

	// AllConnections lists every database connection.
	AllConnections(ctx context.Context) ([]Connection, error)
	// CreateConnection creates a new database connection.
	CreateConnection(ctx context.Context, conn Connection) error
	// UpdateConnection updates the named database connection.
	UpdateConnection(ctx context.Context, name string, conn Connection) error
	// DeleteConnection removes the named database connection.
	DeleteConnection(ctx context.Context, name string) error
}
