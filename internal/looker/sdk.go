package looker

import (
	"context"

	"github.com/looker-open-source/sdk-codegen/go/rtl"
	v4 "github.com/looker-open-source/sdk-codegen/go/sdk/v4"

	"github.com/leighajarett/looker-deployer/internal/errors"
)

// sdkClient implements Client on top of the official Looker Go SDK.
type sdkClient struct {
	sdk *v4.LookerSDK
}

// NewClient builds a Client authenticated from the given looker.ini section,
// mirroring the SDK's own config-file setup.
func NewClient(iniPath, section string) (Client, error) {
	settings, err := rtl.NewSettingsFromFile(iniPath, &section)
	if err != nil {
		return nil, errors.IniParseError(iniPath, err)
	}

	session := rtl.NewAuthSession(settings)
	return &sdkClient{sdk: v4.NewLookerSDK(session)}, nil
}

// SearchFolders returns folders with the given name under the given parent.
func (c *sdkClient) SearchFolders(ctx context.Context, name, parentID string) ([]Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := v4.RequestSearchFolders{
		Name:     &name,
		ParentId: &parentID,
	}
	res, err := c.sdk.SearchFolders(req, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrAPI, "folder search failed")
	}

	folders := make([]Folder, 0, len(res))
	for _, f := range res {
		folders = append(folders, fromSDKFolder(f))
	}
	return folders, nil
}

// CreateFolder creates a folder under the given parent.
func (c *sdkClient) CreateFolder(ctx context.Context, name, parentID string) (Folder, error) {
	if err := ctx.Err(); err != nil {
		return Folder{}, err
	}

	res, err := c.sdk.CreateFolder(v4.CreateFolder{
		Name:     name,
		ParentId: parentID,
	}, nil)
	if err != nil {
		return Folder{}, errors.FolderCreateFailed(name, parentID, err)
	}
	return fromSDKFolder(res), nil
}

// AllConnections lists every database connection.
func (c *sdkClient) AllConnections(ctx context.Context) ([]Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := c.sdk.AllConnections("", nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrAPI, "connection listing failed")
	}

	conns := make([]Connection, 0, len(res))
	for _, dc := range res {
		conns = append(conns, fromSDKConnection(dc))
	}
	return conns, nil
}

// CreateConnection creates a new database connection.
func (c *sdkClient) CreateConnection(ctx context.Context, conn Connection) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := c.sdk.CreateConnection(toSDKConnection(conn), nil); err != nil {
		return errors.ConnectionWriteFailed(conn.Name, "create", err)
	}
	return nil
}

// UpdateConnection updates the named database connection.
func (c *sdkClient) UpdateConnection(ctx context.Context, name string, conn Connection) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := c.sdk.UpdateConnection(name, toSDKConnection(conn), nil); err != nil {
		return errors.ConnectionWriteFailed(name, "update", err)
	}
	return nil
}

// DeleteConnection removes the named database connection.
func (c *sdkClient) DeleteConnection(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := c.sdk.DeleteConnection(name, nil); err != nil {
		return errors.ConnectionWriteFailed(name, "delete", err)
	}
	return nil
}

func fromSDKFolder(f v4.Folder) Folder {
	return Folder{
		ID:       deref(f.Id),
		Name:     f.Name,
		ParentID: deref(f.ParentId),
	}
}

func fromSDKConnection(dc v4.DBConnection) Connection {
	return Connection{
		Name:                 deref(dc.Name),
		DialectName:          deref(dc.DialectName),
		Host:                 deref(dc.Host),
		Port:                 deref(dc.Port),
		Database:             deref(dc.Database),
		Schema:               deref(dc.Schema),
		Username:             deref(dc.Username),
		SSL:                  derefBool(dc.Ssl),
		JdbcAdditionalParams: deref(dc.JdbcAdditionalParams),
	}
}

func toSDKConnection(conn Connection) v4.WriteDBConnection {
	out := v4.WriteDBConnection{
		Name:        strPtr(conn.Name),
		DialectName: strPtr(conn.DialectName),
		Host:        strPtr(conn.Host),
		Port:        strPtr(conn.Port),
		Database:    strPtr(conn.Database),
		Schema:      strPtr(conn.Schema),
		Username:    strPtr(conn.Username),
		Ssl:         &conn.SSL,
	}
	if conn.Password != "" {
		out.Password = strPtr(conn.Password)
	}
	if conn.JdbcAdditionalParams != "" {
		out.JdbcAdditionalParams = strPtr(conn.JdbcAdditionalParams)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefBool(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}

func strPtr(s string) *string {
	return &s
}
