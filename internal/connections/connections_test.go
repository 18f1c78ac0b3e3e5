package connections

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/leighajarett/looker-deployer/internal/errors"
	"github.com/leighajarett/looker-deployer/internal/logging"
	"github.com/leighajarett/looker-deployer/internal/looker"
)

// fakeInstance is an in-memory looker.Client covering the connection surface.
// Folder methods are unused by this package.
type fakeInstance struct {
	conns    map[string]looker.Connection
	created  []string
	updated  []string
	deleted  []string
	listErr  error
	writeErr error
}

func newFakeInstance(conns ...looker.Connection) *fakeInstance {
	f := &fakeInstance{conns: make(map[string]looker.Connection)}
	for _, c := range conns {
		f.conns[c.Name] = c
	}
	return f
}

func (f *fakeInstance) SearchFolders(ctx context.Context, name, parentID string) ([]looker.Folder, error) {
	return nil, nil
}

func (f *fakeInstance) CreateFolder(ctx context.Context, name, parentID string) (looker.Folder, error) {
	return looker.Folder{}, nil
}

func (f *fakeInstance) AllConnections(ctx context.Context) ([]looker.Connection, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]looker.Connection, 0, len(f.conns))
	for _, c := range f.conns {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeInstance) CreateConnection(ctx context.Context, conn looker.Connection) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.conns[conn.Name] = conn
	f.created = append(f.created, conn.Name)
	return nil
}

func (f *fakeInstance) UpdateConnection(ctx context.Context, name string, conn looker.Connection) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.conns[name] = conn
	f.updated = append(f.updated, name)
	return nil
}

func (f *fakeInstance) DeleteConnection(ctx context.Context, name string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	delete(f.conns, name)
	f.deleted = append(f.deleted, name)
	return nil
}

func newTestSyncer(source, target looker.Client) *Syncer {
	return NewSyncer(source, target, logging.NewNoop())
}

func TestSend_CreatesAndUpdates(t *testing.T) {
	source := newFakeInstance(
		looker.Connection{Name: "warehouse", DialectName: "bigquery", Host: "proj-dev"},
		looker.Connection{Name: "events", DialectName: "postgres", Host: "events-dev"},
	)
	target := newFakeInstance(
		looker.Connection{Name: "warehouse", DialectName: "bigquery", Host: "proj-old"},
	)

	rep, err := newTestSyncer(source, target).Send(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	ok, failed := rep.Counts()
	if ok != 2 || failed != 0 {
		t.Errorf("Counts() = (%d, %d), want (2, 0)", ok, failed)
	}
	if len(target.created) != 1 || target.created[0] != "events" {
		t.Errorf("created = %v, want [events]", target.created)
	}
	if len(target.updated) != 1 || target.updated[0] != "warehouse" {
		t.Errorf("updated = %v, want [warehouse]", target.updated)
	}
	if got := target.conns["warehouse"].Host; got != "proj-dev" {
		t.Errorf("updated host = %q, want %q", got, "proj-dev")
	}
}

func TestSend_Pattern(t *testing.T) {
	source := newFakeInstance(
		looker.Connection{Name: "warehouse"},
		looker.Connection{Name: "events"},
		looker.Connection{Name: "events_replica"},
	)
	target := newFakeInstance()

	rep, err := newTestSyncer(source, target).Send(context.Background(),
		Options{Pattern: "^events"})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	ok, _ := rep.Counts()
	if ok != 2 {
		t.Errorf("ok = %d, want 2", ok)
	}
	sort.Strings(target.created)
	if len(target.created) != 2 || target.created[0] != "events" || target.created[1] != "events_replica" {
		t.Errorf("created = %v, want [events events_replica]", target.created)
	}
	if _, exists := target.conns["warehouse"]; exists {
		t.Error("warehouse should not have been promoted")
	}
}

func TestSend_InvalidPattern(t *testing.T) {
	_, err := newTestSyncer(newFakeInstance(), newFakeInstance()).
		Send(context.Background(), Options{Pattern: "["})
	if err == nil {
		t.Fatal("expected error for invalid pattern")
	}
	if !stderrors.Is(err, errors.ErrConnection) {
		t.Errorf("expected ErrConnection, got %v", err)
	}
}

func TestSend_PasswordInjection(t *testing.T) {
	dbConfig := filepath.Join(t.TempDir(), "db.yaml")
	body := "warehouse:\n  password: hunter2\n"
	if err := os.WriteFile(dbConfig, []byte(body), 0600); err != nil {
		t.Fatalf("failed to write db config: %v", err)
	}

	source := newFakeInstance(looker.Connection{Name: "warehouse", Username: "svc"})
	target := newFakeInstance()

	_, err := newTestSyncer(source, target).Send(context.Background(),
		Options{DBConfigPath: dbConfig})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	got := target.conns["warehouse"]
	if got.Password != "hunter2" {
		t.Errorf("password = %q, want %q", got.Password, "hunter2")
	}
	if got.Username != "svc" {
		t.Errorf("username = %q, want %q", got.Username, "svc")
	}
}

func TestSend_Delete(t *testing.T) {
	source := newFakeInstance(looker.Connection{Name: "events"})
	target := newFakeInstance(
		looker.Connection{Name: "events"},
		looker.Connection{Name: "events_old"},
		looker.Connection{Name: "warehouse"},
	)

	rep, err := newTestSyncer(source, target).Send(context.Background(),
		Options{Pattern: "^events", Delete: true})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(target.deleted) != 1 || target.deleted[0] != "events_old" {
		t.Errorf("deleted = %v, want [events_old]", target.deleted)
	}
	// The unmatched connection stays even though the source lacks it.
	if _, exists := target.conns["warehouse"]; !exists {
		t.Error("warehouse must survive a patterned delete")
	}
	if rep.HasFailures() {
		t.Errorf("unexpected failures: %v", rep.Items())
	}
}

func TestSend_WriteFailureContinues(t *testing.T) {
	source := newFakeInstance(
		looker.Connection{Name: "events"},
		looker.Connection{Name: "warehouse"},
	)
	target := newFakeInstance()
	target.writeErr = fmt.Errorf("forbidden")

	rep, err := newTestSyncer(source, target).Send(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	ok, failed := rep.Counts()
	if ok != 0 || failed != 2 {
		t.Errorf("Counts() = (%d, %d), want (0, 2)", ok, failed)
	}
}

func TestSend_ListFailure(t *testing.T) {
	source := newFakeInstance()
	source.listErr = errors.New(errors.ErrAPI, "api down")

	_, err := newTestSyncer(source, newFakeInstance()).Send(context.Background(), Options{})
	if err == nil {
		t.Fatal("expected listing error to propagate")
	}
	if !stderrors.Is(err, errors.ErrAPI) {
		t.Errorf("expected ErrAPI, got %v", err)
	}
}

func TestLoadDBConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.yaml")
	body := "warehouse:\n  password: hunter2\nevents:\n  password: s3cret\n"
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("failed to write db config: %v", err)
	}

	cfg, err := LoadDBConfig(path)
	if err != nil {
		t.Fatalf("LoadDBConfig() error = %v", err)
	}
	if cfg["warehouse"].Password != "hunter2" || cfg["events"].Password != "s3cret" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadDBConfig_Errors(t *testing.T) {
	if _, err := LoadDBConfig("does/not/exist.yaml"); !stderrors.Is(err, errors.ErrConnection) {
		t.Errorf("missing file: expected ErrConnection, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("warehouse: [unclosed"), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if _, err := LoadDBConfig(path); !stderrors.Is(err, errors.ErrConnection) {
		t.Errorf("bad yaml: expected ErrConnection, got %v", err)
	}
}
