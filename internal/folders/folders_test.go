package folders

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/leighajarett/looker-deployer/internal/errors"
	"github.com/leighajarett/looker-deployer/internal/logging"
	"github.com/leighajarett/looker-deployer/internal/looker"
)

// fakeClient implements looker.Client over an in-memory folder tree.
type fakeClient struct {
	// folders maps "name|parentID" to folder IDs.
	folders map[string][]looker.Folder
	nextID  int

	searchCalls []string
	createCalls []string
	searchErr   error
	createErr   error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		folders: make(map[string][]looker.Folder),
		nextID:  100,
	}
}

func (f *fakeClient) key(name, parentID string) string {
	return name + "|" + parentID
}

func (f *fakeClient) addFolder(name, parentID, id string) {
	k := f.key(name, parentID)
	f.folders[k] = append(f.folders[k], looker.Folder{ID: id, Name: name, ParentID: parentID})
}

func (f *fakeClient) SearchFolders(ctx context.Context, name, parentID string) ([]looker.Folder, error) {
	f.searchCalls = append(f.searchCalls, f.key(name, parentID))
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.folders[f.key(name, parentID)], nil
}

func (f *fakeClient) CreateFolder(ctx context.Context, name, parentID string) (looker.Folder, error) {
	f.createCalls = append(f.createCalls, f.key(name, parentID))
	if f.createErr != nil {
		return looker.Folder{}, f.createErr
	}
	f.nextID++
	created := looker.Folder{ID: fmt.Sprintf("%d", f.nextID), Name: name, ParentID: parentID}
	f.addFolder(name, parentID, created.ID)
	return created, nil
}

func (f *fakeClient) AllConnections(ctx context.Context) ([]looker.Connection, error) {
	return nil, nil
}

func (f *fakeClient) CreateConnection(ctx context.Context, conn looker.Connection) error {
	return nil
}

func (f *fakeClient) UpdateConnection(ctx context.Context, name string, conn looker.Connection) error {
	return nil
}

func (f *fakeClient) DeleteConnection(ctx context.Context, name string) error {
	return nil
}

func TestIDsForName_SharedRootSkipsAPI(t *testing.T) {
	client := newFakeClient()
	r := NewResolver(client, logging.NewNoop())

	ids, err := r.IDsForName(context.Background(), SharedName, RootParentID)
	if err != nil {
		t.Fatalf("IDsForName() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != SharedID {
		t.Errorf("ids = %v, want [%s]", ids, SharedID)
	}
	if len(client.searchCalls) != 0 {
		t.Errorf("shared root should not hit the API, calls = %v", client.searchCalls)
	}
}

func TestIDsForName_SharedUnderOtherParentSearches(t *testing.T) {
	client := newFakeClient()
	client.addFolder(SharedName, "42", "77")
	r := NewResolver(client, logging.NewNoop())

	ids, err := r.IDsForName(context.Background(), SharedName, "42")
	if err != nil {
		t.Fatalf("IDsForName() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != "77" {
		t.Errorf("ids = %v, want [77]", ids)
	}
	if len(client.searchCalls) != 1 {
		t.Errorf("expected search call, got %v", client.searchCalls)
	}
}

func TestResolveOrCreate_ExistingFolder(t *testing.T) {
	client := newFakeClient()
	client.addFolder("Reports", "1", "10")
	r := NewResolver(client, logging.NewNoop())

	id, err := r.ResolveOrCreate(context.Background(), "Reports", "1")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error = %v", err)
	}
	if id != "10" {
		t.Errorf("id = %q, want 10", id)
	}
	if len(client.createCalls) != 0 {
		t.Errorf("existing folder should not be created, calls = %v", client.createCalls)
	}
}

func TestResolveOrCreate_CreatesMissing(t *testing.T) {
	client := newFakeClient()
	r := NewResolver(client, logging.NewNoop())

	id, err := r.ResolveOrCreate(context.Background(), "Reports", "1")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error = %v", err)
	}
	if id == "" {
		t.Error("expected a created folder id")
	}
	if len(client.createCalls) != 1 || client.createCalls[0] != "Reports|1" {
		t.Errorf("createCalls = %v", client.createCalls)
	}
}

func TestResolveOrCreate_AmbiguousFails(t *testing.T) {
	client := newFakeClient()
	client.addFolder("Reports", "1", "10")
	client.addFolder("Reports", "1", "11")
	r := NewResolver(client, logging.NewNoop())

	_, err := r.ResolveOrCreate(context.Background(), "Reports", "1")
	if err == nil {
		t.Fatal("expected error for ambiguous folder")
	}
	if !stderrors.Is(err, errors.ErrFolder) {
		t.Errorf("expected ErrFolder, got %v", err)
	}
	if len(client.createCalls) != 0 {
		t.Error("ambiguity must never fall through to creation")
	}
}

func TestEnsurePath_WalksSequentially(t *testing.T) {
	client := newFakeClient()
	client.addFolder("Data Team", SharedID, "20")
	r := NewResolver(client, logging.NewNoop())

	// Shared (fixed) -> Data Team (exists) -> Reports (created under 20)
	id, err := r.EnsurePath(context.Background(), []string{SharedName, "Data Team", "Reports"})
	if err != nil {
		t.Fatalf("EnsurePath() error = %v", err)
	}

	if len(client.createCalls) != 1 || client.createCalls[0] != "Reports|20" {
		t.Errorf("createCalls = %v, want [Reports|20]", client.createCalls)
	}
	if id != "101" {
		t.Errorf("id = %q, want 101 (first fake-created id)", id)
	}
}

func TestEnsurePath_ReturnsFinalID(t *testing.T) {
	client := newFakeClient()
	r := NewResolver(client, logging.NewNoop())

	id, err := r.EnsurePath(context.Background(), []string{SharedName})
	if err != nil {
		t.Fatalf("EnsurePath() error = %v", err)
	}
	if id != SharedID {
		t.Errorf("id = %q, want %q", id, SharedID)
	}
}

func TestEnsurePath_RejectsUnrootedPath(t *testing.T) {
	client := newFakeClient()
	r := NewResolver(client, logging.NewNoop())

	tests := [][]string{
		nil,
		{},
		{"Reports"},
		{"Reports", SharedName},
	}
	for _, path := range tests {
		if _, err := r.EnsurePath(context.Background(), path); err == nil {
			t.Errorf("EnsurePath(%v) expected error", path)
		}
	}
}

func TestEnsurePath_PropagatesSearchError(t *testing.T) {
	client := newFakeClient()
	client.searchErr = fmt.Errorf("api down")
	r := NewResolver(client, logging.NewNoop())

	_, err := r.EnsurePath(context.Background(), []string{SharedName, "Reports"})
	if err == nil {
		t.Fatal("expected error")
	}
}
