package rpc

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyoez/calibre-panel/execute"
	"github.com/moyoez/calibre-panel/form"
	"github.com/moyoez/calibre-panel/types"
)

var testFolders = []types.SharedFolder{
	{Ref: "lib", Name: "calibre", Path: "/srv/calibre"},
	{Ref: "books", Name: "incoming", Path: "/srv/incoming"},
}

type testEnv struct {
	service *Service
	store   *Store
	manager *execute.Manager
	dir     string
}

func newTestEnv(t *testing.T, cfg types.AppConfig) *testEnv {
	t.Helper()
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "calibre.yaml"))
	svc := NewService(store, NewFolders(testFolders), cfg)
	m := execute.NewManager(time.Minute)
	svc.Register(m)
	return &testEnv{service: svc, store: store, manager: m, dir: dir}
}

func (e *testEnv) enable(t *testing.T) {
	t.Helper()
	require.NoError(t, e.store.Save(types.Settings{Enable: true, SharedFolderRef: "lib", Port: 8080}))
}

func (e *testEnv) wait(t *testing.T, started types.JobStarted) (*execute.Job, form.Outcome) {
	t.Helper()
	job, ok := e.manager.Job(started.JobID)
	require.True(t, ok)
	select {
	case out := <-job.Done():
		return job, out
	case <-time.After(5 * time.Second):
		t.Fatal("job did not finish")
	}
	return nil, form.Outcome{}
}

func TestStoreDefaultsAndRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibre.yaml")
	store := NewStore(path)

	rec, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, types.DefaultSettings(), rec)

	want := types.Settings{Enable: true, SharedFolderRef: "lib", Port: 9090, Username: "reader", CoverSize: "300x400", ShowTab: true}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStoreRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibre.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [nope"), 0o600))

	_, err := NewStore(path).Load()
	assert.ErrorContains(t, err, "failed to parse settings")
}

func TestFoldersResolve(t *testing.T) {
	folders := NewFolders(testFolders)

	sf, err := folders.Resolve("books")
	require.NoError(t, err)
	assert.Equal(t, "/srv/incoming", sf.Path)

	_, err = folders.Resolve(types.SharedFolderNone)
	assert.ErrorIs(t, err, ErrNoSharedFolder)
	_, err = folders.Resolve("")
	assert.ErrorIs(t, err, ErrNoSharedFolder)
	_, err = folders.Resolve("gone")
	assert.ErrorIs(t, err, ErrUnknownSharedFolder)
	assert.Len(t, folders.List(), 2)
}

func TestSetSettingsValidates(t *testing.T) {
	env := newTestEnv(t, types.AppConfig{})

	err := env.service.SetSettings(context.Background(), types.Settings{Port: 70000, SharedFolderRef: types.SharedFolderNone})
	var rpcErr *form.RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, form.RPCSetMethod, rpcErr.Method)
	var verrs form.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.NotNil(t, verrs.Field(form.FieldPort))

	err = env.service.SetSettings(context.Background(), types.Settings{Enable: true, SharedFolderRef: "gone", Port: 8080})
	assert.ErrorIs(t, err, ErrUnknownSharedFolder)
}

func TestSetSettingsStoresAndApplies(t *testing.T) {
	applied := filepath.Join(t.TempDir(), "applied")
	env := newTestEnv(t, types.AppConfig{
		ApplyCommand: []string{"sh", "-c", `echo "$0 $1 $2" > ` + applied, "{enable}", "{port}", "{coversize}"},
	})
	rec := types.Settings{Enable: true, SharedFolderRef: "lib", Port: 9090}

	require.NoError(t, env.service.SetSettings(context.Background(), rec))

	got, err := env.service.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	data, err := os.ReadFile(applied)
	require.NoError(t, err)
	assert.Equal(t, "true 9090 600x800\n", string(data))
}

func TestSetSettingsApplyFailure(t *testing.T) {
	env := newTestEnv(t, types.AppConfig{
		ApplyCommand: []string{"sh", "-c", "echo port in use >&2; exit 2"},
	})

	err := env.service.SetSettings(context.Background(), types.DefaultSettings())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port in use")
}

func TestImportRunsCommand(t *testing.T) {
	env := newTestEnv(t, types.AppConfig{
		ImportCommand: []string{"sh", "-c", `echo "add $0 to $1"`, "{source}", "{library}"},
	})
	env.enable(t)

	started, err := env.service.StartImport(context.Background(), "books")
	require.NoError(t, err)
	job, out := env.wait(t, started)

	require.NoError(t, out.Err)
	assert.Contains(t, out.Output, "Importing books from /srv/incoming into /srv/calibre")
	assert.Contains(t, out.Output, "add /srv/incoming to /srv/calibre")
	assert.Equal(t, form.ImportTitle, job.Snapshot().Title)
}

func TestImportIgnoresCommandFailure(t *testing.T) {
	env := newTestEnv(t, types.AppConfig{
		ImportCommand: []string{"sh", "-c", "echo 1 book skipped; exit 1"},
	})
	env.enable(t)

	started, err := env.service.StartImport(context.Background(), "books")
	require.NoError(t, err)
	_, out := env.wait(t, started)

	assert.NoError(t, out.Err)
	assert.Contains(t, out.Output, "1 book skipped")
	assert.Contains(t, out.Output, "sh failed")
}

func TestImportFailsWhenCommandMissing(t *testing.T) {
	env := newTestEnv(t, types.AppConfig{
		ImportCommand: []string{filepath.Join(t.TempDir(), "calibredb")},
	})
	env.enable(t)

	started, err := env.service.StartImport(context.Background(), "books")
	require.NoError(t, err)
	_, out := env.wait(t, started)

	assert.ErrorContains(t, out.Err, "failed to start")
}

func TestImportNeedsFolder(t *testing.T) {
	env := newTestEnv(t, types.AppConfig{ImportCommand: []string{"true"}})
	env.enable(t)

	started, err := env.service.StartImport(context.Background(), types.SharedFolderNone)
	require.NoError(t, err)
	_, out := env.wait(t, started)

	assert.ErrorIs(t, out.Err, ErrNoSharedFolder)
}

func TestUpdateFailureIsFatal(t *testing.T) {
	env := newTestEnv(t, types.AppConfig{UpdateCommand: []string{"sh", "-c", "exit 3"}})

	started, err := env.service.StartUpdate(context.Background())
	require.NoError(t, err)
	job, out := env.wait(t, started)

	assert.Error(t, out.Err)
	snap := job.Snapshot()
	assert.Equal(t, form.UpdateTitle, snap.Title)
	assert.ElementsMatch(t, []string{types.ButtonStart, types.ButtonStop}, snap.Hidden)
}

func TestStartWithoutExecutor(t *testing.T) {
	svc := NewService(NewStore(filepath.Join(t.TempDir(), "c.yaml")), NewFolders(nil), types.AppConfig{})
	_, err := svc.StartUpdate(context.Background())
	var rpcErr *form.RPCError
	assert.ErrorAs(t, err, &rpcErr)
}

func TestCallDispatch(t *testing.T) {
	env := newTestEnv(t, types.AppConfig{UpdateCommand: []string{"true"}})
	ctx := context.Background()

	resp, err := env.service.Call(ctx, form.RPCService, form.RPCGetMethod, nil)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultSettings(), resp)

	params := json.RawMessage(`{"enable":false,"data.sharedfolderref":"none","port":8081,"showtab":true}`)
	resp, err = env.service.Call(ctx, form.RPCService, form.RPCSetMethod, params)
	require.NoError(t, err)
	assert.Equal(t, 8081, resp.(types.Settings).Port)
	stored, err := env.store.Load()
	require.NoError(t, err)
	assert.True(t, stored.ShowTab)

	resp, err = env.service.Call(ctx, form.RPCService, form.RPCUpdateMethod, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.(types.JobStarted).JobID)

	resp, err = env.service.Call(ctx, ShareMgmtService, EnumerateSharedFolders, nil)
	require.NoError(t, err)
	assert.Equal(t, testFolders, resp)
}

func TestCallUnknown(t *testing.T) {
	env := newTestEnv(t, types.AppConfig{})
	ctx := context.Background()

	_, err := env.service.Call(ctx, "Nope", "x", nil)
	assert.ErrorIs(t, err, ErrUnknownService)
	assert.EqualError(t, err, "Service 'Nope' does not exist")

	_, err = env.service.Call(ctx, form.RPCService, "reboot", nil)
	assert.ErrorIs(t, err, execute.ErrUnknownMethod)
	assert.EqualError(t, err, "Method 'reboot' does not exist in service 'Calibre'")

	_, err = env.service.Call(ctx, form.RPCService, form.RPCSetMethod, json.RawMessage(`{"port":"x"`))
	var rpcErr *form.RPCError
	assert.ErrorAs(t, err, &rpcErr)
}

func TestDecodeParams(t *testing.T) {
	var p types.ImportParams
	require.NoError(t, decodeParams(types.ImportParams{SharedFolderRef: "a"}, &p))
	assert.Equal(t, "a", p.SharedFolderRef)

	require.NoError(t, decodeParams(json.RawMessage(`{"sharedfolderref":"b"}`), &p))
	assert.Equal(t, "b", p.SharedFolderRef)

	require.NoError(t, decodeParams(map[string]any{"sharedfolderref": "c"}, &p))
	assert.Equal(t, "c", p.SharedFolderRef)

	assert.Error(t, decodeParams(json.RawMessage(`[1,2`), &p))
	assert.NoError(t, decodeParams(nil, &p))
}

func TestExpandCommand(t *testing.T) {
	argv := expandCommand(
		[]string{"calibredb", "add", "--library-path", "{library}", "{source}", "{unknown}"},
		map[string]string{"library": "/srv/calibre", "source": "/srv/incoming"},
	)
	assert.Equal(t, []string{"calibredb", "add", "--library-path", "/srv/calibre", "/srv/incoming", "{unknown}"}, argv)
}

func TestRunCommandWithoutArgv(t *testing.T) {
	assert.ErrorIs(t, runCommand(context.Background(), nil, os.Stdout), ErrNoCommand)
}
