package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/worldsave/internal/core/models"
	"github.com/zeusync/worldsave/internal/core/world"
	"github.com/zeusync/worldsave/internal/store"
	"github.com/zeusync/worldsave/internal/testutil"
)

func setupStore(t *testing.T) *store.FileStore {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("WORLDSAVE_STORE_BACKEND", "file")
	t.Setenv("WORLDSAVE_STORE_FILE_DIR", dir)
	t.Setenv("WORLDSAVE_LOG_LEVEL", "error")

	st, err := store.NewFileStore(dir)
	require.NoError(t, err)

	w := world.New(testutil.Registry())
	require.NoError(t, w.Prefabs().Register(models.PrefabData{
		Name:       "rock",
		Components: []models.Component{&testutil.Label{Text: "granite"}},
	}))
	w.Entities().Create(&testutil.Position{X: 1, Y: 1})
	_, err = w.Entities().Instantiate(w.Prefabs(), "rock")
	require.NoError(t, err)
	require.NoError(t, w.Save(context.Background(), st, "compact", false))
	require.NoError(t, w.Save(context.Background(), st, "verbose", true))
	return st
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestListCmd(t *testing.T) {
	setupStore(t)
	out, err := run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "compact")
	assert.Contains(t, out, "verbose")
}

func TestInspectCmd(t *testing.T) {
	setupStore(t)

	out, err := run(t, "inspect", "compact")
	require.NoError(t, err)
	assert.Regexp(t, `mode:\s+compact`, out)
	assert.Regexp(t, `types:\s+position, health, label`, out)
	assert.Regexp(t, `entities:\s+2`, out)
	assert.Regexp(t, `next id:\s+3`, out)

	out, err = run(t, "inspect", "compact", "--json")
	require.NoError(t, err)
	var dump worldDump
	require.NoError(t, json.Unmarshal([]byte(out), &dump))
	assert.True(t, dump.Compact)
	require.Len(t, dump.Entities, 2)
	assert.Equal(t, "position", dump.Entities[0].Components[0].Type)
	assert.JSONEq(t, `{"x":1,"y":1}`, string(dump.Entities[0].Components[0].Value))
	assert.Equal(t, "rock", dump.Entities[1].Prefab)

	_, err = run(t, "inspect", "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestVerifyCmd(t *testing.T) {
	setupStore(t)
	out, err := run(t, "verify", "compact", "verbose")
	require.NoError(t, err)
	assert.Equal(t, "compact: ok, 1 prefabs, 2 entities, next id 3\n"+
		"verbose: ok, 1 prefabs, 2 entities, next id 3\n", out)

	_, err = run(t, "verify", "compact", "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestExportImportDelete(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()
	file := filepath.Join(t.TempDir(), "export.wsnap")

	_, err := run(t, "export", "compact", file)
	require.NoError(t, err)
	_, err = run(t, "import", file, "copy")
	require.NoError(t, err)

	want, err := st.Get(ctx, "compact")
	require.NoError(t, err)
	got, err := st.Get(ctx, "copy")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	junk := filepath.Join(t.TempDir(), "junk")
	require.NoError(t, os.WriteFile(junk, []byte("hello"), 0o600))
	_, err = run(t, "import", junk, "junk")
	assert.Error(t, err)
	_, err = run(t, "import", "--force", junk, "junk")
	require.NoError(t, err)

	_, err = run(t, "delete", "copy", "junk")
	require.NoError(t, err)
	_, err = st.Get(ctx, "copy")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUnknownProfile(t *testing.T) {
	setupStore(t)
	_, err := run(t, "list", "--profile", "gpu")
	assert.ErrorContains(t, err, "unknown profile")
}
