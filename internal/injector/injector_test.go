package injector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/worldsave/internal/config"
	"github.com/zeusync/worldsave/internal/store"
	"github.com/zeusync/worldsave/internal/testutil"
)

func TestInitializeApp(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "error"
	cfg.Store.File.Dir = t.TempDir()

	app, cleanup, err := InitializeApp(context.Background(), cfg, testutil.Registry())
	require.NoError(t, err)
	defer cleanup()

	assert.Same(t, cfg, app.Config)
	assert.IsType(t, &store.FileStore{}, app.Store)

	app.World.Entities().Create(&testutil.Position{X: 1})
	require.NoError(t, app.World.Save(context.Background(), app.Store, "w", false))
	list, err := app.Store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestInitializeAppStoreError(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = "tape"

	_, _, err := InitializeApp(context.Background(), cfg, testutil.Registry())
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
