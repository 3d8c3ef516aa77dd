package injector

import (
	"context"

	"github.com/google/wire"

	"github.com/zeusync/worldsave/internal/config"
	"github.com/zeusync/worldsave/internal/core/observability/log"
	"github.com/zeusync/worldsave/internal/core/schema/registry"
	"github.com/zeusync/worldsave/internal/core/world"
	"github.com/zeusync/worldsave/internal/store"
)

// App is everything a worldsave tool needs for one run.
type App struct {
	Config *config.Config
	Logger *log.Logger
	Store  store.SnapshotStore
	World  *world.World
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideStore,
	ProvideWorld,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg *config.Config) (*log.Logger, func()) {
	logger := log.New(cfg.Level())
	return logger, func() { _ = logger.Sync() }
}

func ProvideStore(ctx context.Context, cfg *config.Config, logger log.Log) (store.SnapshotStore, func(), error) {
	s, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		return nil, nil, err
	}
	return s, func() {
		if err := s.Close(); err != nil {
			logger.Warn("close snapshot store", log.Error(err))
		}
	}, nil
}

func ProvideWorld(types registry.TypeRegistry, logger log.Log) *world.World {
	return world.New(types, world.WithLogger(logger))
}
