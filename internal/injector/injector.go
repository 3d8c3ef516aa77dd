//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"context"

	"github.com/google/wire"

	"github.com/zeusync/worldsave/internal/config"
	"github.com/zeusync/worldsave/internal/core/schema/registry"
)

func InitializeApp(ctx context.Context, cfg *config.Config, types registry.TypeRegistry) (*App, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
