// Package world ties a component registry, the entity and prefab managers and
// the persistence layer into one unit that can be saved to and loaded from a
// snapshot store.
package world

import (
	"context"
	"fmt"
	"sync"

	"github.com/zeusync/worldsave/internal/core/entity"
	"github.com/zeusync/worldsave/internal/core/events/bus"
	"github.com/zeusync/worldsave/internal/core/observability/log"
	"github.com/zeusync/worldsave/internal/core/persistence"
	"github.com/zeusync/worldsave/internal/core/prefab"
	"github.com/zeusync/worldsave/internal/core/schema/registry"
	"github.com/zeusync/worldsave/internal/core/snapshot"
)

// Store is the part of a snapshot store a world writes to and reads from.
type Store interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
}

type Option func(*options)

type options struct {
	logger log.Log
	bus    bus.EventBus
	values persistence.ValueCodec
}

func WithLogger(logger log.Log) Option {
	return func(o *options) { o.logger = logger }
}

func WithEventBus(b bus.EventBus) Option {
	return func(o *options) { o.bus = b }
}

func WithValueCodec(codec persistence.ValueCodec) Option {
	return func(o *options) { o.values = codec }
}

// World owns one entity manager and one prefab manager. Save, Load, Snapshot
// and Restore hold an exclusive lock; callers mutating the managers directly
// between those calls must do so from a single goroutine or use Do.
type World struct {
	mu sync.Mutex

	types    registry.TypeRegistry
	entities *entity.Manager
	prefabs  *prefab.Manager
	persist  *persistence.Persistence
	bus      bus.EventBus
	log      log.Log
}

func New(types registry.TypeRegistry, opts ...Option) *World {
	o := options{
		logger: log.NewNop(),
		bus:    bus.New(),
		values: persistence.DefaultValueCodec(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	w := &World{
		types:    types,
		entities: entity.NewManager(),
		prefabs:  prefab.NewManager(),
		bus:      o.bus,
		log:      o.logger.With(log.String("component", "world")),
	}
	w.persist = persistence.New(types, w.entities, w.prefabs,
		persistence.WithLogger(w.log),
		persistence.WithValueCodec(o.values),
		persistence.WithEventBus(w.bus),
	)
	return w
}

func (w *World) Entities() *entity.Manager { return w.entities }

func (w *World) Prefabs() *prefab.Manager { return w.prefabs }

func (w *World) Events() bus.EventBus { return w.bus }

func (w *World) Types() registry.TypeRegistry { return w.types }

// Do runs fn with the world locked.
func (w *World) Do(fn func(entities *entity.Manager, prefabs *prefab.Manager) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fn(w.entities, w.prefabs)
}

// Snapshot captures the current state.
func (w *World) Snapshot(verbose bool) (*snapshot.World, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.persist.Save(verbose)
}

// Restore replaces every entity and the id allocation state with those of s.
// Prefabs already registered are kept and win over snapshot prefabs of the
// same name. On failure the entity manager is left empty.
func (w *World) Restore(s *snapshot.World) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.restore(s)
}

func (w *World) restore(s *snapshot.World) error {
	w.entities.Reset()
	if err := w.persist.Load(s); err != nil {
		w.entities.Reset()
		return err
	}
	return nil
}

// Save encodes the world and writes it to st under name.
func (w *World) Save(ctx context.Context, st Store, name string, verbose bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, err := w.persist.Save(verbose)
	if err != nil {
		return fmt.Errorf("save world %s: %w", name, err)
	}
	data := snapshot.Encode(s)
	if err = st.Put(ctx, name, data); err != nil {
		return fmt.Errorf("store world %s: %w", name, err)
	}
	w.log.Debug("snapshot stored", log.String("name", name), log.Int("bytes", len(data)))
	return nil
}

// Load reads name from st and restores it.
func (w *World) Load(ctx context.Context, st Store, name string) error {
	data, err := st.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("read world %s: %w", name, err)
	}
	s, err := snapshot.Decode(data)
	if err != nil {
		return fmt.Errorf("decode world %s: %w", name, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err = w.restore(s); err != nil {
		return fmt.Errorf("load world %s: %w", name, err)
	}
	return nil
}

// Reset drops all entities and prefabs.
func (w *World) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entities.Reset()
	w.prefabs.Reset()
}
