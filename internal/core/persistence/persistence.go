// Package persistence saves and restores the entities, prefabs and id
// allocation state of a world.
package persistence

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/worldsave/internal/core/events/bus"
	"github.com/zeusync/worldsave/internal/core/models"
	"github.com/zeusync/worldsave/internal/core/observability/log"
	"github.com/zeusync/worldsave/internal/core/schema/registry"
	"github.com/zeusync/worldsave/internal/core/snapshot"
)

// Event types published on the optional event bus.
const (
	EventPrefabMaterialized = "prefab.materialized"
	EventWorldSaved         = "world.saved"
	EventWorldLoaded        = "world.loaded"
)

const eventSource = "persistence"

// EntityManager is the entity side of a world as seen by persistence.
type EntityManager interface {
	AllEntities() []models.EntityData
	NextID() models.EntityID
	FreedIDs() []models.EntityID
	SetNextID(models.EntityID)
	SetFreedIDs([]models.EntityID)
	// Register must accept the id carried by data as is.
	Register(data models.EntityData) error
}

// PrefabManager is the prefab side of a world as seen by persistence.
type PrefabManager interface {
	AllPrefabs() []models.PrefabData
	Exists(name string) bool
	// Register must fail if data.Parent is set and not registered.
	Register(data models.PrefabData) error
}

// SaveStats is the payload of EventWorldSaved.
type SaveStats struct {
	Session  string
	Verbose  bool
	Types    int
	Prefabs  int
	Entities int
	Skipped  int
	NextID   models.EntityID
	FreedIDs int
	Elapsed  time.Duration
}

// LoadStats is the payload of EventWorldLoaded.
type LoadStats struct {
	Session        string
	Compact        bool
	Prefabs        int
	SkippedPrefabs int
	Entities       int
	NextID         models.EntityID
	FreedIDs       int
	Elapsed        time.Duration
}

type Option func(*Persistence)

func WithLogger(logger log.Log) Option {
	return func(p *Persistence) { p.log = logger }
}

func WithValueCodec(codec ValueCodec) Option {
	return func(p *Persistence) { p.values = codec }
}

// WithEventBus publishes save, load and prefab materialization events.
func WithEventBus(b bus.EventBus) Option {
	return func(p *Persistence) { p.bus = b }
}

// Persistence saves and loads one world. It holds no per-call state, but a
// call reads or mutates the managers, so the caller must not run a save or
// load concurrently with any other access to the same world.
type Persistence struct {
	types    registry.TypeRegistry
	entities EntityManager
	prefabs  PrefabManager
	values   ValueCodec
	log      log.Log
	bus      bus.EventBus

	prefabCodec *PrefabCodec
	entityCodec *EntityCodec
}

func New(types registry.TypeRegistry, entities EntityManager, prefabs PrefabManager, opts ...Option) *Persistence {
	p := &Persistence{
		types:    types,
		entities: entities,
		prefabs:  prefabs,
		values:   DefaultValueCodec(),
		log:      log.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.prefabCodec = NewPrefabCodec(types, p.values)
	p.entityCodec = NewEntityCodec(types, p.values)
	return p
}

// Save captures the world. A verbose save tags components by name and keeps
// non-persistent entities; a compact one writes a type table and drops
// non-persistent entities, moving their ids into the freed list so they are
// not handed out twice after a reload.
func (p *Persistence) Save(verbose bool) (*snapshot.World, error) {
	started := time.Now()
	session := uuid.NewString()
	logger := p.log.With(log.String("session", session))

	w := &snapshot.World{}
	var table *TypeTable
	if !verbose {
		table = BuildTypeTable(p.types.AllTypes())
		w.TypeTable = table.record()
	}

	for _, prefab := range p.prefabs.AllPrefabs() {
		rec, err := p.prefabCodec.Serialize(prefab, table)
		if err != nil {
			return nil, err
		}
		w.Prefabs = append(w.Prefabs, rec)
	}

	var nonPersisted []models.EntityID
	for _, e := range p.entities.AllEntities() {
		rec, ok, err := p.entityCodec.Serialize(e, table, verbose)
		if err != nil {
			return nil, err
		}
		if !ok {
			nonPersisted = append(nonPersisted, e.ID)
			continue
		}
		w.Entities = append(w.Entities, rec)
	}

	w.NextID = uint64(p.entities.NextID())
	w.FreedIDs = unionIDs(p.entities.FreedIDs(), nonPersisted)

	stats := SaveStats{
		Session:  session,
		Verbose:  verbose,
		Types:    w.TypeTable.Len(),
		Prefabs:  len(w.Prefabs),
		Entities: len(w.Entities),
		Skipped:  len(nonPersisted),
		NextID:   models.EntityID(w.NextID),
		FreedIDs: len(w.FreedIDs),
		Elapsed:  time.Since(started),
	}
	logger.Info("world saved",
		log.Bool("verbose", verbose),
		log.Int("prefabs", stats.Prefabs),
		log.Int("entities", stats.Entities),
		log.Int("non_persisted", stats.Skipped),
		log.Uint64("next_id", w.NextID),
		log.Duration("elapsed", stats.Elapsed),
	)
	p.publish(EventWorldSaved, stats)
	return w, nil
}

// Load restores w into the managers. The id allocation state is replaced, not
// merged. On error the managers must be considered unusable.
func (p *Persistence) Load(w *snapshot.World) error {
	started := time.Now()
	session := uuid.NewString()
	logger := p.log.With(log.String("session", session))

	nextID, freed, err := restoreIDState(w)
	if err != nil {
		return err
	}
	p.entities.SetNextID(nextID)
	p.entities.SetFreedIDs(freed)

	var table *TypeTable
	if w.TypeTable != nil {
		table = LoadTypeTable(w.TypeTable.Names, p.types)
	}

	resolver := newPrefabResolver(p.prefabCodec, table, p.prefabs, logger)
	resolver.onReady = func(name string) { p.publish(EventPrefabMaterialized, name) }
	if err = resolver.resolve(w.Prefabs); err != nil {
		logger.Error("prefab resolution failed", log.Error(err))
		return err
	}

	freedSet := make(map[models.EntityID]struct{}, len(freed))
	for _, id := range freed {
		freedSet[id] = struct{}{}
	}
	loaded := make(map[models.EntityID]struct{}, len(w.Entities))
	for _, rec := range w.Entities {
		id := models.EntityID(rec.ID)
		if err = checkEntityID(id, nextID, freedSet, loaded); err != nil {
			return err
		}
		data, err := p.entityCodec.Deserialize(rec, table)
		if err != nil {
			return err
		}
		if data.Prefab != "" && !p.prefabs.Exists(data.Prefab) {
			logger.Warn("entity references unknown prefab", log.Uint64("entity", rec.ID), log.String("prefab", data.Prefab))
		}
		if err = p.entities.Register(data); err != nil {
			return fmt.Errorf("%w: entity %d: %w", ErrIdSpaceViolation, id, err)
		}
		loaded[id] = struct{}{}
	}

	stats := LoadStats{
		Session:        session,
		Compact:        table != nil,
		Prefabs:        len(resolver.materialized),
		SkippedPrefabs: len(w.Prefabs) - len(resolver.materialized),
		Entities:       len(loaded),
		NextID:         nextID,
		FreedIDs:       len(freed),
		Elapsed:        time.Since(started),
	}
	logger.Info("world loaded",
		log.Bool("compact", stats.Compact),
		log.Int("prefabs", stats.Prefabs),
		log.Int("skipped_prefabs", stats.SkippedPrefabs),
		log.Int("entities", stats.Entities),
		log.Uint64("next_id", uint64(nextID)),
		log.Duration("elapsed", stats.Elapsed),
	)
	p.publish(EventWorldLoaded, stats)
	return nil
}

func (p *Persistence) publish(eventType string, data any) {
	if p.bus == nil {
		return
	}
	if err := p.bus.Publish(bus.NewEvent(eventType, eventSource, data)); err != nil {
		p.log.Warn("event handler failed", log.String("event", eventType), log.Error(err))
	}
}

// restoreIDState validates the allocation state of a snapshot. A missing
// next id is read as 1 since 0 is the null id.
func restoreIDState(w *snapshot.World) (models.EntityID, []models.EntityID, error) {
	nextID := models.EntityID(w.NextID)
	if nextID == models.NullEntityID {
		nextID = 1
	}
	freed := make([]models.EntityID, 0, len(w.FreedIDs))
	for _, raw := range w.FreedIDs {
		id := models.EntityID(raw)
		if id == models.NullEntityID || id >= nextID {
			return 0, nil, fmt.Errorf("%w: freed id %d with next id %d", ErrIdSpaceViolation, id, nextID)
		}
		freed = append(freed, id)
	}
	return nextID, freed, nil
}

func checkEntityID(id, nextID models.EntityID, freed, loaded map[models.EntityID]struct{}) error {
	switch {
	case id == models.NullEntityID:
		return fmt.Errorf("%w: entity with null id", ErrIdSpaceViolation)
	case id >= nextID:
		return fmt.Errorf("%w: entity %d with next id %d", ErrIdSpaceViolation, id, nextID)
	}
	if _, ok := freed[id]; ok {
		return fmt.Errorf("%w: entity %d is also freed", ErrIdSpaceViolation, id)
	}
	if _, ok := loaded[id]; ok {
		return fmt.Errorf("%w: entity %d declared twice", ErrIdSpaceViolation, id)
	}
	return nil
}

func unionIDs(sets ...[]models.EntityID) []uint64 {
	var out []uint64
	for _, set := range sets {
		for _, id := range set {
			out = append(out, uint64(id))
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
