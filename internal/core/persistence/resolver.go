package persistence

import (
	"fmt"
	"slices"

	"github.com/zeusync/worldsave/internal/core/observability/log"
	"github.com/zeusync/worldsave/internal/core/snapshot"
)

type prefabState uint8

const (
	stateUnseen prefabState = iota
	statePending
	stateReady
	stateMaterialized
	stateFailed
)

func (s prefabState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateReady:
		return "ready"
	case stateMaterialized:
		return "materialized"
	case stateFailed:
		return "failed"
	default:
		return "unseen"
	}
}

// prefabResolver materializes snapshot prefabs so that every parent is
// registered before its children, whatever order the records come in.
//
// Records without a parent, or whose parent is already registered, are ready
// immediately. The rest are rescanned until none remain or a whole scan
// makes no progress, in which case every remaining record has failed.
type prefabResolver struct {
	codec   *PrefabCodec
	table   *TypeTable
	prefabs PrefabManager
	log     log.Log

	states       map[string]prefabState
	materialized []string
	onReady      func(name string)
}

func newPrefabResolver(codec *PrefabCodec, table *TypeTable, prefabs PrefabManager, logger log.Log) *prefabResolver {
	return &prefabResolver{
		codec:   codec,
		table:   table,
		prefabs: prefabs,
		log:     logger,
		states:  make(map[string]prefabState),
	}
}

func (r *prefabResolver) state(name string) prefabState {
	return r.states[name]
}

func (r *prefabResolver) resolve(records []snapshot.Prefab) error {
	seen := make(map[string]struct{}, len(records))
	var ready, pending []*snapshot.Prefab
	for i := range records {
		rec := &records[i]
		if _, dup := seen[rec.Name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicatePrefabName, rec.Name)
		}
		seen[rec.Name] = struct{}{}

		if r.prefabs.Exists(rec.Name) {
			r.log.Warn("prefab already registered, keeping existing definition", log.String("prefab", rec.Name))
			continue
		}
		if rec.Parent == "" || r.prefabs.Exists(rec.Parent) {
			r.states[rec.Name] = stateReady
			ready = append(ready, rec)
		} else {
			r.states[rec.Name] = statePending
			pending = append(pending, rec)
		}
	}

	for _, rec := range ready {
		if err := r.materialize(rec); err != nil {
			return err
		}
	}

	for len(pending) > 0 {
		remaining := pending[:0]
		progressed := false
		for _, rec := range pending {
			if !r.prefabs.Exists(rec.Parent) {
				remaining = append(remaining, rec)
				continue
			}
			r.states[rec.Name] = stateReady
			if err := r.materialize(rec); err != nil {
				return err
			}
			progressed = true
		}
		if !progressed {
			return r.fail(remaining)
		}
		pending = remaining
	}
	return nil
}

func (r *prefabResolver) materialize(rec *snapshot.Prefab) error {
	data, err := r.codec.Deserialize(*rec, r.table)
	if err != nil {
		r.states[rec.Name] = stateFailed
		return err
	}
	if err = r.prefabs.Register(data); err != nil {
		r.states[rec.Name] = stateFailed
		return fmt.Errorf("register prefab %s: %w", rec.Name, err)
	}
	r.states[rec.Name] = stateMaterialized
	r.materialized = append(r.materialized, rec.Name)
	r.log.Debug("prefab materialized", log.String("prefab", rec.Name), log.String("parent", rec.Parent))
	if r.onReady != nil {
		r.onReady(rec.Name)
	}
	return nil
}

func (r *prefabResolver) fail(unresolved []*snapshot.Prefab) error {
	names := make([]string, len(unresolved))
	for i, rec := range unresolved {
		r.states[rec.Name] = stateFailed
		names[i] = rec.Name
	}
	slices.Sort(names)
	return &UnresolvedPrefabDependencyError{Names: names}
}
