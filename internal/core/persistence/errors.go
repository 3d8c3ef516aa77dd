package persistence

import (
	"errors"
	"strings"

	"github.com/zeusync/worldsave/internal/core/schema/registry"
)

// Every error returned by Save or Load is fatal to that call. After a failed
// Load the entity and prefab managers are in an unspecified state and must be
// reset by the caller.
var (
	// ErrUnknownType is returned when a component type is absent from the
	// registry or from the session type table.
	ErrUnknownType = registry.ErrUnknownType
	// ErrIndexOutOfRange is returned by TypeTable.TypeAt past the table end.
	ErrIndexOutOfRange = errors.New("type index out of range")
	// ErrUnknownComponentIndex is returned by the codecs when a compact
	// component index cannot be resolved.
	ErrUnknownComponentIndex = errors.New("unknown component index")
	// ErrMalformedComponent is returned when a payload cannot be encoded or
	// decoded for its declared type.
	ErrMalformedComponent = errors.New("malformed component")
	// ErrUnresolvedPrefabDependency is matched by UnresolvedPrefabDependencyError.
	ErrUnresolvedPrefabDependency = errors.New("unresolved prefab dependency")
	// ErrDuplicatePrefabName is returned when a snapshot declares a prefab twice.
	ErrDuplicatePrefabName = errors.New("duplicate prefab name")
	// ErrIdSpaceViolation is returned when restored ids break the allocation invariants.
	ErrIdSpaceViolation = errors.New("entity id space violation")
)

// UnresolvedPrefabDependencyError lists, sorted, the prefabs whose parents
// could not be materialized: a cycle, a parent missing from the snapshot, or
// a parent that itself never resolved.
type UnresolvedPrefabDependencyError struct {
	Names []string
}

func (e *UnresolvedPrefabDependencyError) Error() string {
	return ErrUnresolvedPrefabDependency.Error() + ": " + strings.Join(e.Names, ", ")
}

func (e *UnresolvedPrefabDependencyError) Is(target error) bool {
	return target == ErrUnresolvedPrefabDependency
}
