package persistence

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/worldsave/internal/core/observability/log"
	"github.com/zeusync/worldsave/internal/core/prefab"
	"github.com/zeusync/worldsave/internal/core/snapshot"
	"github.com/zeusync/worldsave/internal/testutil"
)

func newTestResolver(prefabs *prefab.Manager) *prefabResolver {
	codec := NewPrefabCodec(testutil.Registry(), DefaultValueCodec())
	return newPrefabResolver(codec, nil, prefabs, log.NewNop())
}

func healthPrefab(name, parent string) snapshot.Prefab {
	return snapshot.Prefab{
		Name:   name,
		Parent: parent,
		Components: []snapshot.Component{
			{TypeName: "health", Payload: []byte(`{"current":1,"max":1}`)},
		},
	}
}

func TestResolverChildBeforeParent(t *testing.T) {
	prefabs := prefab.NewManager()
	r := newTestResolver(prefabs)

	var order []string
	r.onReady = func(name string) { order = append(order, name) }

	require.NoError(t, r.resolve([]snapshot.Prefab{
		healthPrefab("B", "A"),
		healthPrefab("C", "B"),
		healthPrefab("A", ""),
	}))
	assert.Equal(t, []string{"A", "B", "C"}, order)
	assert.Equal(t, []string{"A", "B", "C"}, prefabs.Names())
	for _, name := range order {
		assert.Equal(t, stateMaterialized, r.state(name))
	}
}

func TestResolverParentAlreadyRegistered(t *testing.T) {
	prefabs := prefab.NewManager()
	r := newTestResolver(prefabs)
	require.NoError(t, r.resolve([]snapshot.Prefab{healthPrefab("base", "")}))

	r = newTestResolver(prefabs)
	require.NoError(t, r.resolve([]snapshot.Prefab{healthPrefab("derived", "base")}))
	assert.True(t, prefabs.Exists("derived"))
}

func TestResolverCycle(t *testing.T) {
	prefabs := prefab.NewManager()
	r := newTestResolver(prefabs)

	err := r.resolve([]snapshot.Prefab{
		healthPrefab("Y", "X"),
		healthPrefab("X", "Y"),
		healthPrefab("root", ""),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolvedPrefabDependency)

	var unresolved *UnresolvedPrefabDependencyError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, []string{"X", "Y"}, unresolved.Names)
	assert.Equal(t, stateFailed, r.state("X"))
	assert.Equal(t, stateFailed, r.state("Y"))
	assert.Equal(t, stateMaterialized, r.state("root"))
}

func TestResolverMissingParent(t *testing.T) {
	r := newTestResolver(prefab.NewManager())

	err := r.resolve([]snapshot.Prefab{healthPrefab("C", "ghost")})
	var unresolved *UnresolvedPrefabDependencyError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, []string{"C"}, unresolved.Names)
	assert.Equal(t, stateUnseen, r.state("ghost"))
}

func TestResolverTransitiveFailure(t *testing.T) {
	r := newTestResolver(prefab.NewManager())

	err := r.resolve([]snapshot.Prefab{
		healthPrefab("leaf", "mid"),
		healthPrefab("mid", "ghost"),
	})
	var unresolved *UnresolvedPrefabDependencyError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, []string{"leaf", "mid"}, unresolved.Names)
}

func TestResolverDuplicateName(t *testing.T) {
	r := newTestResolver(prefab.NewManager())

	err := r.resolve([]snapshot.Prefab{healthPrefab("A", ""), healthPrefab("A", "")})
	assert.ErrorIs(t, err, ErrDuplicatePrefabName)
}

func TestResolverSkipsExistingPrefab(t *testing.T) {
	prefabs := prefab.NewManager()
	require.NoError(t, newTestResolver(prefabs).resolve([]snapshot.Prefab{healthPrefab("A", "")}))

	r := newTestResolver(prefabs)
	require.NoError(t, r.resolve([]snapshot.Prefab{healthPrefab("A", ""), healthPrefab("B", "A")}))
	assert.Equal(t, []string{"B"}, r.materialized)
	assert.Equal(t, 2, prefabs.Count())
}

func TestResolverDecodeFailureStopsLoad(t *testing.T) {
	r := newTestResolver(prefab.NewManager())

	bad := healthPrefab("A", "")
	bad.Components[0].Payload = []byte(`{"current":`)
	err := r.resolve([]snapshot.Prefab{bad})
	assert.ErrorIs(t, err, ErrMalformedComponent)
	assert.Equal(t, stateFailed, r.state("A"))
}
