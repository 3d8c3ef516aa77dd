package prefab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/worldsave/internal/core/models"
	"github.com/zeusync/worldsave/internal/testutil"
)

func TestRegisterInheritance(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Register(models.PrefabData{
		Name: "creature",
		Components: []models.Component{
			&testutil.Health{Current: 10, Max: 10},
			&testutil.Position{},
		},
	}))
	require.NoError(t, m.Register(models.PrefabData{
		Name:   "goblin",
		Parent: "creature",
		Components: []models.Component{
			&testutil.Health{Current: 5, Max: 5},
			&testutil.Label{Text: "goblin"},
		},
	}))

	effective, err := m.EffectiveComponents("goblin")
	require.NoError(t, err)
	require.Len(t, effective, 3)
	assert.Equal(t, &testutil.Health{Current: 5, Max: 5}, effective[0])
	assert.Equal(t, &testutil.Position{}, effective[1])
	assert.Equal(t, &testutil.Label{Text: "goblin"}, effective[2])

	base, err := m.EffectiveComponents("creature")
	require.NoError(t, err)
	assert.Equal(t, &testutil.Health{Current: 10, Max: 10}, base[0])

	assert.Equal(t, []string{"creature", "goblin"}, m.Names())
	all := m.AllPrefabs()
	require.Len(t, all, 2)
	assert.Equal(t, "creature", all[1].Parent)
	assert.Len(t, all[1].Components, 2)
}

func TestRegisterErrors(t *testing.T) {
	m := NewManager()
	assert.ErrorIs(t, m.Register(models.PrefabData{}), ErrInvalidName)
	assert.ErrorIs(t, m.Register(models.PrefabData{Name: "orc", Parent: "creature"}), ErrMissingParent)
	assert.False(t, m.Exists("orc"))

	require.NoError(t, m.Register(models.PrefabData{Name: "creature"}))
	assert.ErrorIs(t, m.Register(models.PrefabData{Name: "creature"}), ErrDuplicateName)

	_, err := m.EffectiveComponents("dragon")
	assert.ErrorIs(t, err, ErrPrefabNotFound)

	m.Reset()
	assert.Zero(t, m.Count())
}
