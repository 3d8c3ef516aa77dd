package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/worldsave/internal/testutil"
)

func TestBuildTypeTableFollowsRegistryOrder(t *testing.T) {
	reg := testutil.Registry()
	table := BuildTypeTable(reg.AllTypes())

	assert.Equal(t, []string{"position", "health", "label"}, table.Names())
	assert.Equal(t, 3, table.Len())

	for i, name := range table.Names() {
		idx, err := table.IndexOf(name)
		require.NoError(t, err)
		assert.Equal(t, uint32(i), idx)

		typ, err := table.TypeAt(idx)
		require.NoError(t, err)
		assert.Equal(t, name, typ.Name)
	}
}

func TestBuildTypeTableSkipsDuplicates(t *testing.T) {
	types := testutil.Registry().AllTypes()
	table := BuildTypeTable(append(types, types[0]))
	assert.Equal(t, 3, table.Len())
}

func TestTypeTableErrors(t *testing.T) {
	table := BuildTypeTable(testutil.Registry().AllTypes())

	_, err := table.IndexOf("velocity")
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = table.TypeAt(3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestLoadTypeTableKeepsUnknownSlots(t *testing.T) {
	table := LoadTypeTable([]string{"health", "velocity", "position"}, testutil.Registry())

	typ, err := table.TypeAt(2)
	require.NoError(t, err)
	assert.Equal(t, "position", typ.Name)

	_, err = table.TypeAt(1)
	assert.ErrorIs(t, err, ErrUnknownType)

	idx, err := table.IndexOf("velocity")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), idx)
}
