package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/worldsave/internal/core/models"
)

type health struct{ HP int }

func (h *health) TypeName() string { return "health" }
func (h *health) Clone() models.Component { c := *h; return &c }

type speed struct{ V float64 }

func (s *speed) TypeName() string { return "speed" }
func (s *speed) Clone() models.Component { c := *s; return &c }

func TestRegistryOrderAndLookup(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("speed", func() models.Component { return &speed{} }))
	require.NoError(t, r.Register("health", func() models.Component { return &health{} }))

	types := r.AllTypes()
	require.Len(t, types, 2)
	assert.Equal(t, "speed", types[0].Name)
	assert.Equal(t, "health", types[1].Name)

	typ, err := r.TypeOf("health")
	require.NoError(t, err)
	assert.IsType(t, &health{}, typ.New())

	_, err = r.TypeOf("mana")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestRegistryRejectsBadRegistrations(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("health", func() models.Component { return &health{} }))

	assert.ErrorIs(t, r.Register("health", func() models.Component { return &health{} }), ErrAlreadyRegistered)
	assert.ErrorIs(t, r.Register("", func() models.Component { return &health{} }), ErrInvalidType)
	assert.ErrorIs(t, r.Register("hp", func() models.Component { return &health{} }), ErrInvalidType)
	assert.Panics(t, func() { r.MustRegister("health", func() models.Component { return &health{} }) })
}

func TestRegistryFallback(t *testing.T) {
	r := New(WithFallback(models.RawType))
	typ, err := r.TypeOf("mystery")
	require.NoError(t, err)
	assert.Equal(t, "mystery", typ.Name)
	assert.IsType(t, &models.RawComponent{}, typ.New())
	assert.Empty(t, r.AllTypes())
	assert.False(t, r.Has("mystery"))
}
