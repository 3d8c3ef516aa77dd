// Package prefab keeps the named component templates entities are built from.
package prefab

import (
	"errors"
	"fmt"

	"github.com/zeusync/worldsave/internal/core/models"
)

var (
	ErrPrefabNotFound = errors.New("prefab not found")
	ErrDuplicateName  = errors.New("prefab already registered")
	ErrMissingParent  = errors.New("prefab parent not registered")
	ErrInvalidName    = errors.New("invalid prefab name")
)

// Prefab is a registered template. Own holds the components declared on the
// prefab itself; Effective is Own layered over the parent's effective set and
// is computed once at registration.
type Prefab struct {
	name      string
	parent    string
	own       []models.Component
	effective []models.Component
}

func (p *Prefab) Name() string   { return p.name }
func (p *Prefab) Parent() string { return p.parent }

func (p *Prefab) Own() []models.Component {
	return append([]models.Component(nil), p.own...)
}

func (p *Prefab) Effective() []models.Component {
	return append([]models.Component(nil), p.effective...)
}

// Manager registers prefabs in dependency order: a parent must be registered
// before any prefab extending it. Enumeration follows registration order.
type Manager struct {
	byName map[string]*Prefab
	order  []*Prefab
}

func NewManager() *Manager {
	return &Manager{byName: make(map[string]*Prefab)}
}

func (m *Manager) Exists(name string) bool {
	_, ok := m.byName[name]
	return ok
}

func (m *Manager) Get(name string) (*Prefab, bool) {
	p, ok := m.byName[name]
	return p, ok
}

func (m *Manager) Count() int {
	return len(m.order)
}

// Register adds a prefab. The prefab takes ownership of data.Components.
func (m *Manager) Register(data models.PrefabData) error {
	if data.Name == "" {
		return ErrInvalidName
	}
	if m.Exists(data.Name) {
		return fmt.Errorf("%w: %s", ErrDuplicateName, data.Name)
	}
	p := &Prefab{
		name:   data.Name,
		parent: data.Parent,
		own:    append([]models.Component(nil), data.Components...),
	}
	if data.HasParent() {
		parent, ok := m.byName[data.Parent]
		if !ok {
			return fmt.Errorf("%w: %s extends %s", ErrMissingParent, data.Name, data.Parent)
		}
		p.effective = models.MergeComponents(parent.effective, p.own)
	} else {
		p.effective = models.MergeComponents(nil, p.own)
	}
	m.byName[p.name] = p
	m.order = append(m.order, p)
	return nil
}

// AllPrefabs returns every prefab with its own components, in registration order.
func (m *Manager) AllPrefabs() []models.PrefabData {
	out := make([]models.PrefabData, len(m.order))
	for i, p := range m.order {
		out[i] = models.PrefabData{Name: p.name, Parent: p.parent, Components: p.Own()}
	}
	return out
}

// EffectiveComponents returns the inherited component set of a prefab.
func (m *Manager) EffectiveComponents(name string) ([]models.Component, error) {
	p, ok := m.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPrefabNotFound, name)
	}
	return p.Effective(), nil
}

// Names returns prefab names in registration order.
func (m *Manager) Names() []string {
	out := make([]string, len(m.order))
	for i, p := range m.order {
		out[i] = p.name
	}
	return out
}

func (m *Manager) Reset() {
	m.byName = make(map[string]*Prefab)
	m.order = nil
}
