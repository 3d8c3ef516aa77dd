// Package testutil provides component types and fixtures shared by tests.
package testutil

import (
	"github.com/zeusync/worldsave/internal/core/models"
	"github.com/zeusync/worldsave/internal/core/schema/registry"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p *Position) TypeName() string { return "position" }
func (p *Position) Clone() models.Component {
	c := *p
	return &c
}

type Health struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

func (h *Health) TypeName() string { return "health" }
func (h *Health) Clone() models.Component {
	c := *h
	return &c
}

type Label struct {
	Text string   `json:"text"`
	Tags []string `json:"tags,omitempty"`
}

func (l *Label) TypeName() string { return "label" }
func (l *Label) Clone() models.Component {
	c := *l
	c.Tags = append([]string(nil), l.Tags...)
	return &c
}

// Registry returns a registry holding position, health and label, in that order.
func Registry() *registry.Registry {
	r := registry.New()
	r.MustRegister("position", func() models.Component { return &Position{} })
	r.MustRegister("health", func() models.Component { return &Health{} })
	r.MustRegister("label", func() models.Component { return &Label{} })
	return r
}
