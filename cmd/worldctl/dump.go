package main

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/zeusync/worldsave/internal/core/snapshot"
)

type worldDump struct {
	Compact  bool         `json:"compact"`
	Types    []string     `json:"types,omitempty"`
	NextID   uint64       `json:"next_id"`
	FreedIDs []uint64     `json:"freed_ids,omitempty"`
	Prefabs  []prefabDump `json:"prefabs,omitempty"`
	Entities []entityDump `json:"entities,omitempty"`
}

type prefabDump struct {
	Name       string          `json:"name"`
	Parent     string          `json:"parent,omitempty"`
	Components []componentDump `json:"components,omitempty"`
}

type entityDump struct {
	ID         uint64          `json:"id"`
	Persistent bool            `json:"persistent"`
	Prefab     string          `json:"prefab,omitempty"`
	Components []componentDump `json:"components,omitempty"`
}

// componentDump shows a JSON payload inline and anything else as base64.
type componentDump struct {
	Type   string          `json:"type"`
	Value  json.RawMessage `json:"value,omitempty"`
	Binary []byte          `json:"binary,omitempty"`
}

func describe(s *snapshot.World) worldDump {
	d := worldDump{Compact: s.Compact(), NextID: s.NextID, FreedIDs: s.FreedIDs}
	if s.Compact() {
		d.Types = s.TypeTable.Names
	}
	for _, p := range s.Prefabs {
		d.Prefabs = append(d.Prefabs, prefabDump{
			Name:       p.Name,
			Parent:     p.Parent,
			Components: describeComponents(s.TypeTable, p.Components),
		})
	}
	for _, e := range s.Entities {
		d.Entities = append(d.Entities, entityDump{
			ID:         e.ID,
			Persistent: e.Persistent,
			Prefab:     e.Prefab,
			Components: describeComponents(s.TypeTable, e.Components),
		})
	}
	return d
}

func describeComponents(table *snapshot.TypeTable, components []snapshot.Component) []componentDump {
	out := make([]componentDump, len(components))
	for i, c := range components {
		name := c.TypeName
		if name == "" {
			if int(c.TypeIndex) < table.Len() {
				name = table.Names[c.TypeIndex]
			} else {
				name = fmt.Sprintf("#%d", c.TypeIndex)
			}
		}
		out[i].Type = name
		if json.Valid(c.Payload) {
			out[i].Value = c.Payload
		} else {
			out[i].Binary = c.Payload
		}
	}
	return out
}
