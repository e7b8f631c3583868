package graph

import (
	"cmp"
	"errors"
	"slices"

	errs "github.com/matzehuels/gutterview/pkg/errors"
)

var (
	// ErrDuplicateEntity is returned by [Build] when two entities share an ID.
	ErrDuplicateEntity = errors.New("duplicate entity id")

	// ErrEmptyGraph is returned by [Build] when a document has no entities.
	// Zero-node graphs cannot be ordered or laid out.
	ErrEmptyGraph = errors.New("graph has no entities")
)

// Build converts a Document into an index-based Model.
//
// Entities are sorted by ID and rows by (label, opaque, value) so the result
// is independent of document order. Rows whose Target names a known entity
// become edges; targets that are unknown or point back at the row's own
// entity are kept as plain rows without an edge.
func Build(doc Document) (*Model, error) {
	if len(doc.Entities) == 0 {
		return nil, errs.Wrap(errs.ErrCodeInvalidGraph, ErrEmptyGraph, "build graph")
	}

	entities := slices.Clone(doc.Entities)
	slices.SortFunc(entities, func(a, b Entity) int { return cmp.Compare(a.ID, b.ID) })

	m := &Model{
		Nodes: make([]Node, len(entities)),
		index: make(map[string]int, len(entities)),
	}

	for i, e := range entities {
		if err := errs.ValidateNodeID(e.ID); err != nil {
			return nil, err
		}
		if _, dup := m.index[e.ID]; dup {
			return nil, errs.Wrap(errs.ErrCodeInvalidGraph, ErrDuplicateEntity, "entity %q", e.ID)
		}
		m.index[e.ID] = i
		m.Nodes[i] = Node{ID: e.ID, Title: e.Title, Rows: sortRows(e.Rows)}
	}

	for from, n := range m.Nodes {
		for row, r := range n.Rows {
			if r.Target == "" {
				continue
			}
			to, ok := m.index[r.Target]
			if !ok || to == from {
				continue
			}
			m.Edges = append(m.Edges, Edge{From: from, To: to, FromRow: row, Attr: r.Attr})
		}
	}

	return m, nil
}

// Document converts the model back into its document form.
// Build(m.Document()) yields an identical model.
func (m *Model) Document() Document {
	doc := Document{Entities: make([]Entity, len(m.Nodes))}
	for i, n := range m.Nodes {
		doc.Entities[i] = Entity{ID: n.ID, Title: n.Title, Rows: slices.Clone(n.Rows)}
	}
	return doc
}

func sortRows(rows []Row) []Row {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b Row) int {
		if c := cmp.Compare(a.DisplayLabel(), b.DisplayLabel()); c != 0 {
			return c
		}
		if a.Opaque != b.Opaque {
			if !a.Opaque {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.Value, b.Value)
	})
	return out
}
