package graph

// =============================================================================
// Document - Input Format
// =============================================================================

// Document is the canonical input format for entity graphs.
// It is read from JSON or TOML files and accepted by the HTTP API.
type Document struct {
	Entities []Entity `json:"entities" toml:"entities" bson:"entities"`
}

// Entity is one tile in the diagram: an identifier plus attribute rows.
type Entity struct {
	ID    string `json:"id" toml:"id" bson:"id"`
	Title string `json:"title,omitempty" toml:"title,omitempty" bson:"title,omitempty"` // Display title (defaults to ID)
	Rows  []Row  `json:"rows,omitempty" toml:"rows,omitempty" bson:"rows,omitempty"`
}

// Row is a single attribute row of an entity.
type Row struct {
	Attr   string `json:"attr" toml:"attr" bson:"attr"`                                     // Attribute identifier (bundle/colour key)
	Label  string `json:"label,omitempty" toml:"label,omitempty" bson:"label,omitempty"`    // Display label (defaults to Attr)
	Value  string `json:"value,omitempty" toml:"value,omitempty" bson:"value,omitempty"`    // Formatted value
	Target string `json:"target,omitempty" toml:"target,omitempty" bson:"target,omitempty"` // Referenced entity ID, if any
	Opaque bool   `json:"opaque,omitempty" toml:"opaque,omitempty" bson:"opaque,omitempty"` // Undecodable value, rendered hatched
}

// DisplayLabel returns the label if set, otherwise the attribute identifier.
func (r Row) DisplayLabel() string {
	if r.Label != "" {
		return r.Label
	}
	return r.Attr
}

// =============================================================================
// Model - Index-Based Graph
// =============================================================================

// Model is an immutable, index-based entity graph.
//
// Nodes are sorted by ID and their rows by label, so the same document always
// produces the same indices. Edges reference nodes by index.
type Model struct {
	Nodes []Node
	Edges []Edge

	index map[string]int
}

// Node is a tile-to-be: an entity with its sorted rows.
type Node struct {
	ID    string
	Title string
	Rows  []Row
}

// DisplayTitle returns the title if set, otherwise the ID.
func (n *Node) DisplayTitle() string {
	if n.Title != "" {
		return n.Title
	}
	return n.ID
}

// Edge is a directed reference from row FromRow of node From to node To.
// Duplicate edges between the same pair are permitted; self-loops never occur.
type Edge struct {
	From    int
	To      int
	FromRow int
	Attr    string
}

// NodeCount returns the number of nodes.
func (m *Model) NodeCount() int { return len(m.Nodes) }

// EdgeCount returns the number of edges.
func (m *Model) EdgeCount() int { return len(m.Edges) }

// Index returns the node index for an entity ID.
func (m *Model) Index(id string) (int, bool) {
	i, ok := m.index[id]
	return i, ok
}

// RowCounts returns the number of attribute rows per node, in node order.
// The layout engine derives tile heights from it.
func (m *Model) RowCounts() []int {
	out := make([]int, len(m.Nodes))
	for i := range m.Nodes {
		out[i] = len(m.Nodes[i].Rows)
	}
	return out
}

// Pairs returns the (from, to) node index pairs of all edges.
func (m *Model) Pairs() [][2]int {
	out := make([][2]int, len(m.Edges))
	for i, e := range m.Edges {
		out[i] = [2]int{e.From, e.To}
	}
	return out
}
