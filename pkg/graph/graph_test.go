package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/matzehuels/gutterview/pkg/errors"
)

func sampleDoc() Document {
	return Document{Entities: []Entity{
		{ID: "render", Rows: []Row{{Attr: "uses", Target: "layout"}}},
		{ID: "layout", Title: "Layout engine", Rows: []Row{
			{Attr: "uses", Target: "solver"},
			{Attr: "blob", Opaque: true},
			{Attr: "name", Value: "layout"},
		}},
		{ID: "solver", Rows: []Row{
			{Attr: "self", Target: "solver"},
			{Attr: "missing", Target: "nowhere"},
		}},
	}}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name      string
		doc       Document
		wantNodes int
		wantEdges int
		wantCode  errs.Code
		check     func(t *testing.T, m *Model)
	}{
		{
			name:     "Empty",
			doc:      Document{},
			wantCode: errs.ErrCodeInvalidGraph,
		},
		{
			name:     "Duplicate",
			doc:      Document{Entities: []Entity{{ID: "a"}, {ID: "a"}}},
			wantCode: errs.ErrCodeInvalidGraph,
		},
		{
			name:     "EmptyID",
			doc:      Document{Entities: []Entity{{ID: ""}}},
			wantCode: errs.ErrCodeInvalidGraph,
		},
		{
			name:      "Sample",
			doc:       sampleDoc(),
			wantNodes: 3,
			wantEdges: 2,
			check: func(t *testing.T, m *Model) {
				ids := []string{m.Nodes[0].ID, m.Nodes[1].ID, m.Nodes[2].ID}
				if strings.Join(ids, ",") != "layout,render,solver" {
					t.Errorf("node order = %v, want sorted by id", ids)
				}
				layout := m.Nodes[0]
				if layout.Rows[0].Attr != "blob" || layout.Rows[1].Attr != "name" || layout.Rows[2].Attr != "uses" {
					t.Errorf("rows not sorted by label: %+v", layout.Rows)
				}
				// layout.uses -> solver comes from row 2 after sorting.
				found := false
				for _, e := range m.Edges {
					if e.From == 0 && e.To == 2 {
						found = true
						if e.FromRow != 2 {
							t.Errorf("FromRow = %d, want 2", e.FromRow)
						}
						if e.Attr != "uses" {
							t.Errorf("Attr = %q, want uses", e.Attr)
						}
					}
					if e.From == e.To {
						t.Errorf("self-loop survived: %+v", e)
					}
				}
				if !found {
					t.Error("edge layout -> solver missing")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Build(tt.doc)
			if tt.wantCode != "" {
				if !errs.Is(err, tt.wantCode) {
					t.Fatalf("Build() error = %v, want code %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if m.NodeCount() != tt.wantNodes {
				t.Errorf("NodeCount() = %d, want %d", m.NodeCount(), tt.wantNodes)
			}
			if m.EdgeCount() != tt.wantEdges {
				t.Errorf("EdgeCount() = %d, want %d", m.EdgeCount(), tt.wantEdges)
			}
			if tt.check != nil {
				tt.check(t, m)
			}
		})
	}
}

func TestRowOrderingOpaqueAfterText(t *testing.T) {
	m, err := Build(Document{Entities: []Entity{{ID: "a", Rows: []Row{
		{Attr: "x", Opaque: true},
		{Attr: "x", Value: "b"},
		{Attr: "x", Value: "a"},
	}}}})
	if err != nil {
		t.Fatal(err)
	}
	rows := m.Nodes[0].Rows
	if rows[0].Value != "a" || rows[1].Value != "b" || !rows[2].Opaque {
		t.Errorf("rows = %+v, want text values sorted then opaque", rows)
	}
}

func TestModelRoundTrip(t *testing.T) {
	m, err := Build(sampleDoc())
	if err != nil {
		t.Fatal(err)
	}
	again, err := Build(m.Document())
	if err != nil {
		t.Fatal(err)
	}
	if m.Fingerprint() != again.Fingerprint() {
		t.Error("fingerprint changed across Document round trip")
	}
	if again.EdgeCount() != m.EdgeCount() {
		t.Errorf("edges = %d, want %d", again.EdgeCount(), m.EdgeCount())
	}
}

func TestFingerprint(t *testing.T) {
	a := sampleDoc()
	b := sampleDoc()
	b.Entities[0], b.Entities[2] = b.Entities[2], b.Entities[0]

	fa, err := Fingerprint(a)
	if err != nil {
		t.Fatal(err)
	}
	fb, err := Fingerprint(b)
	if err != nil {
		t.Fatal(err)
	}
	if fa != fb {
		t.Error("entity order should not change the fingerprint")
	}
	if len(fa) != 64 {
		t.Errorf("fingerprint length = %d, want 64", len(fa))
	}

	b.Entities[0].Rows = append(b.Entities[0].Rows, Row{Attr: "extra", Value: "1"})
	fc, _ := Fingerprint(b)
	if fa == fc {
		t.Error("content change should change the fingerprint")
	}
}

func TestComponents(t *testing.T) {
	m, err := Build(Document{Entities: []Entity{
		{ID: "a", Rows: []Row{{Attr: "r", Target: "b"}}},
		{ID: "b"},
		{ID: "c", Rows: []Row{{Attr: "r", Target: "d"}}},
		{ID: "d"},
		{ID: "e"},
	}})
	if err != nil {
		t.Fatal(err)
	}

	comps := m.Components()
	if len(comps) != 3 {
		t.Fatalf("components = %v, want 3", comps)
	}
	if len(comps[0]) != 2 || comps[0][0] != 0 || comps[0][1] != 1 {
		t.Errorf("first component = %v, want [0 1]", comps[0])
	}
	if len(comps[2]) != 1 || comps[2][0] != 4 {
		t.Errorf("last component = %v, want [4]", comps[2])
	}
}

func TestReadWriteDocument(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatTOML} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteDocument(&buf, sampleDoc(), format); err != nil {
				t.Fatalf("WriteDocument() error = %v", err)
			}
			doc, err := ReadDocument(&buf, format)
			if err != nil {
				t.Fatalf("ReadDocument() error = %v", err)
			}
			want, _ := Fingerprint(sampleDoc())
			got, err := Fingerprint(doc)
			if err != nil {
				t.Fatal(err)
			}
			if got != want {
				t.Error("document changed across round trip")
			}
		})
	}

	if _, err := ReadDocument(strings.NewReader("{}"), "yaml"); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("unsupported format error = %v", err)
	}
	if _, err := ReadDocument(strings.NewReader("{"), FormatJSON); !errs.Is(err, errs.ErrCodeInvalidGraph) {
		t.Errorf("malformed json error = %v", err)
	}
}

func TestLoadFileTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.toml")
	content := `
[[entities]]
id = "a"

  [[entities.rows]]
  attr = "next"
  target = "b"

[[entities]]
id = "b"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if m.NodeCount() != 2 || m.EdgeCount() != 1 {
		t.Errorf("got %d nodes %d edges, want 2 and 1", m.NodeCount(), m.EdgeCount())
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.json")); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]string{
		"g.json":  FormatJSON,
		"g.toml":  FormatTOML,
		"G.TOML":  FormatTOML,
		"g":       FormatJSON,
		"a/b.txt": FormatJSON,
	}
	for path, want := range tests {
		if got := FormatForPath(path); got != want {
			t.Errorf("FormatForPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestDiagramRoundTrip(t *testing.T) {
	d := Diagram{
		Width:   600,
		Height:  200,
		Columns: 2,
		Order:   []int{1, 0},
		Cost:    1,
		Tiles: []Tile{
			{ID: "a", X: 48, Y: 24, Width: 220, Height: 60},
			{ID: "b", Column: 1, X: 316, Y: 24, Width: 220, Height: 60},
		},
		Paths: []Path{{From: "a", To: "b", Attr: "r", Points: []Point{{X: 268, Y: 50}, {X: 316, Y: 24}}}},
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "diagram.json")
	if err := WriteDiagramFile(d, path); err != nil {
		t.Fatal(err)
	}
	got, err := ReadDiagramFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Columns != 2 || len(got.Tiles) != 2 || len(got.Paths) != 1 {
		t.Errorf("round trip lost data: %+v", got)
	}

	if _, err := UnmarshalDiagram([]byte(`{"tiles":[{"id":"a"}],"order":[]}`)); err == nil {
		t.Error("mismatched order length should fail")
	}
	if _, err := UnmarshalDiagram([]byte(`{}`)); err == nil {
		t.Error("empty diagram should fail")
	}
}
