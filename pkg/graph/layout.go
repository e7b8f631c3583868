package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// =============================================================================
// Diagram - Computed Visualization Format
// =============================================================================

// Diagram is the serialization format for a laid-out and routed graph.
// Used for CLI output files, API responses and the diagram cache.
//
// Tiles are indexed like the model's nodes. Order is the node order the
// columns were packed from and Cost its total edge span.
type Diagram struct {
	Width     float64 `json:"width" bson:"width"`
	Height    float64 `json:"height" bson:"height"`
	Columns   int     `json:"columns" bson:"columns"`
	TileWidth float64 `json:"tile_width" bson:"tile_width"`
	Order     []int   `json:"order" bson:"order"`
	Cost      uint32  `json:"cost" bson:"cost"`
	Tiles     []Tile  `json:"tiles" bson:"tiles"`
	Paths     []Path  `json:"paths,omitempty" bson:"paths,omitempty"`
	Stats     Stats   `json:"stats" bson:"stats"`
}

// Tile is a positioned entity rectangle.
type Tile struct {
	ID     string  `json:"id" bson:"id"`
	Title  string  `json:"title,omitempty" bson:"title,omitempty"`
	Column int     `json:"column" bson:"column"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	Rows   []Row   `json:"rows,omitempty" bson:"rows,omitempty"`
}

// Point is a waypoint in diagram coordinates (y grows downwards).
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Path is a routed edge.
type Path struct {
	From     string  `json:"from" bson:"from"`
	To       string  `json:"to" bson:"to"`
	Attr     string  `json:"attr" bson:"attr"`
	Bundle   string  `json:"bundle" bson:"bundle"` // Colour key shared by edges with the same (attr, target)
	Points   []Point `json:"points" bson:"points"`
	Length   float64 `json:"length" bson:"length"`
	Turns    int     `json:"turns" bson:"turns"`
	Span     int     `json:"span" bson:"span"`
	Left     bool    `json:"left,omitempty" bson:"left,omitempty"`
	Fallback bool    `json:"fallback,omitempty" bson:"fallback,omitempty"`
}

// BundleKey returns the colour key shared by edges with the same attribute
// and target.
func BundleKey(attr, target string) string {
	return attr + "@" + target
}

// Stats summarizes a diagram's geometry and routing quality.
type Stats struct {
	Nodes          int     `json:"nodes" bson:"nodes"`
	Edges          int     `json:"edges" bson:"edges"`
	Components     int     `json:"components" bson:"components"`
	Columns        int     `json:"columns" bson:"columns"`
	CanvasWidth    float64 `json:"canvas_width" bson:"canvas_width"`
	CanvasHeight   float64 `json:"canvas_height" bson:"canvas_height"`
	TileCoverage   float64 `json:"tile_coverage" bson:"tile_coverage"`
	TotalEdgeLen   float64 `json:"total_edge_len" bson:"total_edge_len"`
	AvgEdgeLen     float64 `json:"avg_edge_len" bson:"avg_edge_len"`
	MaxEdgeLen     float64 `json:"max_edge_len" bson:"max_edge_len"`
	AvgTurns       float64 `json:"avg_turns" bson:"avg_turns"`
	MaxTurns       int     `json:"max_turns" bson:"max_turns"`
	AvgSpan        float64 `json:"avg_span" bson:"avg_span"`
	MaxSpan        int     `json:"max_span" bson:"max_span"`
	LeftEdges      int     `json:"left_edges" bson:"left_edges"`
	FallbackTracks int     `json:"fallback_tracks" bson:"fallback_tracks"`
	LinearTotal    float64 `json:"linear_total" bson:"linear_total"`
	LinearAvg      float64 `json:"linear_avg" bson:"linear_avg"`
}

// =============================================================================
// Diagram Serialization API
// =============================================================================

// MarshalDiagram serializes a Diagram to pretty-printed JSON bytes.
func MarshalDiagram(d Diagram) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// UnmarshalDiagram deserializes JSON bytes into a Diagram.
// Validates that tiles and order agree in length.
func UnmarshalDiagram(data []byte) (Diagram, error) {
	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return Diagram{}, fmt.Errorf("unmarshal diagram: %w", err)
	}

	if len(d.Tiles) == 0 {
		return Diagram{}, fmt.Errorf("diagram must contain tiles")
	}
	if len(d.Order) != len(d.Tiles) {
		return Diagram{}, fmt.Errorf("diagram order has %d entries for %d tiles", len(d.Order), len(d.Tiles))
	}

	return d, nil
}

// WriteDiagramFile writes a Diagram to a JSON file.
func WriteDiagramFile(d Diagram, path string) error {
	data, err := MarshalDiagram(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadDiagramFile reads a Diagram from a JSON file.
func ReadDiagramFile(path string) (Diagram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Diagram{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalDiagram(data)
}
