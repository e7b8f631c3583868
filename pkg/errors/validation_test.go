package errors

import (
	"strings"
	"testing"
)

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "parse", false},
		{"valid with colon", "id:3fa2", false},
		{"valid unicode", "ständer", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidGraph) {
				t.Errorf("ValidateNodeID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidGraph)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative file", "graph.json", false},
		{"nested", "out/diagram.svg", false},
		{"absolute", "/tmp/graph.toml", false},
		{"dots in name", "my..graph.json", false},

		{"empty", "", true},
		{"traversal", "../secret.json", true},
		{"traversal middle", "out/../../etc/passwd", true},
		{"null byte", "graph\x00.json", true},
		{"too long", strings.Repeat("a", 501), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRange(t *testing.T) {
	if err := ValidateRange("columns", 3, 0, 64); err != nil {
		t.Errorf("in-range value rejected: %v", err)
	}
	if err := ValidateRange("columns", 0, 0, 64); err != nil {
		t.Errorf("lower bound rejected: %v", err)
	}
	err := ValidateRange("columns", 65, 0, 64)
	if err == nil {
		t.Fatal("out-of-range value accepted")
	}
	if !Is(err, ErrCodeInvalidOptions) {
		t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidOptions)
	}
}
