package graph

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/gutterview/pkg/errors"
)

// Document formats.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
)

// =============================================================================
// Document Serialization API
// =============================================================================

// LoadFile reads a graph document and builds its Model in one step.
func LoadFile(path string) (*Model, error) {
	doc, err := ReadDocumentFile(path)
	if err != nil {
		return nil, err
	}
	return Build(doc)
}

// ReadDocumentFile reads a JSON or TOML document, chosen by file extension.
// Files without a recognised extension are decoded as JSON.
func ReadDocumentFile(path string) (Document, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Document{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDocument(f, FormatForPath(path))
}

// ReadDocument decodes a document in the given format from an io.Reader.
func ReadDocument(r io.Reader, format string) (Document, error) {
	var doc Document
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
			return Document{}, errs.Wrap(errs.ErrCodeInvalidGraph, err, "decode toml")
		}
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return Document{}, errs.Wrap(errs.ErrCodeInvalidGraph, err, "decode json")
		}
	default:
		return Document{}, errs.New(errs.ErrCodeInvalidFormat, "unsupported document format %q", format)
	}
	return doc, nil
}

// WriteDocument encodes a document in the given format.
func WriteDocument(w io.Writer, doc Document, format string) error {
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	default:
		return errs.New(errs.ErrCodeInvalidFormat, "unsupported document format %q", format)
	}
	return nil
}

// FormatForPath returns the document format implied by a file extension.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Fingerprint returns a SHA-256 hex digest of the document's canonical form.
// Entity order in the document does not affect the result.
func Fingerprint(doc Document) (string, error) {
	m, err := Build(doc)
	if err != nil {
		return "", err
	}
	return m.Fingerprint(), nil
}

// Fingerprint returns a SHA-256 hex digest identifying the model's content.
func (m *Model) Fingerprint() string {
	var buf bytes.Buffer
	// Encoding a plain struct of strings and bools cannot fail.
	_ = json.NewEncoder(&buf).Encode(m.Document())
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}
