package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"sitedirectory/internal/domain"
)

// JSONCodec writes the tree in the same shape the HTTP API serves
type JSONCodec struct {
	Indent string
}

// NewJSONCodec creates a new JSON codec with two-space indentation
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: "  "}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// ContentType returns the MIME type of the output
func (c *JSONCodec) ContentType() string {
	return "application/json"
}

// Export writes the tree as JSON
func (c *JSONCodec) Export(tree *domain.DirectoryTree, w io.Writer) error {
	enc := json.NewEncoder(w)
	if c.Indent != "" {
		enc.SetIndent("", c.Indent)
	}
	if err := enc.Encode(tree); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
