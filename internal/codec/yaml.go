package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"sitedirectory/internal/domain"
)

// YAMLCodec handles YAML export of directory trees
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// ContentType returns the MIME type of the output
func (c *YAMLCodec) ContentType() string {
	return "application/x-yaml"
}

// yamlSite mirrors domain.SiteRecord with snake_case keys
type yamlSite struct {
	ID    string `yaml:"id,omitempty"`
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

type yamlHub struct {
	ID          string     `yaml:"id"`
	Title       string     `yaml:"title"`
	URL         string     `yaml:"url"`
	Description string     `yaml:"description,omitempty"`
	Highlighted bool       `yaml:"highlighted,omitempty"`
	Sites       []yamlSite `yaml:"sites"`
}

type yamlTree struct {
	Scope      string    `yaml:"scope"`
	ResolvedAt string    `yaml:"resolved_at"`
	Hubs       []yamlHub `yaml:"hubs"`
}

// Export writes the tree as YAML
func (c *YAMLCodec) Export(tree *domain.DirectoryTree, w io.Writer) error {
	yt := yamlTree{
		Scope:      tree.Scope,
		ResolvedAt: tree.ResolvedAt.Format("2006-01-02T15:04:05Z07:00"),
		Hubs:       make([]yamlHub, 0, len(tree.Hubs)),
	}
	for _, h := range tree.Hubs {
		yh := yamlHub{
			ID:          h.Record.ID,
			Title:       h.Record.Title,
			URL:         h.Record.URL,
			Description: h.Description,
			Highlighted: h.Highlighted,
			Sites:       make([]yamlSite, 0, len(h.AssociatedSites)),
		}
		for _, s := range h.AssociatedSites {
			yh.Sites = append(yh.Sites, yamlSite{ID: s.ID, Title: s.Title, URL: s.URL})
		}
		yt.Hubs = append(yt.Hubs, yh)
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(yt); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}
