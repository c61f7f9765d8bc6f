package codec

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"sitedirectory/internal/domain"
)

// Exporter writes a resolved directory tree in one output format
type Exporter interface {
	Export(tree *domain.DirectoryTree, w io.Writer) error
	Format() string
	ContentType() string
}

// Exporters returns every built-in exporter keyed by format name
func Exporters() map[string]Exporter {
	out := make(map[string]Exporter)
	for _, e := range []Exporter{NewJSONCodec(), NewYAMLCodec(), NewTextCodec()} {
		out[e.Format()] = e
	}
	return out
}

// ForFormat returns the exporter for a format name
func ForFormat(format string) (Exporter, error) {
	exporters := Exporters()
	if e, ok := exporters[strings.ToLower(strings.TrimSpace(format))]; ok {
		return e, nil
	}
	names := make([]string, 0, len(exporters))
	for name := range exporters {
		names = append(names, name)
	}
	sort.Strings(names)
	return nil, fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(names, ", "))
}
