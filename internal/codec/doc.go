// Package codec renders resolved directory trees.
//
// Each Exporter writes a domain.DirectoryTree in one format: json matches the
// HTTP API response, yaml uses snake_case keys for config-style consumers, and
// text prints an outline for terminals. ForFormat looks an exporter up by name.
package codec
