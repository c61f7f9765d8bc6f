// Package repository defines the offline directory snapshot.
//
// A snapshot captures what the four directory read endpoints return at one
// point in time: the hub listing, per-site identity records, each hub's
// declared association payload and the search index rows tagging sites with
// their hub. A Repository serves those reads through the same directory.Client
// contract as the live REST client, so the resolution pipeline runs unchanged
// against either source.
//
// # SQLite Implementation
//
// The sqlite subpackage stores snapshots in a single SQLite file. Lookups by
// URL use the same case-insensitive normalization as the resolver. Missing
// records are reported as 404 fetch failures, matching the live directory.
//
// Snapshots are only written by Import; the read methods never modify them.
package repository
