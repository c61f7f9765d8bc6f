// Package service resolves a scope's hub directory.
//
// DirectoryService runs the resolution pipeline: list the hubs of a scope,
// verify each one is a hub root, and gather its associated sites. Hubs are
// processed concurrently with a bounded worker count, and each worker writes
// only its own slot of a result slice, so the tree keeps listing order no
// matter which hub finishes first.
//
// The listing is the only mandatory read. When it fails the caller gets a
// *DirectoryResolutionFailed and no tree. Verification and site discovery
// failures are recovered where they happen and never abort a run.
package service
