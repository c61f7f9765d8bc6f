package service

import "fmt"

// DirectoryResolutionFailed reports that the hub listing could not be read,
// so no tree was produced for the scope
type DirectoryResolutionFailed struct {
	Scope string
	Err   error
}

func (e *DirectoryResolutionFailed) Error() string {
	return fmt.Sprintf("resolve directory %s: %v", e.Scope, e.Err)
}

func (e *DirectoryResolutionFailed) Unwrap() error {
	return e.Err
}
