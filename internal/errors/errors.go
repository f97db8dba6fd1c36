// internal/errors/errors.go
package errors

import "fmt"

// ErrNotFound is returned when GitHub reports that a resource does not exist
// or is not visible to the caller's token.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// ErrInvalidRepoID is returned when a repository id in a request path is not a positive integer.
type ErrInvalidRepoID struct {
	Raw string
}

func (e *ErrInvalidRepoID) Error() string {
	return fmt.Sprintf("invalid repository id: %q, expected a positive integer", e.Raw)
}
