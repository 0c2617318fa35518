package index

import (
	"fmt"
	"strings"
)

// EmbeddingError marks a batch-fatal embedding failure: nothing from the
// enclosing insertion batch was applied.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// NotFoundError means an id surfaced by a cache or a search result has no
// docstore entry. Under the no-orphan invariant this is a bug-class event,
// not a user error.
type NotFoundError struct {
	SessionId string
	Missing   []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session %s: ids missing from docstore: %s", e.SessionId, strings.Join(e.Missing, ", "))
}
