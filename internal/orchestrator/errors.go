package orchestrator

import "fmt"

// RetrievalUnavailable means the search side of a query could not complete:
// the embedding model or the session index was unreachable. It is surfaced to
// the caller as-is and never retried silently, since a silent retry risks
// paying generation cost twice.
type RetrievalUnavailable struct {
	Err error
}

func (e *RetrievalUnavailable) Error() string {
	return fmt.Sprintf("retrieval unavailable: %v", e.Err)
}

func (e *RetrievalUnavailable) Unwrap() error {
	return e.Err
}
