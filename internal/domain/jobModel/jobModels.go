package jobModel

import (
	"time"

	"github.com/akolanti/DocChatAPI/internal/domain/commonModels"
)

type JobStatus string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "ERROR"
)

// IngestOutcome is what a worker reports back when an ingest job finishes.
type IngestOutcome struct {
	Result commonModels.IngestResult
	Err    error
}

// IngestJob is one queued ingestion batch: every file of one upload request
// for one session. Result is a buffered channel the submitting handler waits
// on; workers always send exactly one outcome.
type IngestJob struct {
	Id          string
	SessionId   string
	TraceId     string
	FilePaths   []string
	CreatedTime time.Time
	Status      JobStatus
	Result      chan IngestOutcome
}
