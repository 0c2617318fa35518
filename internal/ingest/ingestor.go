package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/domain/commonModels"
	"github.com/akolanti/DocChatAPI/internal/domain/sessionModel"
	"github.com/akolanti/DocChatAPI/internal/metrics"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
)

var logger = logger_i.NewLogger("Document Ingestion")

// Inserter is the slice of the index manager the ingestor needs.
type Inserter interface {
	AddDocuments(ctx context.Context, sessionId string, chunks []commonModels.Chunk) (int, error)
}

type Ingestor struct {
	index    Inserter
	sessions sessionModel.SessionStore
	caption  Captioner

	// one mutex per session serializes ingestion batches in submission order,
	// keeping the Session Index append-only under concurrent uploads
	sessionLocksMu sync.Mutex
	sessionLocks   map[string]*sync.Mutex
}

func NewIngestor(index Inserter, sessions sessionModel.SessionStore, captioner Captioner) *Ingestor {
	return &Ingestor{
		index:        index,
		sessions:     sessions,
		caption:      captioner,
		sessionLocks: make(map[string]*sync.Mutex),
	}
}

func (ing *Ingestor) sessionLock(sessionId string) *sync.Mutex {
	ing.sessionLocksMu.Lock()
	defer ing.sessionLocksMu.Unlock()
	lock, ok := ing.sessionLocks[sessionId]
	if !ok {
		lock = &sync.Mutex{}
		ing.sessionLocks[sessionId] = lock
	}
	return lock
}

// Ingest loads, splits, identifies and indexes the given files for one session.
// Per-file loader failures land in FailedFiles and do not stop the batch; an
// embedding or index failure aborts the whole batch.
func (ing *Ingestor) Ingest(ctx context.Context, sessionId string, filePaths []string) (commonModels.IngestResult, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "sessionId", sessionId)

	session, found := ing.sessions.GetSession(ctx, sessionId)
	if !found {
		return commonModels.IngestResult{}, fmt.Errorf("unknown session %q", sessionId)
	}

	lock := ing.sessionLock(sessionId)
	lock.Lock()
	defer lock.Unlock()

	result := commonModels.IngestResult{SessionId: sessionId}

	var docs []commonModels.Document
	for _, path := range filePaths {
		loaded, err := LoadDocuments(ctx, path, ing.caption)
		if err != nil {
			log.Error("File failed to load", "file", path, "error", err)
			result.FailedFiles = append(result.FailedFiles, commonModels.FailedFile{
				File:  path,
				Error: err.Error(),
			})
			continue
		}
		if len(loaded) == 0 {
			log.Warn("File produced no content", "file", path)
			result.FailedFiles = append(result.FailedFiles, commonModels.FailedFile{
				File:  path,
				Error: "empty document",
			})
			continue
		}
		docs = append(docs, loaded...)
	}

	chunks := SplitDocuments(docs)
	for i := range chunks {
		chunks[i].Id = AssignID(session.Prefix, chunks[i].Metadata.Source, chunks[i].Metadata.Position, chunks[i].Content)
	}

	log.Debug("Prepared chunks", "documents", len(docs), "chunks", len(chunks))

	if len(chunks) > 0 {
		added, err := ing.index.AddDocuments(ctx, sessionId, chunks)
		if err != nil {
			return result, err
		}
		metrics.AddChunksIngested(added)
		log.Info("Ingestion batch applied", "chunks", len(chunks), "newly added", added)
	}

	result.ChunkCount = len(chunks)
	return result, nil
}
