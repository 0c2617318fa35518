package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/domain/jobModel"
	"github.com/akolanti/DocChatAPI/internal/domain/sessionModel"
	"github.com/akolanti/DocChatAPI/internal/metrics"
)

func executeJob(currentJob jobModel.IngestJob) {
	start := time.Now()
	status := jobModel.JobStatusComplete
	defer func() {
		metrics.CaptureJobMetrics(string(status), time.Since(start))
	}()

	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, currentJob.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.IngestJobTimeout)
	defer cancel()

	log := logger.With("traceId", currentJob.TraceId, "jobId", currentJob.Id, "sessionId", currentJob.SessionId)
	log.Debug("Processing ingest job", "files", len(currentJob.FilePaths))

	saveIngestState(ctx, currentJob.SessionId, sessionModel.IngestStatusIndexing)

	result, err := _ingestor.Ingest(ctx, currentJob.SessionId, currentJob.FilePaths)
	if err != nil {
		log.Error("Ingest job failed", "error", err)
		status = jobModel.JobStatusError
		saveIngestState(ctx, currentJob.SessionId, sessionModel.IngestStatusError)
	} else {
		saveIngestState(ctx, currentJob.SessionId, sessionModel.IngestStatusDone)
	}

	// Result is buffered; the send never blocks even if the submitter is gone
	currentJob.Result <- jobModel.IngestOutcome{Result: result, Err: err}
	log.Debug("Ingest job finished", "chunks", result.ChunkCount, "failed files", len(result.FailedFiles))
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()
}

func saveIngestState(ctx context.Context, sessionId string, status sessionModel.IngestStatus) {
	session, found := _jobService.SessionStore.GetSession(ctx, sessionId)
	if !found {
		logger.Error("Cannot update ingest status for unknown session", "sessionId", sessionId)
		return
	}
	session.IngestStatus = status
	if err := _jobService.SessionStore.SaveSession(ctx, session); err != nil {
		logger.Error("Failed to update ingest status", "err", err)
	}
}
