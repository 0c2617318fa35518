package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocChatAPI/internal/adapter/utils"
	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/domain/jobModel"
	"github.com/akolanti/DocChatAPI/internal/domain/sessionModel"
	"github.com/akolanti/DocChatAPI/internal/ingest"
	"github.com/akolanti/DocChatAPI/internal/job"
	"github.com/akolanti/DocChatAPI/internal/metrics"
	"github.com/akolanti/DocChatAPI/internal/orchestrator"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
)

var (
	handlerInstance *ApiHandler //private singleton
	once            sync.Once
	logSH           *logger_i.Logger
)

// answerer is the query pipeline consumed by QueryHandler.
type answerer interface {
	Answer(ctx context.Context, sessionId string, query string, history []sessionModel.Message) (orchestrator.Answer, error)
}

// indexAdmin is the slice of the index manager session deletion needs.
type indexAdmin interface {
	DeleteIndex(ctx context.Context, sessionId string) error
}

type ApiHandler struct {
	service      *job.Service
	orchestrator answerer
	indexes      indexAdmin
}

func InitApiHandler(jobService *job.Service, queryPipeline answerer, indexes indexAdmin) {
	once.Do(func() {
		handlerInstance = &ApiHandler{
			service:      jobService,
			orchestrator: queryPipeline,
			indexes:      indexes,
		}

		logSH = logger_i.NewLogger("ApiHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logSH.Info("Starting api handler")
	})
}

// createSession mints the session id, which doubles as the fixed prefix every
// chunk id in this session starts with.
func (h *ApiHandler) createSession(ctx context.Context) (sessionModel.Session, error) {
	now := time.Now()
	session := sessionModel.Session{
		Id:           ingest.NewSessionPrefix(now),
		CreatedTime:  now,
		IngestStatus: sessionModel.IngestStatusNone,
	}
	session.Prefix = session.Id

	if err := h.service.SessionStore.SaveSession(ctx, session); err != nil {
		return sessionModel.Session{}, err
	}
	logSH.Info("Created session", "sessionId", session.Id)
	return session, nil
}

// enqueueIngest pushes one upload batch to the worker pool and returns the
// channel the outcome arrives on. Every ingest job also signals the
// dispatcher, since ingestion is the slow batch workload worth scaling for.
func (h *ApiHandler) enqueueIngest(ctx context.Context, sessionId string, filePaths []string) chan jobModel.IngestOutcome {
	newJob := jobModel.IngestJob{
		Id:          utils.GetNewUUID(),
		SessionId:   sessionId,
		TraceId:     traceIdFrom(ctx),
		FilePaths:   filePaths,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
		Result:      make(chan jobModel.IngestOutcome, 1),
	}

	metrics.IncrementJobsInQueue()
	h.service.JobChannel <- newJob //blocking send to prevent the system from being overwhelmed
	logSH.Info("Queued ingest job", "jobId", newJob.Id, "sessionId", sessionId, "files", len(filePaths))

	atomic.AddInt64(&h.service.RequestCount, 1)
	metrics.StartDispatcherSignalCount()
	h.service.DispatcherChannel <- true

	return newJob.Result
}

func traceIdFrom(ctx context.Context) string {
	if trace, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok {
		return trace
	}
	return ""
}
