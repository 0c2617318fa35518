package job

import (
	"github.com/akolanti/DocChatAPI/internal/domain/jobModel"
	"github.com/akolanti/DocChatAPI/internal/domain/sessionModel"
)

type Service struct {
	JobChannel        chan jobModel.IngestJob
	RequestCount      int64
	DispatcherChannel chan bool
	SessionStore      sessionModel.SessionStore
	MessageStore      sessionModel.MessageStore
}

type ServiceConfig struct {
	JobChannel        chan jobModel.IngestJob
	RequestCount      int64
	DispatcherChannel chan bool
	SessionStore      sessionModel.SessionStore
	MessageStore      sessionModel.MessageStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		SessionStore:      cfg.SessionStore,
		MessageStore:      cfg.MessageStore,
	}
}
