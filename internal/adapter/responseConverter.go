package adapter

import (
	"github.com/akolanti/DocChatAPI/internal/api"
	"github.com/akolanti/DocChatAPI/internal/domain/commonModels"
	"github.com/akolanti/DocChatAPI/internal/domain/sessionModel"
	"github.com/akolanti/DocChatAPI/internal/orchestrator"
)

func ToSessionResponse(session sessionModel.Session) api.SessionResponse {
	return api.SessionResponse{
		SessionId:   session.Id,
		CreatedTime: session.CreatedTime,
		IngestState: string(session.IngestStatus),
	}
}

func ToSessionListResponse(sessions []sessionModel.Session) api.SessionListResponse {
	out := api.SessionListResponse{Sessions: make([]api.SessionResponse, 0, len(sessions))}
	for _, session := range sessions {
		out.Sessions = append(out.Sessions, ToSessionResponse(session))
	}
	out.Count = len(out.Sessions)
	return out
}

func ToUploadResponse(result commonModels.IngestResult) api.UploadResponse {
	out := api.UploadResponse{
		SessionId:  result.SessionId,
		ChunkCount: result.ChunkCount,
	}
	for _, failed := range result.FailedFiles {
		out.FailedFiles = append(out.FailedFiles, api.FailedFileResponse{File: failed.File, Error: failed.Error})
	}
	return out
}

func ToQueryResponse(sessionId string, question string, answer orchestrator.Answer) api.QueryResponse {
	evidence := answer.Evidence
	if evidence == nil {
		evidence = []string{}
	}
	return api.QueryResponse{
		SessionId: sessionId,
		Question:  question,
		Answer:    answer.Text,
		Evidence:  evidence,
		Route:     string(answer.Route),
		Cached:    answer.Cached,
	}
}

func ToHistoryResponse(sessionId string, messages []sessionModel.Message) api.HistoryResponse {
	out := api.HistoryResponse{SessionId: sessionId, Messages: make([]api.MessageResponse, 0, len(messages))}
	for _, message := range messages {
		out.Messages = append(out.Messages, api.MessageResponse{
			Role:    message.Role,
			Content: message.Content,
			SentAt:  message.SentAt,
		})
	}
	return out
}

func BadRequest(id string, error string, code int) api.ErrorResponse {
	return api.ErrorResponse{
		Code:    code,
		Message: error,
		Id:      id,
	}
}
