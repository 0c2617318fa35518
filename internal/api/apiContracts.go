package api

import "time"

type ErrorResponse struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"unknown session"`
	Id      string `json:"id,omitempty" example:"session_12_aug_2025_4:31_pm_af01"`
}

type SessionResponse struct {
	SessionId   string    `json:"session_id" example:"session_12_aug_2025_4:31_pm_af01"`
	CreatedTime time.Time `json:"created_time"`
	IngestState string    `json:"ingest_state" example:"NONE"`
}

type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Count    int               `json:"count"`
}

type FailedFileResponse struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

type UploadResponse struct {
	SessionId   string               `json:"session_id"`
	ChunkCount  int                  `json:"chunk_count"`
	FailedFiles []FailedFileResponse `json:"failed_files,omitempty"`
}

type QueryResponse struct {
	SessionId string   `json:"session_id"`
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	Evidence  []string `json:"evidence"`
	Route     string   `json:"route" example:"rag"`
	Cached    bool     `json:"cached"`
}

type MessageResponse struct {
	Role    string    `json:"role" example:"user"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sent_at"`
}

type HistoryResponse struct {
	SessionId string            `json:"session_id"`
	Messages  []MessageResponse `json:"messages"`
}

// requests---------------------

type QueryRequest struct {
	SessionId string `json:"session_id" validate:"required"`
	Query     string `json:"query" validate:"required"`
}
