package sessionModel

import (
	"context"
	"time"
)

type IngestStatus string

const (
	IngestStatusNone     IngestStatus = "NONE"
	IngestStatusIndexing IngestStatus = "INDEXING"
	IngestStatusDone     IngestStatus = "DONE"
	IngestStatusError    IngestStatus = "Error"
)

// Session ties a conversation to its identity prefix. The prefix is fixed at
// creation time and is the session-scoped part of every chunk id.
type Session struct {
	Id           string       `json:"id"`
	Prefix       string       `json:"prefix"`
	CreatedTime  time.Time    `json:"created_time"`
	IngestStatus IngestStatus `json:"ingest_status"`
}

type Message struct {
	Role    string    `json:"role"` //"user" or "assistant"
	Content string    `json:"content"`
	SentAt  time.Time `json:"sent_at"`
}

type SessionStore interface {
	SaveSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, sessionId string) (Session, bool)
	ListSessions(ctx context.Context) ([]Session, error)
	DeleteSession(ctx context.Context, sessionId string)
}

type MessageStore interface {
	AppendMessage(ctx context.Context, sessionId string, message Message) error
	LoadHistory(ctx context.Context, sessionId string) ([]Message, error)
	DeleteHistory(ctx context.Context, sessionId string) error
}
