package store

import (
	"context"
	"sync"

	"github.com/akolanti/DocChatAPI/internal/domain/sessionModel"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem SessionStore")

type InMemorySessionStore struct {
	sessionMutex *sync.RWMutex
	sessionMap   map[string]sessionModel.Session
}

func InitInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		sessionMutex: new(sync.RWMutex),
		sessionMap:   make(map[string]sessionModel.Session),
	}
}

func (store *InMemorySessionStore) SaveSession(ctx context.Context, session sessionModel.Session) error {
	store.sessionMutex.Lock()
	defer store.sessionMutex.Unlock()
	store.sessionMap[session.Id] = session
	inMemLogger.Info(session.Id, " : Saved session to store")
	return nil
}

func (store *InMemorySessionStore) GetSession(ctx context.Context, sessionId string) (sessionModel.Session, bool) {
	store.sessionMutex.RLock()
	defer store.sessionMutex.RUnlock()
	result, found := store.sessionMap[sessionId]
	return result, found
}

func (store *InMemorySessionStore) ListSessions(ctx context.Context) ([]sessionModel.Session, error) {
	store.sessionMutex.RLock()
	defer store.sessionMutex.RUnlock()
	sessions := make([]sessionModel.Session, 0, len(store.sessionMap))
	for _, s := range store.sessionMap {
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func (store *InMemorySessionStore) DeleteSession(ctx context.Context, sessionId string) {
	store.sessionMutex.Lock()
	defer store.sessionMutex.Unlock()
	delete(store.sessionMap, sessionId)
}
