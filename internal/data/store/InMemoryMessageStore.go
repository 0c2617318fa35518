package store

import (
	"context"
	"sync"

	"github.com/akolanti/DocChatAPI/internal/domain/sessionModel"
)

type InMemoryMessageStore struct {
	historyLock *sync.RWMutex
	historyMap  map[string][]sessionModel.Message
}

func InitInMemoryMessageStore() *InMemoryMessageStore {
	return &InMemoryMessageStore{
		historyLock: new(sync.RWMutex),
		historyMap:  make(map[string][]sessionModel.Message),
	}
}

func (store *InMemoryMessageStore) AppendMessage(ctx context.Context, sessionId string, message sessionModel.Message) error {
	store.historyLock.Lock()
	defer store.historyLock.Unlock()
	store.historyMap[sessionId] = append(store.historyMap[sessionId], message)
	return nil
}

func (store *InMemoryMessageStore) LoadHistory(ctx context.Context, sessionId string) ([]sessionModel.Message, error) {
	store.historyLock.RLock()
	defer store.historyLock.RUnlock()
	history := store.historyMap[sessionId]
	out := make([]sessionModel.Message, len(history))
	copy(out, history)
	return out, nil
}

func (store *InMemoryMessageStore) DeleteHistory(ctx context.Context, sessionId string) error {
	store.historyLock.Lock()
	defer store.historyLock.Unlock()
	delete(store.historyMap, sessionId)
	return nil
}
