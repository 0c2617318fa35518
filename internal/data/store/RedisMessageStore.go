package store

import (
	"context"
	"encoding/json"

	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/data/redisStore"
	"github.com/akolanti/DocChatAPI/internal/domain/sessionModel"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
)

type RedisMessageStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

// GetRedisMessageStore returns the interface type so an offline Redis yields a
// true nil interface and callers can fall back to the in-memory store.
func GetRedisMessageStore(ctx context.Context) sessionModel.MessageStore {
	return messageStoreFrom(redisStore.GetRedisStore(ctx, config.RedisMessageStore))
}

func messageStoreFrom(inner *redisStore.Store) sessionModel.MessageStore {
	if inner == nil {
		return nil
	}
	return &RedisMessageStore{
		store:  inner,
		logger: logger_i.NewLogger("MessageStore"),
	}
}

func (s *RedisMessageStore) AppendMessage(ctx context.Context, sessionId string, message sessionModel.Message) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session Id", sessionId)

	data, err := json.Marshal(message)
	if err != nil {
		log.Error("Error marshalling message", "error", err)
		return err
	}
	if err = s.store.ListPush(ctx, historyKey(sessionId), data); err != nil {
		log.Error("error saving message", "error", err)
		return err
	}
	//sliding expiry - the whole history goes together
	if err = s.store.Expire(ctx, historyKey(sessionId), config.RedisMessageStoreTTL); err != nil {
		log.Error("error refreshing history ttl", "error", err)
	}
	log.Debug("Saved message")
	return nil
}

func (s *RedisMessageStore) LoadHistory(ctx context.Context, sessionId string) ([]sessionModel.Message, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session Id", sessionId)
	log.Debug("Getting message history")

	raw, err := s.store.ListGetAll(ctx, historyKey(sessionId))
	if err != nil {
		log.Error("Error getting history", "error", err)
		return nil, err
	}

	messages := make([]sessionModel.Message, 0, len(raw))
	for _, item := range raw {
		var message sessionModel.Message
		if err := json.Unmarshal([]byte(item), &message); err != nil {
			log.Error("Skipping corrupt history entry", "error", err)
			continue
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func (s *RedisMessageStore) DeleteHistory(ctx context.Context, sessionId string) error {
	return s.store.Del(ctx, historyKey(sessionId))
}

func historyKey(id string) string {
	return "history:" + id
}

func TestMessageStore(store *redisStore.Store) *RedisMessageStore {
	return &RedisMessageStore{
		store:  store,
		logger: logger_i.NewLogger("test message store"),
	}
}
