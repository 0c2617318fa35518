package store

import (
	"context"
	"encoding/json"

	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/data/redisStore"
	"github.com/akolanti/DocChatAPI/internal/domain/sessionModel"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
)

const sessionRegistryKey = "sessions"

type RedisSessionStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

// GetRedisSessionStore returns the interface type so an offline Redis yields a
// true nil interface and callers can fall back to the in-memory store.
func GetRedisSessionStore(ctx context.Context) sessionModel.SessionStore {
	return sessionStoreFrom(redisStore.GetRedisStore(ctx, config.RedisSessionStore))
}

func sessionStoreFrom(inner *redisStore.Store) sessionModel.SessionStore {
	if inner == nil {
		return nil
	}
	return &RedisSessionStore{
		store:  inner,
		logger: logger_i.NewLogger("SessionStore"),
	}
}

func (s *RedisSessionStore) SaveSession(ctx context.Context, session sessionModel.Session) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session Id", session.Id)
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	if err = s.store.Set(ctx, sessionKey(session.Id), data, config.RedisSessionStoreTTL); err != nil {
		return err
	}
	if err = s.store.SetAdd(ctx, sessionRegistryKey, session.Id); err != nil {
		return err
	}
	log.Debug("Saved session to Redis")
	return nil
}

func (s *RedisSessionStore) GetSession(ctx context.Context, sessionId string) (sessionModel.Session, bool) {
	var session sessionModel.Session
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session Id", sessionId)

	val, err := s.store.Get(ctx, sessionKey(sessionId))
	if s.store.IsNil(err) {
		return session, false
	} else if err != nil {
		log.Error("Error reading session", "error", err)
		return session, false
	}

	if err = json.Unmarshal([]byte(val), &session); err != nil {
		log.Error("Corrupt session entry", "error", err)
		return session, false
	}
	return session, true
}

func (s *RedisSessionStore) ListSessions(ctx context.Context) ([]sessionModel.Session, error) {
	ids, err := s.store.SetMembers(ctx, sessionRegistryKey)
	if err != nil {
		return nil, err
	}

	sessions := make([]sessionModel.Session, 0, len(ids))
	for _, id := range ids {
		if session, found := s.GetSession(ctx, id); found {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}

func (s *RedisSessionStore) DeleteSession(ctx context.Context, sessionId string) {
	if err := s.store.Del(ctx, sessionKey(sessionId)); err != nil {
		s.logger.Error("Error deleting session from Redis", "sessionId", sessionId, "error", err)
		return
	}
	if err := s.store.SetRemove(ctx, sessionRegistryKey, sessionId); err != nil {
		s.logger.Error("Error removing session from registry", "sessionId", sessionId, "error", err)
	}
	s.logger.Debug("Session deleted from Redis", "sessionId", sessionId)
}

func sessionKey(id string) string {
	return "session:" + id
}

func TestSessionStore(store *redisStore.Store) *RedisSessionStore {
	return &RedisSessionStore{
		store:  store,
		logger: logger_i.NewLogger("test session store"),
	}
}
