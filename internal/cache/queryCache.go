package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/akolanti/DocChatAPI/internal/adapter/utils"
	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/data/redisStore"
	"github.com/akolanti/DocChatAPI/internal/metrics"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
)

// State is the three-way cache lookup outcome. Miss is a first-class result,
// not an error; Unavailable means the cache layer itself is down and the
// orchestrator should behave as if both caches missed.
type State string

const (
	Hit         State = "hit"
	Miss        State = "miss"
	Unavailable State = "unavailable"
)

type AnswerResult struct {
	State  State
	Answer string
}

type RetrievalResult struct {
	State State
	Ids   []string
}

// Normalize is the cache-key query normalization: lowercase, trim, collapse
// whitespace. Applied identically at write and read time, and idempotent.
func Normalize(query string) string {
	return utils.NormalizeText(query)
}

// QueryCache holds the two independent per-session caches: retrieval
// (query -> ranked chunk ids) and answer (query -> final answer). Entries are
// immutable once written and expire by TTL only.
type QueryCache struct {
	retrieval *redisStore.Store
	answers   *redisStore.Store
	logger    *logger_i.Logger
}

func GetQueryCache(ctx context.Context) *QueryCache {
	return &QueryCache{
		retrieval: redisStore.GetRedisStore(ctx, config.RedisRetrievalCache),
		answers:   redisStore.GetRedisStore(ctx, config.RedisAnswerCache),
		logger:    logger_i.NewLogger("QueryCache"),
	}
}

// GetAnswer checks the whole-answer cache. The key carries the session's index
// generation, so answers cached before a re-ingestion can never be served after
// one (they simply age out by TTL under their old generation).
func (c *QueryCache) GetAnswer(ctx context.Context, sessionId string, generation uint64, normQuery string) AnswerResult {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "sessionId", sessionId)

	if c.answers == nil {
		metrics.CaptureCacheLookup("answer", string(Unavailable))
		return AnswerResult{State: Unavailable}
	}

	val, err := c.answers.Get(ctx, answerKey(sessionId, generation, normQuery))
	if c.answers.IsNil(err) {
		metrics.CaptureCacheLookup("answer", string(Miss))
		return AnswerResult{State: Miss}
	}
	if err != nil {
		log.Error("Answer cache lookup failed", "error", err)
		metrics.CaptureCacheLookup("answer", string(Unavailable))
		return AnswerResult{State: Unavailable}
	}

	log.Debug("Answer cache hit")
	metrics.CaptureCacheLookup("answer", string(Hit))
	return AnswerResult{State: Hit, Answer: val}
}

func (c *QueryCache) PutAnswer(ctx context.Context, sessionId string, generation uint64, normQuery string, answer string) {
	if c.answers == nil {
		return
	}
	if err := c.answers.Set(ctx, answerKey(sessionId, generation, normQuery), answer, config.AnswerCacheTTL); err != nil {
		c.logger.Error("Failed to save answer to cache", "sessionId", sessionId, "error", err)
	}
}

// GetRetrieval checks the retrieval cache. It stores the ranked id sequence
// only - content stays authoritative in the Session Index.
func (c *QueryCache) GetRetrieval(ctx context.Context, sessionId string, normQuery string) RetrievalResult {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "sessionId", sessionId)

	if c.retrieval == nil {
		metrics.CaptureCacheLookup("retrieval", string(Unavailable))
		return RetrievalResult{State: Unavailable}
	}

	val, err := c.retrieval.Get(ctx, retrievalKey(sessionId, normQuery))
	if c.retrieval.IsNil(err) {
		metrics.CaptureCacheLookup("retrieval", string(Miss))
		return RetrievalResult{State: Miss}
	}
	if err != nil {
		log.Error("Retrieval cache lookup failed", "error", err)
		metrics.CaptureCacheLookup("retrieval", string(Unavailable))
		return RetrievalResult{State: Unavailable}
	}

	var ids []string
	if err := json.Unmarshal([]byte(val), &ids); err != nil {
		log.Error("Corrupt retrieval cache entry", "error", err)
		metrics.CaptureCacheLookup("retrieval", string(Miss))
		return RetrievalResult{State: Miss}
	}

	log.Debug("Retrieval cache hit", "ids", len(ids))
	metrics.CaptureCacheLookup("retrieval", string(Hit))
	return RetrievalResult{State: Hit, Ids: ids}
}

// PutRetrieval stores the ranked ids after every fresh search, an empty result
// included - a repeat query against an empty session must hit the cache
// instead of re-running the search chain.
func (c *QueryCache) PutRetrieval(ctx context.Context, sessionId string, normQuery string, ids []string) {
	if c.retrieval == nil {
		return
	}
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		c.logger.Error("Failed to marshal retrieval ids", "error", err)
		return
	}
	if err := c.retrieval.Set(ctx, retrievalKey(sessionId, normQuery), data, config.RetrievalCacheTTL); err != nil {
		c.logger.Error("Failed to save retrieval to cache", "sessionId", sessionId, "error", err)
	}
}

func retrievalKey(sessionId string, normQuery string) string {
	return fmt.Sprintf("retriever:%s:%s", sessionId, hashStr(normQuery))
}

func answerKey(sessionId string, generation uint64, normQuery string) string {
	return fmt.Sprintf("rag:answer:%s:g%d:%s", sessionId, generation, hashStr(normQuery))
}

func hashStr(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// TestQueryCache wires externally constructed stores, for miniredis tests.
// Either store may be nil to simulate an unavailable cache.
func TestQueryCache(retrieval *redisStore.Store, answers *redisStore.Store) *QueryCache {
	return &QueryCache{
		retrieval: retrieval,
		answers:   answers,
		logger:    logger_i.NewLogger("test query cache"),
	}
}
