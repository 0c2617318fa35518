package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/akolanti/DocChatAPI/internal/cache"
	"github.com/akolanti/DocChatAPI/internal/domain/commonModels"
	"github.com/akolanti/DocChatAPI/internal/domain/sessionModel"
	"github.com/akolanti/DocChatAPI/internal/index"
)

// --- Mocks ---

type mockSearcher struct {
	searchFunc    func(ctx context.Context, sessionId string, queryVector []float32, k int, mode index.SearchMode) ([]string, error)
	resolveFunc   func(ctx context.Context, sessionId string, ids []string) ([]commonModels.Chunk, error)
	bestScoreFunc func(ctx context.Context, sessionId string, queryVector []float32) (float32, bool, error)
	searchCalls   int32
}

func (m *mockSearcher) Search(ctx context.Context, sessionId string, queryVector []float32, k int, mode index.SearchMode) ([]string, error) {
	atomic.AddInt32(&m.searchCalls, 1)
	if m.searchFunc != nil {
		return m.searchFunc(ctx, sessionId, queryVector, k, mode)
	}
	return []string{"id-1", "id-2"}, nil
}

func (m *mockSearcher) Resolve(ctx context.Context, sessionId string, ids []string) ([]commonModels.Chunk, error) {
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx, sessionId, ids)
	}
	chunks := make([]commonModels.Chunk, 0, len(ids))
	for _, id := range ids {
		chunks = append(chunks, commonModels.Chunk{Id: id, Content: "content of " + id})
	}
	return chunks, nil
}

func (m *mockSearcher) Generation(ctx context.Context, sessionId string) (uint64, error) {
	return 3, nil
}

func (m *mockSearcher) BestScore(ctx context.Context, sessionId string, queryVector []float32) (float32, bool, error) {
	if m.bestScoreFunc != nil {
		return m.bestScoreFunc(ctx, sessionId, queryVector)
	}
	return 0.8, true, nil
}

type mockQueryCache struct {
	getAnswerFunc    func(sessionId string, generation uint64, normQuery string) cache.AnswerResult
	getRetrievalFunc func(sessionId string, normQuery string) cache.RetrievalResult

	putAnswerCalls    int32
	putRetrievalCalls int32
	lastPutAnswer     string
	lastPutIds        []string
}

func (m *mockQueryCache) GetAnswer(ctx context.Context, sessionId string, generation uint64, normQuery string) cache.AnswerResult {
	if m.getAnswerFunc != nil {
		return m.getAnswerFunc(sessionId, generation, normQuery)
	}
	return cache.AnswerResult{State: cache.Miss}
}

func (m *mockQueryCache) PutAnswer(ctx context.Context, sessionId string, generation uint64, normQuery string, answer string) {
	atomic.AddInt32(&m.putAnswerCalls, 1)
	m.lastPutAnswer = answer
}

func (m *mockQueryCache) GetRetrieval(ctx context.Context, sessionId string, normQuery string) cache.RetrievalResult {
	if m.getRetrievalFunc != nil {
		return m.getRetrievalFunc(sessionId, normQuery)
	}
	return cache.RetrievalResult{State: cache.Miss}
}

func (m *mockQueryCache) PutRetrieval(ctx context.Context, sessionId string, normQuery string, ids []string) {
	atomic.AddInt32(&m.putRetrievalCalls, 1)
	m.lastPutIds = ids
}

type mockEmbedder struct {
	embedFunc  func(ctx context.Context, query string) ([]float32, error)
	embedCalls int32
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	atomic.AddInt32(&m.embedCalls, 1)
	if m.embedFunc != nil {
		return m.embedFunc(ctx, query)
	}
	return []float32{1, 0, 0}, nil
}

func (m *mockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))
	for i := range chunks {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

type mockLLM struct {
	generateFunc  func(ctx context.Context, query string, matches []string, history []string) (string, error)
	generateCalls int32
	lastMatches   []string
}

func (m *mockLLM) Generate(ctx context.Context, query string, matches []string, history []string) (string, error) {
	atomic.AddInt32(&m.generateCalls, 1)
	m.lastMatches = matches
	if m.generateFunc != nil {
		return m.generateFunc(ctx, query, matches, history)
	}
	return "generated answer", nil
}

type mockTools struct {
	callFunc func(name string, args map[string]any) (string, error)
}

func (m *mockTools) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	if m.callFunc != nil {
		return m.callFunc(name, args)
	}
	return "tool output", nil
}

func (m *mockTools) ListTools(ctx context.Context) ([]string, error) { return []string{"search"}, nil }

func newTestOrchestrator(searcher *mockSearcher, queryCache *mockQueryCache, embedder *mockEmbedder, generator *mockLLM) *Orchestrator {
	return New(Params{
		Searcher: searcher,
		Cache:    queryCache,
		Embedder: embedder,
		LLM:      generator,
	})
}

// --- Tests ---

func TestAnswer_AnswerCacheHitPreventsSearch(t *testing.T) {
	cached, _ := json.Marshal(cachedAnswer{Text: "cached text", Evidence: []string{"id-9"}, Route: RouteRAG})

	searcher := &mockSearcher{}
	embedder := &mockEmbedder{}
	generator := &mockLLM{}
	queryCache := &mockQueryCache{
		getAnswerFunc: func(sessionId string, generation uint64, normQuery string) cache.AnswerResult {
			return cache.AnswerResult{State: cache.Hit, Answer: string(cached)}
		},
	}

	o := newTestOrchestrator(searcher, queryCache, embedder, generator)
	answer, err := o.Answer(context.Background(), "s1", "What is the Revenue?", nil)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	if !answer.Cached || answer.Text != "cached text" {
		t.Errorf("expected the cached answer, got %+v", answer)
	}
	if atomic.LoadInt32(&searcher.searchCalls) != 0 {
		t.Error("answer cache hit must prevent any index search")
	}
	if atomic.LoadInt32(&embedder.embedCalls) != 0 {
		t.Error("answer cache hit must cost zero embedding calls")
	}
	if atomic.LoadInt32(&generator.generateCalls) != 0 {
		t.Error("answer cache hit must not trigger generation")
	}
}

func TestAnswer_RetrievalCacheHitSkipsSearch(t *testing.T) {
	searcher := &mockSearcher{}
	embedder := &mockEmbedder{}
	generator := &mockLLM{}
	queryCache := &mockQueryCache{
		getRetrievalFunc: func(sessionId string, normQuery string) cache.RetrievalResult {
			return cache.RetrievalResult{State: cache.Hit, Ids: []string{"id-7", "id-8"}}
		},
	}

	o := newTestOrchestrator(searcher, queryCache, embedder, generator)
	answer, err := o.Answer(context.Background(), "s1", "what happened in q3", nil)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	if atomic.LoadInt32(&searcher.searchCalls) != 0 {
		t.Error("retrieval cache hit must prevent a live search")
	}
	if atomic.LoadInt32(&embedder.embedCalls) != 0 {
		t.Error("retrieval cache hit must not embed the query")
	}
	if atomic.LoadInt32(&queryCache.putRetrievalCalls) != 0 {
		t.Error("retrieval cache must not be rewritten on a hit")
	}
	if atomic.LoadInt32(&queryCache.putAnswerCalls) != 1 {
		t.Error("generated answer must still be cached")
	}
	if len(answer.Evidence) != 2 || answer.Evidence[0] != "id-7" {
		t.Errorf("evidence ids lost: %v", answer.Evidence)
	}
}

func TestAnswer_ColdCachesPopulateBoth(t *testing.T) {
	searcher := &mockSearcher{}
	embedder := &mockEmbedder{}
	generator := &mockLLM{}
	queryCache := &mockQueryCache{}

	o := newTestOrchestrator(searcher, queryCache, embedder, generator)
	answer, err := o.Answer(context.Background(), "s1", "what is the total revenue", nil)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	if atomic.LoadInt32(&searcher.searchCalls) != 1 {
		t.Errorf("expected exactly one live search, got %d", searcher.searchCalls)
	}
	if atomic.LoadInt32(&queryCache.putRetrievalCalls) != 1 {
		t.Error("retrieval cache must be populated after a fresh search")
	}
	if atomic.LoadInt32(&queryCache.putAnswerCalls) != 1 {
		t.Error("answer cache must be populated after generation succeeds")
	}
	if len(queryCache.lastPutIds) != 2 {
		t.Errorf("cached ids mismatch: %v", queryCache.lastPutIds)
	}
	if answer.Route != RouteRAG {
		t.Errorf("relevant evidence should route to rag, got %s", answer.Route)
	}
	if answer.Cached {
		t.Error("fresh answer must not be flagged cached")
	}
}

func TestAnswer_GenerationFailureSkipsAnswerCache(t *testing.T) {
	searcher := &mockSearcher{}
	embedder := &mockEmbedder{}
	generator := &mockLLM{
		generateFunc: func(ctx context.Context, query string, matches []string, history []string) (string, error) {
			return "", errors.New("model overloaded")
		},
	}
	queryCache := &mockQueryCache{}

	o := newTestOrchestrator(searcher, queryCache, embedder, generator)
	if _, err := o.Answer(context.Background(), "s1", "anything", nil); err == nil {
		t.Fatal("expected generation failure to surface")
	}

	if atomic.LoadInt32(&queryCache.putAnswerCalls) != 0 {
		t.Error("failed generation must not populate the answer cache")
	}
}

func TestAnswer_EmbedderDownIsRetrievalUnavailable(t *testing.T) {
	searcher := &mockSearcher{}
	embedder := &mockEmbedder{
		embedFunc: func(ctx context.Context, query string) ([]float32, error) {
			return nil, errors.New("connection refused")
		},
	}
	queryCache := &mockQueryCache{}

	o := newTestOrchestrator(searcher, queryCache, embedder, &mockLLM{})
	_, err := o.Answer(context.Background(), "s1", "anything", nil)

	var unavailable *RetrievalUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected RetrievalUnavailable, got %v", err)
	}
	if atomic.LoadInt32(&queryCache.putAnswerCalls) != 0 || atomic.LoadInt32(&queryCache.putRetrievalCalls) != 0 {
		t.Error("a failed retrieval must not populate any cache")
	}
}

func TestAnswer_CacheOutageDegradesToMiss(t *testing.T) {
	searcher := &mockSearcher{}
	queryCache := &mockQueryCache{
		getAnswerFunc: func(sessionId string, generation uint64, normQuery string) cache.AnswerResult {
			return cache.AnswerResult{State: cache.Unavailable}
		},
		getRetrievalFunc: func(sessionId string, normQuery string) cache.RetrievalResult {
			return cache.RetrievalResult{State: cache.Unavailable}
		},
	}

	o := newTestOrchestrator(searcher, queryCache, &mockEmbedder{}, &mockLLM{})
	answer, err := o.Answer(context.Background(), "s1", "is the cache down", nil)
	if err != nil {
		t.Fatalf("a cache outage must never fail the query: %v", err)
	}

	if answer.Text != "generated answer" {
		t.Errorf("expected a freshly generated answer, got %q", answer.Text)
	}
	if atomic.LoadInt32(&searcher.searchCalls) != 1 {
		t.Error("cache outage should fall through to a live search")
	}
}

func TestAnswer_CachedIdsFailingResolveFallBackToSearch(t *testing.T) {
	resolveAttempts := 0
	searcher := &mockSearcher{
		resolveFunc: func(ctx context.Context, sessionId string, ids []string) ([]commonModels.Chunk, error) {
			resolveAttempts++
			if resolveAttempts == 1 {
				return nil, &index.NotFoundError{SessionId: sessionId, Missing: ids}
			}
			chunks := make([]commonModels.Chunk, 0, len(ids))
			for _, id := range ids {
				chunks = append(chunks, commonModels.Chunk{Id: id, Content: id})
			}
			return chunks, nil
		},
	}
	queryCache := &mockQueryCache{
		getRetrievalFunc: func(sessionId string, normQuery string) cache.RetrievalResult {
			return cache.RetrievalResult{State: cache.Hit, Ids: []string{"stale-id"}}
		},
	}

	o := newTestOrchestrator(searcher, queryCache, &mockEmbedder{}, &mockLLM{})
	if _, err := o.Answer(context.Background(), "s1", "stale cache entry", nil); err != nil {
		t.Fatalf("stale cached ids must fall back to a live search: %v", err)
	}

	if atomic.LoadInt32(&searcher.searchCalls) != 1 {
		t.Error("expected the fallback live search to run")
	}
}

func TestAnswer_CancelledBeforeGenerate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	generator := &mockLLM{}
	o := newTestOrchestrator(&mockSearcher{}, &mockQueryCache{}, &mockEmbedder{}, generator)

	if _, err := o.Answer(ctx, "s1", "cancelled query", nil); err == nil {
		t.Fatal("expected a cancellation error")
	}
	if atomic.LoadInt32(&generator.generateCalls) != 0 {
		t.Error("generation cost must not be spent after cancellation")
	}
}

func TestAnswer_ToolRoute(t *testing.T) {
	toolCalled := false
	runner := &mockTools{
		callFunc: func(name string, args map[string]any) (string, error) {
			toolCalled = true
			if args["query"] == nil {
				t.Error("tool call missing the query argument")
			}
			return "42 degrees", nil
		},
	}
	generator := &mockLLM{}

	o := New(Params{
		Searcher: &mockSearcher{},
		Cache:    &mockQueryCache{},
		Embedder: &mockEmbedder{},
		LLM:      generator,
		Tools:    runner,
	})

	answer, err := o.Answer(context.Background(), "s1", "what is the current weather in berlin", nil)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	if answer.Route != RouteTools {
		t.Fatalf("expected the tools route, got %s", answer.Route)
	}
	if !toolCalled {
		t.Error("tool runner was never invoked")
	}
	if len(generator.lastMatches) != 1 {
		t.Errorf("tool output should be fed to the model as context, got %v", generator.lastMatches)
	}
}

func TestAnswer_HistoryReachesModel(t *testing.T) {
	var seenHistory []string
	generator := &mockLLM{
		generateFunc: func(ctx context.Context, query string, matches []string, history []string) (string, error) {
			seenHistory = history
			return "ok", nil
		},
	}

	o := newTestOrchestrator(&mockSearcher{}, &mockQueryCache{}, &mockEmbedder{}, generator)
	history := []sessionModel.Message{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}
	if _, err := o.Answer(context.Background(), "s1", "follow up", history); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	if len(seenHistory) != 2 || seenHistory[0] != "user: earlier question" {
		t.Errorf("history not forwarded correctly: %v", seenHistory)
	}
}
