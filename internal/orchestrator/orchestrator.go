package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/akolanti/DocChatAPI/internal/cache"
	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/domain/commonModels"
	"github.com/akolanti/DocChatAPI/internal/domain/sessionModel"
	"github.com/akolanti/DocChatAPI/internal/index"
	"github.com/akolanti/DocChatAPI/internal/metrics"
	"github.com/akolanti/DocChatAPI/internal/rag/embedding"
	"github.com/akolanti/DocChatAPI/internal/rag/llm"
	"github.com/akolanti/DocChatAPI/internal/tools"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
)

// Searcher is the read side of the session index consumed at query time.
type Searcher interface {
	Search(ctx context.Context, sessionId string, queryVector []float32, k int, mode index.SearchMode) ([]string, error)
	Resolve(ctx context.Context, sessionId string, ids []string) ([]commonModels.Chunk, error)
	Generation(ctx context.Context, sessionId string) (uint64, error)
	BestScore(ctx context.Context, sessionId string, queryVector []float32) (float32, bool, error)
}

// QueryCache is the two-tier cache consumed by the orchestrator. Lookups
// return a three-way outcome; the orchestrator treats Unavailable as Miss.
type QueryCache interface {
	GetAnswer(ctx context.Context, sessionId string, generation uint64, normQuery string) cache.AnswerResult
	PutAnswer(ctx context.Context, sessionId string, generation uint64, normQuery string, answer string)
	GetRetrieval(ctx context.Context, sessionId string, normQuery string) cache.RetrievalResult
	PutRetrieval(ctx context.Context, sessionId string, normQuery string, ids []string)
}

// Answer is the final answer-or-error pair's success half: the generated text
// plus the chunk ids used as evidence.
type Answer struct {
	Text     string
	Evidence []string
	Route    Route
	Cached   bool
}

// cachedAnswer is the answer-cache wire format.
type cachedAnswer struct {
	Text     string   `json:"text"`
	Evidence []string `json:"evidence"`
	Route    Route    `json:"route"`
}

// Orchestrator runs the per-query pipeline: normalize, consult the answer
// cache, consult the retrieval cache, fall back to a live embed-and-search,
// rerank, route, generate, then populate both caches. Cheaper lookups always
// gate more expensive ones.
type Orchestrator struct {
	searcher Searcher
	cache    QueryCache
	embedder embedding.Embedder
	llm      llm.Provider
	tools    tools.Runner
	reranker Reranker
	classify Classifier
	logger   *logger_i.Logger
}

type Params struct {
	Searcher Searcher
	Cache    QueryCache
	Embedder embedding.Embedder
	LLM      llm.Provider
	Tools    tools.Runner // optional, nil disables the tool route
	Reranker Reranker     // optional, defaults to PassThroughReranker
	Classify Classifier   // optional, defaults to DefaultClassifier
}

func New(params Params) *Orchestrator {
	if params.Reranker == nil {
		params.Reranker = PassThroughReranker{}
	}
	if params.Classify == nil {
		params.Classify = DefaultClassifier
	}
	return &Orchestrator{
		searcher: params.Searcher,
		cache:    params.Cache,
		embedder: params.Embedder,
		llm:      params.LLM,
		tools:    params.Tools,
		reranker: params.Reranker,
		classify: params.Classify,
		logger:   logger_i.NewLogger("Retrieval Orchestrator"),
	}
}

// Answer runs one query through the pipeline. A cache-layer outage degrades to
// a miss and never fails the query; an embedding or index outage is fatal and
// surfaces as RetrievalUnavailable.
func (o *Orchestrator) Answer(ctx context.Context, sessionId string, query string, history []sessionModel.Message) (Answer, error) {
	log := o.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "sessionId", sessionId)
	start := time.Now()
	defer func() { metrics.CaptureQueryMetrics("query_pipeline", time.Since(start)) }()

	normQuery := cache.Normalize(query)

	generation, err := o.searcher.Generation(ctx, sessionId)
	if err != nil {
		return Answer{}, &RetrievalUnavailable{Err: err}
	}

	if result := o.cache.GetAnswer(ctx, sessionId, generation, normQuery); result.State == cache.Hit {
		var stored cachedAnswer
		if err := json.Unmarshal([]byte(result.Answer), &stored); err == nil {
			log.Debug("Answered from cache")
			return Answer{Text: stored.Text, Evidence: stored.Evidence, Route: stored.Route, Cached: true}, nil
		}
		log.Error("Corrupt answer cache entry, falling through", "error", "unmarshal failed")
	}

	chunks, ids, relevance, hasRelevance, fresh, err := o.retrieve(ctx, sessionId, normQuery)
	if err != nil {
		return Answer{}, err
	}

	chunks = o.rerank(ctx, query, chunks)

	route := o.classify(ctx, RouteInput{
		Query:        query,
		Evidence:     chunks,
		Relevance:    relevance,
		HasRelevance: hasRelevance,
	})
	metrics.CaptureRoute(string(route))
	log.Debug("Routed query", "route", route, "evidence", len(ids))

	// last cancellation point before generation cost is spent
	if err := ctx.Err(); err != nil {
		return Answer{}, err
	}

	text, err := o.generate(ctx, route, query, chunks, history)
	if err != nil {
		return Answer{}, err
	}

	if fresh {
		o.cache.PutRetrieval(ctx, sessionId, normQuery, ids)
	}
	o.putAnswer(ctx, sessionId, generation, normQuery, Answer{Text: text, Evidence: ids, Route: route})

	return Answer{Text: text, Evidence: ids, Route: route}, nil
}

// retrieve returns the evidence chunks for the query, via the retrieval cache
// when possible and a live embed-and-search otherwise. fresh reports whether a
// live search ran.
func (o *Orchestrator) retrieve(ctx context.Context, sessionId string, normQuery string) (chunks []commonModels.Chunk, ids []string, relevance float32, hasRelevance bool, fresh bool, err error) {
	log := o.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "sessionId", sessionId)

	if result := o.cache.GetRetrieval(ctx, sessionId, normQuery); result.State == cache.Hit {
		chunks, resolveErr := o.searcher.Resolve(ctx, sessionId, result.Ids)
		if resolveErr == nil {
			return chunks, result.Ids, 0, false, false, nil
		}
		// an id in the cache but not the docstore is a consistency bug; fall
		// through to a live search rather than failing the query
		log.Error("Cached ids failed to resolve", "error", resolveErr)
	}

	queryVector, err := o.embedder.GetEmbedding(ctx, normQuery)
	if err != nil {
		return nil, nil, 0, false, false, &RetrievalUnavailable{Err: err}
	}

	ids, err = o.searcher.Search(ctx, sessionId, queryVector, config.SearchTopK, index.SearchMode(config.SearchModeDefault))
	if err != nil {
		return nil, nil, 0, false, false, &RetrievalUnavailable{Err: err}
	}

	chunks, err = o.searcher.Resolve(ctx, sessionId, ids)
	if err != nil {
		return nil, nil, 0, false, false, &RetrievalUnavailable{Err: err}
	}

	score, ok, err := o.searcher.BestScore(ctx, sessionId, queryVector)
	if err != nil {
		return nil, nil, 0, false, false, &RetrievalUnavailable{Err: err}
	}

	return chunks, ids, score, ok, true, nil
}

func (o *Orchestrator) rerank(ctx context.Context, query string, chunks []commonModels.Chunk) []commonModels.Chunk {
	start := time.Now()
	reranked, err := o.reranker.Rerank(ctx, query, chunks)
	metrics.CaptureExecutionMetrics("rerank", time.Since(start))
	if err != nil {
		o.logger.Error("Reranking failed, keeping index order", "error", err)
		return chunks
	}
	return reranked
}

func (o *Orchestrator) generate(ctx context.Context, route Route, query string, chunks []commonModels.Chunk, history []sessionModel.Message) (string, error) {
	historyLines := make([]string, 0, len(history))
	for _, message := range history {
		historyLines = append(historyLines, fmt.Sprintf("%s: %s", message.Role, message.Content))
	}

	switch route {
	case RouteTools:
		if o.tools == nil {
			return o.llm.Generate(ctx, query, nil, historyLines)
		}
		toolOutput, err := o.tools.CallTool(ctx, config.DefaultToolName, map[string]any{"query": query})
		if err != nil {
			o.logger.Error("Tool route failed, answering without tools", "error", err)
			return o.llm.Generate(ctx, query, nil, historyLines)
		}
		return o.llm.Generate(ctx, query, []string{"Tool output:\n" + toolOutput}, historyLines)

	case RouteReasoning:
		return o.llm.Generate(ctx, query, nil, historyLines)

	default:
		matches := make([]string, 0, len(chunks))
		for _, chunk := range chunks {
			matches = append(matches, chunk.RetrievableText())
		}
		return o.llm.Generate(ctx, query, matches, historyLines)
	}
}

func (o *Orchestrator) putAnswer(ctx context.Context, sessionId string, generation uint64, normQuery string, answer Answer) {
	data, err := json.Marshal(cachedAnswer{Text: answer.Text, Evidence: answer.Evidence, Route: answer.Route})
	if err != nil {
		o.logger.Error("Failed to marshal answer for cache", "error", err)
		return
	}
	o.cache.PutAnswer(ctx, sessionId, generation, normQuery, string(data))
}
