package orchestrator

import (
	"context"
	"strings"

	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/domain/commonModels"
)

type Route string

const (
	RouteRAG       Route = "rag"
	RouteTools     Route = "tools"
	RouteReasoning Route = "reasoning"
)

// RouteInput is everything a classifier may consider. Relevance is the best
// cosine score from the live search; HasRelevance is false on cache-hit paths,
// where no fresh query vector exists.
type RouteInput struct {
	Query        string
	Evidence     []commonModels.Chunk
	Relevance    float32
	HasRelevance bool
}

// Classifier decides how a query gets answered. It is a pluggable policy; the
// orchestrator treats it as opaque.
type Classifier func(ctx context.Context, input RouteInput) Route

var toolKeywords = []string{
	"search the web",
	"browse",
	"look up online",
	"latest news",
	"current weather",
	"stock price",
}

// DefaultClassifier routes by evidence quality: queries that name a live-data
// need go to tools, queries with no usable session evidence go to direct
// reasoning, everything else is answered over the retrieved chunks. A
// retrieval-cache hit counts as usable evidence even without a fresh score.
func DefaultClassifier(_ context.Context, input RouteInput) Route {
	lowered := strings.ToLower(input.Query)
	for _, keyword := range toolKeywords {
		if strings.Contains(lowered, keyword) {
			return RouteTools
		}
	}

	if len(input.Evidence) == 0 {
		return RouteReasoning
	}
	if input.HasRelevance && input.Relevance < config.RelevanceThreshold {
		return RouteReasoning
	}
	return RouteRAG
}
