package orchestrator

import (
	"context"
	"math"
	"sort"

	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/domain/commonModels"
	"github.com/akolanti/DocChatAPI/internal/rag/embedding"
)

// Reranker reorders retrieved chunks by relevance to the query. Implementations
// must not drop chunks, only reorder them.
type Reranker interface {
	Rerank(ctx context.Context, query string, chunks []commonModels.Chunk) ([]commonModels.Chunk, error)
}

// PassThroughReranker keeps the index's own ranking.
type PassThroughReranker struct{}

func (PassThroughReranker) Rerank(_ context.Context, _ string, chunks []commonModels.Chunk) ([]commonModels.Chunk, error) {
	return chunks, nil
}

// EmbeddingReranker re-scores the candidate pool against the query with the
// embedding model and sorts by similarity. Only the first RerankPoolSize
// chunks are re-scored; the tail keeps its original order behind them.
type EmbeddingReranker struct {
	embedder embedding.Embedder
}

func NewEmbeddingReranker(embedder embedding.Embedder) *EmbeddingReranker {
	return &EmbeddingReranker{embedder: embedder}
}

func (r *EmbeddingReranker) Rerank(ctx context.Context, query string, chunks []commonModels.Chunk) ([]commonModels.Chunk, error) {
	pool := len(chunks)
	if pool > config.RerankPoolSize {
		pool = config.RerankPoolSize
	}
	if pool < 2 {
		return chunks, nil
	}

	queryVector, err := r.embedder.GetEmbedding(ctx, query)
	if err != nil {
		return chunks, err
	}

	texts := make([]string, 0, pool)
	for _, chunk := range chunks[:pool] {
		texts = append(texts, chunk.RetrievableText())
	}
	vectors, err := r.embedder.BatchEmbedding(ctx, texts)
	if err != nil || len(vectors) != pool {
		return chunks, err
	}

	type scoredChunk struct {
		chunk commonModels.Chunk
		score float64
	}
	scored := make([]scoredChunk, pool)
	for i := 0; i < pool; i++ {
		scored[i] = scoredChunk{chunk: chunks[i], score: similarity(queryVector, vectors[i])}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	reranked := make([]commonModels.Chunk, 0, len(chunks))
	for _, s := range scored {
		reranked = append(reranked, s.chunk)
	}
	reranked = append(reranked, chunks[pool:]...)
	return reranked, nil
}

func similarity(a []float32, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
