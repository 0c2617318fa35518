package orchestrator

import (
	"context"
	"testing"

	"github.com/akolanti/DocChatAPI/internal/domain/commonModels"
)

func TestDefaultClassifier(t *testing.T) {
	evidence := []commonModels.Chunk{{Id: "id-1", Content: "some content"}}

	tests := []struct {
		name     string
		input    RouteInput
		expected Route
	}{
		{
			name:     "tool keyword wins over evidence",
			input:    RouteInput{Query: "Search the web for go releases", Evidence: evidence, Relevance: 0.9, HasRelevance: true},
			expected: RouteTools,
		},
		{
			name:     "no evidence means direct reasoning",
			input:    RouteInput{Query: "write me a haiku"},
			expected: RouteReasoning,
		},
		{
			name:     "low relevance evidence is treated as noise",
			input:    RouteInput{Query: "what color is the sky", Evidence: evidence, Relevance: 0.02, HasRelevance: true},
			expected: RouteReasoning,
		},
		{
			name:     "relevant evidence routes to rag",
			input:    RouteInput{Query: "summarize the uploaded report", Evidence: evidence, Relevance: 0.7, HasRelevance: true},
			expected: RouteRAG,
		},
		{
			name:     "cached evidence without a score still counts",
			input:    RouteInput{Query: "summarize the uploaded report", Evidence: evidence},
			expected: RouteRAG,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultClassifier(context.Background(), tt.input); got != tt.expected {
				t.Errorf("DefaultClassifier() = %s; want %s", got, tt.expected)
			}
		})
	}
}

func TestEmbeddingReranker_OrdersBySimilarity(t *testing.T) {
	// query embeds to {1,0,0}; give the second chunk the closer vector
	reranker := &EmbeddingReranker{embedder: &batchControlledEmbedder{
		single: []float32{1, 0, 0},
		batch: [][]float32{
			{0, 1, 0},
			{1, 0, 0},
		},
	}}

	chunks := []commonModels.Chunk{
		{Id: "far", Content: "off topic"},
		{Id: "near", Content: "on topic"},
	}

	reranked, err := reranker.Rerank(context.Background(), "the query", chunks)
	if err != nil {
		t.Fatalf("Rerank failed: %v", err)
	}
	if reranked[0].Id != "near" {
		t.Errorf("most similar chunk should rank first, got %v", reranked)
	}
	if len(reranked) != 2 {
		t.Errorf("reranker must not drop chunks, got %d", len(reranked))
	}
}

func TestPassThroughReranker(t *testing.T) {
	chunks := []commonModels.Chunk{{Id: "a"}, {Id: "b"}}
	got, err := PassThroughReranker{}.Rerank(context.Background(), "q", chunks)
	if err != nil || len(got) != 2 || got[0].Id != "a" {
		t.Errorf("pass-through must keep the original order, got %v (err %v)", got, err)
	}
}

type batchControlledEmbedder struct {
	single []float32
	batch  [][]float32
}

func (e *batchControlledEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return e.single, nil
}

func (e *batchControlledEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	return e.batch, nil
}
