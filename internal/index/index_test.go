package index

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/akolanti/DocChatAPI/internal/domain/commonModels"
)

type mockEmbedder struct {
	batchFunc func(ctx context.Context, chunks []string) ([][]float32, error)
	calls     int
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (m *mockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	m.calls++
	if m.batchFunc != nil {
		return m.batchFunc(ctx, chunks)
	}
	vectors := make([][]float32, len(chunks))
	for i := range chunks {
		// deterministic, distinct directions per chunk
		vectors[i] = []float32{1, float32(i) * 0.1, float32(len(chunks[i]) % 7)}
	}
	return vectors, nil
}

func testChunks(sessionId string, count int) []commonModels.Chunk {
	chunks := make([]commonModels.Chunk, 0, count)
	for i := 0; i < count; i++ {
		chunks = append(chunks, commonModels.Chunk{
			Id:       fmt.Sprintf("%s__%d_abcdef123456", sessionId, i),
			Modality: commonModels.ModalityText,
			Content:  fmt.Sprintf("chunk content number %d", i),
		})
	}
	return chunks
}

func TestAddDocuments_NoOrphans(t *testing.T) {
	m := NewManager(t.TempDir(), &mockEmbedder{})
	ctx := context.Background()
	sessionId := "session_test_a"

	added, err := m.AddDocuments(ctx, sessionId, testChunks(sessionId, 10))
	if err != nil {
		t.Fatalf("AddDocuments failed: %v", err)
	}
	if added != 10 {
		t.Errorf("expected 10 added, got %d", added)
	}

	idx, _ := m.LoadOrCreate(ctx, sessionId)
	if len(idx.vectors) != len(idx.docstore) {
		t.Errorf("orphan detected: %d vectors vs %d docstore entries", len(idx.vectors), len(idx.docstore))
	}
	for id := range idx.vectors {
		if _, ok := idx.docstore[id]; !ok {
			t.Errorf("id %s has a vector but no docstore entry", id)
		}
	}
	if len(idx.ids) != len(idx.docstore) {
		t.Errorf("id list out of sync: %d vs %d", len(idx.ids), len(idx.docstore))
	}
}

func TestAddDocuments_IdempotentReIngest(t *testing.T) {
	embedder := &mockEmbedder{}
	m := NewManager(t.TempDir(), embedder)
	ctx := context.Background()
	sessionId := "session_test_b"
	chunks := testChunks(sessionId, 5)

	if _, err := m.AddDocuments(ctx, sessionId, chunks); err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}
	genAfterFirst, _ := m.Generation(ctx, sessionId)
	embedCallsAfterFirst := embedder.calls

	added, err := m.AddDocuments(ctx, sessionId, chunks)
	if err != nil {
		t.Fatalf("re-ingest failed: %v", err)
	}

	if added != 0 {
		t.Errorf("re-ingest added %d chunks, want 0", added)
	}
	idx, _ := m.LoadOrCreate(ctx, sessionId)
	if idx.Size() != 5 {
		t.Errorf("docstore size changed on re-ingest: %d", idx.Size())
	}
	if embedder.calls != embedCallsAfterFirst {
		t.Error("re-ingest must not cost any embedding calls")
	}
	if gen, _ := m.Generation(ctx, sessionId); gen != genAfterFirst {
		t.Errorf("generation bumped by a no-op batch: %d -> %d", genAfterFirst, gen)
	}
}

func TestAddDocuments_EmbedderFailureRejectsBatch(t *testing.T) {
	embedder := &mockEmbedder{
		batchFunc: func(ctx context.Context, chunks []string) ([][]float32, error) {
			return nil, errors.New("quota exhausted")
		},
	}
	m := NewManager(t.TempDir(), embedder)
	ctx := context.Background()
	sessionId := "session_test_c"

	_, err := m.AddDocuments(ctx, sessionId, testChunks(sessionId, 3))

	var embErr *EmbeddingError
	if !errors.As(err, &embErr) {
		t.Fatalf("expected EmbeddingError, got %v", err)
	}
	idx, _ := m.LoadOrCreate(ctx, sessionId)
	if idx.Size() != 0 {
		t.Errorf("failed batch must insert nothing, docstore has %d", idx.Size())
	}
}

func TestAddDocuments_VectorCountMismatch(t *testing.T) {
	embedder := &mockEmbedder{
		batchFunc: func(ctx context.Context, chunks []string) ([][]float32, error) {
			return [][]float32{{1, 0, 0}}, nil //always one vector
		},
	}
	m := NewManager(t.TempDir(), embedder)

	_, err := m.AddDocuments(context.Background(), "session_test_d", testChunks("session_test_d", 3))

	var embErr *EmbeddingError
	if !errors.As(err, &embErr) {
		t.Fatalf("expected EmbeddingError on count mismatch, got %v", err)
	}
}

func TestResolve_MissingIdIsNotFound(t *testing.T) {
	m := NewManager(t.TempDir(), &mockEmbedder{})
	ctx := context.Background()
	sessionId := "session_test_e"
	chunks := testChunks(sessionId, 2)

	if _, err := m.AddDocuments(ctx, sessionId, chunks); err != nil {
		t.Fatalf("AddDocuments failed: %v", err)
	}

	_, err := m.Resolve(ctx, sessionId, []string{chunks[0].Id, "ghost-id"})

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if len(notFound.Missing) != 1 || notFound.Missing[0] != "ghost-id" {
		t.Errorf("wrong missing set: %v", notFound.Missing)
	}
}

func TestSearchMMR_PrefersDiversity(t *testing.T) {
	idx := newSessionIndex("session_test_f", 2)

	// two near-duplicates right on the query direction, one dissimilar but
	// still relevant match
	chunks := []commonModels.Chunk{
		{Id: "dup-a", Content: "duplicate one"},
		{Id: "dup-b", Content: "duplicate two"},
		{Id: "diverse", Content: "the different one"},
	}
	vectors := [][]float32{
		{0.995, 0.0999},
		{0.995, -0.0999},
		{0.5, -0.866},
	}
	idx.insertBatch(chunks, vectors)

	query := []float32{1, 0}

	nearest := idx.Search(query, 3, SearchModeSimilarity)
	if nearest[0] != "dup-a" || nearest[1] != "dup-b" {
		t.Fatalf("nearest-neighbor order unexpected: %v", nearest)
	}

	mmr := idx.Search(query, 3, SearchModeMMR)
	posDiverse, posDupB := -1, -1
	for i, id := range mmr {
		switch id {
		case "diverse":
			posDiverse = i
		case "dup-b":
			posDupB = i
		}
	}
	if posDiverse < 0 || posDupB < 0 {
		t.Fatalf("mmr dropped a candidate: %v", mmr)
	}
	if posDiverse > posDupB {
		t.Errorf("mmr must rank the dissimilar match above a near-duplicate: %v", mmr)
	}
}

func TestBestScore(t *testing.T) {
	idx := newSessionIndex("session_test_g", 2)

	if _, ok := idx.BestScore([]float32{1, 0}); ok {
		t.Error("empty index must report no score")
	}

	idx.insertBatch(
		[]commonModels.Chunk{{Id: "x", Content: "x"}, {Id: "y", Content: "y"}},
		[][]float32{{0, 1}, {1, 0}},
	)

	score, ok := idx.BestScore([]float32{1, 0})
	if !ok || score < 0.99 {
		t.Errorf("expected best score ~1.0, got %f (ok=%v)", score, ok)
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	idx := newSessionIndex("session_test_h", 2)
	if got := idx.Search([]float32{1, 0}, 5, SearchModeMMR); got != nil {
		t.Errorf("empty index search should return nothing, got %v", got)
	}
}
