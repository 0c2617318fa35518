package index

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/domain/commonModels"
	"github.com/akolanti/DocChatAPI/internal/metrics"
	"github.com/akolanti/DocChatAPI/internal/rag/embedding"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
)

var (
	mmrFetchK = config.MMRFetchK
	mmrLambda = config.MMRLambda
)

// Manager owns every live SessionIndex: at most one per session, created or
// loaded lazily and shared by ingestion and querying. Indexes are never shared
// across sessions.
type Manager struct {
	mu       sync.Mutex
	indexes  map[string]*SessionIndex
	baseDir  string
	embedder embedding.Embedder
	logger   *logger_i.Logger
}

func NewManager(baseDir string, embedder embedding.Embedder) *Manager {
	return &Manager{
		indexes:  make(map[string]*SessionIndex),
		baseDir:  baseDir,
		embedder: embedder,
		logger:   logger_i.NewLogger("Index Manager"),
	}
}

// LoadOrCreate returns the session's index, loading the persisted snapshot if
// one exists and otherwise creating an empty index. Idempotent - a missing
// snapshot is empty-index creation, not an error.
func (m *Manager) LoadOrCreate(ctx context.Context, sessionId string) (*SessionIndex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if idx, ok := m.indexes[sessionId]; ok {
		return idx, nil
	}

	dimension := int(config.EmbeddingOutputDimensionality)
	idx, found, err := loadFromDisk(m.baseDir, sessionId, dimension)
	if err != nil {
		return nil, err
	}
	if !found {
		idx = newSessionIndex(sessionId, dimension)
		m.logger.Debug("Created empty index", "sessionId", sessionId)
	} else {
		m.logger.Info("Loaded persisted index", "sessionId", sessionId, "chunks", len(idx.ids))
	}

	m.indexes[sessionId] = idx
	return idx, nil
}

// AddDocuments embeds each chunk's retrievable text and inserts the batch.
// Already-present ids are no-ops, and they are filtered out before embedding so
// a full re-ingest costs zero embedding calls. Any embedding failure rejects
// the whole batch (EmbeddingError, nothing inserted). The updated index is
// persisted after a successful insert. Returns the number of chunks added.
func (m *Manager) AddDocuments(ctx context.Context, sessionId string, chunks []commonModels.Chunk) (int, error) {
	log := m.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "sessionId", sessionId)

	idx, err := m.LoadOrCreate(ctx, sessionId)
	if err != nil {
		return 0, err
	}

	newChunks := idx.missingIDs(chunks)
	if len(newChunks) == 0 {
		log.Debug("Insertion batch fully deduplicated", "resent", len(chunks))
		return 0, nil
	}

	texts := make([]string, 0, len(newChunks))
	for _, chunk := range newChunks {
		texts = append(texts, chunk.RetrievableText())
	}

	start := time.Now()
	vectors, err := m.embedder.BatchEmbedding(ctx, texts)
	metrics.CaptureExecutionMetrics("embedding", time.Since(start))
	if err != nil {
		return 0, &EmbeddingError{Err: err}
	}
	if len(vectors) != len(newChunks) {
		return 0, &EmbeddingError{Err: fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(newChunks))}
	}

	added := idx.insertBatch(newChunks, vectors)

	if err := idx.saveToDisk(m.baseDir); err != nil {
		// in-memory state stays consistent; the disk keeps its previous snapshot
		log.Error("Persisting index failed", "error", err)
		return added, err
	}

	log.Debug("Insertion batch persisted", "added", added, "docstore size", idx.Size())
	return added, nil
}

// Search embeds nothing - callers pass the query vector so cached lookups can
// skip the embedder entirely.
func (m *Manager) Search(ctx context.Context, sessionId string, queryVector []float32, k int, mode SearchMode) ([]string, error) {
	idx, err := m.LoadOrCreate(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()
	return idx.Search(queryVector, k, mode), nil
}

func (m *Manager) Resolve(ctx context.Context, sessionId string, ids []string) ([]commonModels.Chunk, error) {
	idx, err := m.LoadOrCreate(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	return idx.Resolve(ids)
}

// Generation reports the session's index version for cache keying.
func (m *Manager) Generation(ctx context.Context, sessionId string) (uint64, error) {
	idx, err := m.LoadOrCreate(ctx, sessionId)
	if err != nil {
		return 0, err
	}
	return idx.Generation(), nil
}

func (m *Manager) BestScore(ctx context.Context, sessionId string, queryVector []float32) (float32, bool, error) {
	idx, err := m.LoadOrCreate(ctx, sessionId)
	if err != nil {
		return 0, false, err
	}
	score, ok := idx.BestScore(queryVector)
	return score, ok, nil
}

// DeleteIndex drops the session's index from memory and disk. Full index
// deletion is the only way chunks are ever removed.
func (m *Manager) DeleteIndex(ctx context.Context, sessionId string) error {
	m.mu.Lock()
	delete(m.indexes, sessionId)
	m.mu.Unlock()
	return removeFromDisk(m.baseDir, sessionId)
}
