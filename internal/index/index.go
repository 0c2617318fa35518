package index

import (
	"math"
	"sort"
	"sync"

	"github.com/akolanti/DocChatAPI/internal/domain/commonModels"
)

type SearchMode string

const (
	SearchModeSimilarity SearchMode = "similarity"
	SearchModeMMR        SearchMode = "mmr"
)

// SessionIndex owns one conversation's vectors and docstore, keyed identically
// by chunk id. Single-writer/multiple-reader: ingestion holds the write lock
// for its whole insertion batch, queries take read locks for search and resolve.
// Every mutation is append-only; ids are kept in insertion order.
type SessionIndex struct {
	mu sync.RWMutex

	sessionId  string
	dimension  int
	generation uint64

	ids      []string
	vectors  map[string][]float32
	docstore map[string]commonModels.Chunk
}

func newSessionIndex(sessionId string, dimension int) *SessionIndex {
	return &SessionIndex{
		sessionId: sessionId,
		dimension: dimension,
		vectors:   make(map[string][]float32),
		docstore:  make(map[string]commonModels.Chunk),
	}
}

func (idx *SessionIndex) SessionId() string { return idx.sessionId }

func (idx *SessionIndex) Dimension() int { return idx.dimension }

// Generation increments once per applied insertion batch. The answer cache
// keys on it so answers cached before a re-ingestion are never served after.
func (idx *SessionIndex) Generation() uint64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.generation
}

func (idx *SessionIndex) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docstore)
}

// missingIDs filters the given chunks down to ones not yet indexed. Identical
// ids imply identical content by construction, so re-sent chunks are no-ops.
func (idx *SessionIndex) missingIDs(chunks []commonModels.Chunk) []commonModels.Chunk {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var missing []commonModels.Chunk
	seen := make(map[string]bool, len(chunks))
	for _, chunk := range chunks {
		if _, exists := idx.docstore[chunk.Id]; exists || seen[chunk.Id] {
			continue
		}
		seen[chunk.Id] = true
		missing = append(missing, chunk)
	}
	return missing
}

// insertBatch applies one embedded batch atomically under the write lock and
// bumps the generation. Both maps move together - an id never lands in one
// without the other.
func (idx *SessionIndex) insertBatch(chunks []commonModels.Chunk, vectors [][]float32) int {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	added := 0
	for i, chunk := range chunks {
		if _, exists := idx.docstore[chunk.Id]; exists {
			continue
		}
		idx.ids = append(idx.ids, chunk.Id)
		idx.vectors[chunk.Id] = vectors[i]
		idx.docstore[chunk.Id] = chunk
		added++
	}
	if added > 0 {
		idx.generation++
	}
	return added
}

// Search returns up to k chunk ids ranked by the chosen mode.
func (idx *SessionIndex) Search(queryVector []float32, k int, mode SearchMode) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if k <= 0 || len(idx.ids) == 0 {
		return nil
	}

	if mode == SearchModeMMR {
		return idx.searchMMR(queryVector, k)
	}
	return idx.searchNearest(queryVector, k)
}

func (idx *SessionIndex) searchNearest(queryVector []float32, k int) []string {
	scored := idx.scoreAll(queryVector)
	if k > len(scored) {
		k = len(scored)
	}
	ids := make([]string, 0, k)
	for _, s := range scored[:k] {
		ids = append(ids, s.id)
	}
	return ids
}

// searchMMR re-ranks a fetchK-sized candidate pool by maximal marginal
// relevance: each pick maximizes lambda*sim(query,c) - (1-lambda)*max
// sim(c, selected), trading raw relevance for diversity.
func (idx *SessionIndex) searchMMR(queryVector []float32, k int) []string {
	candidates := idx.scoreAll(queryVector)
	if len(candidates) > mmrFetchK {
		candidates = candidates[:mmrFetchK]
	}

	var selected []string
	picked := make(map[string]bool)

	for len(selected) < k && len(selected) < len(candidates) {
		bestIdx := -1
		bestScore := float32(math.Inf(-1))

		for i, c := range candidates {
			if picked[c.id] {
				continue
			}

			redundancy := float32(0)
			for _, sel := range selected {
				if sim := cosineSimilarity(idx.vectors[c.id], idx.vectors[sel]); sim > redundancy {
					redundancy = sim
				}
			}

			score := mmrLambda*c.score - (1-mmrLambda)*redundancy
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		if bestIdx < 0 {
			break
		}
		picked[candidates[bestIdx].id] = true
		selected = append(selected, candidates[bestIdx].id)
	}

	return selected
}

// BestScore runs a lightweight relevance probe: the top cosine similarity for
// the query, or false when the index is empty. The route classifier uses it
// to decide whether a query is about the documents at all.
func (idx *SessionIndex) BestScore(queryVector []float32) (float32, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.ids) == 0 {
		return 0, false
	}
	best := float32(math.Inf(-1))
	for _, id := range idx.ids {
		if score := cosineSimilarity(queryVector, idx.vectors[id]); score > best {
			best = score
		}
	}
	return best, true
}

// Resolve looks chunks up by id. Any absent id fails the whole call with a
// NotFoundError - under the no-orphan invariant that signals an internal
// inconsistency between a cache entry and the docstore.
func (idx *SessionIndex) Resolve(ids []string) ([]commonModels.Chunk, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	chunks := make([]commonModels.Chunk, 0, len(ids))
	var missing []string
	for _, id := range ids {
		chunk, ok := idx.docstore[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		chunks = append(chunks, chunk)
	}
	if len(missing) > 0 {
		return nil, &NotFoundError{SessionId: idx.sessionId, Missing: missing}
	}
	return chunks, nil
}

type scoredID struct {
	id    string
	score float32
}

func (idx *SessionIndex) scoreAll(queryVector []float32) []scoredID {
	scored := make([]scoredID, 0, len(idx.ids))
	for _, id := range idx.ids {
		scored = append(scored, scoredID{id: id, score: cosineSimilarity(queryVector, idx.vectors[id])})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	return scored
}

func cosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
