package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/akolanti/DocChatAPI/internal/domain/commonModels"
)

const indexFileName = "index.json"

// persistedIndex is the on-disk snapshot of one session's index. One directory
// per session; the file holds everything LoadOrCreate needs to rebuild the
// index, including the generation counter's continuity across restarts.
type persistedIndex struct {
	SessionId  string                        `json:"session_id"`
	Dimension  int                           `json:"dimension"`
	Generation uint64                        `json:"generation"`
	Ids        []string                      `json:"ids"`
	Vectors    map[string][]float32          `json:"vectors"`
	Docstore   map[string]commonModels.Chunk `json:"docstore"`
}

func indexPath(baseDir, sessionId string) string {
	return filepath.Join(baseDir, sessionId, indexFileName)
}

// saveToDisk snapshots the index under its read lock and writes atomically
// (tmp + rename), so a crash mid-write leaves the previous snapshot intact.
func (idx *SessionIndex) saveToDisk(baseDir string) error {
	idx.mu.RLock()
	snapshot := persistedIndex{
		SessionId:  idx.sessionId,
		Dimension:  idx.dimension,
		Generation: idx.generation,
		Ids:        append([]string(nil), idx.ids...),
		Vectors:    idx.vectors,
		Docstore:   idx.docstore,
	}
	data, err := json.Marshal(snapshot)
	idx.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshalling index snapshot: %w", err)
	}

	dir := filepath.Join(baseDir, idx.sessionId)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating index dir: %w", err)
	}

	tmp := filepath.Join(dir, indexFileName+".tmp")
	if err := os.WriteFile(tmp, data, 0640); err != nil {
		return fmt.Errorf("writing index snapshot: %w", err)
	}
	return os.Rename(tmp, filepath.Join(dir, indexFileName))
}

// loadFromDisk rebuilds a session's index from its directory. A missing file
// is not an error - the caller creates a fresh empty index instead.
func loadFromDisk(baseDir, sessionId string, dimension int) (*SessionIndex, bool, error) {
	data, err := os.ReadFile(indexPath(baseDir, sessionId))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading persisted index: %w", err)
	}

	var snapshot persistedIndex
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, false, fmt.Errorf("corrupt persisted index: %w", err)
	}

	idx := newSessionIndex(sessionId, snapshot.Dimension)
	if idx.dimension == 0 {
		idx.dimension = dimension
	}
	idx.generation = snapshot.Generation
	idx.ids = snapshot.Ids
	if snapshot.Vectors != nil {
		idx.vectors = snapshot.Vectors
	}
	if snapshot.Docstore != nil {
		idx.docstore = snapshot.Docstore
	}
	return idx, true, nil
}

func removeFromDisk(baseDir, sessionId string) error {
	return os.RemoveAll(filepath.Join(baseDir, sessionId))
}
