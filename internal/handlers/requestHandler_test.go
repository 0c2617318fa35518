package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"testing"

	"github.com/akolanti/DocChatAPI/internal/data/store"
	"github.com/akolanti/DocChatAPI/internal/domain/sessionModel"
	"github.com/akolanti/DocChatAPI/internal/index"
	"github.com/akolanti/DocChatAPI/internal/ingest"
)

type countingEmbedder struct {
	batchCalls int
	embedded   int
}

func (e *countingEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (e *countingEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	e.batchCalls++
	e.embedded += len(chunks)
	vectors := make([][]float32, len(chunks))
	for i := range chunks {
		vectors[i] = []float32{1, 0, float32(i)}
	}
	return vectors, nil
}

// uploadedFile builds a real multipart FileHeader the way an HTTP request
// delivers one.
func uploadedFile(t *testing.T, name string, content string) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("documents", name)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing form: %v", err)
	}

	form, err := multipart.NewReader(&body, writer.Boundary()).ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("parsing form: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["documents"][0]
}

func TestSaveUploadedFile_KeepsOriginalName(t *testing.T) {
	targetDir := t.TempDir()
	fileHeader := uploadedFile(t, "notes.txt", "alpha beta gamma")

	first, err := saveUploadedFile(fileHeader, targetDir)
	if err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	second, err := saveUploadedFile(fileHeader, targetDir)
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	if first != second {
		t.Errorf("re-saving the same file must reuse its path: %q vs %q", first, second)
	}
}

func TestUpload_ReIngestIsIdempotent(t *testing.T) {
	ctx := context.Background()
	embedder := &countingEmbedder{}
	indexManager := index.NewManager(t.TempDir(), embedder)

	sessions := store.InitInMemorySessionStore()
	session := sessionModel.Session{Id: "session_upload_test", Prefix: "session_upload_test"}
	if err := sessions.SaveSession(ctx, session); err != nil {
		t.Fatalf("saving session: %v", err)
	}
	ingestor := ingest.NewIngestor(indexManager, sessions, nil)

	targetDir := t.TempDir()
	fileHeader := uploadedFile(t, "notes.txt", "alpha beta gamma")

	path, err := saveUploadedFile(fileHeader, targetDir)
	if err != nil {
		t.Fatalf("saving upload: %v", err)
	}
	if _, err := ingestor.Ingest(ctx, session.Id, []string{path}); err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}

	generation, err := indexManager.Generation(ctx, session.Id)
	if err != nil {
		t.Fatalf("reading generation: %v", err)
	}
	if embedder.embedded == 0 {
		t.Fatal("first ingest should have embedded the chunks")
	}
	embeddedAfterFirst := embedder.embedded

	// the identical file arrives again, as a client re-upload does
	rePath, err := saveUploadedFile(fileHeader, targetDir)
	if err != nil {
		t.Fatalf("re-saving upload: %v", err)
	}
	if _, err := ingestor.Ingest(ctx, session.Id, []string{rePath}); err != nil {
		t.Fatalf("second ingest failed: %v", err)
	}

	if embedder.embedded != embeddedAfterFirst {
		t.Errorf("identical re-upload must embed nothing, embedded %d more chunks", embedder.embedded-embeddedAfterFirst)
	}
	reGeneration, err := indexManager.Generation(ctx, session.Id)
	if err != nil {
		t.Fatalf("reading generation: %v", err)
	}
	if reGeneration != generation {
		t.Errorf("identical re-upload bumped the index generation: %d -> %d", generation, reGeneration)
	}
}
