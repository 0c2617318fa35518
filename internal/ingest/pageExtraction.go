package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/akolanti/DocChatAPI/internal/domain/commonModels"
	"github.com/dslipak/pdf"
)

func extractPDF(path string) ([]commonModels.Document, error) {
	f, err := pdf.Open(path)
	if err != nil {
		logger.Error("failed opening of pdf file", "path", path)
		return nil, &LoaderError{File: path, Err: fmt.Errorf("failed to open pdf: %w", err)}
	}

	var docs []commonModels.Document
	numPages := f.NumPage()
	logger.Debug("extractPDF", "path", path, "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// Log warning but continue with other pages
			logger.Error("Error parsing page content", "page #", i, "Error", err)
			continue
		}

		docs = append(docs, commonModels.Document{
			Modality:   commonModels.ModalityText,
			Source:     filepath.Base(path),
			Page:       i,
			RawContent: content,
		})
	}
	return docs, nil
}

// protectExtract guards against the pdf library hanging on malformed pages.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		logger.Error("pageExtract", "error", "timeout")
		return "", errors.New("timeout")
	}
}
