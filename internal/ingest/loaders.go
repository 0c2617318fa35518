package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/akolanti/DocChatAPI/internal/domain/commonModels"
	"github.com/lu4p/cat"
	"github.com/xuri/excelize/v2"
)

// Captioner turns an image file into retrievable text. Consumed as a black box,
// the gemini vision client implements it in production.
type Captioner interface {
	Caption(ctx context.Context, imagePath string) (string, error)
}

// LoaderError wraps a per-file extraction failure. It is collected into
// IngestResult.FailedFiles and never aborts the remaining files.
type LoaderError struct {
	File string
	Err  error
}

func (e *LoaderError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.File, e.Err)
}

func (e *LoaderError) Unwrap() error { return e.Err }

// LoadDocuments dispatches on file extension and produces typed Documents.
// Image files get their caption from the captioner and keep the asset path.
func LoadDocuments(ctx context.Context, path string, captioner Captioner) ([]commonModels.Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	case ".docx", ".txt", ".rtf", ".odt", ".md":
		return extractOfficeText(path)
	case ".xlsx":
		return extractXLSX(path)
	case ".csv":
		return extractCSV(path)
	case ".png", ".jpg", ".jpeg":
		return loadImage(ctx, path, captioner)
	default:
		return nil, &LoaderError{File: path, Err: fmt.Errorf("unsupported file type %q", filepath.Ext(path))}
	}
}

// File reads a .odt, .docx, .rtf or plaintext file and returns the content as a string.
// All content lands on one page since these formats don't expose page breaks.
func extractOfficeText(path string) ([]commonModels.Document, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, &LoaderError{File: path, Err: fmt.Errorf("failed to extract document text: %w", err)}
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	return []commonModels.Document{
		{
			Modality:   commonModels.ModalityText,
			Source:     filepath.Base(path),
			Page:       1,
			RawContent: text,
		},
	}, nil
}

// extractXLSX emits one table Document per sheet, rows serialized as
// tab-joined lines so the splitter can group whole records.
func extractXLSX(path string) ([]commonModels.Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &LoaderError{File: path, Err: fmt.Errorf("failed to open workbook: %w", err)}
	}
	defer f.Close()

	var docs []commonModels.Document
	for sheetIdx, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			logger.Error("Skipping unreadable sheet", "sheet", sheet, "error", err)
			continue
		}

		var lines []string
		for _, row := range rows {
			if line := strings.TrimSpace(strings.Join(row, "\t")); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) == 0 {
			continue
		}

		docs = append(docs, commonModels.Document{
			Modality:   commonModels.ModalityTable,
			Source:     filepath.Base(path),
			Page:       sheetIdx + 1,
			RawContent: strings.Join(lines, "\n"),
		})
	}
	return docs, nil
}

func extractCSV(path string) ([]commonModels.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoaderError{File: path, Err: err}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, &LoaderError{File: path, Err: fmt.Errorf("failed to parse csv: %w", err)}
	}
	if len(records) == 0 {
		return nil, nil
	}

	lines := make([]string, 0, len(records))
	for _, record := range records {
		lines = append(lines, strings.Join(record, "\t"))
	}

	return []commonModels.Document{
		{
			Modality:   commonModels.ModalityTable,
			Source:     filepath.Base(path),
			Page:       1,
			RawContent: strings.Join(lines, "\n"),
		},
	}, nil
}

func loadImage(ctx context.Context, path string, captioner Captioner) ([]commonModels.Document, error) {
	if captioner == nil {
		return nil, &LoaderError{File: path, Err: fmt.Errorf("no captioner configured for image files")}
	}

	caption, err := captioner.Caption(ctx, path)
	if err != nil {
		return nil, &LoaderError{File: path, Err: fmt.Errorf("captioning failed: %w", err)}
	}

	return []commonModels.Document{
		{
			Modality:  commonModels.ModalityImage,
			Source:    filepath.Base(path),
			Caption:   caption,
			AssetPath: path,
		},
	}, nil
}
