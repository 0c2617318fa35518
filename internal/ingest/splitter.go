package ingest

import (
	"strings"

	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/internal/domain/commonModels"
)

// SplitDocuments turns loaded Documents into Chunks under per-modality policy:
// text gets overlapping windows, tables are grouped by whole records, images
// pass through one-to-one with the caption as the retrievable text. Chunk ids
// are not assigned here - positions are, counted per source in document order.
func SplitDocuments(docs []commonModels.Document) []commonModels.Chunk {
	var chunks []commonModels.Chunk
	positions := make(map[string]int)

	for _, doc := range docs {
		nextPos := func() int {
			p := positions[doc.Source]
			positions[doc.Source] = p + 1
			return p
		}

		switch doc.Modality {
		case commonModels.ModalityImage:
			if doc.Caption == "" && doc.AssetPath == "" {
				continue
			}
			chunks = append(chunks, commonModels.Chunk{
				Modality: commonModels.ModalityImage,
				Content:  doc.Caption,
				Metadata: commonModels.ChunkMetadata{
					Source:    doc.Source,
					Page:      doc.Page,
					Position:  nextPos(),
					AssetPath: doc.AssetPath,
				},
			})

		case commonModels.ModalityTable:
			for _, part := range splitTableIntoChunks(doc.RawContent, config.TableChunkSize) {
				chunks = append(chunks, commonModels.Chunk{
					Modality: commonModels.ModalityTable,
					Content:  part.text,
					Metadata: commonModels.ChunkMetadata{
						Source:    doc.Source,
						Page:      doc.Page,
						Position:  nextPos(),
						TableRows: part.rows,
					},
				})
			}

		default:
			for _, text := range splitTextIntoChunks(doc.RawContent, config.TextChunkSize, config.TextChunkOverlap) {
				if strings.TrimSpace(text) == "" {
					continue
				}
				chunks = append(chunks, commonModels.Chunk{
					Modality: commonModels.ModalityText,
					Content:  text,
					Metadata: commonModels.ChunkMetadata{
						Source:   doc.Source,
						Page:     doc.Page,
						Position: nextPos(),
					},
				})
			}
		}
	}

	return chunks
}

func splitTextIntoChunks(text string, limit int, overlap int) []string {
	// Separators ordered from "best" to "worst" for semantic meaning
	return splitBySeparators(text, limit, overlap, []string{"\n\n", "\n", ". ", " ", ""})
}

func splitBySeparators(text string, limit int, overlap int, separators []string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) <= limit {
		return []string{text}
	}

	// the empty separator always matches, so splitChar is always assigned and
	// the worst case degrades to a per-rune split
	var splitChar string
	var fallback []string
	for i, s := range separators {
		if strings.Contains(text, s) {
			splitChar = s
			fallback = separators[i+1:]
			break
		}
	}

	var chunks []string
	parts := strings.Split(text, splitChar)
	var currentChunk strings.Builder

	for _, part := range parts {
		if len(part) > limit {
			// a separator-free run longer than the whole limit falls through
			// to the next separator, keeping every emitted chunk bounded
			if currentChunk.Len() > 0 {
				chunks = append(chunks, currentChunk.String())
				currentChunk.Reset()
			}
			chunks = append(chunks, splitBySeparators(part, limit, overlap, fallback)...)
			continue
		}

		if currentChunk.Len()+len(part)+len(splitChar) > limit {
			if currentChunk.Len() > 0 {
				chunks = append(chunks, currentChunk.String())
			}

			// Overlap: seed the next chunk with the tail of the previous one,
			// unless the seed would push the next chunk past the limit
			overlapContent := ""
			if currentChunk.Len() > overlap {
				overlapContent = currentChunk.String()[currentChunk.Len()-overlap:]
			}
			if len(overlapContent)+len(splitChar)+len(part) > limit {
				overlapContent = ""
			}

			currentChunk.Reset()
			currentChunk.WriteString(overlapContent)
		}

		if currentChunk.Len() > 0 && splitChar != "" {
			currentChunk.WriteString(splitChar)
		}
		currentChunk.WriteString(part)
	}

	if currentChunk.Len() > 0 {
		chunks = append(chunks, currentChunk.String())
	}

	return chunks
}

type tablePart struct {
	text string
	rows int
}

// splitTableIntoChunks groups whole records (newline-delimited rows) up to the
// limit. A single record is never cut across two chunks, even when it exceeds
// the limit on its own.
func splitTableIntoChunks(table string, limit int) []tablePart {
	rows := strings.Split(strings.TrimRight(table, "\n"), "\n")

	var parts []tablePart
	var current strings.Builder
	rowCount := 0

	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, tablePart{text: current.String(), rows: rowCount})
			current.Reset()
			rowCount = 0
		}
	}

	for _, row := range rows {
		if strings.TrimSpace(row) == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(row)+1 > limit {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(row)
		rowCount++
	}
	flush()

	return parts
}
