package commonModels

type Modality string

const (
	ModalityText  Modality = "text"
	ModalityTable Modality = "table"
	ModalityImage Modality = "image"
)

// Document is one raw unit produced by a loader, before splitting.
// Immutable once produced - the splitter consumes it exactly once.
type Document struct {
	Modality   Modality `json:"modality"`
	Source     string   `json:"source"`
	Page       int      `json:"page,omitempty"`
	RawContent string   `json:"raw_content"`
	AssetPath  string   `json:"asset_path,omitempty"` //image modality only
	Caption    string   `json:"caption,omitempty"`    //image modality only
}

// Chunk is the atomic retrievable unit. Id is a pure function of
// (session prefix, source, position, content fingerprint) so re-ingesting
// identical input reproduces identical ids.
type Chunk struct {
	Id       string        `json:"id"`
	Modality Modality      `json:"modality"`
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

type ChunkMetadata struct {
	Source    string `json:"source"`
	Page      int    `json:"page,omitempty"`
	Position  int    `json:"position"`
	AssetPath string `json:"asset_path,omitempty"`
	TableRows int    `json:"table_rows,omitempty"`
}

// RetrievableText is what gets embedded: the caption stands in for image
// content, everything else embeds its content directly.
func (c Chunk) RetrievableText() string {
	return c.Content
}

type FailedFile struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

type IngestResult struct {
	SessionId   string       `json:"session_id"`
	ChunkCount  int          `json:"chunk_count"`
	FailedFiles []FailedFile `json:"failed_files,omitempty"`
}
