package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// Document is the persisted unit of knowledge: one chunk of source text
// together with its embedding. Documents are created once during ingestion
// and never partially mutated; the only destructive operation is DeleteAll.
type Document struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Metadata  Metadata  `json:"metadata"`
	Embedding []float32 `json:"-"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// ScoredDocument pairs a document with its vector similarity score.
type ScoredDocument struct {
	Document   *Document `json:"document"`
	Similarity float64   `json:"similarity"`
}

// Chunk is a bounded, sentence-aligned slice of a source document produced
// during ingestion. ChunkIndex is 1-based and never exceeds TotalChunks.
type Chunk struct {
	Text        string
	SourcePath  string
	ChunkIndex  int
	TotalChunks int
}

// RetrievalResult is the ordered, deduplicated output of a retrieval.
// Documents are ranked by estimated relevance: vector matches first in
// descending similarity, keyword fallback matches after.
type RetrievalResult struct {
	Query         string        `json:"query"`
	Documents     []*Document   `json:"documents"`
	VectorMatches int           `json:"vector_matches"`
	Took          time.Duration `json:"took" swaggertype:"integer"`
}

// ContextText joins document contents for use as grounding context.
func (r *RetrievalResult) ContextText() string {
	if r == nil || len(r.Documents) == 0 {
		return ""
	}
	out := r.Documents[0].Content
	for _, doc := range r.Documents[1:] {
		out += "\n\n" + doc.Content
	}
	return out
}

// Metadata describes a document. The named fields are the ones ingestion
// always sets; Extra carries caller-defined tags. On the wire and in the
// store the whole thing is a single flat JSON object.
type Metadata struct {
	Source      string
	FileName    string
	Chunk       int
	TotalChunks int
	Category    string
	Type        string
	Extra       map[string]string
}

// known JSON keys, matching the stored column layout
const (
	metaSource      = "source"
	metaFileName    = "fileName"
	metaChunk       = "chunk"
	metaTotalChunks = "totalChunks"
	metaCategory    = "category"
	metaType        = "type"
)

// MarshalJSON flattens the known fields and Extra into one object.
// Zero-valued known fields are omitted; Extra never overrides them.
func (m Metadata) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(m.Extra)+6)
	for k, v := range m.Extra {
		obj[k] = v
	}
	if m.Source != "" {
		obj[metaSource] = m.Source
	}
	if m.FileName != "" {
		obj[metaFileName] = m.FileName
	}
	if m.Chunk != 0 {
		obj[metaChunk] = m.Chunk
	}
	if m.TotalChunks != 0 {
		obj[metaTotalChunks] = m.TotalChunks
	}
	if m.Category != "" {
		obj[metaCategory] = m.Category
	}
	if m.Type != "" {
		obj[metaType] = m.Type
	}
	return json.Marshal(obj)
}

// UnmarshalJSON splits a flat object back into known fields and Extra.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	*m = Metadata{}
	for k, v := range obj {
		switch k {
		case metaSource:
			m.Source = asString(v)
		case metaFileName:
			m.FileName = asString(v)
		case metaChunk:
			m.Chunk = asInt(v)
		case metaTotalChunks:
			m.TotalChunks = asInt(v)
		case metaCategory:
			m.Category = asString(v)
		case metaType:
			m.Type = asString(v)
		default:
			if m.Extra == nil {
				m.Extra = make(map[string]string)
			}
			m.Extra[k] = asString(v)
		}
	}
	return nil
}

// WithChunk returns a copy of m tagged with the given chunk position.
// The Extra map is copied so per-chunk metadata never aliases the base.
func (m Metadata) WithChunk(c Chunk) Metadata {
	out := m
	out.Source = c.SourcePath
	out.Chunk = c.ChunkIndex
	out.TotalChunks = c.TotalChunks
	if m.Extra != nil {
		out.Extra = make(map[string]string, len(m.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

func asInt(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		n, _ := strconv.Atoi(t)
		return n
	default:
		return 0
	}
}
